package catalog

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kailas-cloud/feedex/internal/domain/app"
	"github.com/kailas-cloud/feedex/internal/domain/device"
)

func buildHashFields(a app.App) map[string]string {
	devices := make([]string, len(a.Devices()))
	for i, d := range a.Devices() {
		devices[i] = strconv.Itoa(int(d))
	}
	regions := make([]string, len(a.ExcludedRegions()))
	for i, r := range a.ExcludedRegions() {
		regions[i] = strconv.Itoa(r)
	}
	return map[string]string{
		FieldID:             app.FormatID(a.ID()),
		FieldSlug:           a.Slug(),
		FieldName:           a.Name(),
		FieldStatus:         string(a.Status()),
		FieldDevices:        strings.Join(devices, ","),
		FieldRegionExcluded: strings.Join(regions, ","),
		fieldIcon:           a.IconURL(),
	}
}

func parseHashFields(m map[string]string) (app.App, error) {
	id, err := strconv.ParseInt(m[FieldID], 10, 64)
	if err != nil {
		return app.App{}, fmt.Errorf("parse id: %w", err)
	}

	ints, err := splitInts(m[FieldDevices])
	if err != nil {
		return app.App{}, fmt.Errorf("parse devices: %w", err)
	}
	devices := make([]device.Type, len(ints))
	for i, v := range ints {
		devices[i] = device.Type(v)
	}

	excluded, err := splitInts(m[FieldRegionExcluded])
	if err != nil {
		return app.App{}, fmt.Errorf("parse region_excluded: %w", err)
	}

	return app.Reconstruct(id, m[FieldSlug], m[FieldName], app.Status(m[FieldStatus]), devices, excluded, m[fieldIcon]), nil
}

func splitInts(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
