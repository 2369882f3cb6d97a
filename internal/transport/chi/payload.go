package chi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/kailas-cloud/feedex/internal/domain"
	domfeed "github.com/kailas-cloud/feedex/internal/domain/feed"
	"github.com/kailas-cloud/feedex/internal/domain/market"
	builderuc "github.com/kailas-cloud/feedex/internal/usecase/builder"
	catalog "github.com/kailas-cloud/feedex/internal/usecase/catalog"
	elementuc "github.com/kailas-cloud/feedex/internal/usecase/element"
)

// AppRefRequest is a member app given either as a bare id or as
// {"id": ..., "group": ...}.
type AppRefRequest domfeed.AppRef

// UnmarshalJSON accepts both member app forms.
func (a *AppRefRequest) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var ref domfeed.AppRef
		if err := json.Unmarshal(data, &ref); err != nil {
			return err
		}
		*a = AppRefRequest(ref)
		return nil
	}
	var id int64
	if err := json.Unmarshal(data, &id); err != nil {
		return fmt.Errorf("app must be an id or an {id, group} object")
	}
	*a = AppRefRequest{ID: id}
	return nil
}

// ElementRequest is the write body of every element type. Carrier and
// region are slugs.
type ElementRequest struct {
	Slug             string          `json:"slug"`
	Type             string          `json:"type"`
	Name             string          `json:"name"`
	Description      string          `json:"description"`
	Pullquote        string          `json:"pullquote"`
	Color            string          `json:"color"`
	BackgroundColor  string          `json:"background_color"`
	Layout           string          `json:"layout"`
	App              int64           `json:"app"`
	Apps             []AppRefRequest `json:"apps"`
	Carrier          string          `json:"carrier"`
	Region           string          `json:"region"`
	ImageUploadURL   string          `json:"background_image_upload_url"`
	ImageLandingHash string          `json:"image_landing_hash"`
}

func (req ElementRequest) toInput(t domfeed.ItemType) (elementuc.Input, error) {
	in := elementuc.Input{Slug: req.Slug, Type: req.Type, ImageURL: req.ImageUploadURL}

	refs := make([]domfeed.AppRef, len(req.Apps))
	for i, a := range req.Apps {
		refs[i] = domfeed.AppRef(a)
	}

	switch t {
	case domfeed.TypeApp:
		in.Content = domfeed.AppContent{
			AppID:       req.App,
			Description: req.Description,
			Pullquote:   req.Pullquote,
			Color:       req.Color,
		}
	case domfeed.TypeCollection:
		in.Content = domfeed.CollectionContent{
			Name:            req.Name,
			Description:     req.Description,
			Color:           req.Color,
			BackgroundColor: req.BackgroundColor,
			Apps:            refs,
		}
	case domfeed.TypeBrand:
		in.Content = domfeed.BrandContent{Layout: req.Layout, Apps: refs}
	case domfeed.TypeShelf:
		carrier, err := market.CarrierBySlug(req.Carrier)
		if err != nil {
			return elementuc.Input{}, err
		}
		region, err := market.RegionBySlug(req.Region)
		if err != nil {
			return elementuc.Input{}, err
		}
		in.Content = domfeed.ShelfContent{
			Name:             req.Name,
			Description:      req.Description,
			Carrier:          carrier.ID(),
			Region:           region.ID(),
			Apps:             refs,
			ImageLandingHash: req.ImageLandingHash,
		}
	default:
		return elementuc.Input{}, domain.NewValidation(domain.ErrInvalidItemType, "unknown item type %q", t)
	}
	return in, nil
}

// builderPayload turns raw region placements into string pairs. Ids may be
// sent as numbers or strings; the builder validates both.
func builderPayload(raw map[string][][]any) builderuc.Payload {
	p := make(builderuc.Payload, len(raw))
	for region, pairs := range raw {
		out := make([][]string, len(pairs))
		for i, pair := range pairs {
			out[i] = make([]string, len(pair))
			for j, v := range pair {
				out[i][j] = scalarString(v)
			}
		}
		p[region] = out
	}
	return p
}

func scalarString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case nil:
		return ""
	}
	return fmt.Sprint(v)
}

// AppUpsertRequest is one catalog app.
type AppUpsertRequest struct {
	ID              int64    `json:"id"`
	Slug            string   `json:"slug"`
	Name            string   `json:"name"`
	Status          string   `json:"status"`
	Devices         []string `json:"devices"`
	ExcludedRegions []string `json:"region_exclusions"`
	Icon            string   `json:"icon"`
}

// CatalogRequest is the bulk catalog upsert body.
type CatalogRequest struct {
	Apps []AppUpsertRequest `json:"apps"`
}

func (req CatalogRequest) toInputs() []catalog.Input {
	out := make([]catalog.Input, len(req.Apps))
	for i, a := range req.Apps {
		out[i] = catalog.Input{
			ID:              a.ID,
			Slug:            a.Slug,
			Name:            a.Name,
			Status:          a.Status,
			Devices:         a.Devices,
			ExcludedRegions: a.ExcludedRegions,
			IconURL:         a.Icon,
		}
	}
	return out
}
