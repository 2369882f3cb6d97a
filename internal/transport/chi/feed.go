package chi

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/kailas-cloud/feedex/internal/domain/device"
	"github.com/kailas-cloud/feedex/internal/domain/market"
	"github.com/kailas-cloud/feedex/internal/logger"
	feeduc "github.com/kailas-cloud/feedex/internal/usecase/feed"
)

// FeedResponse is a feed page.
type FeedResponse struct {
	Meta    Meta           `json:"meta"`
	Objects []ItemResponse `json:"objects"`
}

// GetFeed handles GET /v2/feed/get.
func (s *Server) GetFeed(w http.ResponseWriter, r *http.Request) {
	req, err := s.feedRequest(r)
	if err != nil {
		s.handleParamError(w, err)
		return
	}

	page, err := s.feed.Feed(r.Context(), req)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	region := ""
	if reg, ok := market.RegionByID(page.Region); ok {
		region = reg.Slug()
	}
	logger.AddFields(r.Context(),
		zap.String("region", region),
		zap.Bool("fallback", page.Fallback),
		zap.Int("suppressed", page.Suppressed),
	)

	objects := make([]ItemResponse, len(page.Entries))
	for i, e := range page.Entries {
		objects[i] = entryToResponse(e)
	}
	writeJSON(w, http.StatusOK, FeedResponse{
		Meta:    newMeta(r, page.Total, page.Offset, page.Limit),
		Objects: objects,
	})
}

func (s *Server) feedRequest(r *http.Request) (feeduc.Request, error) {
	var regionSlug, carrierSlug, dev, deviceType, filtering *string
	for name, dest := range map[string]**string{
		"region":    &regionSlug,
		"carrier":   &carrierSlug,
		"dev":       &dev,
		"device":    &deviceType,
		"filtering": &filtering,
	} {
		if err := queryParam(r, name, dest); err != nil {
			return feeduc.Request{}, err
		}
	}

	req := feeduc.Request{Region: market.RestOfWorld.ID(), Filtering: true}
	if regionSlug != nil && *regionSlug != "" {
		reg, err := market.RegionBySlug(*regionSlug)
		if err != nil {
			return feeduc.Request{}, err
		}
		req.Region = reg.ID()
	}
	if carrierSlug != nil && *carrierSlug != "" {
		c, err := market.CarrierBySlug(*carrierSlug)
		if err != nil {
			return feeduc.Request{}, err
		}
		id := c.ID()
		req.Carrier = &id
	}

	dt, ok, err := device.Resolve(deref(dev), deref(deviceType))
	if err != nil {
		return feeduc.Request{}, err
	}
	if ok {
		req.Device = dt
	}
	if filtering != nil && *filtering == "0" {
		req.Filtering = false
	}

	req.Offset, req.Limit, err = s.pageParams(r)
	if err != nil {
		return feeduc.Request{}, err
	}
	return req, nil
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
