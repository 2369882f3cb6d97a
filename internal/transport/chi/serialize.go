package chi

import (
	"time"

	domfeed "github.com/kailas-cloud/feedex/internal/domain/feed"
	"github.com/kailas-cloud/feedex/internal/domain/market"
)

const imagePath = "/v2/feed/images/"

// AppResponse is a member app inside an element.
type AppResponse struct {
	ID     int64  `json:"id"`
	Slug   string `json:"slug"`
	Name   string `json:"name"`
	Icon   string `json:"icon,omitempty"`
	Status string `json:"status"`
	Group  string `json:"group,omitempty"`
}

// ElementResponse is the JSON shape of every element type. Fields that do
// not apply to a type are omitted.
type ElementResponse struct {
	ID               int64         `json:"id"`
	ItemType         string        `json:"item_type"`
	Slug             string        `json:"slug"`
	Type             string        `json:"type,omitempty"`
	Name             string        `json:"name,omitempty"`
	Description      string        `json:"description,omitempty"`
	Pullquote        string        `json:"pullquote,omitempty"`
	Color            string        `json:"color,omitempty"`
	BackgroundColor  string        `json:"background_color,omitempty"`
	Layout           string        `json:"layout,omitempty"`
	Carrier          string        `json:"carrier,omitempty"`
	Region           string        `json:"region,omitempty"`
	App              *AppResponse  `json:"app,omitempty"`
	Apps             []AppResponse `json:"apps,omitempty"`
	AppCount         int           `json:"app_count"`
	BackgroundImage  string        `json:"background_image,omitempty"`
	LandingImageHash string        `json:"image_landing_hash,omitempty"`
	Created          string        `json:"created,omitempty"`
}

// ItemResponse is one feed position with its nested element under the
// key named by its item type.
type ItemResponse struct {
	ID         int64            `json:"id"`
	ItemType   string           `json:"item_type"`
	Region     string           `json:"region"`
	Carrier    *string          `json:"carrier"`
	Order      int              `json:"order"`
	App        *ElementResponse `json:"app,omitempty"`
	Brand      *ElementResponse `json:"brand,omitempty"`
	Collection *ElementResponse `json:"collection,omitempty"`
	Shelf      *ElementResponse `json:"shelf,omitempty"`
}

func itemToResponse(item domfeed.Item) ItemResponse {
	resp := ItemResponse{
		ID:       item.ID(),
		ItemType: string(item.ItemType()),
		Order:    item.Order(),
	}
	if reg, ok := market.RegionByID(item.Region()); ok {
		resp.Region = reg.Slug()
	}
	if item.Carrier() != nil {
		if c, ok := market.CarrierByID(*item.Carrier()); ok {
			slug := c.Slug()
			resp.Carrier = &slug
		}
	}
	return resp
}

func entryToResponse(e domfeed.Entry) ItemResponse {
	resp := itemToResponse(e.Item)
	el := elementToResponse(e.Resolved)
	switch e.Item.ItemType() {
	case domfeed.TypeApp:
		resp.App = &el
	case domfeed.TypeBrand:
		resp.Brand = &el
	case domfeed.TypeCollection:
		resp.Collection = &el
	case domfeed.TypeShelf:
		resp.Shelf = &el
	}
	return resp
}

func elementToResponse(r domfeed.Resolved) ElementResponse {
	e := r.Element
	resp := ElementResponse{
		ID:       e.ID(),
		ItemType: string(e.ItemType()),
		Slug:     e.Slug(),
		Type:     e.Type(),
		AppCount: r.EffectiveAppCount(),
	}
	if !e.Created().IsZero() {
		resp.Created = e.Created().UTC().Format(time.RFC3339)
	}
	if h := e.ImageHash(); h != "" {
		resp.BackgroundImage = imagePath + h
	}

	switch c := e.Content().(type) {
	case domfeed.AppContent:
		resp.Description = c.Description
		resp.Pullquote = c.Pullquote
		resp.Color = c.Color
		if r.App != nil {
			a := appToResponse(domfeed.MemberApp{App: *r.App})
			resp.App = &a
		}
	case domfeed.CollectionContent:
		resp.Name = c.Name
		resp.Description = c.Description
		resp.Color = c.Color
		resp.BackgroundColor = c.BackgroundColor
	case domfeed.BrandContent:
		resp.Layout = c.Layout
	case domfeed.ShelfContent:
		resp.Name = c.Name
		resp.Description = c.Description
		if carrier, ok := market.CarrierByID(c.Carrier); ok {
			resp.Carrier = carrier.Slug()
		}
		if region, ok := market.RegionByID(c.Region); ok {
			resp.Region = region.Slug()
		}
		resp.LandingImageHash = c.ImageLandingHash
	}

	if e.ItemType() != domfeed.TypeApp {
		resp.Apps = make([]AppResponse, len(r.Apps))
		for i, m := range r.Apps {
			resp.Apps[i] = appToResponse(m)
		}
	}
	return resp
}

func appToResponse(m domfeed.MemberApp) AppResponse {
	return AppResponse{
		ID:     m.App.ID(),
		Slug:   m.App.Slug(),
		Name:   m.App.Name(),
		Icon:   m.App.IconURL(),
		Status: string(m.App.Status()),
		Group:  m.Group,
	}
}

func elementsToResponse(rs []domfeed.Resolved) []ElementResponse {
	out := make([]ElementResponse, len(rs))
	for i, r := range rs {
		out[i] = elementToResponse(r)
	}
	return out
}
