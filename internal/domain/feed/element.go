package feed

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var slugRegex = regexp.MustCompile(`^[a-z0-9-]+$`)

// AppRef is an app membership entry of a multi-app element.
// Group is an optional heading for grouped collections.
type AppRef struct {
	ID    int64  `json:"id"`
	Group string `json:"group,omitempty"`
}

// Content is the type-specific payload of an element. Implemented by
// AppContent, CollectionContent, BrandContent and ShelfContent only.
type Content interface {
	itemType() ItemType
}

// AppContent features a single app.
type AppContent struct {
	AppID       int64  `json:"app"`
	Description string `json:"description,omitempty"`
	Pullquote   string `json:"pullquote,omitempty"`
	Color       string `json:"color,omitempty"`
	ImageHash   string `json:"image_hash,omitempty"`
}

// CollectionContent is an editorially curated app list.
type CollectionContent struct {
	Name            string   `json:"name"`
	Description     string   `json:"description,omitempty"`
	Color           string   `json:"color,omitempty"`
	BackgroundColor string   `json:"background_color,omitempty"`
	Apps            []AppRef `json:"apps"`
	ImageHash       string   `json:"image_hash,omitempty"`
}

// BrandContent is a branded app list; the presentation type names the brand.
type BrandContent struct {
	Layout string   `json:"layout"`
	Apps   []AppRef `json:"apps"`
}

// ShelfContent is a carrier operator shelf, exclusive per carrier+region.
type ShelfContent struct {
	Name             string   `json:"name"`
	Description      string   `json:"description,omitempty"`
	Carrier          int      `json:"carrier"`
	Region           int      `json:"region"`
	Apps             []AppRef `json:"apps"`
	ImageHash        string   `json:"image_hash,omitempty"`
	ImageLandingHash string   `json:"image_landing_hash,omitempty"`
}

func (AppContent) itemType() ItemType        { return TypeApp }
func (CollectionContent) itemType() ItemType { return TypeCollection }
func (BrandContent) itemType() ItemType      { return TypeBrand }
func (ShelfContent) itemType() ItemType      { return TypeShelf }

// Element is a feed element: a common header plus exactly one content variant.
type Element struct {
	id      int64
	slug    string
	kind    string
	created time.Time
	content Content
	// imageURL is the source of the most recently scheduled image fetch.
	imageURL string
}

// NewElement validates and creates an unsaved Element.
func NewElement(slug, kind string, content Content) (Element, error) {
	if content == nil {
		return Element{}, fmt.Errorf("element content is required")
	}
	if err := ValidateSlug(slug); err != nil {
		return Element{}, err
	}
	if err := validateContent(content); err != nil {
		return Element{}, err
	}
	return Element{slug: slug, kind: kind, content: content}, nil
}

// ReconstructElement creates an Element without validation (storage hydration).
func ReconstructElement(id int64, slug, kind string, created time.Time, content Content) Element {
	return Element{id: id, slug: slug, kind: kind, created: created, content: content}
}

// ValidateSlug checks the slug format.
func ValidateSlug(slug string) error {
	if slug == "" {
		return fmt.Errorf("slug is required")
	}
	if len(slug) > 64 {
		return fmt.Errorf("slug too long (max 64)")
	}
	if !slugRegex.MatchString(slug) {
		return fmt.Errorf("slug must be lowercase alphanumeric with hyphens")
	}
	return nil
}

func validateContent(c Content) error {
	switch v := c.(type) {
	case AppContent:
		if v.AppID <= 0 {
			return fmt.Errorf("app is required")
		}
	case ShelfContent:
		if v.Carrier <= 0 || v.Region <= 0 {
			return fmt.Errorf("shelf requires carrier and region")
		}
	}
	return nil
}

// ID returns the element id, zero before insert.
func (e Element) ID() int64 { return e.id }

// Slug returns the unique-per-type slug.
func (e Element) Slug() string { return e.slug }

// Type returns the presentation type (e.g. brand layout family or collection style).
func (e Element) Type() string { return e.kind }

// Created returns the creation time.
func (e Element) Created() time.Time { return e.created }

// Content returns the type-specific payload.
func (e Element) Content() Content { return e.content }

// ItemType returns the element type derived from its content.
func (e Element) ItemType() ItemType {
	if e.content == nil {
		return ""
	}
	return e.content.itemType()
}

// Key returns the cross-type element key.
func (e Element) Key() ElementKey { return ElementKey{Type: e.ItemType(), ID: e.id} }

// WithID returns a copy carrying the stored id and creation time.
func (e Element) WithID(id int64, created time.Time) Element {
	e.id = id
	e.created = created
	return e
}

// ImageURL returns the source URL of the last scheduled background image.
func (e Element) ImageURL() string { return e.imageURL }

// WithImageURL returns a copy recording url as the image source.
func (e Element) WithImageURL(url string) Element {
	e.imageURL = url
	return e
}

// WithContent returns a copy with replaced content.
func (e Element) WithContent(c Content) Element {
	e.content = c
	return e
}

// AppRefs returns the member app references; a single-app element yields one.
func (e Element) AppRefs() []AppRef {
	switch v := e.content.(type) {
	case AppContent:
		return []AppRef{{ID: v.AppID}}
	case CollectionContent:
		return v.Apps
	case BrandContent:
		return v.Apps
	case ShelfContent:
		return v.Apps
	}
	return nil
}

// WithAppRefs returns a copy whose content references refs. A single-app
// element takes the first ref.
func (e Element) WithAppRefs(refs []AppRef) Element {
	switch v := e.content.(type) {
	case AppContent:
		v.AppID = 0
		if len(refs) > 0 {
			v.AppID = refs[0].ID
		}
		e.content = v
	case CollectionContent:
		v.Apps = refs
		e.content = v
	case BrandContent:
		v.Apps = refs
		e.content = v
	case ShelfContent:
		v.Apps = refs
		e.content = v
	}
	return e
}

// AppIDs returns the member app ids in order.
func (e Element) AppIDs() []int64 {
	refs := e.AppRefs()
	ids := make([]int64, len(refs))
	for i, r := range refs {
		ids[i] = r.ID
	}
	return ids
}

// AppCount returns the stored member count.
func (e Element) AppCount() int { return len(e.AppRefs()) }

// SearchNames returns the free text indexed for editorial lookup.
func (e Element) SearchNames() string {
	switch v := e.content.(type) {
	case CollectionContent:
		return v.Name
	case ShelfContent:
		return v.Name
	case BrandContent:
		return strings.ReplaceAll(e.kind, "-", " ")
	}
	return e.slug
}

// ImageHash returns the hash of the processed background image, if any.
func (e Element) ImageHash() string {
	switch v := e.content.(type) {
	case AppContent:
		return v.ImageHash
	case CollectionContent:
		return v.ImageHash
	case ShelfContent:
		return v.ImageHash
	}
	return ""
}

// WithImageHash returns a copy whose content records the processed image hash.
// Brands carry no image and are returned unchanged.
func (e Element) WithImageHash(hash string) Element {
	switch v := e.content.(type) {
	case AppContent:
		v.ImageHash = hash
		e.content = v
	case CollectionContent:
		v.ImageHash = hash
		e.content = v
	case ShelfContent:
		v.ImageHash = hash
		e.content = v
	}
	return e
}
