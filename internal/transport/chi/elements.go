package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kailas-cloud/feedex/internal/domain"
	domfeed "github.com/kailas-cloud/feedex/internal/domain/feed"
)

// SearchResponse groups lookup hits by plural item type.
type SearchResponse struct {
	Apps        []ElementResponse `json:"apps"`
	Brands      []ElementResponse `json:"brands"`
	Collections []ElementResponse `json:"collections"`
	Shelves     []ElementResponse `json:"shelves"`
}

// ListResponse is a page of elements.
type ListResponse struct {
	Meta    *Meta             `json:"meta,omitempty"`
	Objects []ElementResponse `json:"objects"`
}

// SearchElements handles GET /v2/feed/elements/search.
func (s *Server) SearchElements(w http.ResponseWriter, r *http.Request) {
	var q *string
	if err := queryParam(r, "q", &q); err != nil {
		s.handleParamError(w, err)
		return
	}

	groups, err := s.elements.Search(r.Context(), deref(q))
	if errors.Is(err, domain.ErrElementNotFound) {
		writeJSON(w, http.StatusNotFound, emptySearch())
		return
	}
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	resp := emptySearch()
	resp.Apps = append(resp.Apps, elementsToResponse(groups[domfeed.TypeApp])...)
	resp.Brands = append(resp.Brands, elementsToResponse(groups[domfeed.TypeBrand])...)
	resp.Collections = append(resp.Collections, elementsToResponse(groups[domfeed.TypeCollection])...)
	resp.Shelves = append(resp.Shelves, elementsToResponse(groups[domfeed.TypeShelf])...)
	writeJSON(w, http.StatusOK, resp)
}

func emptySearch() SearchResponse {
	return SearchResponse{
		Apps:        []ElementResponse{},
		Brands:      []ElementResponse{},
		Collections: []ElementResponse{},
		Shelves:     []ElementResponse{},
	}
}

// GetElement handles GET /v2/feed/elements/{item_type}/{slug}.
func (s *Server) GetElement(w http.ResponseWriter, r *http.Request) {
	var itemType, slug string
	var limit *int
	if err := pathParam(r, "item_type", &itemType); err != nil {
		s.handleParamError(w, err)
		return
	}
	if err := pathParam(r, "slug", &slug); err != nil {
		s.handleParamError(w, err)
		return
	}
	if err := queryParam(r, "limit", &limit); err != nil {
		s.handleParamError(w, err)
		return
	}

	t, err := domfeed.ParseItemType(itemType)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	lim := 0
	if limit != nil {
		lim = *limit
	}

	res, err := s.elements.Get(r.Context(), t, slug, lim)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, elementToResponse(res))
}

// ListElements handles GET /v2/feed/elements/{item_type}.
func (s *Server) ListElements(w http.ResponseWriter, r *http.Request) {
	var itemType string
	if err := pathParam(r, "item_type", &itemType); err != nil {
		s.handleParamError(w, err)
		return
	}
	t, err := domfeed.ParseItemType(itemType)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	offset, limit, err := s.pageParams(r)
	if err != nil {
		s.handleParamError(w, err)
		return
	}

	listing, err := s.elements.ListRecent(r.Context(), t, offset, limit)
	if errors.Is(err, domain.ErrElementNotFound) {
		writeJSON(w, http.StatusNotFound, ListResponse{Objects: []ElementResponse{}})
		return
	}
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	meta := newMeta(r, listing.Total, listing.Offset, listing.Limit)
	writeJSON(w, http.StatusOK, ListResponse{Meta: &meta, Objects: elementsToResponse(listing.Elements)})
}

// CreateElement handles POST /v2/feed/{plural}.
func (s *Server) CreateElement(w http.ResponseWriter, r *http.Request) {
	t, ok := s.pluralParam(w, r)
	if !ok {
		return
	}
	var req ElementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	in, err := req.toInput(t)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	res, err := s.elements.Create(r.Context(), in)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, elementToResponse(res))
}

// UpdateElement handles PUT /v2/feed/{plural}/{id}.
func (s *Server) UpdateElement(w http.ResponseWriter, r *http.Request) {
	key, ok := s.keyParam(w, r)
	if !ok {
		return
	}
	var req ElementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	in, err := req.toInput(key.Type)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	res, err := s.elements.Update(r.Context(), key, in)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, elementToResponse(res))
}

// DeleteElement handles DELETE /v2/feed/{plural}/{id}.
func (s *Server) DeleteElement(w http.ResponseWriter, r *http.Request) {
	key, ok := s.keyParam(w, r)
	if !ok {
		return
	}
	if err := s.elements.Delete(r.Context(), key); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PublishShelf handles PUT /v2/feed/shelves/{id}/publish.
func (s *Server) PublishShelf(w http.ResponseWriter, r *http.Request) {
	id, ok := s.idParam(w, r)
	if !ok {
		return
	}
	item, err := s.elements.Publish(r.Context(), id)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, itemToResponse(item))
}

// UnpublishShelf handles DELETE /v2/feed/shelves/{id}/publish.
func (s *Server) UnpublishShelf(w http.ResponseWriter, r *http.Request) {
	id, ok := s.idParam(w, r)
	if !ok {
		return
	}
	if err := s.elements.Unpublish(r.Context(), id); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) pluralParam(w http.ResponseWriter, r *http.Request) (domfeed.ItemType, bool) {
	var plural string
	if err := pathParam(r, "plural", &plural); err != nil {
		s.handleParamError(w, err)
		return "", false
	}
	t, err := domfeed.ParsePlural(plural)
	if err != nil {
		writeError(w, http.StatusNotFound, CodeNotFound, "unknown element collection "+plural)
		return "", false
	}
	return t, true
}

func (s *Server) idParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	var id int64
	if err := pathParam(r, "id", &id); err != nil {
		s.handleParamError(w, err)
		return 0, false
	}
	if id <= 0 {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "id must be positive")
		return 0, false
	}
	return id, true
}

func (s *Server) keyParam(w http.ResponseWriter, r *http.Request) (domfeed.ElementKey, bool) {
	t, ok := s.pluralParam(w, r)
	if !ok {
		return domfeed.ElementKey{}, false
	}
	id, ok := s.idParam(w, r)
	if !ok {
		return domfeed.ElementKey{}, false
	}
	return domfeed.ElementKey{Type: t, ID: id}, true
}
