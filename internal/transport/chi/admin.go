package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"

	"github.com/kailas-cloud/feedex/internal/domain"
)

var hashPattern = regexp.MustCompile(`^[0-9a-f]{16}$`)

// ReplaceFeeds handles PUT /v2/feed/builder. A reference to a missing
// element is a client error here.
func (s *Server) ReplaceFeeds(w http.ResponseWriter, r *http.Request) {
	var raw map[string][][]any
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	err := s.builder.Replace(r.Context(), builderPayload(raw))
	if errors.Is(err, domain.ErrElementNotFound) {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, safeDomainMessage(err))
		return
	}
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// UpsertApps handles PUT /v2/catalog/apps.
func (s *Server) UpsertApps(w http.ResponseWriter, r *http.Request) {
	var req CatalogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if _, err := s.catalog.Upsert(r.Context(), req.toInputs()); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetImage handles GET /v2/feed/images/{hash}.
func (s *Server) GetImage(w http.ResponseWriter, r *http.Request) {
	var hash string
	if err := pathParam(r, "hash", &hash); err != nil || !hashPattern.MatchString(hash) {
		writeError(w, http.StatusNotFound, CodeNotFound, "image not found")
		return
	}

	data, err := s.images.Blob(r.Context(), hash)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.Header().Set("Content-Type", http.DetectContentType(data))
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
