// Package chi exposes the feed and editorial HTTP API on a chi router.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	gochi "github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/feedex/internal/domain"
	healthuc "github.com/kailas-cloud/feedex/internal/usecase/health"
)

// ErrorCode is a machine-readable error category.
type ErrorCode string

const (
	CodeBadRequest       ErrorCode = "bad_request"
	CodeValidationFailed ErrorCode = "validation_failed"
	CodeNotFound         ErrorCode = "not_found"
	CodeFeedEmpty        ErrorCode = "feed_empty"
	CodeUnauthorized     ErrorCode = "unauthorized"
	CodeRateLimited      ErrorCode = "rate_limited"
	CodeInternalError    ErrorCode = "internal_error"
)

// ErrorResponse is the JSON body of every error reply.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

const (
	defaultPageSize = 25
	defaultMaxPage  = 100
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the HTTP API.
type Server struct {
	feed          FeedService
	elements      ElementService
	builder       BuilderService
	catalog       CatalogService
	images        ImageStore
	health        HealthChecker
	logger        *zap.Logger
	pageSize      int
	maxPageSize   int
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	feed FeedService,
	elements ElementService,
	builder BuilderService,
	catalog CatalogService,
	images ImageStore,
	health HealthChecker,
	logger *zap.Logger,
) *Server {
	s := &Server{
		feed:        feed,
		elements:    elements,
		builder:     builder,
		catalog:     catalog,
		images:      images,
		health:      health,
		logger:      logger,
		pageSize:    defaultPageSize,
		maxPageSize: defaultMaxPage,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrFeedEmpty, http.StatusNotFound, CodeFeedEmpty),
		sentinelHandler(domain.ErrElementNotFound, http.StatusNotFound, CodeNotFound),
		sentinelHandler(domain.ErrShelfNotFound, http.StatusNotFound, CodeNotFound),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, CodeNotFound),
		sentinelHandler(domain.ErrSlugExists, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrAppNotFound, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrInvalidRegion, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrInvalidCarrier, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrInvalidDevice, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrInvalidItemType, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrInvalidSchema, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrInvalidPayload, http.StatusBadRequest, CodeBadRequest),
	}
	return s
}

// WithPagination configures the default and maximum page sizes.
func (s *Server) WithPagination(pageSize, maxPageSize int) *Server {
	if pageSize > 0 {
		s.pageSize = pageSize
	}
	if maxPageSize >= s.pageSize {
		s.maxPageSize = maxPageSize
	}
	return s
}

// Routes registers every endpoint on r. auth guards the editorial and
// catalog routes; the feed, element detail, images, health and metrics
// stay public.
func (s *Server) Routes(r gochi.Router, auth func(http.Handler) http.Handler) {
	r.Get("/health", s.HealthCheck)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v2", func(r gochi.Router) {
		r.Get("/feed/get", s.GetFeed)
		r.Get("/feed/elements/{item_type}/{slug}", s.GetElement)
		r.Get("/feed/images/{hash}", s.GetImage)

		r.Group(func(r gochi.Router) {
			r.Use(auth)

			r.Get("/feed/elements/search", s.SearchElements)
			r.Get("/feed/elements/{item_type}", s.ListElements)
			r.Put("/feed/builder", s.ReplaceFeeds)

			r.Put("/feed/shelves/{id}/publish", s.PublishShelf)
			r.Delete("/feed/shelves/{id}/publish", s.UnpublishShelf)

			r.Post("/feed/{plural}", s.CreateElement)
			r.Put("/feed/{plural}/{id}", s.UpdateElement)
			r.Delete("/feed/{plural}/{id}", s.DeleteElement)

			r.Put("/catalog/apps", s.UpsertApps)
		})
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, healthResponse{Status: string(report.Status), Checks: report.Checks})
}

type healthResponse struct {
	Status string                          `json:"status"`
	Checks map[string]healthuc.CheckResult `json:"checks"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

var safeSentinels = []error{
	domain.ErrFeedEmpty,
	domain.ErrElementNotFound,
	domain.ErrShelfNotFound,
	domain.ErrNotFound,
	domain.ErrSlugExists,
	domain.ErrAppNotFound,
	domain.ErrInvalidRegion,
	domain.ErrInvalidCarrier,
	domain.ErrInvalidDevice,
	domain.ErrInvalidItemType,
	domain.ErrInvalidSchema,
	domain.ErrInvalidPayload,
}

// safeDomainMessage returns the client-facing text of err. Validation
// messages are passed through; everything else is reduced to its sentinel.
func safeDomainMessage(err error) string {
	var ve *domain.ValidationError
	if errors.As(err, &ve) && ve.Message != "" {
		return ve.Message
	}
	for _, s := range safeSentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}

// handleParamError reports a rejected request parameter. Domain validation
// errors keep their mapping; binding errors become 400.
func (s *Server) handleParamError(w http.ResponseWriter, err error) {
	for _, sentinel := range safeSentinels {
		if errors.Is(err, sentinel) {
			s.handleDomainError(w, err)
			return
		}
	}
	writeError(w, http.StatusBadRequest, CodeBadRequest, err.Error())
}
