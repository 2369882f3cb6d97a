package chi

import (
	"fmt"
	"net/http"

	gochi "github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// queryParam binds an optional form-style query parameter into dest.
func queryParam(r *http.Request, name string, dest any) error {
	if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), dest); err != nil {
		return fmt.Errorf("invalid format for parameter %s: %w", name, err)
	}
	return nil
}

// pathParam binds a required simple-style path parameter into dest.
func pathParam(r *http.Request, name string, dest any) error {
	err := runtime.BindStyledParameterWithOptions("simple", name, gochi.URLParam(r, name), dest,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Required: true})
	if err != nil {
		return fmt.Errorf("invalid format for parameter %s: %w", name, err)
	}
	return nil
}

// pageParams reads limit and offset. A missing limit uses the default page
// size; limits above the maximum are clamped.
func (s *Server) pageParams(r *http.Request) (offset, limit int, err error) {
	var lim, off *int
	if err := queryParam(r, "limit", &lim); err != nil {
		return 0, 0, err
	}
	if err := queryParam(r, "offset", &off); err != nil {
		return 0, 0, err
	}

	limit = s.pageSize
	if lim != nil {
		if *lim <= 0 {
			return 0, 0, fmt.Errorf("limit must be positive")
		}
		limit = min(*lim, s.maxPageSize)
	}
	if off != nil {
		if *off < 0 {
			return 0, 0, fmt.Errorf("offset must not be negative")
		}
		offset = *off
	}
	return offset, limit, nil
}

// Meta is the pagination block of list responses.
type Meta struct {
	Limit      int     `json:"limit"`
	Offset     int     `json:"offset"`
	TotalCount int     `json:"total_count"`
	Next       *string `json:"next"`
	Previous   *string `json:"previous"`
}

// newMeta describes a page of total results. Next and Previous repeat the
// request path and query with the offset moved by one page.
func newMeta(r *http.Request, total, offset, limit int) Meta {
	m := Meta{Limit: limit, Offset: offset, TotalCount: total}
	if offset+limit < total {
		m.Next = pageURL(r, offset+limit, limit)
	}
	if offset > 0 {
		m.Previous = pageURL(r, max(offset-limit, 0), limit)
	}
	return m
}

func pageURL(r *http.Request, offset, limit int) *string {
	q := r.URL.Query()
	q.Set("limit", fmt.Sprint(limit))
	q.Set("offset", fmt.Sprint(offset))
	u := r.URL.Path + "?" + q.Encode()
	return &u
}
