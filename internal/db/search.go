package db

import (
	"github.com/kailas-cloud/feedex/internal/domain/search/filter"
	"github.com/kailas-cloud/feedex/internal/domain/search/score"
)

// DefaultScoreWindow is how many candidates are fetched for client-side scoring.
const DefaultScoreWindow = 1000

// SearchQuery is the input for a filtered, optionally scored, paginated search.
//
// Without Functions the backend sorts (SortBy) and paginates. With Functions,
// up to Window candidates are scored by score.Combine, stably sorted by
// descending score and then sliced by Offset/Limit.
type SearchQuery struct {
	Index        string
	Filter       filter.Expression
	Functions    []score.Function
	SortBy       string
	SortDesc     bool
	Offset       int
	Limit        int
	Window       int
	ReturnFields []string
}

// Scored reports whether the query ranks hits client-side.
func (q *SearchQuery) Scored() bool { return len(q.Functions) > 0 }

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}
