package redis

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/feedex/internal/db"
	"github.com/kailas-cloud/feedex/internal/domain/search/score"
)

// Search runs a filtered FT.SEARCH. Scored queries fetch a candidate window,
// rank it with the query's score functions and paginate in memory.
func (s *Store) Search(ctx context.Context, q *db.SearchQuery) (*db.SearchResult, error) {
	if q.Index == "" {
		return nil, fmt.Errorf("index name is required")
	}
	if q.Offset < 0 || q.Limit < 0 {
		return nil, fmt.Errorf("offset and limit must be non-negative")
	}

	if !q.Scored() {
		return s.searchPage(ctx, q, q.Offset, q.Limit)
	}

	window := q.Window
	if window <= 0 {
		window = db.DefaultScoreWindow
	}
	res, err := s.searchPage(ctx, q, 0, window)
	if err != nil {
		return nil, err
	}

	rank(res.Entries, q.Functions)
	res.Entries = paginate(res.Entries, q.Offset, q.Limit)
	return res, nil
}

func (s *Store) searchPage(ctx context.Context, q *db.SearchQuery, offset, limit int) (*db.SearchResult, error) {
	cmd := s.b().Arbitrary("FT.SEARCH").Args(buildSearchArgs(q, offset, limit)...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}
	return parseListResult(raw)
}

func buildSearchArgs(q *db.SearchQuery, offset, limit int) []string {
	args := []string{q.Index, buildQuery(q.Filter)}

	if len(q.ReturnFields) > 0 {
		args = append(args, "RETURN", strconv.Itoa(len(q.ReturnFields)))
		args = append(args, q.ReturnFields...)
	}

	if q.SortBy != "" {
		dir := "ASC"
		if q.SortDesc {
			dir = "DESC"
		}
		args = append(args, "SORTBY", q.SortBy, dir)
	}

	return append(args,
		"LIMIT", strconv.Itoa(offset), strconv.Itoa(limit),
		"DIALECT", "2",
	)
}

// rank scores entries and stably sorts them by descending score,
// so equal scores keep the backend order.
func rank(entries []db.SearchEntry, fns []score.Function) {
	for i := range entries {
		entries[i].Score = score.Combine(fns, entries[i].Fields)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})
}

func paginate(entries []db.SearchEntry, offset, limit int) []db.SearchEntry {
	if offset >= len(entries) {
		return []db.SearchEntry{}
	}
	end := len(entries)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return entries[offset:end]
}

// --- Result parsing ---

func parseListResult(raw []rueidis.RedisMessage) (*db.SearchResult, error) {
	if len(raw) == 0 {
		return &db.SearchResult{}, nil
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}
	if total == 0 {
		return &db.SearchResult{}, nil
	}

	entries := make([]db.SearchEntry, 0, len(raw)/2)
	// 2-stride: [total, key1, fields1, key2, fields2, ...]
	for i := 1; i+1 < len(raw); i += 2 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}

		fields, err := raw[i+1].ToArray()
		if err != nil {
			continue
		}

		entries = append(entries, db.SearchEntry{
			Key:    key,
			Fields: parseFieldPairs(fields),
		})
	}

	return &db.SearchResult{Total: int(total), Entries: entries}, nil
}

func parseFieldPairs(fields []rueidis.RedisMessage) map[string]string {
	m := make(map[string]string, len(fields)/2)
	for j := 0; j+1 < len(fields); j += 2 {
		name, err := fields[j].ToString()
		if err != nil {
			continue
		}
		value, err := fields[j+1].ToString()
		if err != nil {
			continue
		}
		m[name] = value
	}
	return m
}
