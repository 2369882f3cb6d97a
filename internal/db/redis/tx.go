package redis

import (
	"context"
	"fmt"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/feedex/internal/db"
)

// Apply deletes and writes hashes in one MULTI/EXEC block, so readers never
// observe a partially applied change.
func (s *Store) Apply(ctx context.Context, dels []string, sets []db.HashSetItem) error {
	if len(dels) == 0 && len(sets) == 0 {
		return nil
	}

	cmds := make([]rueidis.Completed, 0, len(dels)+len(sets)*2+2)
	cmds = append(cmds, s.b().Multi().Build())
	for _, key := range dels {
		cmds = append(cmds, s.b().Del().Key(key).Build())
	}
	for _, item := range sets {
		// HSET merges fields; clear stale ones first so optional fields (e.g. carrier) disappear.
		cmds = append(cmds, s.b().Del().Key(item.Key).Build(), s.hset(item.Key, item.Fields))
	}
	cmds = append(cmds, s.b().Exec().Build())

	results := s.client.DoMulti(ctx, cmds...)
	for i, res := range results[:len(results)-1] {
		if err := res.Error(); err != nil {
			return &db.Error{Op: db.OpExec, Err: fmt.Errorf("command %d: %w", i, err)}
		}
	}

	exec, err := results[len(results)-1].ToArray()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return &db.Error{Op: db.OpExec, Err: db.ErrTxAborted}
		}
		return &db.Error{Op: db.OpExec, Err: err}
	}
	for i, msg := range exec {
		if err := msg.Error(); err != nil {
			return &db.Error{Op: db.OpExec, Err: fmt.Errorf("queued command %d: %w", i, err)}
		}
	}
	return nil
}
