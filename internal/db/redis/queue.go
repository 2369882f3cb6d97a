package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/feedex/internal/db"
)

// Push appends a payload to the head of a list queue (LPUSH).
func (s *Store) Push(ctx context.Context, queue string, payload []byte) error {
	cmd := s.b().Lpush().Key(queue).Element(string(payload)).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpLPush, Err: err}
	}
	return nil
}

// Pop takes the oldest payload from a list queue, blocking up to timeout (BRPOP).
func (s *Store) Pop(ctx context.Context, queue string, timeout time.Duration) ([]byte, error) {
	cmd := s.b().Brpop().Key(queue).Timeout(timeout.Seconds()).Build()
	pair, err := s.do(ctx, cmd).AsStrSlice()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, db.ErrKeyNotFound
		}
		return nil, &db.Error{Op: db.OpBRPop, Err: err}
	}
	// [queue, payload]
	if len(pair) != 2 {
		return nil, &db.Error{Op: db.OpBRPop, Err: fmt.Errorf("unexpected reply length %d", len(pair))}
	}
	return []byte(pair[1]), nil
}
