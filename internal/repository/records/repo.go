// Package records is the relational source of truth for feed items and elements.
package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lib/pq"

	"github.com/kailas-cloud/feedex/internal/database"
)

// Repo implements the record store contracts of the builder, element and reindex usecases.
//
// Write methods take a sync callback that runs inside the transaction before
// commit; an error from it rolls the transaction back. Item callbacks receive
// the deleted feed item ids and the inserted items, element callbacks the
// element and the feed item ids deleted along with it.
type Repo struct {
	db      *sql.DB
	dialect database.Dialect
}

// New creates a record store repository.
func New(db *sql.DB, d database.Dialect) *Repo {
	return &Repo{db: db, dialect: d}
}

// Ping checks record store connectivity.
func (r *Repo) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping records: %w", err)
	}
	return nil
}

// inTx runs fn in a transaction and commits when fn succeeds.
func (r *Repo) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// indexLockKey is the PostgreSQL advisory lock guarding the search index.
// Writers hold it shared while they sync; Snapshot holds it exclusively.
// Region locks use the region id, which never reaches this value.
const indexLockKey int64 = 0x66656564

// writeTx is inTx for writes that sync the index. SQLite transactions
// already hold the database write lock.
func (r *Repo) writeTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		if r.dialect == database.Postgres {
			if _, err := tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock_shared($1)", indexLockKey); err != nil {
				return fmt.Errorf("lock index: %w", err)
			}
		}
		return fn(tx)
	})
}

// lockRegions serializes writers of the same regions. Regions must be sorted.
// SQLite transactions already hold the database write lock.
func (r *Repo) lockRegions(ctx context.Context, tx *sql.Tx, regions []int) error {
	if r.dialect != database.Postgres {
		return nil
	}
	for _, region := range regions {
		if _, err := tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", int64(region)); err != nil {
			return fmt.Errorf("lock region %d: %w", region, err)
		}
	}
	return nil
}

// rebind rewrites ? placeholders to $n for PostgreSQL.
func (r *Repo) rebind(query string) string {
	if r.dialect != database.Postgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, c := range query {
		if c == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func scanIDs(rows *sql.Rows) ([]int64, error) {
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
