package records

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kailas-cloud/feedex/internal/database"
	"github.com/kailas-cloud/feedex/internal/domain/feed"
)

// Snapshot loads every feed item and element and passes them to fn. No
// index-syncing write commits between the load and fn's return, so fn can
// rebuild the index from the snapshot without losing a concurrent write.
// An error from fn is returned as is.
func (r *Repo) Snapshot(
	ctx context.Context,
	fn func(ctx context.Context, items []feed.Item, elements []feed.Element) error,
) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		if r.dialect == database.Postgres {
			if _, err := tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", indexLockKey); err != nil {
				return fmt.Errorf("lock index: %w", err)
			}
		}
		items, err := r.listItems(ctx, tx)
		if err != nil {
			return err
		}
		elements, err := r.listElements(ctx, tx)
		if err != nil {
			return err
		}
		return fn(ctx, items, elements)
	})
}
