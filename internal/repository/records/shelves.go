package records

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kailas-cloud/feedex/internal/domain"
	"github.com/kailas-cloud/feedex/internal/domain/feed"
)

// PublishShelf makes the shelf the one published shelf of its carrier and
// region, placed first.
func (r *Repo) PublishShelf(
	ctx context.Context, shelfID int64,
	sync func(ctx context.Context, removed []int64, written []feed.Item) error,
) (feed.Item, error) {
	key := feed.ElementKey{Type: feed.TypeShelf, ID: shelfID}

	var out feed.Item
	err := r.writeTx(ctx, func(tx *sql.Tx) error {
		e, err := r.lockElement(ctx, tx, key)
		if err != nil {
			return err
		}
		shelf, ok := e.Content().(feed.ShelfContent)
		if !ok {
			return fmt.Errorf("element %s is not a shelf", key)
		}
		if err := r.lockRegions(ctx, tx, []int{shelf.Region}); err != nil {
			return err
		}

		rows, err := tx.QueryContext(ctx,
			r.rebind("SELECT id FROM feed_items WHERE item_type = ? AND region = ? AND carrier = ?"),
			string(feed.TypeShelf), shelf.Region, shelf.Carrier)
		if err != nil {
			return fmt.Errorf("select published shelves: %w", err)
		}
		removed, err := scanIDs(rows)
		if err != nil {
			return fmt.Errorf("scan published shelves: %w", err)
		}
		if len(removed) > 0 {
			if _, err := tx.ExecContext(ctx,
				r.rebind("DELETE FROM feed_items WHERE item_type = ? AND region = ? AND carrier = ?"),
				string(feed.TypeShelf), shelf.Region, shelf.Carrier); err != nil {
				return fmt.Errorf("delete published shelves: %w", err)
			}
		}

		carrier := shelf.Carrier
		item, err := feed.NewItem(shelf.Region, &carrier, 0, feed.TypeShelf, shelfID)
		if err != nil {
			return domain.NewValidation(domain.ErrInvalidPayload, "%s", err)
		}
		out, err = r.insertItem(ctx, tx, item)
		if err != nil {
			return err
		}

		if sync != nil {
			if err := sync(ctx, removed, []feed.Item{out}); err != nil {
				return fmt.Errorf("sync published shelf: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return feed.Item{}, err
	}
	return out, nil
}

// UnpublishShelf removes the shelf from its feed.
func (r *Repo) UnpublishShelf(
	ctx context.Context, shelfID int64,
	sync func(ctx context.Context, removed []int64, written []feed.Item) error,
) error {
	key := feed.ElementKey{Type: feed.TypeShelf, ID: shelfID}
	return r.writeTx(ctx, func(tx *sql.Tx) error {
		if _, err := r.getElement(ctx, tx, key); err != nil {
			return err
		}
		removed, err := r.deleteElementItems(ctx, tx, key)
		if err != nil {
			return err
		}
		if len(removed) == 0 {
			return domain.ErrShelfNotFound
		}
		if sync != nil {
			if err := sync(ctx, removed, nil); err != nil {
				return fmt.Errorf("sync unpublished shelf: %w", err)
			}
		}
		return nil
	})
}
