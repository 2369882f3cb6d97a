package records

import (
	"context"
	"database/sql"
	"fmt"
	"slices"

	"github.com/kailas-cloud/feedex/internal/domain/feed"
)

const itemColumns = "id, region, carrier, item_order, item_type, element_id"

// ReplaceRegions replaces the carrier-agnostic items of every region in plan,
// in one transaction. Regions absent from plan and carrier items are untouched.
func (r *Repo) ReplaceRegions(
	ctx context.Context, plan map[int][]feed.Item,
	sync func(ctx context.Context, removed []int64, written []feed.Item) error,
) error {
	regions := make([]int, 0, len(plan))
	for region := range plan {
		regions = append(regions, region)
	}
	slices.Sort(regions)

	return r.writeTx(ctx, func(tx *sql.Tx) error {
		if err := r.lockRegions(ctx, tx, regions); err != nil {
			return err
		}

		var removed []int64
		var written []feed.Item
		for _, region := range regions {
			ids, err := r.deleteRegion(ctx, tx, region)
			if err != nil {
				return err
			}
			removed = append(removed, ids...)

			for _, item := range plan[region] {
				stored, err := r.insertItem(ctx, tx, item)
				if err != nil {
					return err
				}
				written = append(written, stored)
			}
		}

		if sync != nil {
			if err := sync(ctx, removed, written); err != nil {
				return fmt.Errorf("sync replaced regions: %w", err)
			}
		}
		return nil
	})
}

func (r *Repo) deleteRegion(ctx context.Context, tx *sql.Tx, region int) ([]int64, error) {
	rows, err := tx.QueryContext(ctx,
		r.rebind("SELECT id FROM feed_items WHERE region = ? AND carrier IS NULL"), region)
	if err != nil {
		return nil, fmt.Errorf("select region %d items: %w", region, err)
	}
	ids, err := scanIDs(rows)
	if err != nil {
		return nil, fmt.Errorf("scan region %d items: %w", region, err)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	if _, err := tx.ExecContext(ctx,
		r.rebind("DELETE FROM feed_items WHERE region = ? AND carrier IS NULL"), region); err != nil {
		return nil, fmt.Errorf("delete region %d items: %w", region, err)
	}
	return ids, nil
}

func (r *Repo) insertItem(ctx context.Context, tx *sql.Tx, item feed.Item) (feed.Item, error) {
	var carrier sql.NullInt64
	if c := item.Carrier(); c != nil {
		carrier = sql.NullInt64{Int64: int64(*c), Valid: true}
	}

	var id int64
	err := tx.QueryRowContext(ctx,
		r.rebind("INSERT INTO feed_items (region, carrier, item_order, item_type, element_id) VALUES (?, ?, ?, ?, ?) RETURNING id"),
		item.Region(), carrier, item.Order(), string(item.ItemType()), item.ElementID(),
	).Scan(&id)
	if err != nil {
		return feed.Item{}, fmt.Errorf("insert feed item: %w", err)
	}
	return item.WithID(id), nil
}

// deleteElementItems removes every feed item placing the element.
func (r *Repo) deleteElementItems(ctx context.Context, tx *sql.Tx, key feed.ElementKey) ([]int64, error) {
	rows, err := tx.QueryContext(ctx,
		r.rebind("SELECT id FROM feed_items WHERE item_type = ? AND element_id = ?"), string(key.Type), key.ID)
	if err != nil {
		return nil, fmt.Errorf("select items of %s: %w", key, err)
	}
	ids, err := scanIDs(rows)
	if err != nil {
		return nil, fmt.Errorf("scan items of %s: %w", key, err)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	if _, err := tx.ExecContext(ctx,
		r.rebind("DELETE FROM feed_items WHERE item_type = ? AND element_id = ?"), string(key.Type), key.ID); err != nil {
		return nil, fmt.Errorf("delete items of %s: %w", key, err)
	}
	return ids, nil
}

func (r *Repo) listItems(ctx context.Context, q querier) ([]feed.Item, error) {
	rows, err := q.QueryContext(ctx, "SELECT "+itemColumns+" FROM feed_items ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list feed items: %w", err)
	}
	defer rows.Close()

	var items []feed.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan feed item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list feed items: %w", err)
	}
	return items, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(s scanner) (feed.Item, error) {
	var (
		id, elementID int64
		region, order int
		carrier       sql.NullInt64
		itemType      string
	)
	if err := s.Scan(&id, &region, &carrier, &order, &itemType, &elementID); err != nil {
		return feed.Item{}, err
	}
	var c *int
	if carrier.Valid {
		v := int(carrier.Int64)
		c = &v
	}
	return feed.ReconstructItem(id, region, c, order, feed.ItemType(itemType), elementID), nil
}
