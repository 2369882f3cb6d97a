package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/feedex/internal/database"
	"github.com/kailas-cloud/feedex/internal/domain"
	"github.com/kailas-cloud/feedex/internal/domain/feed"
)

const elementColumns = "id, item_type, slug, kind, body, created_ms, image_url"

// now is replaced in tests.
var now = time.Now

// CreateElement inserts e with its member apps and returns it with its id.
func (r *Repo) CreateElement(
	ctx context.Context, e feed.Element,
	sync func(ctx context.Context, e feed.Element, removed []int64) error,
) (feed.Element, error) {
	body, err := encodeBody(e)
	if err != nil {
		return feed.Element{}, err
	}
	created := now().UTC().Truncate(time.Millisecond)

	var out feed.Element
	err = r.writeTx(ctx, func(tx *sql.Tx) error {
		var id int64
		err := tx.QueryRowContext(ctx,
			r.rebind("INSERT INTO feed_elements (item_type, slug, kind, body, created_ms, image_url) VALUES (?, ?, ?, ?, ?, ?) RETURNING id"),
			string(e.ItemType()), e.Slug(), e.Type(), body, created.UnixMilli(), e.ImageURL(),
		).Scan(&id)
		if err != nil {
			if isUniqueViolation(err) {
				return domain.NewValidation(domain.ErrSlugExists, "%s with slug %q already exists", e.ItemType(), e.Slug())
			}
			return fmt.Errorf("insert element: %w", err)
		}

		out = e.WithID(id, created)
		if err := r.writeApps(ctx, tx, id, e.AppRefs()); err != nil {
			return err
		}
		return syncElement(ctx, sync, out, nil)
	})
	if err != nil {
		return feed.Element{}, err
	}
	return out, nil
}

// UpdateElement replaces the stored header, payload and member apps of e.
// The processed image hash and creation time are kept, and so is the image
// URL unless e carries a new one. A published shelf keeps its carrier and
// region until it is unpublished.
func (r *Repo) UpdateElement(
	ctx context.Context, e feed.Element,
	sync func(ctx context.Context, e feed.Element, removed []int64) error,
) (feed.Element, error) {
	var out feed.Element
	err := r.writeTx(ctx, func(tx *sql.Tx) error {
		current, err := r.lockElement(ctx, tx, e.Key())
		if err != nil {
			return err
		}
		if err := r.checkShelfMove(ctx, tx, current, e); err != nil {
			return err
		}

		next := e.WithID(current.ID(), current.Created()).WithImageHash(current.ImageHash())
		if next.ImageURL() == "" {
			next = next.WithImageURL(current.ImageURL())
		}
		body, err := encodeBody(next)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			r.rebind("UPDATE feed_elements SET slug = ?, kind = ?, body = ?, image_url = ? WHERE id = ? AND item_type = ?"),
			next.Slug(), next.Type(), body, next.ImageURL(), next.ID(), string(next.ItemType()),
		); err != nil {
			if isUniqueViolation(err) {
				return domain.NewValidation(domain.ErrSlugExists, "%s with slug %q already exists", e.ItemType(), e.Slug())
			}
			return fmt.Errorf("update element %s: %w", e.Key(), err)
		}

		if _, err := tx.ExecContext(ctx, r.rebind("DELETE FROM feed_element_apps WHERE element_id = ?"), next.ID()); err != nil {
			return fmt.Errorf("clear apps of %s: %w", e.Key(), err)
		}
		if err := r.writeApps(ctx, tx, next.ID(), next.AppRefs()); err != nil {
			return err
		}
		out = next
		return syncElement(ctx, sync, out, nil)
	})
	if err != nil {
		return feed.Element{}, err
	}
	return out, nil
}

// SetImageHash records hash as the processed image of the element at key.
// It returns domain.ErrImageSuperseded when the element's image URL is no
// longer url. The rest of the element is written back as stored.
func (r *Repo) SetImageHash(
	ctx context.Context, key feed.ElementKey, url, hash string,
	sync func(ctx context.Context, e feed.Element, removed []int64) error,
) (feed.Element, error) {
	var out feed.Element
	err := r.writeTx(ctx, func(tx *sql.Tx) error {
		current, err := r.lockElement(ctx, tx, key)
		if err != nil {
			return err
		}
		if current.ImageURL() != url {
			return domain.ErrImageSuperseded
		}

		out = current.WithImageHash(hash)
		body, err := encodeBody(out)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			r.rebind("UPDATE feed_elements SET body = ? WHERE id = ? AND item_type = ?"),
			body, key.ID, string(key.Type)); err != nil {
			return fmt.Errorf("set image of %s: %w", key, err)
		}
		return syncElement(ctx, sync, out, nil)
	})
	if err != nil {
		return feed.Element{}, err
	}
	return out, nil
}

// DeleteElement removes the element, its member apps and every feed item placing it.
func (r *Repo) DeleteElement(
	ctx context.Context, key feed.ElementKey,
	sync func(ctx context.Context, e feed.Element, removed []int64) error,
) error {
	return r.writeTx(ctx, func(tx *sql.Tx) error {
		e, err := r.getElement(ctx, tx, key)
		if err != nil {
			return err
		}
		removed, err := r.deleteElementItems(ctx, tx, key)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, r.rebind("DELETE FROM feed_element_apps WHERE element_id = ?"), key.ID); err != nil {
			return fmt.Errorf("delete apps of %s: %w", key, err)
		}
		if _, err := tx.ExecContext(ctx,
			r.rebind("DELETE FROM feed_elements WHERE id = ? AND item_type = ?"), key.ID, string(key.Type)); err != nil {
			return fmt.Errorf("delete element %s: %w", key, err)
		}
		return syncElement(ctx, sync, e, removed)
	})
}

func syncElement(
	ctx context.Context, sync func(ctx context.Context, e feed.Element, removed []int64) error,
	e feed.Element, removed []int64,
) error {
	if sync == nil {
		return nil
	}
	if err := sync(ctx, e, removed); err != nil {
		return fmt.Errorf("sync element %s: %w", e.Key(), err)
	}
	return nil
}

// checkShelfMove rejects a carrier or region change of a published shelf.
// Its feed item would otherwise stay in the old feed.
func (r *Repo) checkShelfMove(ctx context.Context, tx *sql.Tx, current, next feed.Element) error {
	was, ok := current.Content().(feed.ShelfContent)
	if !ok {
		return nil
	}
	is, ok := next.Content().(feed.ShelfContent)
	if !ok || (was.Carrier == is.Carrier && was.Region == is.Region) {
		return nil
	}
	var published int
	if err := tx.QueryRowContext(ctx,
		r.rebind("SELECT COUNT(*) FROM feed_items WHERE item_type = ? AND element_id = ?"),
		string(feed.TypeShelf), current.ID(),
	).Scan(&published); err != nil {
		return fmt.Errorf("check published shelf %d: %w", current.ID(), err)
	}
	if published > 0 {
		return domain.NewValidation(domain.ErrInvalidPayload,
			"shelf %d is published; unpublish it before changing its carrier or region", current.ID())
	}
	return nil
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (r *Repo) getElement(ctx context.Context, q querier, key feed.ElementKey) (feed.Element, error) {
	return r.loadElement(ctx, q, key, "")
}

// lockElement is getElement holding the element row until commit. The lock
// leaves foreign key checks of feed item inserts unblocked.
func (r *Repo) lockElement(ctx context.Context, tx *sql.Tx, key feed.ElementKey) (feed.Element, error) {
	if r.dialect == database.Postgres {
		return r.loadElement(ctx, tx, key, " FOR NO KEY UPDATE")
	}
	return r.loadElement(ctx, tx, key, "")
}

func (r *Repo) loadElement(ctx context.Context, q querier, key feed.ElementKey, lock string) (feed.Element, error) {
	row := q.QueryRowContext(ctx,
		r.rebind("SELECT "+elementColumns+" FROM feed_elements WHERE id = ? AND item_type = ?"+lock), key.ID, string(key.Type))
	e, err := scanElement(row)
	if errors.Is(err, sql.ErrNoRows) {
		return feed.Element{}, domain.ErrElementNotFound
	}
	if err != nil {
		return feed.Element{}, fmt.Errorf("get element %s: %w", key, err)
	}

	rows, err := q.QueryContext(ctx,
		r.rebind("SELECT element_id, app_id, group_name FROM feed_element_apps WHERE element_id = ? ORDER BY position"), key.ID)
	if err != nil {
		return feed.Element{}, fmt.Errorf("get apps of %s: %w", key, err)
	}
	refs, err := scanRefs(rows)
	if err != nil {
		return feed.Element{}, fmt.Errorf("scan apps of %s: %w", key, err)
	}
	return e.WithAppRefs(refs[key.ID]), nil
}

// MissingElements returns the keys with no stored element, in input order.
func (r *Repo) MissingElements(ctx context.Context, keys []feed.ElementKey) ([]feed.ElementKey, error) {
	byType := make(map[feed.ItemType][]any)
	for _, k := range keys {
		byType[k.Type] = append(byType[k.Type], k.ID)
	}

	found := make(map[feed.ElementKey]bool, len(keys))
	for _, t := range feed.ItemTypes {
		ids := byType[t]
		if len(ids) == 0 {
			continue
		}
		args := append([]any{string(t)}, ids...)
		rows, err := r.db.QueryContext(ctx,
			r.rebind("SELECT id FROM feed_elements WHERE item_type = ? AND id IN ("+placeholders(len(ids))+")"), args...)
		if err != nil {
			return nil, fmt.Errorf("check %s elements: %w", t, err)
		}
		existing, err := scanIDs(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s elements: %w", t, err)
		}
		for _, id := range existing {
			found[feed.ElementKey{Type: t, ID: id}] = true
		}
	}

	var missing []feed.ElementKey
	for _, k := range keys {
		if !found[k] {
			missing = append(missing, k)
		}
	}
	return missing, nil
}

func (r *Repo) listElements(ctx context.Context, q querier) ([]feed.Element, error) {
	rows, err := q.QueryContext(ctx, "SELECT "+elementColumns+" FROM feed_elements ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list elements: %w", err)
	}
	var elements []feed.Element
	for rows.Next() {
		e, err := scanElement(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan element: %w", err)
		}
		elements = append(elements, e)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list elements: %w", err)
	}

	appRows, err := q.QueryContext(ctx,
		"SELECT element_id, app_id, group_name FROM feed_element_apps ORDER BY element_id, position")
	if err != nil {
		return nil, fmt.Errorf("list element apps: %w", err)
	}
	refs, err := scanRefs(appRows)
	if err != nil {
		return nil, fmt.Errorf("scan element apps: %w", err)
	}
	for i, e := range elements {
		elements[i] = e.WithAppRefs(refs[e.ID()])
	}
	return elements, nil
}

func (r *Repo) writeApps(ctx context.Context, tx *sql.Tx, elementID int64, refs []feed.AppRef) error {
	for pos, ref := range refs {
		if _, err := tx.ExecContext(ctx,
			r.rebind("INSERT INTO feed_element_apps (element_id, position, app_id, group_name) VALUES (?, ?, ?, ?)"),
			elementID, pos, ref.ID, ref.Group); err != nil {
			return fmt.Errorf("insert app %d of element %d: %w", ref.ID, elementID, err)
		}
	}
	return nil
}

// encodeBody serializes the payload without member apps; those live in feed_element_apps.
func encodeBody(e feed.Element) (string, error) {
	body, err := feed.EncodeContent(e.WithAppRefs(nil).Content())
	if err != nil {
		return "", fmt.Errorf("encode element: %w", err)
	}
	return string(body), nil
}

func scanElement(s scanner) (feed.Element, error) {
	var (
		id        int64
		itemType  string
		slug      string
		kind      string
		body      string
		createdMS int64
		imageURL  string
	)
	if err := s.Scan(&id, &itemType, &slug, &kind, &body, &createdMS, &imageURL); err != nil {
		return feed.Element{}, err
	}
	t, err := feed.ParseItemType(itemType)
	if err != nil {
		return feed.Element{}, err
	}
	content, err := feed.DecodeContent(t, []byte(body))
	if err != nil {
		return feed.Element{}, err
	}
	e := feed.ReconstructElement(id, slug, kind, time.UnixMilli(createdMS).UTC(), content)
	return e.WithImageURL(imageURL), nil
}

func scanRefs(rows *sql.Rows) (map[int64][]feed.AppRef, error) {
	defer rows.Close()
	refs := make(map[int64][]feed.AppRef)
	for rows.Next() {
		var (
			elementID int64
			ref       feed.AppRef
		)
		if err := rows.Scan(&elementID, &ref.ID, &ref.Group); err != nil {
			return nil, err
		}
		refs[elementID] = append(refs[elementID], ref)
	}
	return refs, rows.Err()
}
