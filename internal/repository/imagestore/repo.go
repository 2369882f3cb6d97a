// Package imagestore holds the image job queue and processed image blobs.
package imagestore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/feedex/internal/db"
	"github.com/kailas-cloud/feedex/internal/domain"
	"github.com/kailas-cloud/feedex/internal/domain/image"
)

const (
	// QueueKey is the Redis list image jobs are pushed to.
	QueueKey = domain.KeyPrefix + "images:queue"

	blobPrefix = domain.KeyPrefix + "image:"
)

// store is the consumer interface for image storage.
type store interface {
	Push(ctx context.Context, queue string, payload []byte) error
	Pop(ctx context.Context, queue string, timeout time.Duration) ([]byte, error)
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Repo is the image job queue and blob store.
type Repo struct {
	store store
}

// New creates an image repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// BlobKey returns the storage key of the blob with the given hash.
func BlobKey(hash string) string { return blobPrefix + hash }

// Enqueue pushes j onto the job queue.
func (r *Repo) Enqueue(ctx context.Context, j image.Job) error {
	data, err := j.Encode()
	if err != nil {
		return fmt.Errorf("encode image job: %w", err)
	}
	if err := r.store.Push(ctx, QueueKey, data); err != nil {
		return fmt.Errorf("enqueue image job %s: %w", j.ID, err)
	}
	return nil
}

// Next blocks up to timeout for the oldest job. ok is false when none arrived.
func (r *Repo) Next(ctx context.Context, timeout time.Duration) (j image.Job, ok bool, err error) {
	data, err := r.store.Pop(ctx, QueueKey, timeout)
	if errors.Is(err, db.ErrKeyNotFound) {
		return image.Job{}, false, nil
	}
	if err != nil {
		return image.Job{}, false, fmt.Errorf("pop image job: %w", err)
	}
	j, err = image.Decode(data)
	if err != nil {
		return image.Job{}, false, err
	}
	return j, true, nil
}

// PutBlob stores a processed image under its hash.
func (r *Repo) PutBlob(ctx context.Context, hash string, data []byte) error {
	if err := r.store.Set(ctx, BlobKey(hash), data); err != nil {
		return fmt.Errorf("store image %s: %w", hash, err)
	}
	return nil
}

// Blob loads a processed image.
func (r *Repo) Blob(ctx context.Context, hash string) ([]byte, error) {
	data, err := r.store.Get(ctx, BlobKey(hash))
	if errors.Is(err, db.ErrKeyNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load image %s: %w", hash, err)
	}
	return data, nil
}
