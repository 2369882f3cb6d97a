// Package image downloads, validates and stores element background images.
package image

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	stdimage "image"
	_ "image/gif"  // register decoder
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder
	"io"
	"net/http"
	"time"

	"github.com/doyensec/safeurl"
	"go.uber.org/zap"

	"github.com/kailas-cloud/feedex/internal/domain"
	domfeed "github.com/kailas-cloud/feedex/internal/domain/feed"
	domimage "github.com/kailas-cloud/feedex/internal/domain/image"
	"github.com/kailas-cloud/feedex/internal/metrics"
	"github.com/kailas-cloud/feedex/internal/version"
)

var (
	// ErrInvalidImage signals a payload that is not a supported image.
	ErrInvalidImage = errors.New("invalid image")
	// ErrTooLarge signals a payload over the size or dimension cap.
	ErrTooLarge = errors.New("image too large")
	// ErrFetch signals an unusable upstream response.
	ErrFetch = errors.New("image fetch failed")
)

// Queue is the image job queue and blob store.
type Queue interface {
	Next(ctx context.Context, timeout time.Duration) (j domimage.Job, ok bool, err error)
	Enqueue(ctx context.Context, j domimage.Job) error
	PutBlob(ctx context.Context, hash string, data []byte) error
}

// Records stores processed image hashes.
type Records interface {
	SetImageHash(
		ctx context.Context, key domfeed.ElementKey, url, hash string,
		sync func(ctx context.Context, e domfeed.Element, removed []int64) error,
	) (domfeed.Element, error)
}

// Indexer rewrites element documents.
type Indexer interface {
	SyncElement(ctx context.Context, e domfeed.Element, removed []int64) error
}

// Doer performs HTTP requests.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config holds worker limits.
type Config struct {
	MaxBytes      int64
	MaxDimensions int
	PollTimeout   time.Duration
}

// Worker consumes image jobs until its context ends.
type Worker struct {
	queue   Queue
	records Records
	index   Indexer
	client  Doer
	cfg     Config
	logger  *zap.Logger
	backoff time.Duration
}

// New creates an image worker.
func New(queue Queue, records Records, index Indexer, client Doer, cfg Config, logger *zap.Logger) *Worker {
	return &Worker{
		queue:   queue,
		records: records,
		index:   index,
		client:  client,
		cfg:     cfg,
		logger:  logger.Named("image_worker"),
		backoff: time.Second,
	}
}

// NewSafeClient returns an HTTP client limited to public http/https hosts on ports 80 and 443.
func NewSafeClient(timeout time.Duration) *http.Client {
	config := safeurl.GetConfigBuilder().
		SetTimeout(timeout).
		SetAllowedSchemes("http", "https").
		SetAllowedPorts(80, 443).
		Build()
	return safeurl.Client(config).Client
}

// Run processes jobs until ctx is canceled.
func (w *Worker) Run(ctx context.Context) {
	w.logger.Info("image worker started")
	defer w.logger.Info("image worker stopped")

	for ctx.Err() == nil {
		job, ok, err := w.queue.Next(ctx, w.cfg.PollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			w.logger.Warn("image queue unavailable", zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(w.backoff):
			}
			continue
		}
		if ok {
			w.Process(ctx, job)
		}
	}
}

// Process handles one job. A transient failure is requeued once.
func (w *Worker) Process(ctx context.Context, job domimage.Job) {
	log := w.logger.With(
		zap.String("job_id", job.ID),
		zap.String("element", job.ElementKey().String()),
		zap.Int("attempt", job.Attempt),
	)

	hash, err := w.handle(ctx, job)
	if err == nil {
		metrics.ImageJobsTotal.WithLabelValues("ok").Inc()
		log.Info("image stored", zap.String("hash", hash))
		return
	}
	if errors.Is(err, domain.ErrImageSuperseded) {
		metrics.ImageJobsTotal.WithLabelValues("superseded").Inc()
		log.Info("image job superseded by a newer upload")
		return
	}

	if job.Attempt == 0 && retryable(err) {
		if qerr := w.queue.Enqueue(ctx, job.Retry()); qerr == nil {
			metrics.ImageJobsTotal.WithLabelValues("retried").Inc()
			log.Warn("image job requeued", zap.Error(err))
			return
		}
	}
	metrics.ImageJobsTotal.WithLabelValues("failed").Inc()
	log.Error("image job failed", zap.Error(err))
}

func (w *Worker) handle(ctx context.Context, job domimage.Job) (string, error) {
	data, err := w.download(ctx, job.URL)
	if err != nil {
		return "", err
	}
	if _, err := Validate(data, w.cfg.MaxDimensions); err != nil {
		return "", err
	}

	hash := domimage.Hash(data)
	if err := w.queue.PutBlob(ctx, hash, data); err != nil {
		return "", err
	}
	metrics.ImageBytesTotal.Add(float64(len(data)))

	if _, err := w.records.SetImageHash(ctx, job.ElementKey(), job.URL, hash, w.index.SyncElement); err != nil {
		return "", fmt.Errorf("record image: %w", err)
	}
	return hash, nil
}

func (w *Worker) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidImage, err)
	}
	req.Header.Set("User-Agent", version.UserAgent())
	resp, err := w.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &statusError{code: resp.StatusCode}
	}
	if resp.ContentLength > w.cfg.MaxBytes {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooLarge, resp.ContentLength)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, w.cfg.MaxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	if int64(len(data)) > w.cfg.MaxBytes {
		return nil, fmt.Errorf("%w: over %d bytes", ErrTooLarge, w.cfg.MaxBytes)
	}
	return data, nil
}

// Validate checks that data is a png, jpeg or gif within maxDim on each side.
func Validate(data []byte, maxDim int) (string, error) {
	cfg, format, err := stdimage.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidImage, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return "", fmt.Errorf("%w: empty %s", ErrInvalidImage, format)
	}
	if maxDim > 0 && (cfg.Width > maxDim || cfg.Height > maxDim) {
		return "", fmt.Errorf("%w: %dx%d", ErrTooLarge, cfg.Width, cfg.Height)
	}
	return format, nil
}

type statusError struct {
	code int
}

func (e *statusError) Error() string { return fmt.Sprintf("%s: upstream status %d", ErrFetch, e.code) }

func (e *statusError) Unwrap() error { return ErrFetch }

// retryable reports whether a second attempt could succeed.
func retryable(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.code >= 500 || se.code == http.StatusTooManyRequests
	}
	switch {
	case errors.Is(err, ErrInvalidImage),
		errors.Is(err, ErrTooLarge),
		errors.Is(err, domain.ErrElementNotFound),
		errors.Is(err, domain.ErrImageSuperseded):
		return false
	}
	return true
}
