// Package image describes background image processing jobs.
package image

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/kailas-cloud/feedex/internal/domain/feed"
)

// Job asks the image worker to fetch URL and attach it to an element.
type Job struct {
	ID          string        `json:"id"`
	ElementType feed.ItemType `json:"element_type"`
	ElementID   int64         `json:"element_id"`
	URL         string        `json:"url"`
	Attempt     int           `json:"attempt,omitempty"`
}

// NewJob creates a job with a fresh id.
func NewJob(key feed.ElementKey, url string) Job {
	return Job{
		ID:          uuid.NewString(),
		ElementType: key.Type,
		ElementID:   key.ID,
		URL:         url,
	}
}

// ElementKey returns the key of the element the image belongs to.
func (j Job) ElementKey() feed.ElementKey {
	return feed.ElementKey{Type: j.ElementType, ID: j.ElementID}
}

// Retry returns the job for its next attempt.
func (j Job) Retry() Job {
	j.Attempt++
	return j
}

// Encode serializes the job for the queue.
func (j Job) Encode() ([]byte, error) {
	return json.Marshal(j)
}

// Decode parses a queued job.
func Decode(data []byte) (Job, error) {
	var j Job
	if err := json.Unmarshal(data, &j); err != nil {
		return Job{}, fmt.Errorf("decode image job: %w", err)
	}
	if !j.ElementType.IsValid() || j.ElementID <= 0 || j.URL == "" {
		return Job{}, fmt.Errorf("decode image job: incomplete job %q", j.ID)
	}
	return j, nil
}

// Hash returns the content address of an image blob.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])[:16]
}
