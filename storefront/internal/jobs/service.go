package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
)

// Publisher hands a recorded job to the work queue.
type Publisher interface {
	Publish(ctx context.Context, job *Job) error
}

// JobStore is the part of Store the Service needs.
type JobStore interface {
	Create(ctx context.Context, job *Job) error
	Get(ctx context.Context, id uuid.UUID) (*Job, error)
	List(ctx context.Context, sellerID string, limit int) ([]Job, error)
	Fail(ctx context.Context, id uuid.UUID, summary Summary, reason string, at time.Time) error
}

// Service is the storefront's entry point to import jobs.
type Service struct {
	store     JobStore
	publisher Publisher
}

func NewService(store JobStore, publisher Publisher) *Service {
	return &Service{store: store, publisher: publisher}
}

// Enqueue validates the payload, records the job as queued and publishes it.
// A job that cannot be published is marked failed.
func (s *Service) Enqueue(ctx context.Context, pipeline, sellerID string, payload json.RawMessage) (*Job, error) {
	if !slices.Contains(Pipelines, pipeline) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPipeline, pipeline)
	}
	if err := ValidatePayload(pipeline, payload); err != nil {
		return nil, err
	}

	job := NewJob(pipeline, sellerID, payload)
	if err := s.store.Create(ctx, job); err != nil {
		return nil, err
	}
	if err := s.publisher.Publish(ctx, job); err != nil {
		_ = s.store.Fail(context.WithoutCancel(ctx), job.ID, Summary{}, "could not queue job", time.Now().UTC())
		return nil, err
	}
	return job, nil
}

// Get returns one of the seller's jobs. Another seller's job is reported as
// ErrJobNotFound.
func (s *Service) Get(ctx context.Context, sellerID string, id uuid.UUID) (*Job, error) {
	job, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if job.SellerID != sellerID {
		return nil, ErrJobNotFound
	}
	return job, nil
}

func (s *Service) List(ctx context.Context, sellerID string, limit int) ([]Job, error) {
	return s.store.List(ctx, sellerID, limit)
}
