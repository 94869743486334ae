// Package jobs runs the CSV import pipelines: job records in Postgres, a
// RabbitMQ work queue, payload contracts and the row parsers.
package jobs

import (
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Active reports whether the job has not finished yet.
func (s Status) Active() bool {
	return s == StatusQueued || s == StatusRunning
}

const (
	PipelineCollectionImport  = "collection_import"
	PipelineMarketPriceImport = "market_price_import"
)

// Pipelines lists every pipeline the importer can run.
var Pipelines = []string{PipelineCollectionImport, PipelineMarketPriceImport}

var (
	ErrJobNotFound     = errors.New("job not found")
	ErrUnknownPipeline = errors.New("unknown pipeline")
	ErrInvalidPayload  = errors.New("invalid payload")
)

// Summary counts the outcome of a finished job.
type Summary struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
	Errors   int `json:"errors"`
}

type Job struct {
	ID         uuid.UUID       `json:"id"`
	Pipeline   string          `json:"pipeline"`
	SellerID   string          `json:"seller_id"`
	Status     Status          `json:"status"`
	Payload    json.RawMessage `json:"payload"`
	Summary    Summary         `json:"summary"`
	Error      string          `json:"error,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	StartedAt  *time.Time      `json:"started_at,omitempty"`
	FinishedAt *time.Time      `json:"finished_at,omitempty"`
}

func NewJob(pipeline, sellerID string, payload json.RawMessage) *Job {
	return &Job{
		ID:        uuid.New(),
		Pipeline:  pipeline,
		SellerID:  sellerID,
		Status:    StatusQueued,
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	}
}

// Group is the job monitor's view of one pipeline.
type Group struct {
	Pipeline string         `json:"pipeline"`
	Jobs     []Job          `json:"jobs"`
	Counts   map[Status]int `json:"counts"`
	Active   bool           `json:"active"`
}

// GroupJobs buckets jobs by pipeline, pipelines in name order and jobs newest
// first.
func GroupJobs(jobs []Job) []Group {
	byPipeline := make(map[string]*Group)
	for _, j := range jobs {
		g, ok := byPipeline[j.Pipeline]
		if !ok {
			g = &Group{Pipeline: j.Pipeline, Counts: make(map[Status]int)}
			byPipeline[j.Pipeline] = g
		}
		g.Jobs = append(g.Jobs, j)
		g.Counts[j.Status]++
		if j.Status.Active() {
			g.Active = true
		}
	}

	out := make([]Group, 0, len(byPipeline))
	for _, g := range byPipeline {
		sort.SliceStable(g.Jobs, func(a, b int) bool {
			return g.Jobs[a].CreatedAt.After(g.Jobs[b].CreatedAt)
		})
		out = append(out, *g)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Pipeline < out[b].Pipeline })
	return out
}

const (
	ActivePollInterval = 2 * time.Second
	IdlePollInterval   = 30 * time.Second
)

// PollInterval is how often a monitor should refresh the groups.
func PollInterval(groups []Group) time.Duration {
	for _, g := range groups {
		if g.Active {
			return ActivePollInterval
		}
	}
	return IdlePollInterval
}
