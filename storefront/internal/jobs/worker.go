package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"op_trader/storefront/internal/store"

	"github.com/google/uuid"
)

type CollectionImportPayload struct {
	Platform              string `json:"platform"`
	FilePath              string `json:"file_path,omitempty"`
	CSV                   string `json:"csv,omitempty"`
	DefaultGradingService string `json:"default_grading_service,omitempty"`
}

type MarketPriceImportPayload struct {
	Source   string `json:"source,omitempty"`
	FilePath string `json:"file_path,omitempty"`
	CSV      string `json:"csv,omitempty"`
}

// JobRepository is the part of Store the worker needs.
type JobRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*Job, error)
	MarkRunning(ctx context.Context, id uuid.UUID, at time.Time) error
	Complete(ctx context.Context, id uuid.UUID, summary Summary, at time.Time) error
	Fail(ctx context.Context, id uuid.UUID, summary Summary, reason string, at time.Time) error
}

type CollectionWriter interface {
	FindCatalogItem(ctx context.Context, setCode, cardNumber string) (*store.CatalogItem, error)
	UpsertCollectionItem(ctx context.Context, it store.CollectionItem) (bool, error)
}

type MarketPriceWriter interface {
	UpsertMarketPrices(ctx context.Context, itemID string, prices map[string]int64) error
}

// Worker runs queued jobs to completion.
type Worker struct {
	jobs       JobRepository
	collection CollectionWriter
	prices     MarketPriceWriter
	logger     *slog.Logger
	importDir  string
	now        func() time.Time
}

type WorkerOption func(*Worker)

// WithImportDir roots file_path payloads at dir. Without it only inline CSV
// imports run.
func WithImportDir(dir string) WorkerOption {
	return func(w *Worker) { w.importDir = dir }
}

func NewWorker(jobs JobRepository, collection CollectionWriter, prices MarketPriceWriter, logger *slog.Logger, opts ...WorkerOption) *Worker {
	w := &Worker{
		jobs:       jobs,
		collection: collection,
		prices:     prices,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Handle runs one job. Job failures are recorded on the job and return nil;
// only a failure to record the outcome is returned.
func (w *Worker) Handle(ctx context.Context, msg Message) error {
	job, err := w.jobs.Get(ctx, msg.JobID)
	if errors.Is(err, ErrJobNotFound) {
		w.logger.Warn("job not found, dropping", "job_id", msg.JobID)
		return nil
	}
	if err != nil {
		return err
	}
	if job.Status != StatusQueued {
		w.logger.Info("job already picked up", "job_id", job.ID, "status", job.Status)
		return nil
	}

	if err := w.jobs.MarkRunning(ctx, job.ID, w.now()); err != nil {
		if errors.Is(err, ErrJobNotFound) {
			return nil
		}
		return err
	}
	log := w.logger.With("job_id", job.ID, "pipeline", job.Pipeline, "seller_id", job.SellerID)
	log.Info("job started")

	summary, runErr := w.run(ctx, job)

	// The outcome is recorded even when ctx was cancelled mid-run.
	recordCtx := context.WithoutCancel(ctx)
	if runErr != nil {
		log.Warn("job failed", "err", runErr, "imported", summary.Imported, "errors", summary.Errors)
		return w.jobs.Fail(recordCtx, job.ID, summary, runErr.Error(), w.now())
	}
	log.Info("job completed", "imported", summary.Imported, "skipped", summary.Skipped, "errors", summary.Errors)
	return w.jobs.Complete(recordCtx, job.ID, summary, w.now())
}

func (w *Worker) run(ctx context.Context, job *Job) (Summary, error) {
	switch job.Pipeline {
	case PipelineCollectionImport:
		var p CollectionImportPayload
		if err := json.Unmarshal(job.Payload, &p); err != nil {
			return Summary{}, fmt.Errorf("decode payload: %w", err)
		}
		return w.importCollection(ctx, job.SellerID, p)
	case PipelineMarketPriceImport:
		var p MarketPriceImportPayload
		if err := json.Unmarshal(job.Payload, &p); err != nil {
			return Summary{}, fmt.Errorf("decode payload: %w", err)
		}
		return w.importMarketPrices(ctx, p)
	default:
		return Summary{}, fmt.Errorf("%w: %s", ErrUnknownPipeline, job.Pipeline)
	}
}

func (w *Worker) importCollection(ctx context.Context, sellerID string, p CollectionImportPayload) (Summary, error) {
	src, err := w.openSource(p.FilePath, p.CSV)
	if err != nil {
		return Summary{}, err
	}
	defer src.Close()

	rows, malformed, err := ParseCollectionCSV(src, p.Platform, p.DefaultGradingService)
	if err != nil {
		return Summary{}, err
	}

	sum := Summary{Errors: malformed}
	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		item, err := w.collection.FindCatalogItem(ctx, row.SetCode, row.CardNumber)
		if err != nil {
			return sum, err
		}
		if item == nil {
			sum.Skipped++
			continue
		}
		_, err = w.collection.UpsertCollectionItem(ctx, store.CollectionItem{
			SellerID:       sellerID,
			ItemID:         item.ID,
			GradingService: row.GradingService,
			Grade:          row.Grade,
			Quantity:       row.Quantity,
			CostCents:      row.CostCents,
			Source:         p.Platform,
		})
		if err != nil {
			w.logger.Warn("collection row rejected", "line", row.Line, "err", err)
			sum.Errors++
			continue
		}
		sum.Imported++
	}
	return sum, nil
}

func (w *Worker) importMarketPrices(ctx context.Context, p MarketPriceImportPayload) (Summary, error) {
	src, err := w.openSource(p.FilePath, p.CSV)
	if err != nil {
		return Summary{}, err
	}
	defer src.Close()

	rows, malformed, err := ParseMarketPriceCSV(src)
	if err != nil {
		return Summary{}, err
	}

	sum := Summary{Errors: malformed}
	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		itemID := row.ItemID
		if itemID == "" {
			item, err := w.collection.FindCatalogItem(ctx, row.SetCode, row.CardNumber)
			if err != nil {
				return sum, err
			}
			if item == nil {
				sum.Skipped++
				continue
			}
			itemID = item.ID
		}
		if err := w.prices.UpsertMarketPrices(ctx, itemID, row.Prices); err != nil {
			w.logger.Warn("price row rejected", "line", row.Line, "item_id", itemID, "err", err)
			sum.Errors++
			continue
		}
		sum.Imported++
	}
	return sum, nil
}

// openSource opens file paths through os.OpenInRoot so neither ".." nor a
// symlink can reach outside the import dir.
func (w *Worker) openSource(filePath, inline string) (io.ReadCloser, error) {
	if inline != "" {
		return io.NopCloser(strings.NewReader(inline)), nil
	}
	if w.importDir == "" {
		return nil, errors.New("file imports are disabled: no import dir configured")
	}
	f, err := os.OpenInRoot(w.importDir, filePath)
	if err != nil {
		return nil, fmt.Errorf("open import file: %w", err)
	}
	return f, nil
}
