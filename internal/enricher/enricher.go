// Package enricher runs the best-effort duration enrichment worker: it
// consumes duration_fetch jobs emitted after lesson writes, asks the media
// host for the video's length and writes it back. Failures are logged and
// dropped; the lesson keeps its sentinel duration and nobody upstream notices.
package enricher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/lumenlearn/backend/internal/media"
	"github.com/lumenlearn/backend/internal/models"
	"github.com/lumenlearn/backend/pkg/queue"
)

// LessonStore is the slice of lesson persistence the enricher touches.
type LessonStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Lesson, error)
	// UpdateDuration writes only the duration column and reports rows
	// affected; 0 means the lesson is gone.
	UpdateDuration(ctx context.Context, id uuid.UUID, duration string) (int64, error)
}

// DurationProcessor processes duration fetch jobs: query media host, format
// MM:SS, persist the single column.
type DurationProcessor struct {
	store   LessonStore
	fetcher media.MetadataFetcher
	queue   *queue.Queue
	logger  *zap.Logger
}

// NewDurationProcessor creates a duration fetch processor.
func NewDurationProcessor(store LessonStore, fetcher media.MetadataFetcher, q *queue.Queue, logger *zap.Logger) *DurationProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DurationProcessor{store: store, fetcher: fetcher, queue: q, logger: logger}
}

// Process executes one duration fetch job. It returns an error only for
// malformed envelopes; enrichment failures themselves are logged and
// swallowed so the queue schedules no retry and the lesson write path stays
// unaffected.
func (p *DurationProcessor) Process(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypeDurationFetch {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	var payload queue.DurationFetchPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	lesson, err := p.store.GetByID(ctx, payload.LessonID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			p.logger.Debug("lesson deleted before enrichment", zap.String("lesson_id", payload.LessonID.String()))
		} else {
			p.logger.Error("load lesson failed", zap.Error(err), zap.String("lesson_id", payload.LessonID.String()))
		}
		return nil
	}
	if lesson.Duration != models.DurationUnknown {
		p.logger.Debug("duration already known", zap.String("lesson_id", lesson.ID.String()), zap.String("duration", lesson.Duration))
		return nil
	}

	meta, err := p.fetcher.FetchVideoMetadata(ctx, payload.VideoRef)
	if err != nil {
		p.logger.Error("fetch video metadata failed", zap.Error(err), zap.String("lesson_id", lesson.ID.String()), zap.String("video_ref", payload.VideoRef))
		return nil
	}

	formatted := media.FormatDuration(meta.DurationSeconds)
	rows, err := p.store.UpdateDuration(ctx, lesson.ID, formatted)
	if err != nil {
		p.logger.Error("update duration failed", zap.Error(err), zap.String("lesson_id", lesson.ID.String()))
		return nil
	}
	if rows == 0 {
		// Lesson deleted while the fetch was in flight.
		p.logger.Debug("lesson deleted before enrichment landed", zap.String("lesson_id", lesson.ID.String()))
		return nil
	}

	p.logger.Info("lesson duration enriched", zap.String("lesson_id", lesson.ID.String()), zap.String("duration", formatted))
	return nil
}

// Run starts the worker loop: dequeue, process, retry malformed envelopes.
func (p *DurationProcessor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("enrichment worker stopping")
			return
		default:
		}

		job, _, err := p.queue.Dequeue(ctx)
		if err != nil {
			p.logger.Warn("dequeue error", zap.Error(err))
			time.Sleep(queue.RetryBackoff)
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Error(err))
			if reErr := p.queue.Retry(ctx, job); reErr != nil {
				p.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
		}
	}
}
