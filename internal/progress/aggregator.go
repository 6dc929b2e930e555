package progress

import (
	"context"

	"github.com/google/uuid"

	"github.com/lumenlearn/backend/internal/models"
)

// Catalog is the slice of the course catalog the aggregator reads.
type Catalog interface {
	CountLessons(ctx context.Context, courseID uuid.UUID) (int, error)
}

// Aggregator derives per-course completion counts from the catalog and the
// ledger on demand. It holds no cache; course lesson counts are small enough
// to recount per request.
type Aggregator struct {
	catalog Catalog
	ledger  Ledger
}

// NewAggregator creates an aggregator over the given stores.
func NewAggregator(catalog Catalog, ledger Ledger) *Aggregator {
	return &Aggregator{catalog: catalog, ledger: ledger}
}

// TotalLessons returns the course's lesson count.
func (a *Aggregator) TotalLessons(ctx context.Context, courseID uuid.UUID) (int, error) {
	return a.catalog.CountLessons(ctx, courseID)
}

// CompletedLessons returns how many of the course's lessons the user has
// completed. A nil user (anonymous request) has no progress.
func (a *Aggregator) CompletedLessons(ctx context.Context, courseID uuid.UUID, userID *uuid.UUID) (int, error) {
	if userID == nil {
		return 0, nil
	}
	return a.ledger.CountCompleted(ctx, courseID, *userID)
}

// ProgressPercentage returns completion as an integer percentage in [0,100].
func (a *Aggregator) ProgressPercentage(ctx context.Context, courseID uuid.UUID, userID *uuid.UUID) (int, error) {
	s, err := a.Snapshot(ctx, courseID, userID)
	if err != nil {
		return 0, err
	}
	return s.ProgressPercentage, nil
}

// Snapshot computes the user's full progress summary for a course in one
// pass, so the three numbers are mutually consistent.
func (a *Aggregator) Snapshot(ctx context.Context, courseID uuid.UUID, userID *uuid.UUID) (models.ProgressSummary, error) {
	total, err := a.catalog.CountLessons(ctx, courseID)
	if err != nil {
		return models.ProgressSummary{}, err
	}
	completed, err := a.CompletedLessons(ctx, courseID, userID)
	if err != nil {
		return models.ProgressSummary{}, err
	}
	return models.ProgressSummary{
		CompletedLessons:   completed,
		TotalLessons:       total,
		ProgressPercentage: Percentage(completed, total),
	}, nil
}

// Percentage is completed/total as a truncated integer percentage: 1 of 3 is
// 33, not 34. A course with no lessons is 0, never a division by zero.
func Percentage(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return completed * 100 / total
}
