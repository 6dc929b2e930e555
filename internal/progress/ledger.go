package progress

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lumenlearn/backend/internal/models"
)

// ErrLessonNotFound is returned by Toggle when the lesson (or user) the
// record would reference does not exist.
var ErrLessonNotFound = errors.New("lesson not found")

// Ledger is the completion ledger: one record per (user, lesson) pair.
type Ledger interface {
	// Get returns the record for the pair, or nil when the pair was never
	// toggled.
	Get(ctx context.Context, userID, lessonID uuid.UUID) (*models.LessonProgress, error)
	// Toggle flips completion for the pair, creating the record completed on
	// first use, and returns the post-toggle record.
	Toggle(ctx context.Context, userID, lessonID uuid.UUID) (*models.LessonProgress, error)
	// IsCompleted reports whether the pair's record exists and is completed.
	IsCompleted(ctx context.Context, userID, lessonID uuid.UUID) (bool, error)
	// CountCompleted returns how many of the course's lessons the user has
	// completed.
	CountCompleted(ctx context.Context, courseID, userID uuid.UUID) (int, error)
}

// Repository is the PostgreSQL ledger.
type Repository struct {
	pool *pgxpool.Pool
}

var _ Ledger = (*Repository)(nil)

// NewRepository creates a progress repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Get returns the completion record for (user, lesson), or nil when absent.
func (r *Repository) Get(ctx context.Context, userID, lessonID uuid.UUID) (*models.LessonProgress, error) {
	const q = `SELECT id, user_id, lesson_id, is_completed, completed_at, created_at, updated_at
		FROM lesson_progress WHERE user_id = $1 AND lesson_id = $2`
	var p models.LessonProgress
	err := r.pool.QueryRow(ctx, q, userID, lessonID).
		Scan(&p.ID, &p.UserID, &p.LessonID, &p.IsCompleted, &p.CompletedAt, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Toggle flips is_completed for (user, lesson) in a single upsert, so two
// concurrent calls can never create duplicate rows or leave completed_at
// disagreeing with is_completed. The first toggle for a pair creates the row
// already completed. A foreign-key violation means the lesson (or user) is
// gone and maps to ErrLessonNotFound.
func (r *Repository) Toggle(ctx context.Context, userID, lessonID uuid.UUID) (*models.LessonProgress, error) {
	const q = `INSERT INTO lesson_progress (user_id, lesson_id, is_completed, completed_at)
		VALUES ($1, $2, TRUE, NOW())
		ON CONFLICT (user_id, lesson_id) DO UPDATE SET
			is_completed = NOT lesson_progress.is_completed,
			completed_at = CASE WHEN lesson_progress.is_completed THEN NULL ELSE NOW() END,
			updated_at = NOW()
		RETURNING id, user_id, lesson_id, is_completed, completed_at, created_at, updated_at`
	var p models.LessonProgress
	err := r.pool.QueryRow(ctx, q, userID, lessonID).
		Scan(&p.ID, &p.UserID, &p.LessonID, &p.IsCompleted, &p.CompletedAt, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" { // foreign_key_violation
			return nil, ErrLessonNotFound
		}
		return nil, err
	}
	return &p, nil
}

// IsCompleted reports whether the user completed the lesson. Absent record
// means false.
func (r *Repository) IsCompleted(ctx context.Context, userID, lessonID uuid.UUID) (bool, error) {
	const q = `SELECT EXISTS (
		SELECT 1 FROM lesson_progress WHERE user_id = $1 AND lesson_id = $2 AND is_completed)`
	var done bool
	err := r.pool.QueryRow(ctx, q, userID, lessonID).Scan(&done)
	return done, err
}

// CountCompleted counts the user's completed lessons within a course.
func (r *Repository) CountCompleted(ctx context.Context, courseID, userID uuid.UUID) (int, error) {
	const q = `SELECT COUNT(*) FROM lesson_progress p
		JOIN lessons l ON l.id = p.lesson_id
		WHERE l.course_id = $1 AND p.user_id = $2 AND p.is_completed`
	var n int
	err := r.pool.QueryRow(ctx, q, courseID, userID).Scan(&n)
	return n, err
}

// CompletedSet returns the IDs of the course's lessons the user completed,
// for rendering per-lesson status in one query.
func (r *Repository) CompletedSet(ctx context.Context, courseID, userID uuid.UUID) (map[uuid.UUID]bool, error) {
	const q = `SELECT p.lesson_id FROM lesson_progress p
		JOIN lessons l ON l.id = p.lesson_id
		WHERE l.course_id = $1 AND p.user_id = $2 AND p.is_completed`
	rows, err := r.pool.Query(ctx, q, courseID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	set := make(map[uuid.UUID]bool)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		set[id] = true
	}
	return set, rows.Err()
}
