package lessons

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lumenlearn/backend/internal/models"
)

// Repository handles lesson persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a lesson repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new lesson. Duration starts at the unknown sentinel; the
// enrichment worker fills it in later.
func (r *Repository) Create(ctx context.Context, lesson *models.Lesson) error {
	const q = `INSERT INTO lessons (id, course_id, video_ref, title, sort_order)
		VALUES (gen_random_uuid(), $1, NULLIF($2,''), $3, $4)
		RETURNING id, duration, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, lesson.CourseID, lesson.VideoRef, lesson.Title, lesson.SortOrder).
		Scan(&lesson.ID, &lesson.Duration, &lesson.CreatedAt, &lesson.UpdatedAt)
}

// GetByID returns a lesson by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Lesson, error) {
	const q = `SELECT id, course_id, COALESCE(video_ref,''), title, sort_order, duration, created_at, updated_at
		FROM lessons WHERE id = $1`
	var lesson models.Lesson
	err := r.pool.QueryRow(ctx, q, id).Scan(&lesson.ID, &lesson.CourseID, &lesson.VideoRef, &lesson.Title, &lesson.SortOrder, &lesson.Duration, &lesson.CreatedAt, &lesson.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &lesson, nil
}

// ListByCourse returns a course's lessons in display order (sort_order, then
// id as tie-break).
func (r *Repository) ListByCourse(ctx context.Context, courseID uuid.UUID) ([]models.Lesson, error) {
	const q = `SELECT id, course_id, COALESCE(video_ref,''), title, sort_order, duration, created_at, updated_at
		FROM lessons WHERE course_id = $1 ORDER BY sort_order, id`
	rows, err := r.pool.Query(ctx, q, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.Lesson
	for rows.Next() {
		var lesson models.Lesson
		if err := rows.Scan(&lesson.ID, &lesson.CourseID, &lesson.VideoRef, &lesson.Title, &lesson.SortOrder, &lesson.Duration, &lesson.CreatedAt, &lesson.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, lesson)
	}
	return list, rows.Err()
}

// Update updates lesson fields and returns the stored row. Passing
// sortOrder < 0 keeps the current order; empty strings keep current values.
// Setting duration back to the sentinel re-arms enrichment for the lesson.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, title, videoRef string, sortOrder int, duration string) (*models.Lesson, error) {
	const q = `UPDATE lessons SET
			title = COALESCE(NULLIF($1,''), title),
			video_ref = COALESCE(NULLIF($2,''), video_ref),
			sort_order = CASE WHEN $3 >= 0 THEN $3 ELSE sort_order END,
			duration = COALESCE(NULLIF($4,''), duration),
			updated_at = NOW()
		WHERE id = $5
		RETURNING id, course_id, COALESCE(video_ref,''), title, sort_order, duration, created_at, updated_at`
	var lesson models.Lesson
	err := r.pool.QueryRow(ctx, q, title, videoRef, sortOrder, duration, id).
		Scan(&lesson.ID, &lesson.CourseID, &lesson.VideoRef, &lesson.Title, &lesson.SortOrder, &lesson.Duration, &lesson.CreatedAt, &lesson.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &lesson, nil
}

// UpdateDuration writes only the duration column. Returns the number of rows
// touched: 0 means the lesson was deleted before the enrichment landed, which
// callers treat as a no-op.
func (r *Repository) UpdateDuration(ctx context.Context, id uuid.UUID, duration string) (int64, error) {
	const q = `UPDATE lessons SET duration = $1, updated_at = NOW() WHERE id = $2`
	tag, err := r.pool.Exec(ctx, q, duration, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// Delete removes a lesson; progress rows cascade.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM lessons WHERE id = $1`
	_, err := r.pool.Exec(ctx, q, id)
	return err
}
