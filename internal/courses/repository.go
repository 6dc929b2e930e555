package courses

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lumenlearn/backend/internal/models"
)

// Repository handles course persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a course repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new course.
func (r *Repository) Create(ctx context.Context, course *models.Course) error {
	const q = `INSERT INTO courses (id, title, short_desc, long_desc, thumbnail)
		VALUES (gen_random_uuid(), $1, $2, $3, NULLIF($4,''))
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, course.Title, course.ShortDesc, course.LongDesc, course.Thumbnail).
		Scan(&course.ID, &course.CreatedAt, &course.UpdatedAt)
}

// GetByID returns a course by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Course, error) {
	const q = `SELECT id, title, short_desc, long_desc, COALESCE(thumbnail,''), created_at, updated_at
		FROM courses WHERE id = $1`
	var course models.Course
	err := r.pool.QueryRow(ctx, q, id).Scan(&course.ID, &course.Title, &course.ShortDesc, &course.LongDesc, &course.Thumbnail, &course.CreatedAt, &course.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &course, nil
}

// List returns courses with their lesson counts, newest first. limit <= 0
// means no limit (the home page passes 3).
func (r *Repository) List(ctx context.Context, limit int) ([]models.CourseSummary, error) {
	q := `SELECT c.id, c.title, c.short_desc, c.long_desc, COALESCE(c.thumbnail,''), c.created_at, c.updated_at,
			(SELECT COUNT(*) FROM lessons l WHERE l.course_id = c.id) AS total_lessons
		FROM courses c ORDER BY c.created_at DESC`
	var args []interface{}
	if limit > 0 {
		q += " LIMIT $1"
		args = append(args, limit)
	}
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.CourseSummary
	for rows.Next() {
		var s models.CourseSummary
		if err := rows.Scan(&s.ID, &s.Title, &s.ShortDesc, &s.LongDesc, &s.Thumbnail, &s.CreatedAt, &s.UpdatedAt, &s.TotalLessons); err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// Update updates course fields. Empty strings leave the stored value as-is.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, title, shortDesc, longDesc, thumbnail string) error {
	const q = `UPDATE courses SET
			title = COALESCE(NULLIF($1,''), title),
			short_desc = COALESCE(NULLIF($2,''), short_desc),
			long_desc = COALESCE(NULLIF($3,''), long_desc),
			thumbnail = COALESCE(NULLIF($4,''), thumbnail),
			updated_at = NOW()
		WHERE id = $5`
	_, err := r.pool.Exec(ctx, q, title, shortDesc, longDesc, thumbnail, id)
	return err
}

// Delete removes a course; lessons and progress rows go with it via cascade.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM courses WHERE id = $1`
	_, err := r.pool.Exec(ctx, q, id)
	return err
}

// CountLessons returns the number of lessons in a course.
func (r *Repository) CountLessons(ctx context.Context, courseID uuid.UUID) (int, error) {
	const q = `SELECT COUNT(*) FROM lessons WHERE course_id = $1`
	var n int
	err := r.pool.QueryRow(ctx, q, courseID).Scan(&n)
	return n, err
}
