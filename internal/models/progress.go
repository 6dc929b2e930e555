package models

import (
	"time"

	"github.com/google/uuid"
)

// LessonProgress is the per-user-per-lesson completion record. At most one
// row exists per (user, lesson); absence means "never touched". CompletedAt
// is set iff IsCompleted.
type LessonProgress struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"user_id"`
	LessonID    uuid.UUID  `json:"lesson_id"`
	IsCompleted bool       `json:"is_completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// ProgressSummary is a user's aggregate progress in one course.
type ProgressSummary struct {
	CompletedLessons   int `json:"completed_lessons"`
	TotalLessons       int `json:"total_lessons"`
	ProgressPercentage int `json:"progress_percentage"`
}
