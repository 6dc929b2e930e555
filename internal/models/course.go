package models

import (
	"time"

	"github.com/google/uuid"
)

// Course is a published course. Thumbnail is an opaque handle on the
// external media host, not a URL.
type Course struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	ShortDesc string    `json:"short_desc"`
	LongDesc  string    `json:"long_desc"`
	Thumbnail string    `json:"thumbnail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CourseSummary is a course with its lesson count, for list pages.
type CourseSummary struct {
	Course
	TotalLessons int `json:"total_lessons"`
}
