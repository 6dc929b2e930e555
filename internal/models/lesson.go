package models

import (
	"time"

	"github.com/google/uuid"
)

// DurationUnknown is the sentinel duration meaning "not yet fetched from the
// media host". Distinct from an actual zero-length video, which the enricher
// would still write as a real value.
const DurationUnknown = "00:00"

// Lesson is a single video lesson inside a course. VideoRef is an opaque
// handle on the external media host. Duration is MM:SS (minutes may exceed
// 59) and is written only by the enrichment worker.
type Lesson struct {
	ID        uuid.UUID `json:"id"`
	CourseID  uuid.UUID `json:"course_id"`
	VideoRef  string    `json:"video_ref,omitempty"`
	Title     string    `json:"title"`
	SortOrder int       `json:"sort_order"`
	Duration  string    `json:"duration"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LessonWithStatus pairs a lesson with the requesting user's completion flag.
type LessonWithStatus struct {
	Lesson
	IsCompleted bool `json:"is_completed"`
}
