package lessons

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/lumenlearn/backend/internal/models"
	"github.com/lumenlearn/backend/pkg/queue"
)

type fakeEnqueuer struct {
	payloads []queue.DurationFetchPayload
}

func (f *fakeEnqueuer) EnqueueDurationFetch(_ context.Context, payload queue.DurationFetchPayload) error {
	f.payloads = append(f.payloads, payload)
	return nil
}

func TestNeedsEnrichment(t *testing.T) {
	tests := []struct {
		name     string
		videoRef string
		duration string
		want     bool
	}{
		{"fresh lesson with video", "clip-1", models.DurationUnknown, true},
		{"no video attached", "", models.DurationUnknown, false},
		{"duration already fetched", "clip-1", "12:34", false},
		{"re-armed by sentinel reset", "clip-2", "00:00", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, needsEnrichment(tt.videoRef, tt.duration))
		})
	}
}

func TestScheduleEnrichment(t *testing.T) {
	t.Run("pending lesson is enqueued once", func(t *testing.T) {
		enq := &fakeEnqueuer{}
		h := NewHandler(nil, nil, enq, nil)
		lesson := &models.Lesson{ID: uuid.New(), VideoRef: "clip-1", Duration: models.DurationUnknown}

		h.scheduleEnrichment(context.Background(), lesson)
		assert.Len(t, enq.payloads, 1)
		assert.Equal(t, lesson.ID, enq.payloads[0].LessonID)
		assert.Equal(t, "clip-1", enq.payloads[0].VideoRef)
	})

	t.Run("saving an enriched lesson schedules nothing", func(t *testing.T) {
		enq := &fakeEnqueuer{}
		h := NewHandler(nil, nil, enq, nil)
		lesson := &models.Lesson{ID: uuid.New(), VideoRef: "clip-1", Duration: "05:00"}

		h.scheduleEnrichment(context.Background(), lesson)
		h.scheduleEnrichment(context.Background(), lesson)
		assert.Empty(t, enq.payloads)
	})

	t.Run("nil enqueuer disables enrichment", func(t *testing.T) {
		h := NewHandler(nil, nil, nil, nil)
		lesson := &models.Lesson{ID: uuid.New(), VideoRef: "clip-1", Duration: models.DurationUnknown}
		h.scheduleEnrichment(context.Background(), lesson) // must not panic
	})
}
