package progress

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lumenlearn/backend/internal/middleware"
	"github.com/lumenlearn/backend/internal/models"
	"github.com/lumenlearn/backend/pkg/response"
)

// LessonFinder resolves a lesson ID to its lesson (for the course reference).
type LessonFinder interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Lesson, error)
}

// ToggleResponse is the payload returned after a completion toggle, sized
// for the course page to update its progress bar without a second request.
type ToggleResponse struct {
	IsCompleted        bool `json:"is_completed"`
	ProgressPercentage int  `json:"progress_percentage"`
	CompletedLessons   int  `json:"completed_lessons"`
	TotalLessons       int  `json:"total_lessons"`
}

// Handler handles progress HTTP endpoints.
type Handler struct {
	lessons    LessonFinder
	ledger     Ledger
	aggregator *Aggregator
	logger     *zap.Logger
}

// NewHandler creates a progress handler.
func NewHandler(lessons LessonFinder, ledger Ledger, aggregator *Aggregator, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{lessons: lessons, ledger: ledger, aggregator: aggregator, logger: logger}
}

// Toggle handles POST /lessons/:id/toggle. Flips the current user's
// completion for the lesson and returns the refreshed course progress.
func (h *Handler) Toggle(c *gin.Context) {
	lessonID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid lesson id")
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	lesson, err := h.lessons.GetByID(c.Request.Context(), lessonID)
	if err != nil || lesson == nil {
		response.NotFound(c, "lesson not found")
		return
	}

	record, err := h.ledger.Toggle(c.Request.Context(), userID, lessonID)
	if err != nil {
		if errors.Is(err, ErrLessonNotFound) {
			response.NotFound(c, "lesson not found")
			return
		}
		h.logger.Error("toggle failed", zap.Error(err), zap.String("lesson_id", lessonID.String()))
		response.Internal(c, "failed to toggle lesson")
		return
	}

	summary, err := h.aggregator.Snapshot(c.Request.Context(), lesson.CourseID, &userID)
	if err != nil {
		h.logger.Error("progress snapshot failed", zap.Error(err), zap.String("course_id", lesson.CourseID.String()))
		response.Internal(c, "failed to compute progress")
		return
	}

	response.OK(c, ToggleResponse{
		IsCompleted:        record.IsCompleted,
		ProgressPercentage: summary.ProgressPercentage,
		CompletedLessons:   summary.CompletedLessons,
		TotalLessons:       summary.TotalLessons,
	})
}

// CourseProgress handles GET /courses/:id/progress for the current user.
func (h *Handler) CourseProgress(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid course id")
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	summary, err := h.aggregator.Snapshot(c.Request.Context(), courseID, &userID)
	if err != nil {
		response.Internal(c, "failed to compute progress")
		return
	}
	response.OK(c, summary)
}
