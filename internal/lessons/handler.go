package lessons

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/lumenlearn/backend/internal/middleware"
	"github.com/lumenlearn/backend/internal/models"
	"github.com/lumenlearn/backend/internal/progress"
	"github.com/lumenlearn/backend/pkg/queue"
	"github.com/lumenlearn/backend/pkg/response"
)

// Enqueuer schedules duration enrichment jobs. Nil disables enrichment (e.g.
// media host not configured).
type Enqueuer interface {
	EnqueueDurationFetch(ctx context.Context, payload queue.DurationFetchPayload) error
}

// CreateRequest is the body for POST /courses/:id/lessons.
type CreateRequest struct {
	Title     string `json:"title" binding:"required"`
	VideoRef  string `json:"video_ref"`
	SortOrder int    `json:"sort_order"`
}

// UpdateRequest is the body for PATCH /lessons/:id. Empty fields are left
// unchanged; SortOrder nil keeps the current order. Setting duration to
// "00:00" re-arms enrichment.
type UpdateRequest struct {
	Title     string `json:"title"`
	VideoRef  string `json:"video_ref"`
	SortOrder *int   `json:"sort_order"`
	Duration  string `json:"duration"`
}

// PlayResponse is the lesson player payload.
type PlayResponse struct {
	Lesson      models.Lesson `json:"lesson"`
	IsCompleted bool          `json:"is_completed"`
}

// Handler handles lesson HTTP endpoints.
type Handler struct {
	repo     *Repository
	ledger   progress.Ledger
	enqueuer Enqueuer
	logger   *zap.Logger
}

// NewHandler creates a lesson handler.
func NewHandler(repo *Repository, ledger progress.Ledger, enqueuer Enqueuer, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, ledger: ledger, enqueuer: enqueuer, logger: logger}
}

// needsEnrichment is the post-write trigger guard: enrich only lessons whose
// video exists on the media host and whose duration was never fetched.
// Repeated saves of an already-enriched lesson schedule nothing.
func needsEnrichment(videoRef, duration string) bool {
	return videoRef != "" && duration == models.DurationUnknown
}

// scheduleEnrichment enqueues a duration fetch after a committed lesson
// write. The write path never blocks on, or fails because of, enrichment.
func (h *Handler) scheduleEnrichment(ctx context.Context, lesson *models.Lesson) {
	if h.enqueuer == nil || !needsEnrichment(lesson.VideoRef, lesson.Duration) {
		return
	}
	err := h.enqueuer.EnqueueDurationFetch(ctx, queue.DurationFetchPayload{
		LessonID: lesson.ID,
		VideoRef: lesson.VideoRef,
	})
	if err != nil {
		h.logger.Error("enqueue duration fetch failed", zap.Error(err), zap.String("lesson_id", lesson.ID.String()))
	}
}

// Create handles POST /courses/:id/lessons (admin only).
func (h *Handler) Create(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid course id")
		return
	}
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	lesson := &models.Lesson{
		CourseID:  courseID,
		VideoRef:  req.VideoRef,
		Title:     req.Title,
		SortOrder: req.SortOrder,
	}
	if err := h.repo.Create(c.Request.Context(), lesson); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" { // unknown course
			response.NotFound(c, "course not found")
			return
		}
		h.logger.Error("create lesson failed", zap.Error(err), zap.String("course_id", courseID.String()))
		response.Internal(c, "failed to create lesson")
		return
	}

	h.scheduleEnrichment(c.Request.Context(), lesson)
	response.Created(c, lesson)
}

// GetByID handles GET /lessons/:id (the player view).
func (h *Handler) GetByID(c *gin.Context) {
	lessonID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid lesson id")
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	lesson, err := h.repo.GetByID(c.Request.Context(), lessonID)
	if err != nil {
		response.NotFound(c, "lesson not found")
		return
	}
	done, err := h.ledger.IsCompleted(c.Request.Context(), userID, lessonID)
	if err != nil {
		response.Internal(c, "failed to load progress")
		return
	}
	response.OK(c, PlayResponse{Lesson: *lesson, IsCompleted: done})
}

// Update handles PATCH /lessons/:id (admin only).
func (h *Handler) Update(c *gin.Context) {
	lessonID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid lesson id")
		return
	}
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	sortOrder := -1
	if req.SortOrder != nil {
		if *req.SortOrder < 0 {
			response.BadRequest(c, "sort_order must be >= 0")
			return
		}
		sortOrder = *req.SortOrder
	}
	// Real duration values come only from the enrichment worker; the API
	// accepts just the sentinel, which re-arms enrichment.
	if req.Duration != "" && req.Duration != models.DurationUnknown {
		response.BadRequest(c, "duration is managed by enrichment; only a 00:00 reset is accepted")
		return
	}

	lesson, err := h.repo.Update(c.Request.Context(), lessonID, req.Title, req.VideoRef, sortOrder, req.Duration)
	if err != nil {
		response.NotFound(c, "lesson not found")
		return
	}

	h.scheduleEnrichment(c.Request.Context(), lesson)
	response.OK(c, lesson)
}

// Delete handles DELETE /lessons/:id (admin only). Progress rows cascade; an
// in-flight enrichment for the lesson becomes a no-op.
func (h *Handler) Delete(c *gin.Context) {
	lessonID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid lesson id")
		return
	}
	if err := h.repo.Delete(c.Request.Context(), lessonID); err != nil {
		response.Internal(c, "failed to delete lesson")
		return
	}
	response.NoContent(c)
}
