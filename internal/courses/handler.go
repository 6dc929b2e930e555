package courses

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lumenlearn/backend/internal/lessons"
	"github.com/lumenlearn/backend/internal/middleware"
	"github.com/lumenlearn/backend/internal/models"
	"github.com/lumenlearn/backend/internal/progress"
	"github.com/lumenlearn/backend/pkg/response"
)

// CreateRequest is the body for POST /courses.
type CreateRequest struct {
	Title     string `json:"title" binding:"required"`
	ShortDesc string `json:"short_desc" binding:"required,max=300"`
	LongDesc  string `json:"long_desc"`
	Thumbnail string `json:"thumbnail"`
}

// UpdateRequest is the body for PATCH /courses/:id. Empty fields are left
// unchanged.
type UpdateRequest struct {
	Title     string `json:"title"`
	ShortDesc string `json:"short_desc" binding:"max=300"`
	LongDesc  string `json:"long_desc"`
	Thumbnail string `json:"thumbnail"`
}

// DetailResponse is the course page payload: the course, its lessons with the
// requesting user's completion flags, and the aggregate progress summary.
type DetailResponse struct {
	Course   models.Course             `json:"course"`
	Lessons  []models.LessonWithStatus `json:"lessons"`
	Progress models.ProgressSummary    `json:"progress"`
}

// Handler handles course HTTP endpoints.
type Handler struct {
	repo       *Repository
	lessonRepo *lessons.Repository
	ledger     *progress.Repository
	aggregator *progress.Aggregator
	logger     *zap.Logger
}

// NewHandler creates a course handler.
func NewHandler(repo *Repository, lessonRepo *lessons.Repository, ledger *progress.Repository, aggregator *progress.Aggregator, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, lessonRepo: lessonRepo, ledger: ledger, aggregator: aggregator, logger: logger}
}

// List handles GET /courses (public). Query ?limit=3 serves the home page.
func (h *Handler) List(c *gin.Context) {
	limit := 0
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			response.BadRequest(c, "invalid limit")
			return
		}
		limit = n
	}
	list, err := h.repo.List(c.Request.Context(), limit)
	if err != nil {
		response.Internal(c, "failed to list courses")
		return
	}
	response.OK(c, list)
}

// GetByID handles GET /courses/:id. Requires auth; completion flags and the
// progress summary are computed for the requesting user.
func (h *Handler) GetByID(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid course id")
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	course, err := h.repo.GetByID(c.Request.Context(), courseID)
	if err != nil {
		response.NotFound(c, "course not found")
		return
	}

	lessonList, err := h.lessonRepo.ListByCourse(c.Request.Context(), courseID)
	if err != nil {
		response.Internal(c, "failed to load lessons")
		return
	}
	completed, err := h.ledger.CompletedSet(c.Request.Context(), courseID, userID)
	if err != nil {
		response.Internal(c, "failed to load progress")
		return
	}

	withStatus := make([]models.LessonWithStatus, 0, len(lessonList))
	doneCount := 0
	for _, lesson := range lessonList {
		done := completed[lesson.ID]
		if done {
			doneCount++
		}
		withStatus = append(withStatus, models.LessonWithStatus{Lesson: lesson, IsCompleted: done})
	}

	// Counts derive from the lesson list just loaded so the payload is
	// internally consistent even while toggles land concurrently.
	summary := models.ProgressSummary{
		CompletedLessons:   doneCount,
		TotalLessons:       len(lessonList),
		ProgressPercentage: progress.Percentage(doneCount, len(lessonList)),
	}

	response.OK(c, DetailResponse{Course: *course, Lessons: withStatus, Progress: summary})
}

// Create handles POST /courses (admin only).
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	course := &models.Course{
		Title:     req.Title,
		ShortDesc: req.ShortDesc,
		LongDesc:  req.LongDesc,
		Thumbnail: req.Thumbnail,
	}
	if err := h.repo.Create(c.Request.Context(), course); err != nil {
		h.logger.Error("create course failed", zap.Error(err))
		response.Internal(c, "failed to create course")
		return
	}
	response.Created(c, course)
}

// Update handles PATCH /courses/:id (admin only).
func (h *Handler) Update(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid course id")
		return
	}
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if _, err := h.repo.GetByID(c.Request.Context(), courseID); err != nil {
		response.NotFound(c, "course not found")
		return
	}
	if err := h.repo.Update(c.Request.Context(), courseID, req.Title, req.ShortDesc, req.LongDesc, req.Thumbnail); err != nil {
		response.Internal(c, "failed to update course")
		return
	}
	course, err := h.repo.GetByID(c.Request.Context(), courseID)
	if err != nil {
		response.Internal(c, "failed to load course")
		return
	}
	response.OK(c, course)
}

// Delete handles DELETE /courses/:id (admin only). Lessons and progress rows
// cascade.
func (h *Handler) Delete(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid course id")
		return
	}
	if err := h.repo.Delete(c.Request.Context(), courseID); err != nil {
		response.Internal(c, "failed to delete course")
		return
	}
	response.NoContent(c)
}
