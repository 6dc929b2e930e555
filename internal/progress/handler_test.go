package progress

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenlearn/backend/internal/middleware"
	"github.com/lumenlearn/backend/pkg/response"
)

func newTestRouter(h *Handler, userID uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set(middleware.ContextUserID, userID) })
	r.POST("/lessons/:id/toggle", h.Toggle)
	r.GET("/courses/:id/progress", h.CourseProgress)
	return r
}

func doToggle(t *testing.T, r *gin.Engine, lessonID string) (*httptest.ResponseRecorder, ToggleResponse) {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/lessons/"+lessonID+"/toggle", nil)
	r.ServeHTTP(w, req)

	var body struct {
		Success bool           `json:"success"`
		Data    ToggleResponse `json:"data"`
	}
	if w.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	}
	return w, body.Data
}

func TestToggleHandler(t *testing.T) {
	ledger := newMemLedger()
	courseID := uuid.New()
	l1 := ledger.addLesson(courseID)
	l2 := ledger.addLesson(courseID)
	l3 := ledger.addLesson(courseID)

	userID := uuid.New()
	agg := NewAggregator(&memCatalog{ledger: ledger}, ledger)
	h := NewHandler(&memLessonFinder{ledger: ledger}, ledger, agg, nil)
	r := newTestRouter(h, userID)

	t.Run("first toggle completes and reports course progress", func(t *testing.T) {
		w, data := doToggle(t, r, l1.String())
		require.Equal(t, http.StatusOK, w.Code)
		assert.True(t, data.IsCompleted)
		assert.Equal(t, 1, data.CompletedLessons)
		assert.Equal(t, 3, data.TotalLessons)
		assert.Equal(t, 33, data.ProgressPercentage)
	})

	t.Run("second lesson reaches 66, third 100", func(t *testing.T) {
		_, data := doToggle(t, r, l2.String())
		assert.Equal(t, 66, data.ProgressPercentage)

		_, data = doToggle(t, r, l3.String())
		assert.Equal(t, 100, data.ProgressPercentage)
		assert.Equal(t, 3, data.CompletedLessons)
	})

	t.Run("toggling back drops the percentage", func(t *testing.T) {
		_, data := doToggle(t, r, l1.String())
		assert.False(t, data.IsCompleted)
		assert.Equal(t, 2, data.CompletedLessons)
		assert.Equal(t, 66, data.ProgressPercentage)
	})

	t.Run("unknown lesson is 404", func(t *testing.T) {
		w, _ := doToggle(t, r, uuid.New().String())
		assert.Equal(t, http.StatusNotFound, w.Code)

		var body response.Body
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.False(t, body.Success)
	})

	t.Run("malformed lesson id is 400", func(t *testing.T) {
		w, _ := doToggle(t, r, "not-a-uuid")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestToggleHandlerConcurrent(t *testing.T) {
	ledger := newMemLedger()
	courseID := uuid.New()
	lessonID := ledger.addLesson(courseID)
	userID := uuid.New()

	agg := NewAggregator(&memCatalog{ledger: ledger}, ledger)
	h := NewHandler(&memLessonFinder{ledger: ledger}, ledger, agg, nil)
	r := newTestRouter(h, userID)

	const callers = 16
	var wg sync.WaitGroup
	wg.Add(callers)
	for i := 0; i < callers; i++ {
		go func() {
			defer wg.Done()
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/lessons/"+lessonID.String()+"/toggle", nil)
			r.ServeHTTP(w, req)
		}()
	}
	wg.Wait()

	// However the calls interleave there is exactly one record, and its
	// timestamp agrees with its completion flag.
	assert.Equal(t, 1, ledger.recordCount())
	rec, err := ledger.Get(context.Background(), userID, lessonID)
	require.NoError(t, err)
	require.NotNil(t, rec)
	if rec.IsCompleted {
		assert.NotNil(t, rec.CompletedAt)
	} else {
		assert.Nil(t, rec.CompletedAt)
	}
	// Even number of toggles returns to not-completed.
	assert.False(t, rec.IsCompleted)
}

func TestCourseProgressHandler(t *testing.T) {
	ledger := newMemLedger()
	courseID := uuid.New()
	l1 := ledger.addLesson(courseID)
	ledger.addLesson(courseID)
	userID := uuid.New()

	agg := NewAggregator(&memCatalog{ledger: ledger}, ledger)
	h := NewHandler(&memLessonFinder{ledger: ledger}, ledger, agg, nil)
	r := newTestRouter(h, userID)

	_, err := ledger.Toggle(context.Background(), userID, l1)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/courses/"+courseID.String()+"/progress", nil)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data struct {
			CompletedLessons   int `json:"completed_lessons"`
			TotalLessons       int `json:"total_lessons"`
			ProgressPercentage int `json:"progress_percentage"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Data.CompletedLessons)
	assert.Equal(t, 2, body.Data.TotalLessons)
	assert.Equal(t, 50, body.Data.ProgressPercentage)
}
