package progress

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lumenlearn/backend/internal/models"
)

// memLedger reproduces the SQL upsert semantics in memory: one record per
// (user, lesson), flip + timestamp set atomically under the mutex.
type memLedger struct {
	mu sync.Mutex
	// lesson -> course; a lesson must be registered here to be toggleable,
	// mirroring the foreign key.
	lessonCourse map[uuid.UUID]uuid.UUID
	records      map[[2]uuid.UUID]*models.LessonProgress
}

func newMemLedger() *memLedger {
	return &memLedger{
		lessonCourse: make(map[uuid.UUID]uuid.UUID),
		records:      make(map[[2]uuid.UUID]*models.LessonProgress),
	}
}

func (m *memLedger) addLesson(courseID uuid.UUID) uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.New()
	m.lessonCourse[id] = courseID
	return id
}

func (m *memLedger) Get(_ context.Context, userID, lessonID uuid.UUID) (*models.LessonProgress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.records[[2]uuid.UUID{userID, lessonID}]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (m *memLedger) Toggle(_ context.Context, userID, lessonID uuid.UUID) (*models.LessonProgress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.lessonCourse[lessonID]; !ok {
		return nil, ErrLessonNotFound
	}
	key := [2]uuid.UUID{userID, lessonID}
	now := time.Now()
	p, ok := m.records[key]
	if !ok {
		p = &models.LessonProgress{
			ID:          uuid.New(),
			UserID:      userID,
			LessonID:    lessonID,
			IsCompleted: true,
			CompletedAt: &now,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		m.records[key] = p
	} else {
		p.IsCompleted = !p.IsCompleted
		if p.IsCompleted {
			p.CompletedAt = &now
		} else {
			p.CompletedAt = nil
		}
		p.UpdatedAt = now
	}
	cp := *p
	return &cp, nil
}

func (m *memLedger) IsCompleted(_ context.Context, userID, lessonID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.records[[2]uuid.UUID{userID, lessonID}]
	return ok && p.IsCompleted, nil
}

func (m *memLedger) CountCompleted(_ context.Context, courseID, userID uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for key, p := range m.records {
		if key[0] == userID && p.IsCompleted && m.lessonCourse[key[1]] == courseID {
			n++
		}
	}
	return n, nil
}

func (m *memLedger) recordCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

// memCatalog counts lessons per course from the ledger's lesson table.
type memCatalog struct {
	ledger *memLedger
}

func (m *memCatalog) CountLessons(_ context.Context, courseID uuid.UUID) (int, error) {
	m.ledger.mu.Lock()
	defer m.ledger.mu.Unlock()
	n := 0
	for _, cid := range m.ledger.lessonCourse {
		if cid == courseID {
			n++
		}
	}
	return n, nil
}

// memLessonFinder resolves lessons for the toggle handler.
type memLessonFinder struct {
	ledger *memLedger
}

func (m *memLessonFinder) GetByID(_ context.Context, id uuid.UUID) (*models.Lesson, error) {
	m.ledger.mu.Lock()
	defer m.ledger.mu.Unlock()
	courseID, ok := m.ledger.lessonCourse[id]
	if !ok {
		return nil, ErrLessonNotFound
	}
	return &models.Lesson{ID: id, CourseID: courseID, Title: "lesson", Duration: models.DurationUnknown}, nil
}
