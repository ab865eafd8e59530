package store

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"registrar/internal/student/models"
	"registrar/pkg/platform/sentinel"
)

// InMemory is a map-backed store for tests and local development. It
// enforces the same uniqueness semantics as the real backends.
type InMemory struct {
	mu          sync.RWMutex
	byID        map[string]*models.Student
	byStudentID map[string]*models.Student
	byEmail     map[string]*models.Student
	nextID      int64
}

var _ Store = (*InMemory)(nil)

func NewInMemory() *InMemory {
	return &InMemory{
		byID:        make(map[string]*models.Student),
		byStudentID: make(map[string]*models.Student),
		byEmail:     make(map[string]*models.Student),
	}
}

func (m *InMemory) Create(_ context.Context, student *models.Student) (*models.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byStudentID[student.StudentID]; ok {
		return nil, ErrStudentIDExists
	}
	email := strings.ToLower(student.Email)
	if _, ok := m.byEmail[email]; ok {
		return nil, ErrEmailExists
	}

	m.nextID++
	stored := clone(student)
	stored.ID = strconv.FormatInt(m.nextID, 10)

	m.byID[stored.ID] = stored
	m.byStudentID[stored.StudentID] = stored
	m.byEmail[email] = stored

	return clone(stored), nil
}

func (m *InMemory) FindByStudentID(_ context.Context, studentID string) (*models.Student, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.byStudentID[studentID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return clone(s), nil
}

func (m *InMemory) FindByEmail(_ context.Context, email string) (*models.Student, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.byEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return clone(s), nil
}

func (m *InMemory) Count(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byID), nil
}

func (m *InMemory) Ping(_ context.Context) error {
	return nil
}

// Clear removes every record. Test helper.
func (m *InMemory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID = make(map[string]*models.Student)
	m.byStudentID = make(map[string]*models.Student)
	m.byEmail = make(map[string]*models.Student)
	m.nextID = 0
}

// clone copies a record so callers never share memory with the store.
func clone(s *models.Student) *models.Student {
	out := *s
	if s.DateOfBirth != nil {
		d := *s.DateOfBirth
		out.DateOfBirth = &d
	}
	return &out
}
