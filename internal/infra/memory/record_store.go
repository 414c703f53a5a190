package memory

import (
	"context"
	"sync"

	"battlebrain-service/internal/domain"
)

// RecordStore is an in-memory record store holding each collection as one
// independently readable/writable document. It backs the no-Redis deployment
// and the unit tests. Loads return copies so callers can mutate freely before
// saving the whole collection back.
type RecordStore struct {
	mu       sync.RWMutex
	admins   map[string]domain.Admin
	students []domain.Student
	quizzes  []domain.Quiz
	attempts []domain.AttemptRecord
}

func NewRecordStore() *RecordStore {
	return &RecordStore{admins: make(map[string]domain.Admin)}
}

func (s *RecordStore) LoadAdmins(_ context.Context) (map[string]domain.Admin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]domain.Admin, len(s.admins))
	for k, v := range s.admins {
		out[k] = v
	}
	return out, nil
}

func (s *RecordStore) SaveAdmins(_ context.Context, admins map[string]domain.Admin) error {
	copied := make(map[string]domain.Admin, len(admins))
	for k, v := range admins {
		copied[k] = v
	}
	s.mu.Lock()
	s.admins = copied
	s.mu.Unlock()
	return nil
}

func (s *RecordStore) LoadStudents(_ context.Context) ([]domain.Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneStudents(s.students), nil
}

func (s *RecordStore) SaveStudents(_ context.Context, students []domain.Student) error {
	copied := cloneStudents(students)
	s.mu.Lock()
	s.students = copied
	s.mu.Unlock()
	return nil
}

func (s *RecordStore) LoadQuizzes(_ context.Context) ([]domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Quiz, len(s.quizzes))
	copy(out, s.quizzes)
	return out, nil
}

func (s *RecordStore) SaveQuizzes(_ context.Context, quizzes []domain.Quiz) error {
	copied := make([]domain.Quiz, len(quizzes))
	copy(copied, quizzes)
	s.mu.Lock()
	s.quizzes = copied
	s.mu.Unlock()
	return nil
}

func (s *RecordStore) AppendAttempt(_ context.Context, record domain.AttemptRecord) error {
	s.mu.Lock()
	s.attempts = append(s.attempts, record)
	s.mu.Unlock()
	return nil
}

func (s *RecordStore) ListAttempts(_ context.Context, adminEmail string) ([]domain.AttemptRecord, error) {
	folded := domain.FoldEmail(adminEmail)
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.AttemptRecord, 0, len(s.attempts))
	for _, rec := range s.attempts {
		if rec.AdminEmail == folded {
			out = append(out, rec)
		}
	}
	return out, nil
}

// cloneStudents deep-copies the per-quiz maps so a caller's edits never leak
// into the stored collection before SaveStudents.
func cloneStudents(students []domain.Student) []domain.Student {
	out := make([]domain.Student, len(students))
	for i, st := range students {
		copied := st
		if st.Progress != nil {
			copied.Progress = make(map[string][]domain.StageResult, len(st.Progress))
			for k, results := range st.Progress {
				rs := make([]domain.StageResult, len(results))
				copy(rs, results)
				copied.Progress[k] = rs
			}
		}
		if st.QuizStatus != nil {
			copied.QuizStatus = make(map[string]domain.Status, len(st.QuizStatus))
			for k, v := range st.QuizStatus {
				copied.QuizStatus[k] = v
			}
		}
		out[i] = copied
	}
	return out
}
