package app

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"battlebrain-service/internal/domain"
)

// StudentService covers registration and the read-side lookups the student
// surface needs.
type StudentService struct {
	students StudentRepository
	quizzes  QuizRepository
}

func NewStudentService(students StudentRepository, quizzes QuizRepository) *StudentService {
	return &StudentService{students: students, quizzes: quizzes}
}

// Register appends a fresh student record. The admin link is established later
// from the dashboard; progress and statuses start empty.
func (s *StudentService) Register(ctx context.Context, name, school, class string) (domain.Student, error) {
	students, err := s.students.LoadStudents(ctx)
	if err != nil {
		return domain.Student{}, fmt.Errorf("load students: %w", err)
	}
	student := domain.Student{
		Name:       strings.TrimSpace(name),
		School:     strings.TrimSpace(school),
		Class:      strings.TrimSpace(class),
		Progress:   make(map[string][]domain.StageResult),
		QuizStatus: make(map[string]domain.Status),
	}
	students = append(students, student)
	if err := s.students.SaveStudents(ctx, students); err != nil {
		return domain.Student{}, fmt.Errorf("save students: %w", err)
	}
	return student, nil
}

// Get returns the student record for an identity key.
func (s *StudentService) Get(ctx context.Context, key domain.StudentKey) (domain.Student, error) {
	students, err := s.students.LoadStudents(ctx)
	if err != nil {
		return domain.Student{}, fmt.Errorf("load students: %w", err)
	}
	idx := findStudent(students, key)
	if idx < 0 {
		return domain.Student{}, domain.ErrStudentNotFound
	}
	return students[idx], nil
}

// AvailableClasses derives the class options for registration from the quizzes
// an admin has created, falling back to the first catalogue class when the
// admin has none yet.
func (s *StudentService) AvailableClasses(ctx context.Context, adminEmail string) ([]string, error) {
	quizzes, err := s.quizzes.LoadQuizzes(ctx)
	if err != nil {
		return nil, fmt.Errorf("load quizzes: %w", err)
	}
	folded := domain.FoldEmail(adminEmail)
	seen := make(map[string]struct{})
	var out []string
	for _, q := range quizzes {
		if domain.FoldEmail(q.AdminEmail) != folded {
			continue
		}
		if _, ok := seen[q.Class]; ok {
			continue
		}
		seen[q.Class] = struct{}{}
		out = append(out, q.Class)
	}
	if len(out) == 0 {
		return domain.Classes()[:1], nil
	}
	sort.Strings(out)
	return out, nil
}
