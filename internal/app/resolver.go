package app

import (
	"context"
	"fmt"
	"strings"

	"battlebrain-service/internal/domain"
)

// LinkResult is the outcome of resolving a student's admin email link.
type LinkResult struct {
	// Quizzes visible to the student: same class, owned by the linked admin.
	Quizzes []domain.Quiz `json:"quizzes"`
	// AdminEmail is the trimmed email recorded on the student record.
	AdminEmail string `json:"adminEmail"`
	// NoQuizzesForAdmin warns that the admin owns no quizzes at all yet. The
	// link is still recorded; quizzes may be created after the student links.
	NoQuizzesForAdmin bool `json:"noQuizzesForAdmin,omitempty"`
}

// LinkResolver matches a student's asserted admin email against available quizzes.
type LinkResolver struct {
	students StudentRepository
	quizzes  QuizRepository
}

func NewLinkResolver(students StudentRepository, quizzes QuizRepository) *LinkResolver {
	return &LinkResolver{students: students, quizzes: quizzes}
}

// ResolveVisibleQuizzes records the typed admin email on the student record and
// returns the quizzes the student may see: quiz.Class equal to the student's
// class and quiz owner equal to the folded input email. An admin with no
// quizzes is a warning, never an error.
func (r *LinkResolver) ResolveVisibleQuizzes(ctx context.Context, key domain.StudentKey, adminEmailInput string) (LinkResult, error) {
	trimmed := strings.TrimSpace(adminEmailInput)
	folded := domain.FoldEmail(adminEmailInput)

	students, err := r.students.LoadStudents(ctx)
	if err != nil {
		return LinkResult{}, fmt.Errorf("load students: %w", err)
	}
	idx := findStudent(students, key)
	if idx < 0 {
		return LinkResult{}, domain.ErrStudentNotFound
	}
	student := students[idx]
	student.AdminEmail = trimmed
	students[idx] = student
	if err := r.students.SaveStudents(ctx, students); err != nil {
		return LinkResult{}, fmt.Errorf("save students: %w", err)
	}

	quizzes, err := r.quizzes.LoadQuizzes(ctx)
	if err != nil {
		return LinkResult{}, fmt.Errorf("load quizzes: %w", err)
	}

	result := LinkResult{AdminEmail: trimmed, Quizzes: []domain.Quiz{}}
	adminHasQuizzes := false
	for _, q := range quizzes {
		if domain.FoldEmail(q.AdminEmail) != folded {
			continue
		}
		adminHasQuizzes = true
		if q.Class == student.Class {
			result.Quizzes = append(result.Quizzes, q)
		}
	}
	result.NoQuizzesForAdmin = !adminHasQuizzes
	return result, nil
}
