package app_test

import (
	"context"
	"testing"

	"battlebrain-service/internal/app"
	"battlebrain-service/internal/domain"
	"battlebrain-service/internal/infra/memory"
)

func TestResolveVisibleQuizzesFiltersByClassAndEmail(t *testing.T) {
	// Scenario: an SS2 student sees nothing from a JSS1-only admin.
	ctx := context.Background()
	store := memory.NewRecordStore()
	students := app.NewStudentService(store, store)
	student, err := students.Register(ctx, "Bola", "Riverside", "SS2")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	quizzes := []domain.Quiz{
		{ID: 1, AdminEmail: "admin@example.com", Class: "JSS1", Subject: "Maths"},
		{ID: 2, AdminEmail: "admin@example.com", Class: "SS2", Subject: "Physics"},
		{ID: 3, AdminEmail: "other@example.com", Class: "SS2", Subject: "Maths"},
	}
	if err := store.SaveQuizzes(ctx, quizzes); err != nil {
		t.Fatalf("save quizzes: %v", err)
	}

	resolver := app.NewLinkResolver(store, store)
	result, err := resolver.ResolveVisibleQuizzes(ctx, student.Key(), " Admin@Example.COM ")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if result.NoQuizzesForAdmin {
		t.Fatalf("admin has quizzes, warning must be off")
	}
	if len(result.Quizzes) != 1 || result.Quizzes[0].ID != 2 {
		t.Fatalf("expected only the SS2 quiz, got %+v", result.Quizzes)
	}
}

func TestResolveClassMismatchYieldsEmpty(t *testing.T) {
	ctx := context.Background()
	store := memory.NewRecordStore()
	students := app.NewStudentService(store, store)
	student, _ := students.Register(ctx, "Bola", "Riverside", "SS2")

	_ = store.SaveQuizzes(ctx, []domain.Quiz{
		{ID: 1, AdminEmail: "admin@example.com", Class: "JSS1", Subject: "Maths"},
	})

	resolver := app.NewLinkResolver(store, store)
	result, err := resolver.ResolveVisibleQuizzes(ctx, student.Key(), "admin@example.com")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	// Email matched, class did not: empty result but no warning.
	if len(result.Quizzes) != 0 {
		t.Fatalf("expected empty result, got %+v", result.Quizzes)
	}
	if result.NoQuizzesForAdmin {
		t.Fatalf("warning is reserved for admins with no quizzes at all")
	}
}

func TestResolveRecordsLinkEvenWithoutQuizzes(t *testing.T) {
	ctx := context.Background()
	store := memory.NewRecordStore()
	students := app.NewStudentService(store, store)
	student, _ := students.Register(ctx, "Bola", "Riverside", "SS2")

	resolver := app.NewLinkResolver(store, store)
	result, err := resolver.ResolveVisibleQuizzes(ctx, student.Key(), "  new-admin@example.com ")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !result.NoQuizzesForAdmin {
		t.Fatalf("expected the no-quizzes warning")
	}
	if result.AdminEmail != "new-admin@example.com" {
		t.Fatalf("expected trimmed email, got %q", result.AdminEmail)
	}

	// The link is recorded regardless; quizzes may be created later.
	stored, _ := store.LoadStudents(ctx)
	if stored[0].AdminEmail != "new-admin@example.com" {
		t.Fatalf("link not persisted: %q", stored[0].AdminEmail)
	}
}

func TestResolveUnknownStudent(t *testing.T) {
	store := memory.NewRecordStore()
	resolver := app.NewLinkResolver(store, store)

	_, err := resolver.ResolveVisibleQuizzes(context.Background(), domain.NewStudentKey("Ghost", "", "SS1"), "a@b.co")
	if err != domain.ErrStudentNotFound {
		t.Fatalf("expected ErrStudentNotFound, got %v", err)
	}
}
