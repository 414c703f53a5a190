package redis

import (
	"context"
	"testing"

	"battlebrain-service/internal/domain"
	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T) (*RecordStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRecordStore(client), mr
}

func TestRecordStoreStudentsDocumentRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestStore(t)

	students := []domain.Student{{
		Name:   "Ada",
		School: "Hillcrest",
		Class:  "JSS1",
		QuizStatus: map[string]domain.Status{
			"JSS1-Maths-1": {Locked: true, FailedStage: 2},
		},
		Progress: map[string][]domain.StageResult{
			"JSS1-Maths-1": {{Score: 70, Passed: true}, {Score: 30, Passed: false}},
		},
	}}
	if err := store.SaveStudents(ctx, students); err != nil {
		t.Fatalf("save: %v", err)
	}
	if !mr.Exists("store:students") {
		t.Fatalf("expected a single collection document")
	}

	loaded, err := store.LoadStudents(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded) != 1 {
		t.Fatalf("expected 1 student, got %d", len(loaded))
	}
	status := loaded[0].QuizStatus["JSS1-Maths-1"]
	if !status.Locked || status.FailedStage != 2 {
		t.Fatalf("status lost in round trip: %+v", status)
	}
	if len(loaded[0].Progress["JSS1-Maths-1"]) != 2 {
		t.Fatalf("progress lost in round trip")
	}
}

func TestRecordStoreMissingKeyIsEmptyCollection(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	students, err := store.LoadStudents(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(students) != 0 {
		t.Fatalf("expected empty collection, got %d", len(students))
	}
}

func TestRecordStoreMalformedDocumentRecovers(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestStore(t)

	// A corrupted document falls back to an empty collection instead of
	// failing the session.
	mr.Set("store:students", "{not json")
	students, err := store.LoadStudents(ctx)
	if err != nil {
		t.Fatalf("load must recover, got %v", err)
	}
	if len(students) != 0 {
		t.Fatalf("expected empty fallback, got %d", len(students))
	}

	// The next save overwrites the corrupted document.
	if err := store.SaveStudents(ctx, []domain.Student{{Name: "Ada", Class: "JSS1"}}); err != nil {
		t.Fatalf("save: %v", err)
	}
	students, err = store.LoadStudents(ctx)
	if err != nil || len(students) != 1 {
		t.Fatalf("expected recovered collection, got %d err=%v", len(students), err)
	}
}

func TestRecordStoreAttemptsAppend(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	_ = store.AppendAttempt(ctx, domain.AttemptRecord{AdminEmail: "a@x.co", QuizKey: "k1", Percentage: 70})
	_ = store.AppendAttempt(ctx, domain.AttemptRecord{AdminEmail: "a@x.co", QuizKey: "k2", Percentage: 40})
	_ = store.AppendAttempt(ctx, domain.AttemptRecord{AdminEmail: "b@x.co", QuizKey: "k3", Percentage: 90})

	records, err := store.ListAttempts(ctx, "a@x.co")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
}

func TestRecordStoreQuizzesAndAdmins(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	quiz := domain.Quiz{ID: 1700000000000, AdminEmail: "a@x.co", Class: "JSS1", Subject: "Maths"}
	if err := store.SaveQuizzes(ctx, []domain.Quiz{quiz}); err != nil {
		t.Fatalf("save quizzes: %v", err)
	}
	quizzes, err := store.LoadQuizzes(ctx)
	if err != nil || len(quizzes) != 1 || quizzes[0].ID != quiz.ID {
		t.Fatalf("quiz round trip failed: %+v err=%v", quizzes, err)
	}

	admins, _ := store.LoadAdmins(ctx)
	admins["a@x.co"] = domain.Admin{Name: "A", Email: "a@x.co", Verified: true}
	if err := store.SaveAdmins(ctx, admins); err != nil {
		t.Fatalf("save admins: %v", err)
	}
	loaded, err := store.LoadAdmins(ctx)
	if err != nil || !loaded["a@x.co"].Verified {
		t.Fatalf("admin round trip failed: %+v err=%v", loaded, err)
	}
}
