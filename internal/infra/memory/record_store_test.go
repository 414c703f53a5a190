package memory

import (
	"context"
	"testing"

	"battlebrain-service/internal/domain"
)

func TestRecordStoreStudentsRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewRecordStore()

	students := []domain.Student{{
		Name:  "Ada",
		Class: "JSS1",
		QuizStatus: map[string]domain.Status{
			"JSS1-Maths-1": {Locked: true, FailedStage: 1},
		},
	}}
	if err := store.SaveStudents(ctx, students); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := store.LoadStudents(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded) != 1 || loaded[0].QuizStatus["JSS1-Maths-1"].FailedStage != 1 {
		t.Fatalf("round trip lost data: %+v", loaded)
	}
}

func TestRecordStoreLoadReturnsIsolatedCopy(t *testing.T) {
	ctx := context.Background()
	store := NewRecordStore()

	_ = store.SaveStudents(ctx, []domain.Student{{
		Name:       "Ada",
		Class:      "JSS1",
		QuizStatus: map[string]domain.Status{"k": {}},
		Progress:   map[string][]domain.StageResult{"k": {{Score: 40, Passed: true}}},
	}})

	loaded, _ := store.LoadStudents(ctx)
	loaded[0].QuizStatus["k"] = domain.Status{Locked: true, FailedStage: 3}
	loaded[0].Progress["k"][0] = domain.StageResult{Score: 0}

	// Mutating the loaded copy must not leak into the store before SaveStudents.
	fresh, _ := store.LoadStudents(ctx)
	if fresh[0].QuizStatus["k"].Locked {
		t.Fatalf("status mutation leaked into the store")
	}
	if fresh[0].Progress["k"][0].Score != 40 {
		t.Fatalf("progress mutation leaked into the store")
	}
}

func TestRecordStoreAttemptsFilterByAdmin(t *testing.T) {
	ctx := context.Background()
	store := NewRecordStore()

	_ = store.AppendAttempt(ctx, domain.AttemptRecord{AdminEmail: "a@x.co", QuizKey: "k1"})
	_ = store.AppendAttempt(ctx, domain.AttemptRecord{AdminEmail: "b@x.co", QuizKey: "k2"})

	records, err := store.ListAttempts(ctx, "A@X.co")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 1 || records[0].QuizKey != "k1" {
		t.Fatalf("expected only a@x.co records, got %+v", records)
	}
}

func TestRecordStoreAdminsRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewRecordStore()

	admins, err := store.LoadAdmins(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(admins) != 0 {
		t.Fatalf("expected empty map, got %d", len(admins))
	}

	admins["a@x.co"] = domain.Admin{Name: "A", Email: "a@x.co", Verified: true}
	if err := store.SaveAdmins(ctx, admins); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, _ := store.LoadAdmins(ctx)
	if !loaded["a@x.co"].Verified {
		t.Fatalf("round trip lost admin")
	}
}
