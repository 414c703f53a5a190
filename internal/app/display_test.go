package app_test

import (
	"testing"

	"battlebrain-service/internal/app"
	"battlebrain-service/internal/domain"
)

func TestComputeDisplayStateNotStarted(t *testing.T) {
	student := domain.Student{Name: "Ada", Class: "JSS1"}
	state := app.ComputeDisplayState(student, "JSS1-Maths-1")
	if state.State != app.StateNotStarted || !state.Eligible {
		t.Fatalf("expected eligible not-started, got %+v", state)
	}
	if state.StageIndex != 0 {
		t.Fatalf("fresh student shows stage 1 flavor, got index %d", state.StageIndex)
	}
	if state.Quote == "" {
		t.Fatalf("expected a start quote")
	}
}

func TestComputeDisplayStateLocked(t *testing.T) {
	student := domain.Student{
		Name:  "Ada",
		Class: "JSS1",
		QuizStatus: map[string]domain.Status{
			"JSS1-Maths-1": {Locked: true, FailedStage: 2},
		},
	}
	state := app.ComputeDisplayState(student, "JSS1-Maths-1")
	if state.State != app.StateLocked || state.Eligible {
		t.Fatalf("locked quiz must never be startable, got %+v", state)
	}
	if state.FailedStage != 2 || state.StageIndex != 1 {
		t.Fatalf("lock display %+v", state)
	}
}

func TestComputeDisplayStateCompleted(t *testing.T) {
	student := domain.Student{
		Name:  "Ada",
		Class: "JSS1",
		QuizStatus: map[string]domain.Status{
			"JSS1-Maths-1": {Completed: true},
		},
	}
	state := app.ComputeDisplayState(student, "JSS1-Maths-1")
	if state.State != app.StateCompleted || state.Eligible {
		t.Fatalf("completed quiz must never be startable, got %+v", state)
	}
}

func TestComputeDisplayStateNeutralMarkerIsInProgress(t *testing.T) {
	student := domain.Student{
		Name:  "Ada",
		Class: "JSS1",
		QuizStatus: map[string]domain.Status{
			"JSS1-Maths-1": {},
		},
	}
	state := app.ComputeDisplayState(student, "JSS1-Maths-1")
	if state.State != app.StateInProgress || !state.Eligible {
		t.Fatalf("neutral marker renders as in progress, got %+v", state)
	}
}

func TestCurrentStageHeuristic(t *testing.T) {
	if got := app.CurrentStage(domain.Student{}); got != 1 {
		t.Fatalf("no statuses -> stage 1, got %d", got)
	}

	student := domain.Student{QuizStatus: map[string]domain.Status{
		"a": {Locked: true, FailedStage: 2},
		"b": {Locked: true, FailedStage: 1},
	}}
	if got := app.CurrentStage(student); got != 2 {
		t.Fatalf("highest failed stage wins, got %d", got)
	}

	student.QuizStatus["c"] = domain.Status{Completed: true}
	if got := app.CurrentStage(student); got != 3 {
		t.Fatalf("any completion -> stage 3, got %d", got)
	}
}

func TestQuoteStablePerQuizKey(t *testing.T) {
	student := domain.Student{Name: "Ada", Class: "JSS1"}
	first := app.ComputeDisplayState(student, "JSS1-Maths-1").Quote
	for i := 0; i < 10; i++ {
		if got := app.ComputeDisplayState(student, "JSS1-Maths-1").Quote; got != first {
			t.Fatalf("quote must be stable for a quiz key: %q vs %q", first, got)
		}
	}
}
