package memory

import (
	"context"
	"testing"
	"time"

	"battlebrain-service/internal/domain"
)

func TestQuestionBankCachesLoads(t *testing.T) {
	loader := &countingLoader{
		BankLoader: NewStaticBankLoader(map[string][]domain.Question{
			BankKey("JSS1", "Maths"): {{Question: "q", Options: []string{"A", "B", "C", "D"}, Answer: "A"}},
		}),
	}
	bank := NewQuestionBank(loader, time.Minute)

	if _, err := bank.Questions(context.Background(), "JSS1", "Maths"); err != nil {
		t.Fatalf("load: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls)
	}

	// Second call should hit cache, loader not incremented.
	if _, err := bank.Questions(context.Background(), "JSS1", "Maths"); err != nil {
		t.Fatalf("load: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
}

func TestQuestionBankMissingSubject(t *testing.T) {
	bank := NewQuestionBank(NewStaticBankLoader(nil), time.Minute)

	_, err := bank.Questions(context.Background(), "SS1", "Physics")
	if err != domain.ErrBankNotFound {
		t.Fatalf("expected ErrBankNotFound, got %v", err)
	}
}

type countingLoader struct {
	BankLoader
	calls int
}

func (l *countingLoader) LoadBank(ctx context.Context, class, subject string) ([]domain.Question, error) {
	l.calls++
	return l.BankLoader.LoadBank(ctx, class, subject)
}
