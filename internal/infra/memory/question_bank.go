package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"battlebrain-service/internal/domain"
	"golang.org/x/sync/singleflight"
)

// BankLoader fetches bank questions from a backing store (e.g. Postgres).
type BankLoader interface {
	LoadBank(ctx context.Context, class, subject string) ([]domain.Question, error)
}

// QuestionBank caches bank contents with TTL so repeated quiz generations
// don't re-hit the backing store.
type QuestionBank struct {
	loader BankLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedBank
}

type cachedBank struct {
	questions []domain.Question
	expiresAt time.Time
}

func NewQuestionBank(loader BankLoader, ttl time.Duration) *QuestionBank {
	return &QuestionBank{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedBank),
	}
}

func (b *QuestionBank) Questions(ctx context.Context, class, subject string) ([]domain.Question, error) {
	key := class + "/" + subject
	now := b.clock()

	b.mu.RLock()
	if entry, ok := b.cache[key]; ok && entry.expiresAt.After(now) {
		b.mu.RUnlock()
		return entry.questions, nil
	}
	b.mu.RUnlock()

	result, err, _ := b.sf.Do(key, func() (interface{}, error) {
		now := b.clock()
		b.mu.RLock()
		if entry, ok := b.cache[key]; ok && entry.expiresAt.After(now) {
			b.mu.RUnlock()
			return entry.questions, nil
		}
		b.mu.RUnlock()

		questions, err := b.loader.LoadBank(ctx, class, subject)
		if err != nil {
			return nil, err
		}

		b.mu.Lock()
		b.cache[key] = cachedBank{
			questions: questions,
			expiresAt: now.Add(b.ttlWithJitter()),
		}
		b.mu.Unlock()
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

func (b *QuestionBank) ttlWithJitter() time.Duration {
	if b.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(b.ttl) / 10
	return b.ttl + time.Duration(b.rnd.Int63n(jitterMax+1))
}

// StaticBankLoader is a loader backed by an in-memory map (tests/demos).
type StaticBankLoader struct {
	banks map[string][]domain.Question
}

// NewStaticBankLoader builds a loader from class/subject keyed question lists.
func NewStaticBankLoader(banks map[string][]domain.Question) *StaticBankLoader {
	return &StaticBankLoader{banks: banks}
}

// BankKey joins class and subject the way StaticBankLoader maps are keyed.
func BankKey(class, subject string) string {
	return class + "/" + subject
}

func (l *StaticBankLoader) LoadBank(_ context.Context, class, subject string) ([]domain.Question, error) {
	if questions, ok := l.banks[BankKey(class, subject)]; ok {
		return questions, nil
	}
	return nil, domain.ErrBankNotFound
}
