package app

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"battlebrain-service/internal/domain"
)

// QuizRepository persists the quizzes collection as one document,
// read-modify-written whole on every change.
type QuizRepository interface {
	LoadQuizzes(ctx context.Context) ([]domain.Quiz, error)
	SaveQuizzes(ctx context.Context, quizzes []domain.Quiz) error
}

// QuestionBank supplies the eligible questions for a class/subject pair.
type QuestionBank interface {
	Questions(ctx context.Context, class, subject string) ([]domain.Question, error)
}

// QuizService covers the quiz definition use cases: generation, save, delete.
// Generated quizzes are final; there is no edit operation.
type QuizService struct {
	bank    QuestionBank
	quizzes QuizRepository
	now     func() time.Time

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewQuizService(bank QuestionBank, quizzes QuizRepository) *QuizService {
	return NewQuizServiceWithClock(bank, quizzes, time.Now)
}

// NewQuizServiceWithClock allows deterministic IDs and shuffles in tests.
func NewQuizServiceWithClock(bank QuestionBank, quizzes QuizRepository, now func() time.Time) *QuizService {
	return &QuizService{
		bank:    bank,
		quizzes: quizzes,
		now:     now,
		rnd:     rand.New(rand.NewSource(now().UnixNano())),
	}
}

// Generate draws 30 questions uniformly without replacement from the resolved
// bank and partitions them into three ordered stages of ten. The result is not
// persisted; call Save. Fails with ErrInsufficientQuestions when the bank
// holds fewer than 30 eligible questions.
func (s *QuizService) Generate(ctx context.Context, adminEmail, class, subject string) (domain.Quiz, error) {
	bankClass, bankSubject := domain.ResolveBank(class, subject)
	pool, err := s.bank.Questions(ctx, bankClass, bankSubject)
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("load question bank %s/%s: %w", bankClass, bankSubject, err)
	}
	if len(pool) < domain.TotalQuestions {
		return domain.Quiz{}, domain.ErrInsufficientQuestions
	}

	shuffled := make([]domain.Question, len(pool))
	copy(shuffled, pool)
	s.mu.Lock()
	s.rnd.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	s.mu.Unlock()
	picked := shuffled[:domain.TotalQuestions]

	quiz := domain.Quiz{
		ID:         s.now().UnixMilli(),
		AdminEmail: adminEmail,
		Class:      class,
		Subject:    subject,
		Stages:     make([]domain.Stage, 0, domain.StageCount),
	}
	for i := 0; i < domain.StageCount; i++ {
		questions := make([]domain.Question, domain.QuestionsPerStage)
		copy(questions, picked[i*domain.QuestionsPerStage:(i+1)*domain.QuestionsPerStage])
		quiz.Stages = append(quiz.Stages, domain.Stage{StageNo: i + 1, Questions: questions})
	}
	return quiz, nil
}

// Save validates the quiz shape and appends it to the collection.
func (s *QuizService) Save(ctx context.Context, quiz domain.Quiz) error {
	if err := quiz.Validate(); err != nil {
		return err
	}
	quizzes, err := s.quizzes.LoadQuizzes(ctx)
	if err != nil {
		return fmt.Errorf("load quizzes: %w", err)
	}
	quizzes = append(quizzes, quiz)
	if err := s.quizzes.SaveQuizzes(ctx, quizzes); err != nil {
		return fmt.Errorf("save quizzes: %w", err)
	}
	return nil
}

// Delete removes a quiz by id. Student statuses recorded against its key are
// left in place as historical record.
func (s *QuizService) Delete(ctx context.Context, id int64) error {
	quizzes, err := s.quizzes.LoadQuizzes(ctx)
	if err != nil {
		return fmt.Errorf("load quizzes: %w", err)
	}
	kept := quizzes[:0]
	found := false
	for _, q := range quizzes {
		if q.ID == id {
			found = true
			continue
		}
		kept = append(kept, q)
	}
	if !found {
		return domain.ErrQuizNotFound
	}
	if err := s.quizzes.SaveQuizzes(ctx, kept); err != nil {
		return fmt.Errorf("save quizzes: %w", err)
	}
	return nil
}

// ListByAdmin returns the quizzes owned by an admin email (case-folded match).
func (s *QuizService) ListByAdmin(ctx context.Context, adminEmail string) ([]domain.Quiz, error) {
	quizzes, err := s.quizzes.LoadQuizzes(ctx)
	if err != nil {
		return nil, fmt.Errorf("load quizzes: %w", err)
	}
	folded := domain.FoldEmail(adminEmail)
	out := make([]domain.Quiz, 0, len(quizzes))
	for _, q := range quizzes {
		if domain.FoldEmail(q.AdminEmail) == folded {
			out = append(out, q)
		}
	}
	return out, nil
}

// GetByKey locates a quiz by its derived key.
func (s *QuizService) GetByKey(ctx context.Context, quizKey string) (domain.Quiz, error) {
	quizzes, err := s.quizzes.LoadQuizzes(ctx)
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("load quizzes: %w", err)
	}
	for _, q := range quizzes {
		if domain.QuizKey(q) == quizKey {
			return q, nil
		}
	}
	return domain.Quiz{}, domain.ErrQuizNotFound
}
