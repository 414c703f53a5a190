package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"battlebrain-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

// RecordStore keeps each collection as a single JSON document under one key,
// preserving the whole-collection read-modify-write contract of the original
// record store. There is no cross-collection transaction; a failed SET leaves
// the previous document intact.
//
// Keys: store:admins, store:students, store:quizzes, store:progress.
type RecordStore struct {
	client *redis.Client
}

func NewRecordStore(client *redis.Client) *RecordStore {
	return &RecordStore{client: client}
}

const (
	adminsKey   = "store:admins"
	studentsKey = "store:students"
	quizzesKey  = "store:quizzes"
	progressKey = "store:progress"
)

func (s *RecordStore) LoadAdmins(ctx context.Context) (map[string]domain.Admin, error) {
	admins := make(map[string]domain.Admin)
	if err := s.loadDoc(ctx, adminsKey, &admins); err != nil {
		return nil, err
	}
	if admins == nil {
		admins = make(map[string]domain.Admin)
	}
	return admins, nil
}

func (s *RecordStore) SaveAdmins(ctx context.Context, admins map[string]domain.Admin) error {
	return s.saveDoc(ctx, adminsKey, admins)
}

func (s *RecordStore) LoadStudents(ctx context.Context) ([]domain.Student, error) {
	var students []domain.Student
	if err := s.loadDoc(ctx, studentsKey, &students); err != nil {
		return nil, err
	}
	return students, nil
}

func (s *RecordStore) SaveStudents(ctx context.Context, students []domain.Student) error {
	return s.saveDoc(ctx, studentsKey, students)
}

func (s *RecordStore) LoadQuizzes(ctx context.Context) ([]domain.Quiz, error) {
	var quizzes []domain.Quiz
	if err := s.loadDoc(ctx, quizzesKey, &quizzes); err != nil {
		return nil, err
	}
	return quizzes, nil
}

func (s *RecordStore) SaveQuizzes(ctx context.Context, quizzes []domain.Quiz) error {
	return s.saveDoc(ctx, quizzesKey, quizzes)
}

func (s *RecordStore) AppendAttempt(ctx context.Context, record domain.AttemptRecord) error {
	var attempts []domain.AttemptRecord
	if err := s.loadDoc(ctx, progressKey, &attempts); err != nil {
		return err
	}
	attempts = append(attempts, record)
	return s.saveDoc(ctx, progressKey, attempts)
}

func (s *RecordStore) ListAttempts(ctx context.Context, adminEmail string) ([]domain.AttemptRecord, error) {
	var attempts []domain.AttemptRecord
	if err := s.loadDoc(ctx, progressKey, &attempts); err != nil {
		return nil, err
	}
	folded := domain.FoldEmail(adminEmail)
	out := make([]domain.AttemptRecord, 0, len(attempts))
	for _, rec := range attempts {
		if rec.AdminEmail == folded {
			out = append(out, rec)
		}
	}
	return out, nil
}

// loadDoc reads one collection document into v. A missing key leaves v at its
// zero value. A document that fails to parse is treated as an empty
// collection rather than failing the session; the next save overwrites it.
func (s *RecordStore) loadDoc(ctx context.Context, key string, v any) error {
	raw, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		log.Printf("malformed document at %s, falling back to empty collection: %v", key, err)
	}
	return nil
}

func (s *RecordStore) saveDoc(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	if err := s.client.Set(ctx, key, raw, 0).Err(); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}
