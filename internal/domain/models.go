package domain

import (
	"fmt"
	"time"
)

const (
	// StageCount is the fixed number of stages per quiz.
	StageCount = 3
	// QuestionsPerStage is the fixed number of questions per stage.
	QuestionsPerStage = 10
	// TotalQuestions is the number of questions a quiz draws from the bank.
	TotalQuestions = StageCount * QuestionsPerStage
	// OptionsPerQuestion is the fixed number of candidate answers.
	OptionsPerQuestion = 4
)

// StageThresholds are the positional pass cutoffs (percent) for stages 0..2.
var StageThresholds = [StageCount]int{40, 60, 80}

// Threshold returns the pass cutoff for a 0-indexed stage.
func Threshold(stageIndex int) int {
	return StageThresholds[stageIndex]
}

// Admin is a self-asserted administrator account. Not a security boundary:
// the password is a stored credential compared verbatim at sign-in.
type Admin struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Verified bool   `json:"verified"`
}

// Question is a single MCQ item: four candidate options, one of which is the answer.
type Question struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Answer   string   `json:"answer"`
}

// Stage is one ordered block of ten questions. StageNo is the 1-based display label.
type Stage struct {
	StageNo   int        `json:"stage"`
	Questions []Question `json:"questions"`
}

// Quiz is immutable after generation: no stage, question, or option changes post-creation.
// ID is the creation timestamp in Unix milliseconds.
type Quiz struct {
	ID         int64   `json:"id"`
	AdminEmail string  `json:"adminEmail"`
	Class      string  `json:"class"`
	Subject    string  `json:"subject"`
	Stages     []Stage `json:"stages"`
}

// Validate checks the fixed quiz shape: exactly 3 stages of 10 questions,
// each question carrying 4 options. Generated quizzes always satisfy this;
// the check guards records arriving from outside the generator.
func (q Quiz) Validate() error {
	if len(q.Stages) != StageCount {
		return fmt.Errorf("%w: %d stages", ErrMalformedQuiz, len(q.Stages))
	}
	for i, stage := range q.Stages {
		if len(stage.Questions) != QuestionsPerStage {
			return fmt.Errorf("%w: stage %d has %d questions", ErrMalformedQuiz, i+1, len(stage.Questions))
		}
		for j, question := range stage.Questions {
			if len(question.Options) != OptionsPerQuestion {
				return fmt.Errorf("%w: stage %d question %d has %d options", ErrMalformedQuiz, i+1, j+1, len(question.Options))
			}
		}
	}
	return nil
}

// StageResult records one scored stage attempt.
type StageResult struct {
	Score  int  `json:"score"`
	Passed bool `json:"passed"`
}

// Status is the per-quiz progression state for one student.
// The zero value is the neutral "passed so far" marker; a missing map entry means
// the quiz was never started. Locked and Completed are terminal and mutually exclusive.
type Status struct {
	Locked      bool `json:"locked"`
	FailedStage int  `json:"failedStage,omitempty"` // 1-indexed stage the student failed at
	Completed   bool `json:"completed"`
}

// Terminal reports whether no further submissions are allowed for this quiz.
func (s Status) Terminal() bool {
	return s.Locked || s.Completed
}

// Student is identified by the (name, school, class) natural key; see Key().
// Progress and QuizStatus are both keyed by quiz key.
type Student struct {
	Name       string                   `json:"name"`
	School     string                   `json:"school"`
	Class      string                   `json:"class"`
	AdminEmail string                   `json:"adminEmail"`
	Progress   map[string][]StageResult `json:"progress"`
	QuizStatus map[string]Status        `json:"quizStatus"`
}

// AttemptRecord is a flattened per-stage attempt row for admin reporting.
type AttemptRecord struct {
	AdminEmail  string    `json:"adminEmail"`
	StudentKey  string    `json:"studentKey"`
	StudentName string    `json:"studentName"`
	QuizKey     string    `json:"quizKey"`
	Score       int       `json:"score"`
	Total       int       `json:"total"`
	Percentage  int       `json:"percentage"`
	CreatedAt   time.Time `json:"createdAt"`
}
