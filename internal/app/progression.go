package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"battlebrain-service/internal/domain"
)

// StudentRepository persists the students collection as one document. Every
// mutation is a whole-collection read-modify-write; last writer wins.
type StudentRepository interface {
	LoadStudents(ctx context.Context) ([]domain.Student, error)
	SaveStudents(ctx context.Context, students []domain.Student) error
}

// AttemptLogRepository appends flattened attempt rows consumed by admin reporting.
type AttemptLogRepository interface {
	AppendAttempt(ctx context.Context, record domain.AttemptRecord) error
	ListAttempts(ctx context.Context, adminEmail string) ([]domain.AttemptRecord, error)
}

// StageState is the progression state reported after a stage submission.
type StageState int

const (
	StateNotStarted StageState = iota
	StateInProgress
	StateLocked
	StateCompleted
)

func (s StageState) String() string {
	switch s {
	case StateNotStarted:
		return "notStarted"
	case StateInProgress:
		return "inProgress"
	case StateLocked:
		return "locked"
	case StateCompleted:
		return "completed"
	}
	return "unknown"
}

// StageOutcome describes the result of one SubmitStage call.
type StageOutcome struct {
	State      StageState    `json:"state"`
	StageIndex int           `json:"stageIndex"`
	NextStage  int           `json:"nextStage,omitempty"` // meaningful only when State == StateInProgress
	Score      int           `json:"score"`
	Passed     bool          `json:"passed"`
	Status     domain.Status `json:"status"`
	// AlreadyTerminal marks an idempotent no-op: the quiz was locked or
	// completed before this call and nothing was written.
	AlreadyTerminal bool `json:"alreadyTerminal,omitempty"`
}

// Engine is the quiz progression state machine. Per (student, quiz) pair:
// NotStarted -> InProgress(0..2) -> Locked(failedStage) | Completed, with
// Locked and Completed terminal.
type Engine struct {
	students StudentRepository
	attempts AttemptLogRepository // optional; nil disables reporting rows
	now      func() time.Time
}

func NewEngine(students StudentRepository, attempts AttemptLogRepository) *Engine {
	return NewEngineWithClock(students, attempts, time.Now)
}

// NewEngineWithClock allows deterministic timestamps in tests.
func NewEngineWithClock(students StudentRepository, attempts AttemptLogRepository, now func() time.Time) *Engine {
	return &Engine{students: students, attempts: attempts, now: now}
}

// SubmitStage scores the submitted answers for one stage and advances the
// student's per-quiz status. answers aligns index-for-index with the stage's
// questions; a missing or empty entry always counts as incorrect. Submissions
// against a locked or completed quiz report the existing terminal state
// without writing anything.
func (e *Engine) SubmitStage(ctx context.Context, key domain.StudentKey, quiz domain.Quiz, stageIndex int, answers []string) (StageOutcome, error) {
	if stageIndex < 0 || stageIndex >= domain.StageCount {
		return StageOutcome{}, domain.ErrStageOutOfRange
	}
	if stageIndex >= len(quiz.Stages) {
		return StageOutcome{}, fmt.Errorf("%w: %d stages", domain.ErrMalformedQuiz, len(quiz.Stages))
	}

	students, err := e.students.LoadStudents(ctx)
	if err != nil {
		return StageOutcome{}, fmt.Errorf("load students: %w", err)
	}
	idx := findStudent(students, key)
	if idx < 0 {
		return StageOutcome{}, domain.ErrStudentNotFound
	}
	student := students[idx]

	quizKey := domain.QuizKey(quiz)
	if status, ok := student.QuizStatus[quizKey]; ok && status.Terminal() {
		out := StageOutcome{StageIndex: stageIndex, Status: status, AlreadyTerminal: true, State: StateLocked}
		if status.Completed {
			out.State = StateCompleted
		}
		return out, nil
	}

	stage := quiz.Stages[stageIndex]
	score := scoreStage(stage, answers)
	passed := score >= domain.Threshold(stageIndex)

	if student.Progress == nil {
		student.Progress = make(map[string][]domain.StageResult)
	}
	if student.QuizStatus == nil {
		student.QuizStatus = make(map[string]domain.Status)
	}
	progress := student.Progress[quizKey]
	for len(progress) <= stageIndex {
		progress = append(progress, domain.StageResult{})
	}
	progress[stageIndex] = domain.StageResult{Score: score, Passed: passed}
	student.Progress[quizKey] = progress

	out := StageOutcome{StageIndex: stageIndex, Score: score, Passed: passed}
	switch {
	case !passed:
		out.State = StateLocked
		out.Status = domain.Status{Locked: true, FailedStage: stageIndex + 1}
	case stageIndex < domain.StageCount-1:
		out.State = StateInProgress
		out.NextStage = stageIndex + 1
		out.Status = domain.Status{} // neutral marker: passed so far, not yet terminal
	default:
		out.State = StateCompleted
		out.Status = domain.Status{Completed: true}
	}
	student.QuizStatus[quizKey] = out.Status

	students[idx] = student
	if err := e.students.SaveStudents(ctx, students); err != nil {
		return StageOutcome{}, fmt.Errorf("save students: %w", err)
	}

	// Reporting rows are best effort: there is no cross-collection transaction,
	// and a failed append must not undo the progression write.
	if e.attempts != nil {
		record := domain.AttemptRecord{
			AdminEmail:  domain.FoldEmail(student.AdminEmail),
			StudentKey:  key.String(),
			StudentName: student.Name,
			QuizKey:     quizKey,
			Score:       score / (100 / domain.QuestionsPerStage),
			Total:       domain.QuestionsPerStage,
			Percentage:  score,
			CreatedAt:   e.now(),
		}
		if err := e.attempts.AppendAttempt(ctx, record); err != nil {
			log.Printf("append attempt record for %s: %v", quizKey, err)
		}
	}
	return out, nil
}

// DisplayState computes the read-side view for one student/quiz pair without
// mutation; see ComputeDisplayState.
func (e *Engine) DisplayState(ctx context.Context, key domain.StudentKey, quizKey string) (DisplayState, error) {
	students, err := e.students.LoadStudents(ctx)
	if err != nil {
		return DisplayState{}, fmt.Errorf("load students: %w", err)
	}
	idx := findStudent(students, key)
	if idx < 0 {
		return DisplayState{}, domain.ErrStudentNotFound
	}
	return ComputeDisplayState(students[idx], quizKey), nil
}

// scoreStage counts index-aligned matches and quantizes to a 0..100 percent.
func scoreStage(stage domain.Stage, answers []string) int {
	if len(stage.Questions) == 0 {
		return 0
	}
	correct := 0
	for i, q := range stage.Questions {
		if i < len(answers) && answers[i] != "" && answers[i] == q.Answer {
			correct++
		}
	}
	return correct * 100 / len(stage.Questions)
}

func findStudent(students []domain.Student, key domain.StudentKey) int {
	for i := range students {
		if key.Matches(students[i]) {
			return i
		}
	}
	return -1
}
