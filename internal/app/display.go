package app

import (
	"hash/fnv"

	"battlebrain-service/internal/domain"
)

// DisplayState is the read-side view of one student/quiz pair, computed
// without mutation. It drives rendering only; submission authorization always
// comes from quizStatus[quizKey], never from the derived stage index here.
type DisplayState struct {
	State       StageState `json:"state"`
	FailedStage int        `json:"failedStage,omitempty"` // 1-indexed, set when State == StateLocked
	// StageIndex is the 0-indexed stage used for flavor text. It is a display
	// heuristic derived across all quiz statuses, not authoritative state.
	StageIndex int    `json:"stageIndex"`
	Eligible   bool   `json:"eligible"` // may start / continue the quiz
	Quote      string `json:"quote"`
}

var startQuotes = [domain.StageCount][]string{
	{
		"Stage 1: Stay calm. Read each question twice before answering.",
		"Stage 1: Focus on accuracy first. No rushing.",
		"Stage 1: You've got this. Start strong and build momentum.",
	},
	{
		"Stage 2: You're leveling up. Stay sharp and trust your mind.",
		"Stage 2: Don't panic. One question at a time.",
		"Stage 2: Keep your confidence steady. You're doing well.",
	},
	{
		"Stage 3: This is elite level. Be precise and fearless.",
		"Stage 3: Champions stay calm under pressure. You're ready.",
		"Stage 3: Final stage. Keep focus and finish strong!",
	},
}

var winQuotes = [domain.StageCount][]string{
	{
		"Great start! Keep going, Stage 2 is waiting.",
		"Well done! You passed Stage 1. Aim higher!",
		"Nice! Keep your energy, don't relax yet.",
	},
	{
		"Incredible! Stage 3 is where legends are made.",
		"You're flying! Keep that same focus.",
		"Stage 2 cleared! You're closer than you think.",
	},
	{
		"CHAMPION! You cleared Stage 3. Respect!",
		"You did it! That's elite performance.",
		"Victory! Keep learning and stay on top.",
	},
}

var failQuotes = [domain.StageCount][]string{
	{
		"Stage 1 setback. Learn the pattern and try again.",
		"Don't give up. Start again, smarter.",
		"You can do this. Reset and come back stronger.",
	},
	{
		"Stage 2 is tough. Review your weak areas and retry.",
		"Loss is a lesson. You're improving.",
		"Keep pushing. You're not far from passing.",
	},
	{
		"Stage 3 is for the brave. You were close!",
		"Respect for reaching Stage 3. Come back stronger.",
		"Almost there. Refocus and take it again.",
	},
}

// CurrentStage derives the 1-based stage number shown on the dashboard from
// the student's statuses across all quizzes: 3 if any quiz is completed,
// otherwise the highest failed stage, otherwise 1.
func CurrentStage(student domain.Student) int {
	if len(student.QuizStatus) == 0 {
		return 1
	}
	maxFailed := 0
	for _, status := range student.QuizStatus {
		if status.Completed {
			return domain.StageCount
		}
		if status.Locked && status.FailedStage > maxFailed {
			maxFailed = status.FailedStage
		}
	}
	if maxFailed > 0 {
		return maxFailed
	}
	return 1
}

// ComputeDisplayState renders the visible state for one quiz key:
// no status entry means eligible to start at stage 0, a locked status shows
// only the lock message, a completed status shows only the completion message.
func ComputeDisplayState(student domain.Student, quizKey string) DisplayState {
	status, started := student.QuizStatus[quizKey]

	stageNo := CurrentStage(student)
	if status.FailedStage > 0 {
		stageNo = status.FailedStage
	}
	stageIndex := stageNo - 1
	if stageIndex < 0 {
		stageIndex = 0
	}
	if stageIndex > domain.StageCount-1 {
		stageIndex = domain.StageCount - 1
	}

	out := DisplayState{StageIndex: stageIndex}
	switch {
	case status.Locked:
		out.State = StateLocked
		out.FailedStage = status.FailedStage
		out.Quote = pickQuote(quizKey, "fail", failQuotes[stageIndex])
	case status.Completed:
		out.State = StateCompleted
		out.Quote = pickQuote(quizKey, "win", winQuotes[stageIndex])
	default:
		out.State = StateNotStarted
		if started {
			out.State = StateInProgress
		}
		out.Eligible = true
		out.Quote = pickQuote(quizKey, "start", startQuotes[stageIndex])
	}
	return out
}

// pickQuote selects deterministically per quiz key so repeated renders of the
// same card show the same quote.
func pickQuote(quizKey, kind string, quotes []string) string {
	h := fnv.New32a()
	h.Write([]byte(quizKey))
	h.Write([]byte{'-'})
	h.Write([]byte(kind))
	return quotes[h.Sum32()%uint32(len(quotes))]
}
