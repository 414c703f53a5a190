package http

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"battlebrain-service/internal/app"
	"battlebrain-service/internal/domain"
	"github.com/gorilla/websocket"
)

// AttemptHandler runs quiz attempts over a websocket: one connection per
// (student, quiz) attempt, with the stage timer owned server-side so expiry
// auto-submits even if the client goes quiet.
type AttemptHandler struct {
	engine    *app.Engine
	quizzes   *app.QuizService
	stageTime time.Duration
	upgrader  websocket.Upgrader
}

func NewAttemptHandler(engine *app.Engine, quizzes *app.QuizService, stageTime time.Duration) *AttemptHandler {
	return &AttemptHandler{
		engine:    engine,
		quizzes:   quizzes,
		stageTime: stageTime,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type answerPayload struct {
	QuestionIndex int    `json:"questionIndex"`
	Option        string `json:"option"`
}

type outboundMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// questionView is a question with the answer stripped; clients never see the key.
type questionView struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

type stagePayload struct {
	StageIndex      int            `json:"stageIndex"`
	StageNo         int            `json:"stageNo"`
	TimeLeftSeconds int            `json:"timeLeftSeconds"`
	Questions       []questionView `json:"questions"`
}

// wsSender serializes frames into the writer goroutine. The stage timer fires
// on its own goroutine, so sends after the handler returns must become no-ops
// instead of panicking on a closed channel.
type wsSender struct {
	mu     sync.Mutex
	closed bool
	ch     chan outboundMessage
}

func newWSSender() *wsSender {
	return &wsSender{ch: make(chan outboundMessage, 16)}
}

func (s *wsSender) send(msg outboundMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.ch <- msg:
	default:
		// writer stalled or gone; dropping beats blocking the timer goroutine
	}
}

func (s *wsSender) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
}

// ServeAttempt upgrades the request and drives one quiz attempt to a terminal
// state or disconnect. Disconnecting mid-stage abandons the answer buffer with
// no persisted effect.
func (h *AttemptHandler) ServeAttempt(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	name, school, class := q.Get("name"), q.Get("school"), q.Get("class")
	quizKey := q.Get("quizKey")
	if name == "" || class == "" || quizKey == "" {
		http.Error(w, "missing name, class, or quizKey", http.StatusBadRequest)
		return
	}
	key := domain.NewStudentKey(name, school, class)

	quiz, err := h.quizzes.GetByKey(r.Context(), quizKey)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	// Stored records predating save-time validation may be misshapen.
	if err := quiz.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	// Only quizStatus is authoritative for whether an attempt may start.
	display, err := h.engine.DisplayState(r.Context(), key, quizKey)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	if !display.Eligible {
		_ = conn.WriteJSON(outboundMessage{Type: "error", Payload: errorPayload{Message: "quiz is " + display.State.String()}})
		return
	}

	sender := newWSSender()
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for msg := range sender.ch {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	session := app.NewAttemptSession(h.engine, key, quiz, h.stageTime, func(out app.StageOutcome, err error) {
		// Timer-driven auto submission; deliver the result like a manual one.
		if err != nil {
			sender.send(outboundMessage{Type: "error", Payload: errorPayload{Message: err.Error()}})
			return
		}
		sender.send(outboundMessage{Type: "result", Payload: out})
		if out.State == app.StateInProgress {
			sender.send(outboundMessage{Type: "stage", Payload: stageViewFor(quiz, out.NextStage, h.stageTime)})
		}
	})
	defer session.Close()

	sender.send(outboundMessage{Type: "stage", Payload: h.stageView(quiz, session)})

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				sender.send(outboundMessage{Type: "error", Payload: errorPayload{Message: "invalid answer payload"}})
				continue
			}
			if err := session.SelectAnswer(payload.QuestionIndex, payload.Option); err != nil {
				sender.send(outboundMessage{Type: "error", Payload: errorPayload{Message: err.Error()}})
			}
		case "submit":
			out, err := session.Submit(r.Context())
			if err != nil {
				sender.send(outboundMessage{Type: "error", Payload: errorPayload{Message: err.Error()}})
				continue
			}
			sender.send(outboundMessage{Type: "result", Payload: out})
			if out.State == app.StateInProgress {
				sender.send(outboundMessage{Type: "stage", Payload: h.stageView(quiz, session)})
			}
		default:
			sender.send(outboundMessage{Type: "error", Payload: errorPayload{Message: "unsupported message type"}})
		}
	}

	sender.close()
	<-writerDone
}

func (h *AttemptHandler) stageView(quiz domain.Quiz, session *app.AttemptSession) stagePayload {
	return stageViewFor(quiz, session.StageIndex(), session.Remaining())
}

func stageViewFor(quiz domain.Quiz, stageIndex int, timeLeft time.Duration) stagePayload {
	stage := quiz.Stages[stageIndex]
	questions := make([]questionView, len(stage.Questions))
	for i, q := range stage.Questions {
		questions[i] = questionView{Question: q.Question, Options: q.Options}
	}
	return stagePayload{
		StageIndex:      stageIndex,
		StageNo:         stage.StageNo,
		TimeLeftSeconds: int(timeLeft.Seconds()),
		Questions:       questions,
	}
}
