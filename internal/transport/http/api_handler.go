package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"battlebrain-service/internal/app"
	"battlebrain-service/internal/domain"
)

// APIHandler exposes the admin and registration surface as plain JSON
// endpoints. It is UI plumbing over the core services; all rules live in app.
type APIHandler struct {
	admins   *app.AdminService
	students *app.StudentService
	quizzes  *app.QuizService
	resolver *app.LinkResolver
	engine   *app.Engine
	attempts app.AttemptLogRepository
}

func NewAPIHandler(admins *app.AdminService, students *app.StudentService, quizzes *app.QuizService, resolver *app.LinkResolver, engine *app.Engine, attempts app.AttemptLogRepository) *APIHandler {
	return &APIHandler{
		admins:   admins,
		students: students,
		quizzes:  quizzes,
		resolver: resolver,
		engine:   engine,
		attempts: attempts,
	}
}

// Register mounts all JSON routes on the mux.
func (h *APIHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/admins/register", h.registerAdmin)
	mux.HandleFunc("POST /api/admins/signin", h.signInAdmin)
	mux.HandleFunc("POST /api/quizzes/generate", h.generateQuiz)
	mux.HandleFunc("POST /api/quizzes", h.saveQuiz)
	mux.HandleFunc("GET /api/quizzes", h.listQuizzes)
	mux.HandleFunc("DELETE /api/quizzes/{id}", h.deleteQuiz)
	mux.HandleFunc("POST /api/students", h.registerStudent)
	mux.HandleFunc("POST /api/students/link", h.linkAdmin)
	mux.HandleFunc("GET /api/students/display", h.displayState)
	mux.HandleFunc("GET /api/progress", h.listProgress)
	mux.HandleFunc("GET /api/catalog", h.catalog)
}

type adminView struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Verified bool   `json:"verified"`
}

type credentialsRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *APIHandler) registerAdmin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decode(w, r, &req) {
		return
	}
	admin, err := h.admins.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, adminView{Name: admin.Name, Email: admin.Email, Verified: admin.Verified})
}

func (h *APIHandler) signInAdmin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decode(w, r, &req) {
		return
	}
	admin, err := h.admins.SignIn(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, adminView{Name: admin.Name, Email: admin.Email, Verified: admin.Verified})
}

type generateRequest struct {
	AdminEmail string `json:"adminEmail"`
	Class      string `json:"class"`
	Subject    string `json:"subject"`
}

func (h *APIHandler) generateQuiz(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if !decode(w, r, &req) {
		return
	}
	quiz, err := h.quizzes.Generate(r.Context(), req.AdminEmail, req.Class, req.Subject)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

func (h *APIHandler) saveQuiz(w http.ResponseWriter, r *http.Request) {
	var quiz domain.Quiz
	if !decode(w, r, &quiz) {
		return
	}
	if err := h.quizzes.Save(r.Context(), quiz); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"quizKey": domain.QuizKey(quiz)})
}

func (h *APIHandler) listQuizzes(w http.ResponseWriter, r *http.Request) {
	quizzes, err := h.quizzes.ListByAdmin(r.Context(), r.URL.Query().Get("admin"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quizzes)
}

func (h *APIHandler) deleteQuiz(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid quiz id", http.StatusBadRequest)
		return
	}
	if err := h.quizzes.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type studentRequest struct {
	Name   string `json:"name"`
	School string `json:"school"`
	Class  string `json:"class"`
}

func (h *APIHandler) registerStudent(w http.ResponseWriter, r *http.Request) {
	var req studentRequest
	if !decode(w, r, &req) {
		return
	}
	student, err := h.students.Register(r.Context(), req.Name, req.School, req.Class)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, student)
}

type linkRequest struct {
	studentRequest
	AdminEmail string `json:"adminEmail"`
}

func (h *APIHandler) linkAdmin(w http.ResponseWriter, r *http.Request) {
	var req linkRequest
	if !decode(w, r, &req) {
		return
	}
	key := domain.NewStudentKey(req.Name, req.School, req.Class)
	result, err := h.resolver.ResolveVisibleQuizzes(r.Context(), key, req.AdminEmail)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *APIHandler) displayState(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	key := domain.NewStudentKey(q.Get("name"), q.Get("school"), q.Get("class"))
	state, err := h.engine.DisplayState(r.Context(), key, q.Get("quizKey"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (h *APIHandler) listProgress(w http.ResponseWriter, r *http.Request) {
	records, err := h.attempts.ListAttempts(r.Context(), r.URL.Query().Get("admin"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *APIHandler) catalog(w http.ResponseWriter, r *http.Request) {
	class := r.URL.Query().Get("class")
	payload := map[string]any{"classes": domain.Classes()}
	if class != "" {
		payload["subjects"] = domain.SubjectsFor(class)
	}
	writeJSON(w, http.StatusOK, payload)
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrStudentNotFound),
		errors.Is(err, domain.ErrQuizNotFound),
		errors.Is(err, domain.ErrBankNotFound),
		errors.Is(err, domain.ErrAdminNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrInsufficientQuestions),
		errors.Is(err, domain.ErrStageOutOfRange),
		errors.Is(err, domain.ErrMalformedQuiz),
		errors.Is(err, domain.ErrInvalidEmail):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrAdminExists):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
