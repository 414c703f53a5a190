package domain

import "errors"

var (
	// ErrInsufficientQuestions is returned when the bank holds fewer than 30
	// questions for the resolved class/subject. No partial quiz is ever saved.
	ErrInsufficientQuestions = errors.New("subject must have at least 30 questions")
	// ErrStudentNotFound is returned when a submission references an identity
	// not present in the store.
	ErrStudentNotFound = errors.New("student not found")
	// ErrQuizNotFound indicates the quiz record could not be located.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrBankNotFound indicates no question bank exists for the class/subject.
	ErrBankNotFound = errors.New("question bank not found")
	// ErrAdminExists is returned when registering over an existing admin account.
	ErrAdminExists = errors.New("admin already exists")
	// ErrAdminNotFound is returned when signing in with no registered admin.
	ErrAdminNotFound = errors.New("admin not found")
	// ErrInvalidCredentials is returned when sign-in fields do not match the
	// stored admin record.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrStageOutOfRange is returned for a stage index outside 0..2.
	ErrStageOutOfRange = errors.New("stage index out of range")
	// ErrMalformedQuiz is returned for a quiz record that violates the fixed
	// 3-stages-of-10 shape. Malformed records are rejected at the save
	// boundary and refused by the engine.
	ErrMalformedQuiz = errors.New("malformed quiz record")
	// ErrInvalidEmail rejects malformed email input at admin registration.
	ErrInvalidEmail = errors.New("invalid email address")
)
