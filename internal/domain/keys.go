package domain

import (
	"strconv"
	"strings"
)

// QuizKey derives the join key between a quiz and a student's per-quiz status.
// Every call site must produce the same string for the same quiz; this is the
// only place the format lives.
func QuizKey(q Quiz) string {
	return QuizKeyFor(q.Class, q.Subject, q.ID)
}

// QuizKeyFor builds a quiz key from its parts: "{class}-{subject}-{id}".
func QuizKeyFor(class, subject string, id int64) string {
	return class + "-" + subject + "-" + strconv.FormatInt(id, 10)
}

// FoldEmail normalizes an email for comparison: trim surrounding space, lowercase.
func FoldEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// StudentKey is the normalized identity of a student, computed once from the
// (name, school, class) triple so lookups never fall back to ad hoc
// field-by-field comparison.
type StudentKey struct {
	Name   string
	School string
	Class  string
}

// NewStudentKey normalizes the natural key fields (trim + casefold).
func NewStudentKey(name, school, class string) StudentKey {
	return StudentKey{
		Name:   foldField(name),
		School: foldField(school),
		Class:  foldField(class),
	}
}

// Key returns the student's normalized identity.
func (s Student) Key() StudentKey {
	return NewStudentKey(s.Name, s.School, s.Class)
}

// String renders the key in the pipe-joined form used by attempt records.
func (k StudentKey) String() string {
	return k.Name + "|" + k.School + "|" + k.Class
}

// Matches reports whether a student record belongs to this identity.
func (k StudentKey) Matches(s Student) bool {
	return s.Key() == k
}

func foldField(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}
