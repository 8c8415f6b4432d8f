// Package validate holds the structural validators: pure functions that
// check shape and range invariants on a single entity and report findings as
// field-tagged error lists. They never mutate input and never fail for
// malformed-but-well-typed data; cross-entity consistency (index bounds
// against a question list, time ordering) is the integrity package's job.
package validate

import (
	"fmt"
	"strings"

	"certexam-engine/internal/domain"
)

// FieldError describes one structural problem. Field is empty when the
// problem is not attributable to a single field.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) String() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// Error is raised only at trusted construction boundaries, where malformed
// input indicates a programming error rather than recoverable user data.
type Error struct {
	Entity string
	Fields []FieldError
}

func (e *Error) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.String()
	}
	return fmt.Sprintf("invalid %s: %s", e.Entity, strings.Join(msgs, "; "))
}

// Question checks a catalog item: non-empty text and options, a correct
// answer of the right cardinality for its type, and in-range indices.
func Question(q domain.Question) []FieldError {
	var errs []FieldError
	if q.ID == "" {
		errs = append(errs, FieldError{Field: "id", Message: "must not be empty"})
	}
	if q.Text == "" {
		errs = append(errs, FieldError{Field: "text", Message: "must not be empty"})
	}
	switch q.Type {
	case domain.SingleChoice, domain.MultiSelect, domain.TrueFalse:
	default:
		errs = append(errs, FieldError{Field: "type", Message: fmt.Sprintf("unknown question type %q", q.Type)})
	}
	if len(q.Options) == 0 {
		errs = append(errs, FieldError{Field: "options", Message: "must not be empty"})
	}
	for i, opt := range q.Options {
		if opt == "" {
			errs = append(errs, FieldError{Field: "options", Message: fmt.Sprintf("option %d must not be empty", i)})
		}
	}
	errs = append(errs, correctAnswerErrors(q)...)
	switch q.Difficulty {
	case domain.DifficultyEasy, domain.DifficultyMedium, domain.DifficultyHard:
	default:
		errs = append(errs, FieldError{Field: "difficulty", Message: fmt.Sprintf("unknown difficulty %q", q.Difficulty)})
	}
	if q.Domain == "" {
		errs = append(errs, FieldError{Field: "domain", Message: "must not be empty"})
	}
	return errs
}

func correctAnswerErrors(q domain.Question) []FieldError {
	var errs []FieldError
	switch q.Type {
	case domain.SingleChoice, domain.TrueFalse:
		if len(q.CorrectAnswer) != 1 {
			errs = append(errs, FieldError{Field: "correctAnswer", Message: fmt.Sprintf("%s requires exactly one correct index, got %d", q.Type, len(q.CorrectAnswer))})
		}
	case domain.MultiSelect:
		if len(q.CorrectAnswer) == 0 {
			errs = append(errs, FieldError{Field: "correctAnswer", Message: "multi-select requires at least one correct index"})
		}
	}
	seen := make(map[int]struct{}, len(q.CorrectAnswer))
	for _, idx := range q.CorrectAnswer {
		if idx < 0 || idx >= len(q.Options) {
			errs = append(errs, FieldError{Field: "correctAnswer", Message: fmt.Sprintf("index %d out of range [0, %d)", idx, len(q.Options))})
		}
		if _, dup := seen[idx]; dup {
			errs = append(errs, FieldError{Field: "correctAnswer", Message: fmt.Sprintf("duplicate index %d", idx)})
		}
		seen[idx] = struct{}{}
	}
	return errs
}

// Answer checks one recorded response in isolation: a question id, a
// duplicate-free non-negative selection set, and non-negative time spent.
func Answer(a domain.Answer) []FieldError {
	var errs []FieldError
	if a.QuestionID == "" {
		errs = append(errs, FieldError{Field: "questionId", Message: "must not be empty"})
	}
	seen := make(map[int]struct{}, len(a.SelectedOptions))
	for _, idx := range a.SelectedOptions {
		if idx < 0 {
			errs = append(errs, FieldError{Field: "selectedOptions", Message: fmt.Sprintf("index %d must be non-negative", idx)})
		}
		if _, dup := seen[idx]; dup {
			errs = append(errs, FieldError{Field: "selectedOptions", Message: fmt.Sprintf("duplicate index %d", idx)})
		}
		seen[idx] = struct{}{}
	}
	if a.TimeSpent < 0 {
		errs = append(errs, FieldError{Field: "timeSpent", Message: "must not be negative"})
	}
	return errs
}

// ExamConfig checks a per-session configuration. A test-mode config must
// carry a positive time limit.
func ExamConfig(c domain.ExamConfig) []FieldError {
	var errs []FieldError
	if c.ID == "" {
		errs = append(errs, FieldError{Field: "id", Message: "must not be empty"})
	}
	switch c.Mode {
	case domain.ModePractice, domain.ModeTest:
	default:
		errs = append(errs, FieldError{Field: "type", Message: fmt.Sprintf("unknown exam mode %q", c.Mode)})
	}
	switch c.ExamType {
	case domain.ExamFullMock, domain.ExamDomainQuiz, domain.ExamKnowledgeArea:
	default:
		errs = append(errs, FieldError{Field: "examType", Message: fmt.Sprintf("unknown exam type %q", c.ExamType)})
	}
	if c.Mode == domain.ModeTest && c.TimeLimit <= 0 {
		errs = append(errs, FieldError{Field: "timeLimit", Message: "required and positive for test mode"})
	}
	if c.TimeLimit < 0 {
		errs = append(errs, FieldError{Field: "timeLimit", Message: "must not be negative"})
	}
	return errs
}

// Session checks the shape of a session aggregate without reference to a
// question list. Negative positions are reported here; upper-bound checks
// need the list length and live in the integrity package.
func Session(s domain.ExamSession) []FieldError {
	var errs []FieldError
	if s.ID == "" {
		errs = append(errs, FieldError{Field: "id", Message: "must not be empty"})
	}
	if s.UserID == "" {
		errs = append(errs, FieldError{Field: "userId", Message: "must not be empty"})
	}
	switch s.Status {
	case domain.StatusSetup, domain.StatusInProgress, domain.StatusReview, domain.StatusCompleted, domain.StatusAbandoned:
	default:
		errs = append(errs, FieldError{Field: "status", Message: fmt.Sprintf("unknown status %q", s.Status)})
	}
	if s.StartTime.IsZero() {
		errs = append(errs, FieldError{Field: "startTime", Message: "must be set"})
	}
	for pos, ans := range s.Answers {
		if pos < 0 {
			errs = append(errs, FieldError{Field: "answers", Message: fmt.Sprintf("position %d must be non-negative", pos)})
		}
		for _, fe := range Answer(ans) {
			errs = append(errs, FieldError{Field: fmt.Sprintf("answers[%d].%s", pos, fe.Field), Message: fe.Message})
		}
	}
	for pos := range s.BookmarkedQuestions {
		if pos < 0 {
			errs = append(errs, FieldError{Field: "bookmarkedQuestions", Message: fmt.Sprintf("position %d must be non-negative", pos)})
		}
	}
	for _, fe := range ExamConfig(s.ExamConfig) {
		errs = append(errs, FieldError{Field: "examConfig." + fe.Field, Message: fe.Message})
	}
	return errs
}
