package integrity

import (
	"fmt"
	"time"

	"certexam-engine/internal/domain"
)

// RepairAction is one idempotent correction to a session. The variant set is
// closed: apply is unexported, so every action is statically enumerable and
// exhaustively testable.
type RepairAction interface {
	apply(s *domain.ExamSession)
	Describe() string
}

// ClampCurrentIndex moves an out-of-range current index back to the last
// valid position.
type ClampCurrentIndex struct{ To int }

func (a ClampCurrentIndex) apply(s *domain.ExamSession) {
	if s.CurrentQuestionIndex > a.To {
		s.CurrentQuestionIndex = a.To
	}
}

func (a ClampCurrentIndex) Describe() string {
	return fmt.Sprintf("clamp current question index to %d", a.To)
}

// ResetCurrentIndex resets a negative current index to zero.
type ResetCurrentIndex struct{}

func (ResetCurrentIndex) apply(s *domain.ExamSession) {
	if s.CurrentQuestionIndex < 0 {
		s.CurrentQuestionIndex = 0
	}
}

func (ResetCurrentIndex) Describe() string { return "reset current question index to 0" }

// DropBookmark removes a bookmark outside the question list.
type DropBookmark struct{ Position int }

func (a DropBookmark) apply(s *domain.ExamSession) {
	delete(s.BookmarkedQuestions, a.Position)
}

func (a DropBookmark) Describe() string {
	return fmt.Sprintf("drop bookmark at position %d", a.Position)
}

// DropAnswer removes an answer keyed outside the question list.
type DropAnswer struct{ Position int }

func (a DropAnswer) apply(s *domain.ExamSession) {
	delete(s.Answers, a.Position)
}

func (a DropAnswer) Describe() string {
	return fmt.Sprintf("drop answer at position %d", a.Position)
}

// SetEndTime stamps a completed session that lost its end time.
type SetEndTime struct{ Value time.Time }

func (a SetEndTime) apply(s *domain.ExamSession) {
	if s.EndTime == nil {
		end := a.Value
		s.EndTime = &end
	}
}

func (a SetEndTime) Describe() string {
	return "set end time to " + a.Value.Format(time.RFC3339)
}

// ClearEndTime removes a stray end time from an in-progress session.
type ClearEndTime struct{}

func (ClearEndTime) apply(s *domain.ExamSession) { s.EndTime = nil }

func (ClearEndTime) Describe() string { return "clear end time" }

// TruncateSelection keeps only the first selected option of a single-answer
// question.
type TruncateSelection struct{ Position int }

func (a TruncateSelection) apply(s *domain.ExamSession) {
	ans, ok := s.Answers[a.Position]
	if !ok || len(ans.SelectedOptions) <= 1 {
		return
	}
	ans.SelectedOptions = ans.SelectedOptions[:1]
	s.Answers[a.Position] = ans
}

func (a TruncateSelection) Describe() string {
	return fmt.Sprintf("keep only the first selection at position %d", a.Position)
}

// ApplyRepairs returns a new session with every action applied, in order.
// The input is never mutated. Applying the same actions twice yields the
// same session as applying them once.
func ApplyRepairs(s domain.ExamSession, actions []RepairAction) domain.ExamSession {
	out := s.Clone()
	for _, action := range actions {
		action.apply(&out)
	}
	return out
}
