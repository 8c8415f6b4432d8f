// Package app exposes the exam session use cases. Every operation here is a
// pure transform: it validates, then returns a new session value, leaving the
// caller's copy untouched. Persistence is a separate concern (see the persist
// package) and a session is single-owner by contract, so no locking happens
// at this level.
package app

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"certexam-engine/internal/domain"
	"certexam-engine/internal/validate"
)

// NewSession constructs a session in setup status for a validated config.
// A config that fails structural validation is a programming error at this
// boundary, reported as *validate.Error.
func NewSession(cfg domain.ExamConfig, userID string, now time.Time) (domain.ExamSession, error) {
	if fields := validate.ExamConfig(cfg); len(fields) > 0 {
		return domain.ExamSession{}, &validate.Error{Entity: "exam config", Fields: fields}
	}
	if userID == "" {
		return domain.ExamSession{}, &validate.Error{
			Entity: "exam session",
			Fields: []validate.FieldError{{Field: "userId", Message: "must not be empty"}},
		}
	}
	return domain.ExamSession{
		ID:                  uuid.NewString(),
		UserID:              userID,
		ExamConfig:          cfg,
		StartTime:           now,
		Answers:             make(map[int]domain.Answer),
		BookmarkedQuestions: make(map[int]struct{}),
		Status:              domain.StatusSetup,
	}, nil
}

// Start moves a setup session into progress.
func Start(s domain.ExamSession) (domain.ExamSession, error) {
	if s.Status != domain.StatusSetup {
		return s, fmt.Errorf("start session %s: status is %q: %w", s.ID, s.Status, domain.ErrSessionFinalized)
	}
	out := s.Clone()
	out.Status = domain.StatusInProgress
	return out, nil
}

// RecordAnswer validates the answer against the question at position and
// returns a session with it inserted. Last write wins: a prior answer at the
// same position is replaced wholesale. Structurally invalid answers are
// rejected and nothing is inserted.
func RecordAnswer(s domain.ExamSession, position int, ans domain.Answer, questions []domain.Question) (domain.ExamSession, error) {
	if s.Status == domain.StatusCompleted || s.Status == domain.StatusAbandoned {
		return s, fmt.Errorf("record answer on session %s: %w", s.ID, domain.ErrSessionFinalized)
	}
	if position < 0 || position >= len(questions) {
		return s, fmt.Errorf("record answer at %d of %d: %w", position, len(questions), domain.ErrPositionOutOfRange)
	}
	if fields := validate.Answer(ans); len(fields) > 0 {
		return s, &validate.Error{Entity: "answer", Fields: fields}
	}
	q := questions[position]
	if ans.QuestionID != q.ID {
		return s, &validate.Error{
			Entity: "answer",
			Fields: []validate.FieldError{{
				Field:   "questionId",
				Message: fmt.Sprintf("got %q, question at position %d is %q", ans.QuestionID, position, q.ID),
			}},
		}
	}
	for _, idx := range ans.SelectedOptions {
		if idx >= len(q.Options) {
			return s, &validate.Error{
				Entity: "answer",
				Fields: []validate.FieldError{{
					Field:   "selectedOptions",
					Message: fmt.Sprintf("index %d out of range [0, %d)", idx, len(q.Options)),
				}},
			}
		}
	}

	out := s.Clone()
	out.Answers[position] = ans
	return out, nil
}

// ToggleBookmark flips the bookmark at a position.
func ToggleBookmark(s domain.ExamSession, position int, questionCount int) (domain.ExamSession, error) {
	if position < 0 || position >= questionCount {
		return s, fmt.Errorf("bookmark %d of %d: %w", position, questionCount, domain.ErrPositionOutOfRange)
	}
	out := s.Clone()
	if _, ok := out.BookmarkedQuestions[position]; ok {
		delete(out.BookmarkedQuestions, position)
	} else {
		out.BookmarkedQuestions[position] = struct{}{}
	}
	return out, nil
}

// Navigate moves the current question index.
func Navigate(s domain.ExamSession, position int, questionCount int) (domain.ExamSession, error) {
	if position < 0 || position >= questionCount {
		return s, fmt.Errorf("navigate to %d of %d: %w", position, questionCount, domain.ErrPositionOutOfRange)
	}
	out := s.Clone()
	out.CurrentQuestionIndex = position
	return out, nil
}

// Abandon marks an explicit exit. The session becomes immutable afterwards
// except for repair actions applied during recovery.
func Abandon(s domain.ExamSession, now time.Time) (domain.ExamSession, error) {
	if s.Status == domain.StatusCompleted || s.Status == domain.StatusAbandoned {
		return s, fmt.Errorf("abandon session %s: %w", s.ID, domain.ErrSessionFinalized)
	}
	out := s.Clone()
	out.Status = domain.StatusAbandoned
	end := now
	out.EndTime = &end
	return out, nil
}
