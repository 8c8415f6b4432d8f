// Package integrity performs the cross-entity consistency checks that
// structural validation cannot see: they need the paired question list or a
// wall-clock reference. Each finding carries a severity and, where the fix is
// unambiguous, an idempotent repair action. Repairs are never applied
// implicitly; callers opt in through ApplyRepairs, which returns a new
// session value.
package integrity

import (
	"fmt"
	"sort"
	"time"

	"certexam-engine/internal/domain"
)

// Severity classifies how much an issue threatens a correct score.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Issue is one detected inconsistency. Repair is nil when the fix is
// ambiguous and must be left to a human.
type Issue struct {
	Code     string
	Message  string
	Severity Severity
	Repair   RepairAction
}

// Result is the outcome of a session integrity check. CanRecover is false
// only when some issue is high severity with no repair. Warnings never block
// progress; Errors block finalization in test mode until repaired.
type Result struct {
	IsValid       bool
	Errors        []Issue
	Warnings      []Issue
	CanRecover    bool
	RepairActions []RepairAction
}

// CheckSession inspects a session against its question list. now is supplied
// by the caller so results stay deterministic and testable.
func CheckSession(s domain.ExamSession, questions []domain.Question, now time.Time) Result {
	var issues []Issue
	n := len(questions)

	if n > 0 && s.CurrentQuestionIndex >= n {
		issues = append(issues, Issue{
			Code:     "index-beyond-list",
			Message:  fmt.Sprintf("current question index %d beyond question list of %d", s.CurrentQuestionIndex, n),
			Severity: SeverityHigh,
			Repair:   ClampCurrentIndex{To: n - 1},
		})
	}
	if s.CurrentQuestionIndex < 0 {
		issues = append(issues, Issue{
			Code:     "index-negative",
			Message:  fmt.Sprintf("current question index %d is negative", s.CurrentQuestionIndex),
			Severity: SeverityMedium,
			Repair:   ResetCurrentIndex{},
		})
	}

	for _, pos := range sortedBookmarks(s) {
		if pos < 0 || pos >= n {
			issues = append(issues, Issue{
				Code:     "bookmark-out-of-range",
				Message:  fmt.Sprintf("bookmark %d outside [0, %d)", pos, n),
				Severity: SeverityLow,
				Repair:   DropBookmark{Position: pos},
			})
		}
	}

	for _, pos := range sortedAnswerPositions(s) {
		ans := s.Answers[pos]
		if pos < 0 || pos >= n {
			issues = append(issues, Issue{
				Code:     "answer-out-of-range",
				Message:  fmt.Sprintf("answer at position %d outside [0, %d)", pos, n),
				Severity: SeverityMedium,
				Repair:   DropAnswer{Position: pos},
			})
			continue
		}
		q := questions[pos]
		if ans.QuestionID != q.ID {
			// Question bank drift between save and resume; no safe repair.
			issues = append(issues, Issue{
				Code:     "answer-question-mismatch",
				Message:  fmt.Sprintf("answer at position %d references question %q but list has %q", pos, ans.QuestionID, q.ID),
				Severity: SeverityHigh,
			})
			continue
		}
		if (q.Type == domain.SingleChoice || q.Type == domain.TrueFalse) && len(ans.SelectedOptions) > 1 {
			issues = append(issues, Issue{
				Code:     "selection-cardinality",
				Message:  fmt.Sprintf("%s answer at position %d has %d selections", q.Type, pos, len(ans.SelectedOptions)),
				Severity: SeverityMedium,
				Repair:   TruncateSelection{Position: pos},
			})
		}
	}

	if s.EndTime != nil && s.EndTime.Before(s.StartTime) {
		// Ambiguous intent: either timestamp could be the wrong one.
		issues = append(issues, Issue{
			Code:     "end-before-start",
			Message:  fmt.Sprintf("end time %s precedes start time %s", s.EndTime.Format(time.RFC3339), s.StartTime.Format(time.RFC3339)),
			Severity: SeverityMedium,
		})
	}
	if s.Status == domain.StatusCompleted && s.EndTime == nil {
		issues = append(issues, Issue{
			Code:     "completed-without-end",
			Message:  "session is completed but has no end time",
			Severity: SeverityMedium,
			Repair:   SetEndTime{Value: now},
		})
	}
	if s.Status == domain.StatusInProgress && s.EndTime != nil {
		issues = append(issues, Issue{
			Code:     "in-progress-with-end",
			Message:  "session is in progress but has an end time",
			Severity: SeverityMedium,
			Repair:   ClearEndTime{},
		})
	}

	return buildResult(issues)
}

func buildResult(issues []Issue) Result {
	res := Result{CanRecover: true}
	for _, issue := range issues {
		if warning(issue) {
			res.Warnings = append(res.Warnings, issue)
		} else {
			res.Errors = append(res.Errors, issue)
		}
		if issue.Repair != nil {
			res.RepairActions = append(res.RepairActions, issue.Repair)
		}
		if issue.Severity == SeverityHigh && issue.Repair == nil {
			res.CanRecover = false
		}
	}
	res.IsValid = len(res.Errors) == 0
	return res
}

// warning holds for findings that never block progress: low-severity drift
// and the time-ordering anomalies the engine reports but does not decide.
func warning(issue Issue) bool {
	if issue.Severity == SeverityLow {
		return true
	}
	switch issue.Code {
	case "end-before-start", "completed-without-end":
		return true
	}
	return false
}

func sortedBookmarks(s domain.ExamSession) []int {
	out := make([]int, 0, len(s.BookmarkedQuestions))
	for pos := range s.BookmarkedQuestions {
		out = append(out, pos)
	}
	sort.Ints(out)
	return out
}

func sortedAnswerPositions(s domain.ExamSession) []int {
	out := make([]int, 0, len(s.Answers))
	for pos := range s.Answers {
		out = append(out, pos)
	}
	sort.Ints(out)
	return out
}
