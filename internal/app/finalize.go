package app

import (
	"fmt"
	"strings"
	"time"

	"certexam-engine/internal/domain"
	"certexam-engine/internal/integrity"
	"certexam-engine/internal/scoring"
)

// FinalizeError carries every issue that blocked a submission, so the caller
// can surface the complete list rather than one generic failure.
type FinalizeError struct {
	SessionID string
	Issues    []integrity.Issue
}

func (e *FinalizeError) Error() string {
	msgs := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		msgs[i] = issue.Message
	}
	return fmt.Sprintf("finalize session %s blocked: %s", e.SessionID, strings.Join(msgs, "; "))
}

// Finalize runs the submission pipeline: integrity check, repair, score. In
// test mode any unrepaired high-severity issue blocks submission; practice
// mode degrades those to warnings and proceeds, consistent with its more
// permissive completion rules. On success the returned results are final and
// the session copy inside them is completed.
func Finalize(s domain.ExamSession, questions []domain.Question, cfg scoring.Config, now time.Time) (domain.ExamResults, error) {
	check := integrity.CheckSession(s, questions, now)
	if !check.CanRecover && cfg.Mode == domain.ModeTest {
		return domain.ExamResults{}, &FinalizeError{SessionID: s.ID, Issues: append(check.Errors, check.Warnings...)}
	}

	repaired := integrity.ApplyRepairs(s, check.RepairActions)
	if repaired.Status != domain.StatusCompleted {
		repaired.Status = domain.StatusCompleted
	}
	if repaired.EndTime == nil {
		end := now
		repaired.EndTime = &end
	}

	return scoring.ScoreSession(repaired, questions, cfg), nil
}

// Complete applies the finalization transitions to the session itself so the
// caller can persist the terminal state alongside its results.
func Complete(s domain.ExamSession, questions []domain.Question, now time.Time) domain.ExamSession {
	check := integrity.CheckSession(s, questions, now)
	out := integrity.ApplyRepairs(s, check.RepairActions)
	out.Status = domain.StatusCompleted
	if out.EndTime == nil {
		end := now
		out.EndTime = &end
	}
	return out
}
