package integrity

import (
	"fmt"

	"certexam-engine/internal/domain"
	"certexam-engine/internal/scoring"
)

// CheckResults verifies that a results artifact is internally consistent and
// still matches its question list. It re-derives the domain score fold to
// detect cache drift. Used for regression testing and corruption detection;
// findings never block display of already-computed results.
func CheckResults(r domain.ExamResults, questions []domain.Question) []Issue {
	var issues []Issue

	if r.TotalQuestions != len(questions) {
		issues = append(issues, Issue{
			Code:     "results-count-mismatch",
			Message:  fmt.Sprintf("results claim %d questions but list has %d", r.TotalQuestions, len(questions)),
			Severity: SeverityHigh,
		})
	}
	if len(r.QuestionResults) != r.TotalQuestions {
		issues = append(issues, Issue{
			Code:     "results-missing-entries",
			Message:  fmt.Sprintf("%d question results for %d questions", len(r.QuestionResults), r.TotalQuestions),
			Severity: SeverityHigh,
		})
	}
	if r.Score < 0 || r.Score > 100 {
		issues = append(issues, Issue{
			Code:     "results-score-out-of-bounds",
			Message:  fmt.Sprintf("score %.2f outside [0, 100]", r.Score),
			Severity: SeverityHigh,
		})
	}
	if r.AnsweredQuestions > r.TotalQuestions {
		issues = append(issues, Issue{
			Code:     "results-answered-exceeds-total",
			Message:  fmt.Sprintf("%d answered of %d total", r.AnsweredQuestions, r.TotalQuestions),
			Severity: SeverityHigh,
		})
	}

	for i, qr := range r.QuestionResults {
		if i >= len(questions) {
			break
		}
		if qr.QuestionID != questions[i].ID {
			issues = append(issues, Issue{
				Code:     "results-question-drift",
				Message:  fmt.Sprintf("result %d references question %q but list has %q", i, qr.QuestionID, questions[i].ID),
				Severity: SeverityHigh,
			})
		}
	}

	derived := scoring.CalculateDomainScores(r.QuestionResults)
	if len(derived) != len(r.DomainScores) {
		issues = append(issues, Issue{
			Code:     "results-domain-drift",
			Message:  fmt.Sprintf("cached domain scores cover %d domains, re-derived fold covers %d", len(r.DomainScores), len(derived)),
			Severity: SeverityMedium,
		})
	}
	for name, want := range derived {
		got, ok := r.DomainScores[name]
		if !ok {
			issues = append(issues, Issue{
				Code:     "results-domain-drift",
				Message:  fmt.Sprintf("domain %q missing from cached domain scores", name),
				Severity: SeverityMedium,
			})
			continue
		}
		if got != want {
			issues = append(issues, Issue{
				Code:     "results-domain-drift",
				Message:  fmt.Sprintf("domain %q cached as %+v, re-derived as %+v", name, got, want),
				Severity: SeverityMedium,
			})
		}
	}

	return issues
}
