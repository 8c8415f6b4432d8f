// Package policy wraps the scoring engine with named certification
// requirements and renders structured pass/fail verdicts. Verdicts accumulate
// every failure reason instead of short-circuiting, so a learner sees the
// complete picture at once.
package policy

import (
	"fmt"
	"sort"

	"certexam-engine/internal/domain"
)

// CertificationRequirements is a named, swappable rule set evaluated against
// computed exam results.
type CertificationRequirements struct {
	Name           string
	PassingScore   float64
	DomainMinimums map[string]float64
	// TimeLimit in seconds; informational, reported when exceeded.
	TimeLimit        int
	MinimumQuestions int
	AllowPartial     bool
}

// PassFailResult is the structured verdict for one set of requirements.
type PassFailResult struct {
	Requirements   string
	Passed         bool
	Score          float64
	RequiredScore  float64
	FailureReasons []string
}

// DeterminePassFail evaluates results against requirements. Overall score,
// minimum answered questions, and each configured domain minimum are checked
// independently; every failed check contributes a reason.
func DeterminePassFail(results domain.ExamResults, reqs CertificationRequirements) PassFailResult {
	verdict := PassFailResult{
		Requirements:  reqs.Name,
		Score:         results.Score,
		RequiredScore: reqs.PassingScore,
	}

	if results.Score < reqs.PassingScore {
		verdict.FailureReasons = append(verdict.FailureReasons,
			fmt.Sprintf("overall score %.2f below required %.2f", results.Score, reqs.PassingScore))
	}
	if reqs.MinimumQuestions > 0 && results.AnsweredQuestions < reqs.MinimumQuestions {
		verdict.FailureReasons = append(verdict.FailureReasons,
			fmt.Sprintf("answered %d questions, minimum is %d", results.AnsweredQuestions, reqs.MinimumQuestions))
	}
	for _, name := range sortedDomainNames(reqs.DomainMinimums) {
		minimum := reqs.DomainMinimums[name]
		ds, ok := results.DomainScores[name]
		if !ok {
			verdict.FailureReasons = append(verdict.FailureReasons,
				fmt.Sprintf("domain %q required at %.0f%% but has no scored questions", name, minimum))
			continue
		}
		if ds.Score < minimum {
			verdict.FailureReasons = append(verdict.FailureReasons,
				fmt.Sprintf("domain %q scored %.0f%%, minimum is %.0f%%", name, ds.Score, minimum))
		}
	}

	verdict.Passed = len(verdict.FailureReasons) == 0
	return verdict
}

func sortedDomainNames(minimums map[string]float64) []string {
	names := make([]string, 0, len(minimums))
	for name := range minimums {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
