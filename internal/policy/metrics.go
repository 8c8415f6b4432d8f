package policy

import (
	"fmt"
	"math"
	"sort"

	"certexam-engine/internal/domain"
)

// PerformanceMetrics are advisory reporting outputs derived from results.
// They carry no invariants beyond being consistent with their source.
type PerformanceMetrics struct {
	// TimeEfficiency is the fraction of the time limit left unused, 0 when
	// no limit applies or the limit was exceeded.
	TimeEfficiency float64
	// Accuracy is correct answers over answered questions.
	Accuracy float64
	// CompletionRate is answered questions over total questions.
	CompletionRate float64
	// StrongDomains and WeakDomains deviate from the cross-domain average by
	// at least the deviation band, strongest and weakest first.
	StrongDomains   []string
	WeakDomains     []string
	Recommendations []string
}

// deviationBand is the distance from the cross-domain average, in percentage
// points, beyond which a domain counts as strong or weak.
const deviationBand = 10

// CalculatePerformanceMetrics derives advisory metrics from results. The
// time limit is in seconds; zero means untimed.
func CalculatePerformanceMetrics(results domain.ExamResults, timeLimit int) PerformanceMetrics {
	var m PerformanceMetrics

	if timeLimit > 0 && results.TimeSpent < timeLimit {
		m.TimeEfficiency = roundRatio(float64(timeLimit-results.TimeSpent) / float64(timeLimit))
	}
	if results.AnsweredQuestions > 0 {
		m.Accuracy = roundRatio(float64(results.CorrectAnswers) / float64(results.AnsweredQuestions))
	}
	if results.TotalQuestions > 0 {
		m.CompletionRate = roundRatio(float64(results.AnsweredQuestions) / float64(results.TotalQuestions))
	}

	m.StrongDomains, m.WeakDomains = domainsByDeviation(results.DomainScores)
	m.Recommendations = recommendations(results, m)
	return m
}

func domainsByDeviation(scores map[string]domain.DomainScore) (strong, weak []string) {
	if len(scores) == 0 {
		return nil, nil
	}
	var sum float64
	names := make([]string, 0, len(scores))
	for name, ds := range scores {
		sum += ds.Score
		names = append(names, name)
	}
	avg := sum / float64(len(scores))

	sort.Slice(names, func(i, j int) bool {
		si, sj := scores[names[i]].Score, scores[names[j]].Score
		if si != sj {
			return si > sj
		}
		return names[i] < names[j]
	})
	for _, name := range names {
		switch {
		case scores[name].Score >= avg+deviationBand:
			strong = append(strong, name)
		case scores[name].Score <= avg-deviationBand:
			weak = append(weak, name)
		}
	}
	// Weakest first reads better in reports.
	for i, j := 0, len(weak)-1; i < j; i, j = i+1, j-1 {
		weak[i], weak[j] = weak[j], weak[i]
	}
	return strong, weak
}

func recommendations(results domain.ExamResults, m PerformanceMetrics) []string {
	var recs []string
	if m.CompletionRate < 1 {
		unanswered := results.TotalQuestions - results.AnsweredQuestions
		recs = append(recs, fmt.Sprintf("answer all questions: %d left blank scored zero", unanswered))
	}
	for _, name := range m.WeakDomains {
		recs = append(recs, fmt.Sprintf("review %q: scored %.0f%%, well below your average", name, results.DomainScores[name].Score))
	}
	if !results.Passed && len(recs) == 0 {
		recs = append(recs, "score is close to the threshold; review explanations for missed questions")
	}
	return recs
}

func roundRatio(v float64) float64 {
	return math.Round(v*100) / 100
}
