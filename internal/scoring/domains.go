package scoring

import (
	"math"

	"certexam-engine/internal/domain"
)

// CalculateDomainScores folds question results into per-domain scores. The
// percentage is recomputed after every increment, so the running map is
// consistent at any point of the fold. ExamResults.DomainScores is a cache of
// this fold and can be re-derived from QuestionResults alone at any time.
func CalculateDomainScores(results []domain.QuestionResult) map[string]domain.DomainScore {
	scores := make(map[string]domain.DomainScore)
	for _, qr := range results {
		ds := scores[qr.Domain]
		ds.Domain = qr.Domain
		ds.TotalQuestions++
		if qr.Correct {
			ds.CorrectAnswers++
		}
		ds.Score = math.Round(float64(ds.CorrectAnswers) / float64(ds.TotalQuestions) * 100)
		scores[qr.Domain] = ds
	}
	return scores
}
