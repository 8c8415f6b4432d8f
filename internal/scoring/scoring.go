// Package scoring maps answers to question results and folds them into exam
// results. Everything here is a pure function: no I/O, no clocks, no hidden
// randomness. Scoring the same inputs twice yields identical results.
package scoring

import (
	"math"
	"sort"

	"certexam-engine/internal/domain"
)

// ScoreAnswer grades one answer against its question. Correct is true only
// for an exact set match; Score carries fractional partial credit for
// multi-select when the policy allows it. An answer whose format does not fit
// the question (wrong cardinality, out-of-range indices) scores 0 but is
// still recorded with its sanitized selections, so the learner can see what
// was submitted.
func ScoreAnswer(ans domain.Answer, q domain.Question, cfg Config) domain.QuestionResult {
	result := domain.QuestionResult{
		QuestionID:     q.ID,
		SelectedAnswer: sanitizeSelections(ans.SelectedOptions, len(q.Options)),
		CorrectAnswer:  sortedCopy(q.CorrectAnswer),
		TimeSpent:      ans.TimeSpent,
		Domain:         q.Domain,
	}

	if !answerFitsQuestion(ans, q) {
		return result
	}

	selected := toSet(ans.SelectedOptions)
	correct := toSet(q.CorrectAnswer)
	exact := setsEqual(selected, correct)

	switch q.Type {
	case domain.MultiSelect:
		if cfg.PartialCredit {
			result.Score = partialCredit(selected, correct, cfg.PenalizeIncorrect)
		} else if exact {
			result.Score = 1
		}
	default:
		if exact {
			result.Score = 1
		}
	}
	result.Correct = exact
	return result
}

// Unanswered produces the zero-score result recorded for a question with no
// answer.
func Unanswered(q domain.Question) domain.QuestionResult {
	return domain.QuestionResult{
		QuestionID:     q.ID,
		SelectedAnswer: []int{},
		CorrectAnswer:  sortedCopy(q.CorrectAnswer),
		Domain:         q.Domain,
	}
}

// ScoreSession computes the final results for a session over its question
// list. Every question position produces a result, answered or not. The
// session is expected to have passed integrity validation.
func ScoreSession(s domain.ExamSession, questions []domain.Question, cfg Config) domain.ExamResults {
	results := make([]domain.QuestionResult, 0, len(questions))
	var weightedSum float64
	answered := 0
	correct := 0

	for pos, q := range questions {
		var qr domain.QuestionResult
		if ans, ok := s.Answers[pos]; ok {
			qr = ScoreAnswer(ans, q, cfg)
			answered++
		} else {
			qr = Unanswered(q)
		}
		if qr.Correct {
			correct++
		}
		weightedSum += qr.Score * cfg.weight(q.Domain)
		results = append(results, qr)
	}

	score := 0.0
	if len(questions) > 0 {
		score = weightedSum / float64(len(questions)) * 100
	}
	timeSpent := sessionTimeSpent(s)
	if cfg.TimeBonus {
		score += timeBonus(timeSpent, cfg.TimeLimit)
	}
	score = round2(clamp(score, 0, 100))

	return domain.ExamResults{
		SessionID:         s.ID,
		TotalQuestions:    len(questions),
		AnsweredQuestions: answered,
		CorrectAnswers:    correct,
		Score:             score,
		Passed:            score >= cfg.PassingThreshold,
		TimeSpent:         timeSpent,
		DomainScores:      CalculateDomainScores(results),
		QuestionResults:   results,
	}
}

// partialCredit implements
// max(0, (correctSelections - penalty*incorrectSelections) / totalCorrect),
// clamped to [0, 1].
func partialCredit(selected, correct map[int]struct{}, penalize bool) float64 {
	var hits, misses int
	for idx := range selected {
		if _, ok := correct[idx]; ok {
			hits++
		} else {
			misses++
		}
	}
	numerator := float64(hits)
	if penalize {
		numerator -= float64(misses)
	}
	return clamp(numerator/float64(len(correct)), 0, 1)
}

// answerFitsQuestion checks the submitted selections against the question's
// format: in-range, duplicate-free, and the right cardinality for the type.
func answerFitsQuestion(ans domain.Answer, q domain.Question) bool {
	if len(ans.SelectedOptions) == 0 {
		return false
	}
	seen := make(map[int]struct{}, len(ans.SelectedOptions))
	for _, idx := range ans.SelectedOptions {
		if idx < 0 || idx >= len(q.Options) {
			return false
		}
		if _, dup := seen[idx]; dup {
			return false
		}
		seen[idx] = struct{}{}
	}
	if (q.Type == domain.SingleChoice || q.Type == domain.TrueFalse) && len(ans.SelectedOptions) != 1 {
		return false
	}
	return true
}

// timeBonus grants up to 5 points proportional to the unused time fraction.
func timeBonus(timeSpent, timeLimit int) float64 {
	if timeLimit <= 0 || timeSpent >= timeLimit {
		return 0
	}
	unused := float64(timeLimit-timeSpent) / float64(timeLimit)
	return 5 * unused
}

func sessionTimeSpent(s domain.ExamSession) int {
	if s.EndTime == nil || s.StartTime.IsZero() {
		return 0
	}
	d := s.EndTime.Sub(s.StartTime)
	if d < 0 {
		return 0
	}
	return int(math.Floor(d.Seconds()))
}

// sanitizeSelections drops out-of-range and duplicate indices and orders the
// rest, preserving what the learner submitted without keeping anything
// unsafe to index with.
func sanitizeSelections(selected []int, optionCount int) []int {
	out := make([]int, 0, len(selected))
	seen := make(map[int]struct{}, len(selected))
	for _, idx := range selected {
		if idx < 0 || idx >= optionCount {
			continue
		}
		if _, dup := seen[idx]; dup {
			continue
		}
		seen[idx] = struct{}{}
		out = append(out, idx)
	}
	sort.Ints(out)
	return out
}

func toSet(indices []int) map[int]struct{} {
	set := make(map[int]struct{}, len(indices))
	for _, idx := range indices {
		set[idx] = struct{}{}
	}
	return set
}

func setsEqual(a, b map[int]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for idx := range a {
		if _, ok := b[idx]; !ok {
			return false
		}
	}
	return true
}

func sortedCopy(indices []int) []int {
	out := make([]int, len(indices))
	copy(out, indices)
	sort.Ints(out)
	return out
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
