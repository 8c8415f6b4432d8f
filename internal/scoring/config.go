package scoring

import "certexam-engine/internal/domain"

// Config is the scoring policy for one exam. All knobs are explicit and
// deterministic; NewConfig fills in the conventional defaults, which callers
// may override before scoring.
type Config struct {
	Mode             domain.ExamMode
	ExamType         domain.ExamType
	PassingThreshold float64
	// PartialCredit awards fractional scores on multi-select questions.
	PartialCredit bool
	// PenalizeIncorrect subtracts wrong selections from partial credit.
	PenalizeIncorrect bool
	// TimeBonus adds up to 5 points for unused time, capped at 100 total.
	// Requires TimeLimit > 0. Off by default.
	TimeBonus bool
	// TimeLimit in seconds, used only by the time bonus.
	TimeLimit int
	// DomainWeights scales each question's contribution by its domain.
	// Missing domains weigh 1.
	DomainWeights map[string]float64
}

// Default passing thresholds by exam type.
const (
	thresholdFullMock      = 70
	thresholdDomainQuiz    = 60
	thresholdKnowledgeArea = 65
)

// NewConfig returns the conventional policy for a mode and exam type:
// practice grants partial credit without penalty, test is all-or-nothing.
func NewConfig(mode domain.ExamMode, examType domain.ExamType) Config {
	cfg := Config{
		Mode:             mode,
		ExamType:         examType,
		PassingThreshold: thresholdFullMock,
		PartialCredit:    mode == domain.ModePractice,
	}
	switch examType {
	case domain.ExamDomainQuiz:
		cfg.PassingThreshold = thresholdDomainQuiz
	case domain.ExamKnowledgeArea:
		cfg.PassingThreshold = thresholdKnowledgeArea
	}
	return cfg
}

// ConfigFor derives the scoring policy from an exam configuration.
func ConfigFor(ec domain.ExamConfig) Config {
	cfg := NewConfig(ec.Mode, ec.ExamType)
	cfg.TimeLimit = ec.TimeLimit
	return cfg
}

func (c Config) weight(domainName string) float64 {
	if w, ok := c.DomainWeights[domainName]; ok && w > 0 {
		return w
	}
	return 1
}
