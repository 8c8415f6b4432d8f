package domain

import "time"

// QuestionType enumerates the supported question formats.
type QuestionType string

const (
	SingleChoice QuestionType = "single-choice"
	MultiSelect  QuestionType = "multi-select"
	TrueFalse    QuestionType = "true-false"
)

// Difficulty buckets questions for catalog filtering and analytics.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Question is an immutable catalog item. CorrectAnswer holds option indices:
// exactly one for single-choice/true-false, one or more for multi-select.
// Every index must lie within [0, len(Options)).
type Question struct {
	ID            string       `json:"id"`
	Text          string       `json:"text"`
	Type          QuestionType `json:"type"`
	Options       []string     `json:"options"`
	CorrectAnswer []int        `json:"correctAnswer"`
	Explanation   string       `json:"explanation,omitempty"`
	Domain        string       `json:"domain"`
	KnowledgeArea string       `json:"knowledgeArea,omitempty"`
	Difficulty    Difficulty   `json:"difficulty"`
	ImageURL      string       `json:"imageUrl,omitempty"`
}

// Answer is one response to one question. Each write replaces the whole
// value; answers are never partially updated.
type Answer struct {
	QuestionID      string    `json:"questionId"`
	SelectedOptions []int     `json:"selectedOptions"`
	Timestamp       time.Time `json:"timestamp"`
	TimeSpent       int       `json:"timeSpent"` // seconds
}

// ExamMode distinguishes permissive practice runs from strict test runs.
type ExamMode string

const (
	ModePractice ExamMode = "practice"
	ModeTest     ExamMode = "test"
)

// ExamType selects the scope of an exam and its default passing threshold.
type ExamType string

const (
	ExamFullMock      ExamType = "full-mock"
	ExamDomainQuiz    ExamType = "domain-quiz"
	ExamKnowledgeArea ExamType = "knowledge-area"
)

// ExamSettings are display/behavior flags carried with the config. The
// engine stores them and hands them back; rendering is the caller's concern.
type ExamSettings struct {
	ShowExplanations   bool `json:"showExplanations"`
	ShowTimer          bool `json:"showTimer"`
	AllowReview        bool `json:"allowReview"`
	RandomizeQuestions bool `json:"randomizeQuestions"`
	RandomizeOptions   bool `json:"randomizeOptions"`
}

// ExamConfig is the immutable per-session configuration. TimeLimit is in
// seconds; it is required and positive when Mode is test, optional otherwise
// (zero means no limit).
type ExamConfig struct {
	ID            string       `json:"id"`
	Mode          ExamMode     `json:"type"`
	ExamType      ExamType     `json:"examType"`
	TimeLimit     int          `json:"timeLimit,omitempty"`
	Settings      ExamSettings `json:"settings"`
	Domain        string       `json:"domain,omitempty"`
	KnowledgeArea string       `json:"knowledgeArea,omitempty"`
}

// SessionStatus enumerates the session lifecycle.
type SessionStatus string

const (
	StatusSetup      SessionStatus = "setup"
	StatusInProgress SessionStatus = "in-progress"
	StatusReview     SessionStatus = "review"
	StatusCompleted  SessionStatus = "completed"
	StatusAbandoned  SessionStatus = "abandoned"
)

// ExamSession is the mutable aggregate root of one exam attempt. Answers is
// keyed by zero-based question position; BookmarkedQuestions is a position
// set. The associated question-list length is not stored here — callers
// supply it at validation time, since a session is decoupled from any fixed
// question-list snapshot.
type ExamSession struct {
	ID                   string
	UserID               string
	ExamConfig           ExamConfig
	StartTime            time.Time
	EndTime              *time.Time
	CurrentQuestionIndex int
	Answers              map[int]Answer
	BookmarkedQuestions  map[int]struct{}
	Status               SessionStatus
}

// Clone returns a deep copy. Repair and recording operations work on copies
// so the caller's value is never mutated in place.
func (s ExamSession) Clone() ExamSession {
	out := s
	out.Answers = make(map[int]Answer, len(s.Answers))
	for pos, ans := range s.Answers {
		selected := make([]int, len(ans.SelectedOptions))
		copy(selected, ans.SelectedOptions)
		ans.SelectedOptions = selected
		out.Answers[pos] = ans
	}
	out.BookmarkedQuestions = make(map[int]struct{}, len(s.BookmarkedQuestions))
	for pos := range s.BookmarkedQuestions {
		out.BookmarkedQuestions[pos] = struct{}{}
	}
	if s.EndTime != nil {
		end := *s.EndTime
		out.EndTime = &end
	}
	return out
}

// DomainScore is derived, recomputed on demand from question results.
type DomainScore struct {
	Domain         string  `json:"domain"`
	TotalQuestions int     `json:"totalQuestions"`
	CorrectAnswers int     `json:"correctAnswers"`
	Score          float64 `json:"score"` // rounded percentage, 0 when TotalQuestions is 0
}

// QuestionResult is the derived per-question outcome. Score is the fractional
// credit in [0, 1] awarded by the scoring engine; Correct is true only for an
// exact match.
type QuestionResult struct {
	QuestionID     string  `json:"questionId"`
	Correct        bool    `json:"correct"`
	Score          float64 `json:"score"`
	SelectedAnswer []int   `json:"selectedAnswer"`
	CorrectAnswer  []int   `json:"correctAnswer"`
	TimeSpent      int     `json:"timeSpent"`
	Domain         string  `json:"domain"`
}

// ExamResults is the immutable final artifact of a completed session.
// Recomputation creates a new value for comparison; an existing value is
// never mutated.
type ExamResults struct {
	SessionID         string                 `json:"sessionId"`
	TotalQuestions    int                    `json:"totalQuestions"`
	AnsweredQuestions int                    `json:"answeredQuestions"`
	CorrectAnswers    int                    `json:"correctAnswers"`
	Score             float64                `json:"score"` // 0..100, two decimals
	Passed            bool                   `json:"passed"`
	TimeSpent         int                    `json:"timeSpent"` // seconds
	DomainScores      map[string]DomainScore `json:"domainScores"`
	QuestionResults   []QuestionResult       `json:"questionResults"`
}
