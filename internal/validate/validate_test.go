package validate

import (
	"strings"
	"testing"
	"time"

	"certexam-engine/internal/domain"
)

func validQuestion() domain.Question {
	return domain.Question{
		ID:            "q1",
		Text:          "Which process group contains Develop Project Charter?",
		Type:          domain.SingleChoice,
		Options:       []string{"Initiating", "Planning", "Executing", "Closing"},
		CorrectAnswer: []int{0},
		Domain:        "Process",
		Difficulty:    domain.DifficultyEasy,
	}
}

func TestQuestionValid(t *testing.T) {
	if errs := Question(validQuestion()); len(errs) != 0 {
		t.Fatalf("valid question reported %v", errs)
	}
}

func TestQuestionInvalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.Question)
		field  string
	}{
		{"empty id", func(q *domain.Question) { q.ID = "" }, "id"},
		{"empty text", func(q *domain.Question) { q.Text = "" }, "text"},
		{"unknown type", func(q *domain.Question) { q.Type = "essay" }, "type"},
		{"no options", func(q *domain.Question) { q.Options = nil }, "options"},
		{"empty option", func(q *domain.Question) { q.Options[2] = "" }, "options"},
		{"correct index out of range", func(q *domain.Question) { q.CorrectAnswer = []int{4} }, "correctAnswer"},
		{"negative correct index", func(q *domain.Question) { q.CorrectAnswer = []int{-1} }, "correctAnswer"},
		{"two answers on single choice", func(q *domain.Question) { q.CorrectAnswer = []int{0, 1} }, "correctAnswer"},
		{"duplicate correct indices", func(q *domain.Question) {
			q.Type = domain.MultiSelect
			q.CorrectAnswer = []int{1, 1}
		}, "correctAnswer"},
		{"empty multi-select answer", func(q *domain.Question) {
			q.Type = domain.MultiSelect
			q.CorrectAnswer = nil
		}, "correctAnswer"},
		{"unknown difficulty", func(q *domain.Question) { q.Difficulty = "impossible" }, "difficulty"},
		{"empty domain", func(q *domain.Question) { q.Domain = "" }, "domain"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			q := validQuestion()
			tc.mutate(&q)
			errs := Question(q)
			if len(errs) == 0 {
				t.Fatalf("expected errors")
			}
			found := false
			for _, fe := range errs {
				if fe.Field == tc.field {
					found = true
				}
			}
			if !found {
				t.Fatalf("expected an error on %q, got %v", tc.field, errs)
			}
		})
	}
}

func TestAnswer(t *testing.T) {
	good := domain.Answer{QuestionID: "q1", SelectedOptions: []int{0, 2}, Timestamp: time.Now(), TimeSpent: 12}
	if errs := Answer(good); len(errs) != 0 {
		t.Fatalf("valid answer reported %v", errs)
	}

	bad := domain.Answer{SelectedOptions: []int{-1, 2, 2}, TimeSpent: -5}
	errs := Answer(bad)
	fields := make(map[string]int)
	for _, fe := range errs {
		fields[fe.Field]++
	}
	if fields["questionId"] == 0 || fields["timeSpent"] == 0 {
		t.Fatalf("missing expected field errors: %v", errs)
	}
	if fields["selectedOptions"] < 2 {
		t.Fatalf("expected both negative and duplicate selection errors, got %v", errs)
	}
}

func TestExamConfigTimeLimit(t *testing.T) {
	cfg := domain.ExamConfig{ID: "c1", Mode: domain.ModeTest, ExamType: domain.ExamFullMock}
	errs := ExamConfig(cfg)
	if len(errs) != 1 || errs[0].Field != "timeLimit" {
		t.Fatalf("test mode without time limit: %v", errs)
	}

	cfg.TimeLimit = 3600
	if errs := ExamConfig(cfg); len(errs) != 0 {
		t.Fatalf("valid test config reported %v", errs)
	}

	// Practice mode needs no limit.
	cfg = domain.ExamConfig{ID: "c2", Mode: domain.ModePractice, ExamType: domain.ExamDomainQuiz}
	if errs := ExamConfig(cfg); len(errs) != 0 {
		t.Fatalf("valid practice config reported %v", errs)
	}
}

func TestSessionShape(t *testing.T) {
	s := domain.ExamSession{
		ID:         "s1",
		UserID:     "u1",
		ExamConfig: domain.ExamConfig{ID: "c1", Mode: domain.ModePractice, ExamType: domain.ExamFullMock},
		StartTime:  time.Now(),
		Answers: map[int]domain.Answer{
			0: {QuestionID: "q1", SelectedOptions: []int{1}, Timestamp: time.Now()},
		},
		BookmarkedQuestions: map[int]struct{}{2: {}},
		Status:              domain.StatusInProgress,
	}
	if errs := Session(s); len(errs) != 0 {
		t.Fatalf("valid session reported %v", errs)
	}

	s.Answers[-1] = domain.Answer{QuestionID: "q0", Timestamp: time.Now()}
	s.Status = "paused"
	errs := Session(s)
	if len(errs) < 2 {
		t.Fatalf("expected status and answer-position errors, got %v", errs)
	}
}

func TestErrorMessage(t *testing.T) {
	err := &Error{Entity: "exam config", Fields: []FieldError{
		{Field: "timeLimit", Message: "required and positive for test mode"},
	}}
	if !strings.Contains(err.Error(), "exam config") || !strings.Contains(err.Error(), "timeLimit") {
		t.Fatalf("unhelpful error message: %s", err.Error())
	}
}
