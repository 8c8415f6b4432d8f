package app

import (
	"errors"
	"testing"
	"time"

	"certexam-engine/internal/domain"
	"certexam-engine/internal/scoring"
)

func answeredSession(t *testing.T, correct int) (domain.ExamSession, []domain.Question) {
	t.Helper()
	questions := fourQuestions()
	s := startedSession(t)
	for i := range questions {
		selected := 1
		if i < correct {
			selected = 0
		}
		ans := domain.Answer{
			QuestionID:      questions[i].ID,
			SelectedOptions: []int{selected},
			Timestamp:       testNow.Add(time.Duration(i) * time.Minute),
			TimeSpent:       30,
		}
		var err error
		s, err = RecordAnswer(s, i, ans, questions)
		if err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
	}
	return s, questions
}

func TestFinalizeScoresAndCompletes(t *testing.T) {
	s, questions := answeredSession(t, 3)
	cfg := scoring.NewConfig(domain.ModePractice, domain.ExamFullMock)

	results, err := Finalize(s, questions, cfg, testNow.Add(time.Hour))
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if results.Score != 75 {
		t.Fatalf("score = %v, want 75", results.Score)
	}
	if !results.Passed {
		t.Fatalf("75 against threshold 70 must pass")
	}
	if results.AnsweredQuestions != 4 || results.CorrectAnswers != 3 {
		t.Fatalf("counts = %d answered, %d correct", results.AnsweredQuestions, results.CorrectAnswers)
	}
}

func TestFinalizeRepairsBeforeScoring(t *testing.T) {
	s, questions := answeredSession(t, 4)
	s.CurrentQuestionIndex = 99
	s.BookmarkedQuestions[50] = struct{}{}

	cfg := scoring.NewConfig(domain.ModePractice, domain.ExamFullMock)
	results, err := Finalize(s, questions, cfg, testNow.Add(time.Hour))
	if err != nil {
		t.Fatalf("repairable issues must not block: %v", err)
	}
	if results.Score != 100 {
		t.Fatalf("score = %v, want 100", results.Score)
	}
}

func TestFinalizeTestModeBlocksOnUnrepairable(t *testing.T) {
	s, questions := answeredSession(t, 4)
	// Answer points at a question no longer in the set.
	ans := s.Answers[2]
	ans.QuestionID = "phantom"
	s.Answers[2] = ans

	cfg := scoring.NewConfig(domain.ModeTest, domain.ExamFullMock)
	cfg.TimeLimit = 3600
	_, err := Finalize(s, questions, cfg, testNow.Add(time.Hour))
	var ferr *FinalizeError
	if !errors.As(err, &ferr) {
		t.Fatalf("expected *FinalizeError, got %v", err)
	}
	if len(ferr.Issues) == 0 || ferr.SessionID != s.ID {
		t.Fatalf("error missing detail: %+v", ferr)
	}
}

func TestFinalizePracticeModeToleratesUnrepairable(t *testing.T) {
	s, questions := answeredSession(t, 4)
	ans := s.Answers[2]
	ans.QuestionID = "phantom"
	s.Answers[2] = ans

	cfg := scoring.NewConfig(domain.ModePractice, domain.ExamFullMock)
	results, err := Finalize(s, questions, cfg, testNow.Add(time.Hour))
	if err != nil {
		t.Fatalf("practice mode must proceed: %v", err)
	}
	if results.Score == 0 {
		t.Fatalf("remaining answers should still score")
	}
}

func TestComplete(t *testing.T) {
	s, questions := answeredSession(t, 2)
	end := testNow.Add(time.Hour)
	done := Complete(s, questions, end)
	if done.Status != domain.StatusCompleted {
		t.Fatalf("status = %s", done.Status)
	}
	if done.EndTime == nil || !done.EndTime.Equal(end) {
		t.Fatalf("end time = %v", done.EndTime)
	}
	if s.Status == domain.StatusCompleted {
		t.Fatalf("Complete mutated its input")
	}
}
