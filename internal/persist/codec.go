package persist

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"certexam-engine/internal/domain"
)

// Wire format notes: timestamps serialize as ISO-8601 (RFC 3339), the answers
// map as a position-sorted list of (position, answer) pairs, and the bookmark
// set as a sorted list. Deserialization rebuilds the map and set, so a
// serialize/deserialize round trip is value-equal to the original.

type answerEntry struct {
	Position int           `json:"position"`
	Answer   domain.Answer `json:"answer"`
}

type sessionDoc struct {
	ID                   string               `json:"id"`
	UserID               string               `json:"userId"`
	ExamConfig           domain.ExamConfig    `json:"examConfig"`
	StartTime            time.Time            `json:"startTime"`
	EndTime              *time.Time           `json:"endTime,omitempty"`
	CurrentQuestionIndex int                  `json:"currentQuestionIndex"`
	Answers              []answerEntry        `json:"answers"`
	BookmarkedQuestions  []int                `json:"bookmarkedQuestions"`
	Status               domain.SessionStatus `json:"status"`
}

// EncodeSession serializes a session into its wire form.
func EncodeSession(s domain.ExamSession) (string, error) {
	doc := sessionDoc{
		ID:                   s.ID,
		UserID:               s.UserID,
		ExamConfig:           s.ExamConfig,
		StartTime:            s.StartTime,
		EndTime:              s.EndTime,
		CurrentQuestionIndex: s.CurrentQuestionIndex,
		Answers:              make([]answerEntry, 0, len(s.Answers)),
		BookmarkedQuestions:  make([]int, 0, len(s.BookmarkedQuestions)),
		Status:               s.Status,
	}
	positions := make([]int, 0, len(s.Answers))
	for pos := range s.Answers {
		positions = append(positions, pos)
	}
	sort.Ints(positions)
	for _, pos := range positions {
		doc.Answers = append(doc.Answers, answerEntry{Position: pos, Answer: s.Answers[pos]})
	}
	for pos := range s.BookmarkedQuestions {
		doc.BookmarkedQuestions = append(doc.BookmarkedQuestions, pos)
	}
	sort.Ints(doc.BookmarkedQuestions)

	raw, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("encode session %s: %w", s.ID, err)
	}
	return string(raw), nil
}

// DecodeSession reconstructs a session from its wire form.
func DecodeSession(raw string) (domain.ExamSession, error) {
	var doc sessionDoc
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return domain.ExamSession{}, fmt.Errorf("decode session: %w", err)
	}
	s := domain.ExamSession{
		ID:                   doc.ID,
		UserID:               doc.UserID,
		ExamConfig:           doc.ExamConfig,
		StartTime:            doc.StartTime,
		EndTime:              doc.EndTime,
		CurrentQuestionIndex: doc.CurrentQuestionIndex,
		Answers:              make(map[int]domain.Answer, len(doc.Answers)),
		BookmarkedQuestions:  make(map[int]struct{}, len(doc.BookmarkedQuestions)),
		Status:               doc.Status,
	}
	for _, entry := range doc.Answers {
		s.Answers[entry.Position] = entry.Answer
	}
	for _, pos := range doc.BookmarkedQuestions {
		s.BookmarkedQuestions[pos] = struct{}{}
	}
	return s, nil
}

// EncodeQuestions serializes a question list.
func EncodeQuestions(questions []domain.Question) (string, error) {
	raw, err := json.Marshal(questions)
	if err != nil {
		return "", fmt.Errorf("encode questions: %w", err)
	}
	return string(raw), nil
}

// DecodeQuestions reconstructs a question list.
func DecodeQuestions(raw string) ([]domain.Question, error) {
	var questions []domain.Question
	if err := json.Unmarshal([]byte(raw), &questions); err != nil {
		return nil, fmt.Errorf("decode questions: %w", err)
	}
	return questions, nil
}

// EncodeResults serializes a results artifact.
func EncodeResults(r domain.ExamResults) (string, error) {
	raw, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("encode results %s: %w", r.SessionID, err)
	}
	return string(raw), nil
}

// DecodeResults reconstructs a results artifact.
func DecodeResults(raw string) (domain.ExamResults, error) {
	var r domain.ExamResults
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		return domain.ExamResults{}, fmt.Errorf("decode results: %w", err)
	}
	return r, nil
}
