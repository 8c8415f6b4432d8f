package persist

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"certexam-engine/internal/domain"
	"certexam-engine/internal/integrity"
)

// recoveryDoc is the crash-recovery snapshot envelope. It lives in a slot
// parallel to the normal save and carries provenance, so a restore can judge
// staleness and origin before trusting the payload.
type recoveryDoc struct {
	RecoveryID string    `json:"recoveryId"`
	SavedAt    time.Time `json:"savedAt"`
	Origin     string    `json:"origin"`
	Session    string    `json:"session"`
	Questions  string    `json:"questions"`
}

// SaveRecoverySnapshot writes an opportunistic snapshot (before unload, on a
// timer) without touching the normal save slot. Returns the snapshot's
// recovery id.
func (m *Manager) SaveRecoverySnapshot(ctx context.Context, s domain.ExamSession, questions []domain.Question, origin string) (string, error) {
	sessionRaw, err := EncodeSession(s)
	if err != nil {
		return "", err
	}
	questionsRaw, err := EncodeQuestions(questions)
	if err != nil {
		return "", err
	}
	doc := recoveryDoc{
		RecoveryID: m.newID(),
		SavedAt:    m.now(),
		Origin:     origin,
		Session:    sessionRaw,
		Questions:  questionsRaw,
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("encode recovery snapshot %s: %w", s.ID, err)
	}
	if err := m.store.Set(ctx, keyPrefixRecovery+s.ID, string(raw)); err != nil {
		return "", fmt.Errorf("write recovery snapshot %s: %w", s.ID, err)
	}
	m.log.Debug().Str("session_id", s.ID).Str("recovery_id", doc.RecoveryID).Str("origin", origin).Msg("recovery snapshot saved")
	return doc.RecoveryID, nil
}

// RecoverSession restores from the recovery slot. Snapshots older than
// maxAge are rejected even when a normal save exists, and the restored
// session goes through the same integrity validation as a normal load —
// recovery is deliberately not trusted more.
func (m *Manager) RecoverSession(ctx context.Context, id string, maxAge time.Duration) (domain.ExamSession, []domain.Question, error) {
	raw, ok, err := m.store.Get(ctx, keyPrefixRecovery+id)
	if err != nil {
		return domain.ExamSession{}, nil, fmt.Errorf("read recovery snapshot %s: %w", id, err)
	}
	if !ok {
		return domain.ExamSession{}, nil, fmt.Errorf("recover session %s: %w", id, domain.ErrRecoveryNotFound)
	}
	var doc recoveryDoc
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return domain.ExamSession{}, nil, fmt.Errorf("decode recovery snapshot %s: %w", id, err)
	}
	if m.now().Sub(doc.SavedAt) > maxAge {
		return domain.ExamSession{}, nil, fmt.Errorf("recover session %s: snapshot from %s: %w",
			id, doc.SavedAt.Format(time.RFC3339), domain.ErrRecoveryExpired)
	}

	s, err := DecodeSession(doc.Session)
	if err != nil {
		return domain.ExamSession{}, nil, err
	}
	questions, err := DecodeQuestions(doc.Questions)
	if err != nil {
		return domain.ExamSession{}, nil, err
	}
	check := integrity.CheckSession(s, questions, m.now())
	if !check.CanRecover {
		return domain.ExamSession{}, nil, fmt.Errorf("recover session %s: %w", id, domain.ErrUnrecoverable)
	}

	m.log.Info().Str("session_id", id).Str("recovery_id", doc.RecoveryID).Str("origin", doc.Origin).Msg("session recovered from snapshot")
	return s, questions, nil
}
