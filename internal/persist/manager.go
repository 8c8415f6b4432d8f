// Package persist owns the serialized life of exam sessions: saving, loading,
// indexing, retention cleanup, crash-recovery snapshots, and support
// export/import. It treats the injected Store as the only shared resource;
// keys are namespaced per session id and overwrites are idempotent, so
// last-writer-wins is the whole concurrency story.
package persist

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"certexam-engine/internal/domain"
	"certexam-engine/internal/integrity"
	"certexam-engine/internal/validate"
)

// Metadata is the small per-session record kept beside the full session so
// listings do not deserialize every session.
type Metadata struct {
	ID             string          `json:"id"`
	UserID         string          `json:"userId"`
	ExamType       domain.ExamType `json:"examType"`
	StartTime      time.Time       `json:"startTime"`
	LastSaved      time.Time       `json:"lastSaved"`
	IsCompleted    bool            `json:"isCompleted"`
	QuestionsCount int             `json:"questionsCount"`
	AnsweredCount  int             `json:"answeredCount"`
}

// Manager implements the persistence and recovery protocol over a Store.
type Manager struct {
	store Store
	log   zerolog.Logger
	now   func() time.Time
	newID func() string
}

// NewManager wires a manager over a store. The clock and id source default to
// time.Now and uuid; tests override them through the With options.
func NewManager(store Store, log zerolog.Logger) *Manager {
	return &Manager{
		store: store,
		log:   log.With().Str("component", "persist").Logger(),
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// WithClock replaces the wall clock, for deterministic tests.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

// WithIDSource replaces the recovery id generator, for deterministic tests.
func (m *Manager) WithIDSource(newID func() string) *Manager {
	m.newID = newID
	return m
}

// SaveSession validates and writes a session, its question list, and its
// metadata, then registers the id in the index. It fails closed: nothing is
// written when structural validation fails or integrity validation reports
// unrecoverable issues.
func (m *Manager) SaveSession(ctx context.Context, s domain.ExamSession, questions []domain.Question) error {
	if fields := validate.Session(s); len(fields) > 0 {
		return &validate.Error{Entity: "exam session", Fields: fields}
	}
	check := integrity.CheckSession(s, questions, m.now())
	if !check.CanRecover {
		return fmt.Errorf("save session %s: %w", s.ID, domain.ErrUnrecoverable)
	}

	sessionRaw, err := EncodeSession(s)
	if err != nil {
		return err
	}
	questionsRaw, err := EncodeQuestions(questions)
	if err != nil {
		return err
	}
	metaRaw, err := json.Marshal(m.metadataFor(s, questions))
	if err != nil {
		return fmt.Errorf("encode metadata %s: %w", s.ID, err)
	}

	if err := m.store.Set(ctx, keyPrefixSession+s.ID, sessionRaw); err != nil {
		return fmt.Errorf("write session %s: %w", s.ID, err)
	}
	if err := m.store.Set(ctx, keyPrefixQuestions+s.ID, questionsRaw); err != nil {
		return fmt.Errorf("write questions %s: %w", s.ID, err)
	}
	if err := m.store.Set(ctx, keyPrefixMetadata+s.ID, string(metaRaw)); err != nil {
		return fmt.Errorf("write metadata %s: %w", s.ID, err)
	}
	if err := m.addToIndex(ctx, s.ID); err != nil {
		return err
	}

	m.log.Debug().Str("session_id", s.ID).Int("answers", len(s.Answers)).Msg("session saved")
	return nil
}

// LoadSession reads a session and its question list and re-validates
// integrity before handing it back. Missing or unrecoverable data yields an
// error, never a silently broken session.
func (m *Manager) LoadSession(ctx context.Context, id string) (domain.ExamSession, []domain.Question, error) {
	sessionRaw, ok, err := m.store.Get(ctx, keyPrefixSession+id)
	if err != nil {
		return domain.ExamSession{}, nil, fmt.Errorf("read session %s: %w", id, err)
	}
	if !ok {
		return domain.ExamSession{}, nil, fmt.Errorf("load session %s: %w", id, domain.ErrSessionNotFound)
	}
	questionsRaw, ok, err := m.store.Get(ctx, keyPrefixQuestions+id)
	if err != nil {
		return domain.ExamSession{}, nil, fmt.Errorf("read questions %s: %w", id, err)
	}
	if !ok {
		return domain.ExamSession{}, nil, fmt.Errorf("load questions %s: %w", id, domain.ErrQuestionSetNotFound)
	}

	s, err := DecodeSession(sessionRaw)
	if err != nil {
		return domain.ExamSession{}, nil, err
	}
	questions, err := DecodeQuestions(questionsRaw)
	if err != nil {
		return domain.ExamSession{}, nil, err
	}

	check := integrity.CheckSession(s, questions, m.now())
	if !check.CanRecover {
		return domain.ExamSession{}, nil, fmt.Errorf("load session %s: %w", id, domain.ErrUnrecoverable)
	}
	return s, questions, nil
}

// SaveResults stores the final artifact for a completed session.
func (m *Manager) SaveResults(ctx context.Context, r domain.ExamResults) error {
	raw, err := EncodeResults(r)
	if err != nil {
		return err
	}
	if err := m.store.Set(ctx, keyPrefixResults+r.SessionID, raw); err != nil {
		return fmt.Errorf("write results %s: %w", r.SessionID, err)
	}
	return nil
}

// LoadResults reads back a stored results artifact.
func (m *Manager) LoadResults(ctx context.Context, sessionID string) (domain.ExamResults, error) {
	raw, ok, err := m.store.Get(ctx, keyPrefixResults+sessionID)
	if err != nil {
		return domain.ExamResults{}, fmt.Errorf("read results %s: %w", sessionID, err)
	}
	if !ok {
		return domain.ExamResults{}, fmt.Errorf("load results %s: %w", sessionID, domain.ErrSessionNotFound)
	}
	return DecodeResults(raw)
}

// DeleteSession removes every keyed record for a session and its index
// entry. Deleting an absent session is not an error.
func (m *Manager) DeleteSession(ctx context.Context, id string) error {
	for _, prefix := range []string{keyPrefixSession, keyPrefixQuestions, keyPrefixMetadata, keyPrefixResults, keyPrefixRecovery} {
		if err := m.store.Delete(ctx, prefix+id); err != nil {
			return fmt.Errorf("delete %s%s: %w", prefix, id, err)
		}
	}
	if err := m.removeFromIndex(ctx, id); err != nil {
		return err
	}
	m.log.Debug().Str("session_id", id).Msg("session deleted")
	return nil
}

// ListSessions returns the metadata records for every indexed session.
// Index entries whose metadata is missing are skipped, not fatal.
func (m *Manager) ListSessions(ctx context.Context) ([]Metadata, error) {
	ids, err := m.readIndex(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Metadata, 0, len(ids))
	for _, id := range ids {
		raw, ok, err := m.store.Get(ctx, keyPrefixMetadata+id)
		if err != nil {
			return nil, fmt.Errorf("read metadata %s: %w", id, err)
		}
		if !ok {
			m.log.Warn().Str("session_id", id).Msg("indexed session has no metadata, skipping")
			continue
		}
		var meta Metadata
		if err := json.Unmarshal([]byte(raw), &meta); err != nil {
			return nil, fmt.Errorf("decode metadata %s: %w", id, err)
		}
		out = append(out, meta)
	}
	return out, nil
}

// CleanupExpiredSessions deletes non-completed sessions whose last save
// predates now minus maxAge. Returns the number of sessions removed.
func (m *Manager) CleanupExpiredSessions(ctx context.Context, maxAge time.Duration) (int, error) {
	return m.cleanup(ctx, maxAge, false)
}

// CleanupCompletedSessions deletes completed sessions whose last save
// predates now minus keepRecent. Completed sessions get a shorter retention:
// their value is transient once results are recorded.
func (m *Manager) CleanupCompletedSessions(ctx context.Context, keepRecent time.Duration) (int, error) {
	return m.cleanup(ctx, keepRecent, true)
}

func (m *Manager) cleanup(ctx context.Context, age time.Duration, completed bool) (int, error) {
	metas, err := m.ListSessions(ctx)
	if err != nil {
		return 0, err
	}
	cutoff := m.now().Add(-age)
	removed := 0
	for _, meta := range metas {
		if meta.IsCompleted != completed || !meta.LastSaved.Before(cutoff) {
			continue
		}
		if err := m.DeleteSession(ctx, meta.ID); err != nil {
			return removed, err
		}
		removed++
	}
	if removed > 0 {
		m.log.Info().Int("removed", removed).Bool("completed", completed).Msg("cleanup finished")
	}
	return removed, nil
}

func (m *Manager) metadataFor(s domain.ExamSession, questions []domain.Question) Metadata {
	return Metadata{
		ID:             s.ID,
		UserID:         s.UserID,
		ExamType:       s.ExamConfig.ExamType,
		StartTime:      s.StartTime,
		LastSaved:      m.now(),
		IsCompleted:    s.Status == domain.StatusCompleted,
		QuestionsCount: len(questions),
		AnsweredCount:  len(s.Answers),
	}
}

func (m *Manager) readIndex(ctx context.Context) ([]string, error) {
	raw, ok, err := m.store.Get(ctx, keyIndex)
	if err != nil {
		return nil, fmt.Errorf("read index: %w", err)
	}
	if !ok {
		return nil, nil
	}
	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, fmt.Errorf("decode index: %w", err)
	}
	return ids, nil
}

func (m *Manager) writeIndex(ctx context.Context, ids []string) error {
	raw, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("encode index: %w", err)
	}
	if err := m.store.Set(ctx, keyIndex, string(raw)); err != nil {
		return fmt.Errorf("write index: %w", err)
	}
	return nil
}

func (m *Manager) addToIndex(ctx context.Context, id string) error {
	ids, err := m.readIndex(ctx)
	if err != nil {
		return err
	}
	for _, existing := range ids {
		if existing == id {
			return nil
		}
	}
	return m.writeIndex(ctx, append(ids, id))
}

func (m *Manager) removeFromIndex(ctx context.Context, id string) error {
	ids, err := m.readIndex(ctx)
	if err != nil {
		return err
	}
	out := ids[:0]
	for _, existing := range ids {
		if existing != id {
			out = append(out, existing)
		}
	}
	if len(out) == len(ids) {
		return nil
	}
	return m.writeIndex(ctx, out)
}
