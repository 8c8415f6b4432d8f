package persist

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"certexam-engine/internal/domain"
	"certexam-engine/internal/integrity"
	"certexam-engine/internal/validate"
)

// exportFormat versions the export document so importers can refuse what
// they do not understand.
const exportFormat = "certexam.session-export/1"

// ExportDoc is the self-describing support/debugging document: one session,
// its question list, and its results when present.
type ExportDoc struct {
	Format     string          `json:"format"`
	ExportedAt time.Time       `json:"exportedAt"`
	Metadata   Metadata        `json:"metadata"`
	Session    json.RawMessage `json:"session"`
	Questions  json.RawMessage `json:"questions"`
	Results    json.RawMessage `json:"results,omitempty"`
}

// ExportSession bundles everything saved for a session into one document.
func (m *Manager) ExportSession(ctx context.Context, id string) ([]byte, error) {
	s, questions, err := m.LoadSession(ctx, id)
	if err != nil {
		return nil, err
	}
	sessionRaw, err := EncodeSession(s)
	if err != nil {
		return nil, err
	}
	questionsRaw, err := EncodeQuestions(questions)
	if err != nil {
		return nil, err
	}
	doc := ExportDoc{
		Format:     exportFormat,
		ExportedAt: m.now(),
		Metadata:   m.metadataFor(s, questions),
		Session:    json.RawMessage(sessionRaw),
		Questions:  json.RawMessage(questionsRaw),
	}
	if resultsRaw, ok, err := m.store.Get(ctx, keyPrefixResults+id); err != nil {
		return nil, fmt.Errorf("read results %s: %w", id, err)
	} else if ok {
		doc.Results = json.RawMessage(resultsRaw)
	}
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode export %s: %w", id, err)
	}
	return out, nil
}

// ImportSession accepts an export document, re-validates its contents, and
// saves them through the normal path. The document is never trusted as-is.
// Returns the imported session id.
func (m *Manager) ImportSession(ctx context.Context, raw []byte) (string, error) {
	var doc ExportDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return "", fmt.Errorf("decode export document: %w", err)
	}
	if doc.Format != exportFormat {
		return "", fmt.Errorf("unsupported export format %q", doc.Format)
	}

	s, err := DecodeSession(string(doc.Session))
	if err != nil {
		return "", err
	}
	questions, err := DecodeQuestions(string(doc.Questions))
	if err != nil {
		return "", err
	}
	if fields := validate.Session(s); len(fields) > 0 {
		return "", &validate.Error{Entity: "imported session", Fields: fields}
	}
	for i, q := range questions {
		if fields := validate.Question(q); len(fields) > 0 {
			return "", &validate.Error{Entity: fmt.Sprintf("imported question %d", i), Fields: fields}
		}
	}
	check := integrity.CheckSession(s, questions, m.now())
	if !check.CanRecover {
		return "", fmt.Errorf("import session %s: %w", s.ID, domain.ErrUnrecoverable)
	}

	if err := m.SaveSession(ctx, s, questions); err != nil {
		return "", err
	}
	if len(doc.Results) > 0 {
		results, err := DecodeResults(string(doc.Results))
		if err != nil {
			return "", err
		}
		if issues := integrity.CheckResults(results, questions); len(issues) > 0 {
			m.log.Warn().Str("session_id", s.ID).Int("issues", len(issues)).Msg("imported results failed consistency check, skipping")
		} else if err := m.SaveResults(ctx, results); err != nil {
			return "", err
		}
	}
	m.log.Info().Str("session_id", s.ID).Msg("session imported")
	return s.ID, nil
}
