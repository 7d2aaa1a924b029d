package sqlite

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/zjrosen/acquire/internal/domain/artifact"
)

// ActiveArtifactModel is a row of the active_artifacts table. Times are Unix seconds;
// languages and handle are JSON.
type ActiveArtifactModel struct {
	ID          int64
	SessionID   string
	Name        string
	Version     string
	Source      string
	Languages   *string // nullable
	Handle      string
	ActivatedAt int64
	UpdatedAt   int64
}

func toActiveArtifactModel(sessionID string, a artifact.ActiveArtifact, now time.Time) (*ActiveArtifactModel, error) {
	handle, err := json.Marshal(a.Handle)
	if err != nil {
		return nil, fmt.Errorf("encode handle: %w", err)
	}
	activatedAt := a.Handle.ActivatedAt
	if activatedAt.IsZero() {
		activatedAt = now
	}
	m := &ActiveArtifactModel{
		SessionID:   sessionID,
		Name:        a.Name,
		Version:     a.Version,
		Source:      a.Source,
		Handle:      string(handle),
		ActivatedAt: activatedAt.Unix(),
		UpdatedAt:   now.Unix(),
	}
	if len(a.Languages) > 0 {
		langs, err := json.Marshal(a.Languages)
		if err != nil {
			return nil, fmt.Errorf("encode languages: %w", err)
		}
		s := string(langs)
		m.Languages = &s
	}
	return m, nil
}

func (m *ActiveArtifactModel) toDomain() (artifact.ActiveArtifact, error) {
	var handle artifact.Handle
	if err := json.Unmarshal([]byte(m.Handle), &handle); err != nil {
		return artifact.ActiveArtifact{}, fmt.Errorf("decode handle of %s: %w", m.Name, err)
	}
	if handle.ActivatedAt.IsZero() {
		handle.ActivatedAt = time.Unix(m.ActivatedAt, 0)
	}
	var langs []string
	if m.Languages != nil {
		if err := json.Unmarshal([]byte(*m.Languages), &langs); err != nil {
			return artifact.ActiveArtifact{}, fmt.Errorf("decode languages of %s: %w", m.Name, err)
		}
	}
	return artifact.ActiveArtifact{
		Name:      m.Name,
		Version:   m.Version,
		Source:    m.Source,
		Languages: langs,
		Handle:    handle,
	}, nil
}
