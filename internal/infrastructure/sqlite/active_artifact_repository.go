package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/zjrosen/acquire/internal/domain/artifact"
	"github.com/zjrosen/acquire/internal/session"
)

const activeColumns = `id, session_id, name, version, source, languages, handle, activated_at, updated_at`

// ActiveArtifactRepository implements session.Repository on SQLite.
type ActiveArtifactRepository struct {
	db  *DB
	now func() time.Time
}

var _ session.Repository = (*ActiveArtifactRepository)(nil)

func newActiveArtifactRepository(db *DB) *ActiveArtifactRepository {
	return &ActiveArtifactRepository{db: db, now: time.Now}
}

func scanActive(scanner interface{ Scan(...any) error }) (*ActiveArtifactModel, error) {
	var m ActiveArtifactModel
	err := scanner.Scan(&m.ID, &m.SessionID, &m.Name, &m.Version, &m.Source, &m.Languages,
		&m.Handle, &m.ActivatedAt, &m.UpdatedAt)
	return &m, err
}

// Save upserts the entry for a.Name in sessionID.
func (r *ActiveArtifactRepository) Save(ctx context.Context, sessionID string, a artifact.ActiveArtifact) error {
	m, err := toActiveArtifactModel(sessionID, a, r.now())
	if err != nil {
		return err
	}
	_, err = r.db.conn.ExecContext(ctx,
		`INSERT INTO active_artifacts (session_id, name, version, source, languages, handle, activated_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (session_id, name) DO UPDATE SET
			version = excluded.version,
			source = excluded.source,
			languages = excluded.languages,
			handle = excluded.handle,
			activated_at = excluded.activated_at,
			updated_at = excluded.updated_at`,
		m.SessionID, m.Name, m.Version, m.Source, m.Languages, m.Handle, m.ActivatedAt, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save active artifact: %w", err)
	}
	return nil
}

// List returns the session's active artifacts ordered by name.
func (r *ActiveArtifactRepository) List(ctx context.Context, sessionID string) ([]artifact.ActiveArtifact, error) {
	rows, err := r.db.conn.QueryContext(ctx,
		`SELECT `+activeColumns+` FROM active_artifacts WHERE session_id = ? ORDER BY name`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list active artifacts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []artifact.ActiveArtifact
	for rows.Next() {
		m, err := scanActive(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan active artifact: %w", err)
		}
		a, err := m.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate active artifacts: %w", err)
	}
	return out, nil
}

// Clear removes every entry of sessionID.
func (r *ActiveArtifactRepository) Clear(ctx context.Context, sessionID string) error {
	if _, err := r.db.conn.ExecContext(ctx, `DELETE FROM active_artifacts WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// Sessions returns the ids of every session with at least one active artifact.
func (r *ActiveArtifactRepository) Sessions(ctx context.Context) ([]string, error) {
	rows, err := r.db.conn.QueryContext(ctx, `SELECT DISTINCT session_id FROM active_artifacts ORDER BY session_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan session id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Close closes the underlying database.
func (r *ActiveArtifactRepository) Close() error {
	return r.db.Close()
}
