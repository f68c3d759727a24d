package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/openagora/agora/pkg/ibis"
	"github.com/openagora/agora/pkg/layout"
)

func (s *PGStore) CreateDeliberation(ctx context.Context, d *ibis.Deliberation) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.Status == "" {
		d.Status = ibis.StatusActive
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now()
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO deliberations (id, title, status, created_at) VALUES ($1, $2, $3, $4)`,
		d.ID, d.Title, d.Status, d.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create deliberation: %w", err)
	}
	return nil
}

func (s *PGStore) GetDeliberation(ctx context.Context, id string) (*ibis.Deliberation, error) {
	d := &ibis.Deliberation{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, title, status, created_at FROM deliberations WHERE id = $1`, id,
	).Scan(&d.ID, &d.Title, &d.Status, &d.CreatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("deliberation %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get deliberation: %w", err)
	}
	return d, nil
}

func (s *PGStore) ListDeliberations(ctx context.Context) ([]*ibis.Deliberation, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, title, status, created_at FROM deliberations ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list deliberations: %w", err)
	}
	defer rows.Close()

	out := make([]*ibis.Deliberation, 0)
	for rows.Next() {
		d := &ibis.Deliberation{}
		if err := rows.Scan(&d.ID, &d.Title, &d.Status, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan deliberation: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *PGStore) ArchiveDeliberation(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE deliberations SET status = $1 WHERE id = $2`, ibis.StatusArchived, id)
	if err != nil {
		return fmt.Errorf("failed to archive deliberation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("deliberation %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *PGStore) CreateNode(ctx context.Context, n *ibis.Node) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}

	var parentID *string
	if n.ParentID != "" {
		parentID = &n.ParentID
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO nodes (id, deliberation_id, title, category, saved_x, saved_y, embedding, parent_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		n.ID, n.DeliberationID, n.Title, n.Category, n.SavedX, n.SavedY, n.Embedding, parentID, n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create node: %w", err)
	}
	return nil
}

func (s *PGStore) GetNode(ctx context.Context, id string) (*ibis.Node, error) {
	n := &ibis.Node{}
	var parentID *string
	err := s.pool.QueryRow(ctx,
		`SELECT id, deliberation_id, title, category, saved_x, saved_y, embedding, parent_id, created_at
		 FROM nodes WHERE id = $1`, id,
	).Scan(&n.ID, &n.DeliberationID, &n.Title, &n.Category, &n.SavedX, &n.SavedY, &n.Embedding, &parentID, &n.CreatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("node %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get node: %w", err)
	}
	if parentID != nil {
		n.ParentID = *parentID
	}
	return n, nil
}

func (s *PGStore) ListNodes(ctx context.Context, deliberationID string) ([]*ibis.Node, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, deliberation_id, title, category, saved_x, saved_y, embedding, parent_id, created_at
		 FROM nodes WHERE deliberation_id = $1 ORDER BY created_at, id`, deliberationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list nodes: %w", err)
	}
	defer rows.Close()

	out := make([]*ibis.Node, 0)
	for rows.Next() {
		n := &ibis.Node{}
		var parentID *string
		if err := rows.Scan(&n.ID, &n.DeliberationID, &n.Title, &n.Category, &n.SavedX, &n.SavedY, &n.Embedding, &parentID, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan node: %w", err)
		}
		if parentID != nil {
			n.ParentID = *parentID
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *PGStore) DeleteNode(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM nodes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete node: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("node %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *PGStore) CreateRelationship(ctx context.Context, r *ibis.Relationship) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO relationships (id, deliberation_id, source_id, target_id, kind, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		r.ID, r.DeliberationID, r.SourceID, r.TargetID, r.Kind, r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create relationship: %w", err)
	}
	return nil
}

func (s *PGStore) ListRelationships(ctx context.Context, deliberationID string) ([]*ibis.Relationship, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, deliberation_id, source_id, target_id, kind, created_at
		 FROM relationships WHERE deliberation_id = $1 ORDER BY created_at, id`, deliberationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list relationships: %w", err)
	}
	defer rows.Close()

	out := make([]*ibis.Relationship, 0)
	for rows.Next() {
		r := &ibis.Relationship{}
		if err := rows.Scan(&r.ID, &r.DeliberationID, &r.SourceID, &r.TargetID, &r.Kind, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan relationship: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *PGStore) DeleteRelationship(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM relationships WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete relationship: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("relationship %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *PGStore) SavePositions(ctx context.Context, deliberationID string, positions map[string]layout.Position) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for id, pos := range positions {
		if _, err := tx.Exec(ctx,
			`UPDATE nodes SET saved_x = $1, saved_y = $2 WHERE id = $3 AND deliberation_id = $4`,
			pos.X, pos.Y, id, deliberationID,
		); err != nil {
			return fmt.Errorf("failed to save position for node %s: %w", id, err)
		}
	}

	return tx.Commit(ctx)
}

func (s *PGStore) SaveSnapshot(ctx context.Context, deliberationID string, result *layout.Result) error {
	data, err := EncodeSnapshot(result)
	if err != nil {
		return err
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO layout_snapshots (deliberation_id, data, updated_at) VALUES ($1, $2, now())
		 ON CONFLICT (deliberation_id) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`,
		deliberationID, data,
	)
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

func (s *PGStore) LoadSnapshot(ctx context.Context, deliberationID string) (*layout.Result, error) {
	var data []byte
	err := s.pool.QueryRow(ctx,
		`SELECT data FROM layout_snapshots WHERE deliberation_id = $1`, deliberationID,
	).Scan(&data)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("snapshot for deliberation %s: %w", deliberationID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	return DecodeSnapshot(data)
}
