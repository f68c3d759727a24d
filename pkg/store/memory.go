package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/openagora/agora/pkg/ibis"
	"github.com/openagora/agora/pkg/layout"
)

// MemoryStore is a mutex-guarded in-memory Store. It backs tests, the
// offline layout CLI, and the admin TUI's demo mode.
type MemoryStore struct {
	mu            sync.RWMutex
	deliberations map[string]*ibis.Deliberation
	nodes         map[string]*ibis.Node
	relationships map[string]*ibis.Relationship
	snapshots     map[string][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		deliberations: make(map[string]*ibis.Deliberation),
		nodes:         make(map[string]*ibis.Node),
		relationships: make(map[string]*ibis.Relationship),
		snapshots:     make(map[string][]byte),
	}
}

func (s *MemoryStore) CreateDeliberation(_ context.Context, d *ibis.Deliberation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if _, exists := s.deliberations[d.ID]; exists {
		return fmt.Errorf("deliberation %s: %w", d.ID, ErrConflict)
	}
	if d.Status == "" {
		d.Status = ibis.StatusActive
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now()
	}

	copied := *d
	s.deliberations[d.ID] = &copied
	return nil
}

func (s *MemoryStore) GetDeliberation(_ context.Context, id string) (*ibis.Deliberation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.deliberations[id]
	if !ok {
		return nil, fmt.Errorf("deliberation %s: %w", id, ErrNotFound)
	}
	copied := *d
	return &copied, nil
}

func (s *MemoryStore) ListDeliberations(_ context.Context) ([]*ibis.Deliberation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*ibis.Deliberation, 0, len(s.deliberations))
	for _, d := range s.deliberations {
		copied := *d
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) ArchiveDeliberation(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.deliberations[id]
	if !ok {
		return fmt.Errorf("deliberation %s: %w", id, ErrNotFound)
	}
	d.Status = ibis.StatusArchived
	return nil
}

func (s *MemoryStore) CreateNode(_ context.Context, n *ibis.Node) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.deliberations[n.DeliberationID]; !ok {
		return fmt.Errorf("deliberation %s: %w", n.DeliberationID, ErrNotFound)
	}
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if _, exists := s.nodes[n.ID]; exists {
		return fmt.Errorf("node %s: %w", n.ID, ErrConflict)
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}

	copied := *n
	s.nodes[n.ID] = &copied
	return nil
}

func (s *MemoryStore) GetNode(_ context.Context, id string) (*ibis.Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.nodes[id]
	if !ok {
		return nil, fmt.Errorf("node %s: %w", id, ErrNotFound)
	}
	copied := *n
	return &copied, nil
}

func (s *MemoryStore) ListNodes(_ context.Context, deliberationID string) ([]*ibis.Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*ibis.Node, 0)
	for _, n := range s.nodes {
		if n.DeliberationID == deliberationID {
			copied := *n
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryStore) DeleteNode(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.nodes[id]; !ok {
		return fmt.Errorf("node %s: %w", id, ErrNotFound)
	}
	delete(s.nodes, id)

	// Cascade: relationships referencing the node go with it.
	for rid, r := range s.relationships {
		if r.SourceID == id || r.TargetID == id {
			delete(s.relationships, rid)
		}
	}
	return nil
}

func (s *MemoryStore) CreateRelationship(_ context.Context, r *ibis.Relationship) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.nodes[r.SourceID]; !ok {
		return fmt.Errorf("source node %s: %w", r.SourceID, ErrNotFound)
	}
	if _, ok := s.nodes[r.TargetID]; !ok {
		return fmt.Errorf("target node %s: %w", r.TargetID, ErrNotFound)
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if _, exists := s.relationships[r.ID]; exists {
		return fmt.Errorf("relationship %s: %w", r.ID, ErrConflict)
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}

	copied := *r
	s.relationships[r.ID] = &copied
	return nil
}

func (s *MemoryStore) ListRelationships(_ context.Context, deliberationID string) ([]*ibis.Relationship, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*ibis.Relationship, 0)
	for _, r := range s.relationships {
		if r.DeliberationID == deliberationID {
			copied := *r
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryStore) DeleteRelationship(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.relationships[id]; !ok {
		return fmt.Errorf("relationship %s: %w", id, ErrNotFound)
	}
	delete(s.relationships, id)
	return nil
}

func (s *MemoryStore) SavePositions(_ context.Context, deliberationID string, positions map[string]layout.Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, pos := range positions {
		n, ok := s.nodes[id]
		if !ok || n.DeliberationID != deliberationID {
			continue
		}
		x, y := pos.X, pos.Y
		n.SavedX = &x
		n.SavedY = &y
	}
	return nil
}

func (s *MemoryStore) SaveSnapshot(_ context.Context, deliberationID string, result *layout.Result) error {
	data, err := EncodeSnapshot(result)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.deliberations[deliberationID]; !ok {
		return fmt.Errorf("deliberation %s: %w", deliberationID, ErrNotFound)
	}
	s.snapshots[deliberationID] = data
	return nil
}

func (s *MemoryStore) LoadSnapshot(_ context.Context, deliberationID string) (*layout.Result, error) {
	s.mu.RLock()
	data, ok := s.snapshots[deliberationID]
	s.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("snapshot for deliberation %s: %w", deliberationID, ErrNotFound)
	}
	return DecodeSnapshot(data)
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }
