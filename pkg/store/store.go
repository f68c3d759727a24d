// Package store persists deliberations, their argument graphs, and
// computed layout snapshots. Two implementations exist: an in-memory
// store for tests and offline tooling, and a PostgreSQL store for the
// service.
package store

import (
	"context"
	"errors"

	"github.com/openagora/agora/pkg/ibis"
	"github.com/openagora/agora/pkg/layout"
)

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a record with the same ID exists.
	ErrConflict = errors.New("record already exists")
)

// Store is the persistence collaborator the service and the layout
// pipeline read from and write to.
type Store interface {
	// Deliberations
	CreateDeliberation(ctx context.Context, d *ibis.Deliberation) error
	GetDeliberation(ctx context.Context, id string) (*ibis.Deliberation, error)
	ListDeliberations(ctx context.Context) ([]*ibis.Deliberation, error)
	ArchiveDeliberation(ctx context.Context, id string) error

	// Nodes
	CreateNode(ctx context.Context, n *ibis.Node) error
	GetNode(ctx context.Context, id string) (*ibis.Node, error)
	ListNodes(ctx context.Context, deliberationID string) ([]*ibis.Node, error)
	DeleteNode(ctx context.Context, id string) error

	// Relationships
	CreateRelationship(ctx context.Context, r *ibis.Relationship) error
	ListRelationships(ctx context.Context, deliberationID string) ([]*ibis.Relationship, error)
	DeleteRelationship(ctx context.Context, id string) error

	// Layout persistence
	SavePositions(ctx context.Context, deliberationID string, positions map[string]layout.Position) error
	SaveSnapshot(ctx context.Context, deliberationID string, result *layout.Result) error
	LoadSnapshot(ctx context.Context, deliberationID string) (*layout.Result, error)

	Ping(ctx context.Context) error
	Close() error
}
