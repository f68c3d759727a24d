package ibis

import (
	"errors"
	"fmt"
	"time"
)

// ErrUnknownKind is returned when a relationship kind is not one of
// the four recognized IBIS kinds.
var ErrUnknownKind = errors.New("unknown relationship kind")

// RelationshipKind is the typed link between two IBIS nodes.
type RelationshipKind string

const (
	KindSupports   RelationshipKind = "supports"
	KindOpposes    RelationshipKind = "opposes"
	KindRelatesTo  RelationshipKind = "relates_to"
	KindRespondsTo RelationshipKind = "responds_to"
)

// relationshipWeights maps each kind to its attraction weight in the
// layout simulation. Stronger weights pull connected nodes closer.
var relationshipWeights = map[RelationshipKind]float64{
	KindSupports:   1.0,
	KindOpposes:    0.8,
	KindRelatesTo:  0.6,
	KindRespondsTo: 0.7,
}

// Valid reports whether the kind is one of the recognized four.
func (k RelationshipKind) Valid() bool {
	_, ok := relationshipWeights[k]
	return ok
}

// Weight returns the attraction weight for the kind. Unknown kinds
// fail closed to the weakest recognized weight.
func (k RelationshipKind) Weight() float64 {
	if w, ok := relationshipWeights[k]; ok {
		return w
	}
	return relationshipWeights[KindRelatesTo]
}

// ParseKind validates and converts a raw string to a RelationshipKind.
func ParseKind(s string) (RelationshipKind, error) {
	k := RelationshipKind(s)
	if !k.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
	return k, nil
}

// Relationship is a directed, typed edge between two nodes. The layout
// engine treats it as undirected: attraction pulls both endpoints.
type Relationship struct {
	ID             string           `json:"id"`
	DeliberationID string           `json:"deliberationId"`
	SourceID       string           `json:"sourceId"`
	TargetID       string           `json:"targetId"`
	Kind           RelationshipKind `json:"kind"`
	CreatedAt      time.Time        `json:"createdAt"`
}
