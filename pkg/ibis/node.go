package ibis

import (
	"strings"
	"time"
)

// Category classifies a node within the IBIS argument model.
type Category string

const (
	CategoryIssue         Category = "issue"
	CategoryPosition      Category = "position"
	CategoryArgument      Category = "argument"
	CategoryUncategorized Category = "uncategorized"
)

// Categorized reports whether the category participates in the
// concentric zone structure. Uncategorized nodes are placed in the
// overflow area and carry no radial constraint.
func (c Category) Categorized() bool {
	switch c {
	case CategoryIssue, CategoryPosition, CategoryArgument:
		return true
	}
	return false
}

// NormalizeCategory maps an arbitrary string to a known category,
// ignoring case and surrounding whitespace. Unknown values degrade to
// uncategorized rather than erroring.
func NormalizeCategory(s string) Category {
	switch c := Category(strings.ToLower(strings.TrimSpace(s))); c {
	case CategoryIssue, CategoryPosition, CategoryArgument:
		return c
	}
	return CategoryUncategorized
}

// Node is a single contribution in a deliberation's argument map.
// Nodes are read-only inputs to the layout engine; a computed position
// is derived state and never written back onto the node itself.
type Node struct {
	ID             string    `json:"id"`
	DeliberationID string    `json:"deliberationId"`
	Title          string    `json:"title"`
	Category       Category  `json:"category"`
	SavedX         *float64  `json:"savedX,omitempty"`
	SavedY         *float64  `json:"savedY,omitempty"`
	Embedding      []float32 `json:"embedding,omitempty"`
	ParentID       string    `json:"parentId,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

// HasSavedPosition reports whether the node carries a previously
// persisted coordinate pair.
func (n *Node) HasSavedPosition() bool {
	return n.SavedX != nil && n.SavedY != nil
}

// DeliberationStatus is the lifecycle state of a deliberation.
type DeliberationStatus string

const (
	StatusActive   DeliberationStatus = "active"
	StatusArchived DeliberationStatus = "archived"
)

// Deliberation groups the nodes and relationships of one discussion.
type Deliberation struct {
	ID        string             `json:"id"`
	Title     string             `json:"title"`
	Status    DeliberationStatus `json:"status"`
	CreatedAt time.Time          `json:"createdAt"`
}

// CategoryCounts tallies nodes per zone-bearing category.
type CategoryCounts struct {
	Issues        int `json:"issues"`
	Positions     int `json:"positions"`
	Arguments     int `json:"arguments"`
	Uncategorized int `json:"uncategorized"`
}

// CountByCategory tallies the given nodes per category.
func CountByCategory(nodes []*Node) CategoryCounts {
	var counts CategoryCounts
	for _, n := range nodes {
		switch n.Category {
		case CategoryIssue:
			counts.Issues++
		case CategoryPosition:
			counts.Positions++
		case CategoryArgument:
			counts.Arguments++
		default:
			counts.Uncategorized++
		}
	}
	return counts
}
