package layout

import (
	"github.com/openagora/agora/pkg/ibis"
)

// Position is a 2D coordinate in canvas units.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Zone is a concentric radius band reserved for one node category,
// measured from the canvas center.
type Zone struct {
	InnerRadius float64 `json:"innerRadius"`
	OuterRadius float64 `json:"outerRadius"`
}

// Contains reports whether a radius falls inside the band, inclusive.
func (z Zone) Contains(radius float64) bool {
	return radius >= z.InnerRadius && radius <= z.OuterRadius
}

// Midpoint returns the radius halfway between the band's bounds.
func (z Zone) Midpoint() float64 {
	return (z.InnerRadius + z.OuterRadius) / 2
}

// Zones holds the three concentric bands of a concentric layout,
// issue innermost through argument outermost.
type Zones struct {
	Issue    Zone `json:"issue"`
	Position Zone `json:"position"`
	Argument Zone `json:"argument"`
}

// ForCategory returns the band for a zone-bearing category, or nil for
// uncategorized and unknown categories.
func (zs *Zones) ForCategory(c ibis.Category) *Zone {
	switch c {
	case ibis.CategoryIssue:
		return &zs.Issue
	case ibis.CategoryPosition:
		return &zs.Position
	case ibis.CategoryArgument:
		return &zs.Argument
	}
	return nil
}

// Config configures a concentric layout run.
type Config struct {
	Width      float64 // Canvas width
	Height     float64 // Canvas height
	Iterations int     // Simulation iterations
	Seed       int64   // Random seed for the collision fallback path (0 = time-based)
}

// Result is the finished output of one layout run: final coordinates
// keyed by node ID plus the zone bands for optional ring rendering.
// Overlapping counts pairs of nodes whose final positions still
// overlap because the collision search exhausted its attempts.
type Result struct {
	Positions   map[string]Position `json:"positions"`
	Zones       Zones               `json:"zones"`
	Overlapping int                 `json:"overlapping,omitempty"`
}
