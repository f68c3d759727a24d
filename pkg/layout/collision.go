package layout

import (
	"math"
	"math/rand"

	"github.com/openagora/agora/pkg/ibis"
)

// boundaryBuffer keeps constrained nodes slightly inside their band so
// they do not sit exactly on a ring boundary.
const boundaryBuffer = 10.0

// DefaultMaxAttempts bounds the expanding-spiral search in
// FindFreePosition before the random fallback kicks in.
const DefaultMaxAttempts = 36

// IsInZone reports whether pos falls inside the band, measured as
// Euclidean distance from center, bounds inclusive.
func IsInZone(pos, center Position, zone Zone) bool {
	return zone.Contains(math.Hypot(pos.X-center.X, pos.Y-center.Y))
}

// ConstrainToZone clamps pos radially into the band, preserving its
// angle around center. Positions inside the band are returned
// unchanged. A position exactly at center is treated as angle 0 with a
// radius floor of 1.
func ConstrainToZone(pos, center Position, zone Zone) Position {
	dx := pos.X - center.X
	dy := pos.Y - center.Y
	radius := math.Hypot(dx, dy)

	angle := 0.0
	if radius < 1 {
		radius = 1
	} else {
		angle = math.Atan2(dy, dx)
	}

	switch {
	case radius < zone.InnerRadius:
		radius = zone.InnerRadius + boundaryBuffer
	case radius > zone.OuterRadius:
		radius = zone.OuterRadius - boundaryBuffer
	default:
		return pos
	}

	return Position{
		X: center.X + radius*math.Cos(angle),
		Y: center.Y + radius*math.Sin(angle),
	}
}

// Placement is an already-accepted node position the collision search
// must avoid.
type Placement struct {
	Position Position
	Category ibis.Category
}

// SearchOptions tunes the expanding-spiral search.
type SearchOptions struct {
	MaxAttempts     int     // total candidate evaluations (0 = DefaultMaxAttempts)
	InitialRadius   float64 // first search ring radius
	RadiusIncrement float64 // ring growth per exhausted ring
	Zone            *Zone   // optional radial constraint for candidates
	Center          Position
}

// FindFreePosition returns a position at or near target that does not
// collide with any accepted placement. It tries the target first, then
// searches outward in expanding rings of equally spaced angles,
// constraining each candidate into the zone when one is given. If the
// attempt budget runs out it falls back to a random angle at the final
// radius and returns that position unconditionally: a dense layout is
// preferred over an unbounded search.
func FindFreePosition(rng *rand.Rand, target Position, category ibis.Category, placed []Placement, opts SearchOptions) Position {
	maxAttempts := opts.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	if !collides(target, category, placed) {
		return target
	}

	radius := opts.InitialRadius
	attempts := 0
	for attempts < maxAttempts {
		steps := int(math.Max(8, math.Floor(radius/20)))
		for i := 0; i < steps && attempts < maxAttempts; i++ {
			angle := 2 * math.Pi * float64(i) / float64(steps)
			candidate := Position{
				X: target.X + radius*math.Cos(angle),
				Y: target.Y + radius*math.Sin(angle),
			}
			if opts.Zone != nil {
				candidate = ConstrainToZone(candidate, opts.Center, *opts.Zone)
			}
			if !collides(candidate, category, placed) {
				return candidate
			}
			attempts++
		}
		radius += opts.RadiusIncrement
	}

	// Last resort: random angle at the final radius, overlap accepted.
	angle := rng.Float64() * 2 * math.Pi
	fallback := Position{
		X: target.X + radius*math.Cos(angle),
		Y: target.Y + radius*math.Sin(angle),
	}
	if opts.Zone != nil {
		fallback = ConstrainToZone(fallback, opts.Center, *opts.Zone)
	}
	return fallback
}

func collides(pos Position, category ibis.Category, placed []Placement) bool {
	for _, p := range placed {
		if Overlaps(pos, category, p.Position, p.Category, DefaultMinDistance) {
			return true
		}
	}
	return false
}

// ResolveCollisions reworks overlapping positions into free ones.
// Nodes are processed in priority order (issues, then positions, then
// arguments, input order within each category) so inner-ring nodes
// keep their spots and outer-ring nodes move around them. Issues
// search in wider rings than the smaller card types. Every node ends
// up in the accepted set even when the search falls back to an
// overlapping position. Uncategorized nodes are pinned to the overflow
// grid and keep their positions unchanged.
func ResolveCollisions(rng *rand.Rand, positions map[string]Position, nodes []*ibis.Node, zones *Zones, center Position) map[string]Position {
	ordered := make([]*ibis.Node, 0, len(nodes))
	for _, c := range []ibis.Category{ibis.CategoryIssue, ibis.CategoryPosition, ibis.CategoryArgument} {
		for _, n := range nodes {
			if n.Category == c {
				ordered = append(ordered, n)
			}
		}
	}

	resolved := make(map[string]Position, len(positions))
	accepted := make([]Placement, 0, len(ordered))

	for _, n := range nodes {
		if n.Category.Categorized() {
			continue
		}
		if pos, ok := positions[n.ID]; ok {
			resolved[n.ID] = pos
		}
	}

	for _, n := range ordered {
		pos, ok := positions[n.ID]
		if !ok {
			continue
		}

		if collides(pos, n.Category, accepted) {
			opts := SearchOptions{
				MaxAttempts:     DefaultMaxAttempts,
				InitialRadius:   60,
				RadiusIncrement: 30,
				Center:          center,
			}
			if n.Category == ibis.CategoryIssue {
				opts.InitialRadius = 100
				opts.RadiusIncrement = 50
			}
			if zones != nil {
				opts.Zone = zones.ForCategory(n.Category)
			}
			pos = FindFreePosition(rng, pos, n.Category, accepted, opts)
		}

		resolved[n.ID] = pos
		accepted = append(accepted, Placement{Position: pos, Category: n.Category})
	}

	return resolved
}
