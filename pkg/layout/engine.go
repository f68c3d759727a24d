package layout

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/openagora/agora/pkg/ibis"
)

// Simulation constants. The force blend is a penalty-method constrained
// optimization solved by explicit Euler integration with heavy damping:
// damping < 1 and bounded forces keep it from diverging.
const (
	DefaultWidth      = 1200.0
	DefaultHeight     = 800.0
	DefaultIterations = 150

	velocityDamping       = 0.85
	repulsionStrength     = 3000.0
	sameCategoryRepulsion = 1.5
	attractionStrength    = 0.015
	crossZoneMultiplier   = 0.3
	semanticThreshold     = 0.3
	semanticBoost         = 2.0
	correctionGain        = 0.1

	canvasMargin    = 20.0
	overflowPerRow  = 3
	overflowSpacing = 60.0
)

// ConcentricLayout positions IBIS nodes into non-overlapping concentric
// rings: issues innermost, positions in the middle band, arguments
// outermost, uncategorized nodes in a fixed overflow grid. It is a
// stateless value; all per-run state lives inside one Compute call, so
// concurrent runs for different deliberations need no locking.
type ConcentricLayout struct {
	config *Config
	rng    *rand.Rand
}

// NewConcentricLayout creates a layout engine. Zero config fields fall
// back to a 1200x800 canvas and 150 iterations. A zero seed draws one
// from the clock; tests pass a fixed seed for reproducible fallbacks.
func NewConcentricLayout(config *Config) *ConcentricLayout {
	if config == nil {
		config = &Config{}
	}
	if config.Width == 0 {
		config.Width = DefaultWidth
	}
	if config.Height == 0 {
		config.Height = DefaultHeight
	}
	if config.Iterations == 0 {
		config.Iterations = DefaultIterations
	}
	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &ConcentricLayout{
		config: config,
		rng:    rand.New(rand.NewSource(seed)),
	}
}

// particle is the per-node working state for one run. Particles live in
// a slice indexed by a stable integer id so the O(n^2) force loops walk
// contiguous memory instead of chasing map buckets.
type particle struct {
	node *ibis.Node
	zone *Zone // nil for uncategorized nodes
	x, y float64
	vx   float64
	vy   float64
}

// Compute runs one full layout: zone sizing, initial placement, the
// fixed-iteration force simulation, and a final collision pass. The
// context is checked between iterations so long runs can be cancelled;
// that is the only error path. Relationships referencing unknown node
// IDs are skipped, and unknown categories degrade to uncategorized
// handling rather than failing the run.
func (cl *ConcentricLayout) Compute(ctx context.Context, nodes []*ibis.Node, relationships []*ibis.Relationship) (*Result, error) {
	zones := ComputeZones(cl.config.Width, cl.config.Height, ibis.CountByCategory(nodes))
	center := Position{X: cl.config.Width / 2, Y: cl.config.Height / 2}

	particles, index := cl.initParticles(nodes, &zones, center)

	type edge struct {
		a, b  int
		force float64 // attraction coefficient, precomputed
	}
	edges := make([]edge, 0, len(relationships))
	for _, rel := range relationships {
		a, okA := index[rel.SourceID]
		b, okB := index[rel.TargetID]
		if !okA || !okB {
			continue // dangling endpoint, skip silently
		}
		if particles[a].zone == nil || particles[b].zone == nil {
			continue // overflow nodes are pinned
		}
		multiplier := 1.0
		if particles[a].node.Category != particles[b].node.Category {
			multiplier = crossZoneMultiplier
		}
		edges = append(edges, edge{a: a, b: b, force: attractionStrength * rel.Kind.Weight() * multiplier})
	}

	// Semantic clustering applies within the issue ring only.
	type semanticPair struct {
		a, b  int
		force float64
	}
	var semanticPairs []semanticPair
	issues := make([]int, 0)
	for i, p := range particles {
		if p.node.Category == ibis.CategoryIssue {
			issues = append(issues, i)
		}
	}
	for i := 0; i < len(issues); i++ {
		for j := i + 1; j < len(issues); j++ {
			a, b := issues[i], issues[j]
			sim := nodeSimilarity(particles[a].node, particles[b].node)
			if sim > semanticThreshold {
				semanticPairs = append(semanticPairs, semanticPair{a: a, b: b, force: attractionStrength * sim * semanticBoost})
			}
		}
	}

	simulated := make([]int, 0, len(particles))
	for i, p := range particles {
		if p.zone != nil {
			simulated = append(simulated, i)
		}
	}

	for iter := 0; iter < cl.config.Iterations; iter++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		// Damp before accumulating this iteration's forces.
		for _, i := range simulated {
			particles[i].vx *= velocityDamping
			particles[i].vy *= velocityDamping
		}

		// Pairwise repulsion, stronger within a category to spread
		// nodes around their shared ring.
		for ii := 0; ii < len(simulated); ii++ {
			for jj := ii + 1; jj < len(simulated); jj++ {
				a := &particles[simulated[ii]]
				b := &particles[simulated[jj]]

				dx := a.x - b.x
				dy := a.y - b.y
				dist := math.Hypot(dx, dy)
				if dist < 1 {
					dist = 1
				}

				force := repulsionStrength / (dist * dist)
				if a.node.Category == b.node.Category {
					force *= sameCategoryRepulsion
				}

				fx := dx / dist * force
				fy := dy / dist * force
				a.vx += fx
				a.vy += fy
				b.vx -= fx
				b.vy -= fy
			}
		}

		// Relationship attraction, proportional to distance.
		for _, e := range edges {
			a := &particles[e.a]
			b := &particles[e.b]

			dx := b.x - a.x
			dy := b.y - a.y
			dist := math.Hypot(dx, dy)
			if dist < 1 {
				dist = 1
			}

			force := e.force * dist
			fx := dx / dist * force
			fy := dy / dist * force
			a.vx += fx
			a.vy += fy
			b.vx -= fx
			b.vy -= fy
		}

		// Semantic attraction between related issues.
		for _, sp := range semanticPairs {
			a := &particles[sp.a]
			b := &particles[sp.b]

			dx := b.x - a.x
			dy := b.y - a.y
			dist := math.Hypot(dx, dy)
			if dist < 1 {
				dist = 1
			}

			force := sp.force * dist
			fx := dx / dist * force
			fy := dy / dist * force
			a.vx += fx
			a.vy += fy
			b.vx -= fx
			b.vy -= fy
		}

		// Integrate, then steer drifting nodes back into their band.
		// The corrective term nudges velocity instead of snapping the
		// position so the constraint settles gradually.
		for _, i := range simulated {
			p := &particles[i]
			p.x += p.vx
			p.y += p.vy

			constrained := ConstrainToZone(Position{X: p.x, Y: p.y}, center, *p.zone)
			if constrained.X != p.x || constrained.Y != p.y {
				p.vx += (constrained.X - p.x) * correctionGain
				p.vy += (constrained.Y - p.y) * correctionGain
			}
		}
	}

	// The velocity nudge settles most nodes, but steady cross-zone
	// attraction can hold an equilibrium outside the band. Clamp the
	// final positions radially so containment is unconditional.
	for _, i := range simulated {
		p := &particles[i]
		pos := ConstrainToZone(Position{X: p.x, Y: p.y}, center, *p.zone)
		p.x = pos.X
		p.y = pos.Y
	}

	positions := make(map[string]Position, len(particles))
	for _, p := range particles {
		positions[p.node.ID] = Position{X: p.x, Y: p.y}
	}
	positions = ResolveCollisions(cl.rng, positions, nodes, &zones, center)

	return &Result{
		Positions:   positions,
		Zones:       zones,
		Overlapping: countOverlapping(positions, nodes),
	}, nil
}

// countOverlapping counts the overlaps left in a finished layout, one
// per overlapping pair. Nonzero only when the collision search fell
// back to an overlapping position. Overflow nodes sit on a fixed grid
// that packs tighter than a card and are not counted.
func countOverlapping(positions map[string]Position, nodes []*ibis.Node) int {
	count := 0
	for i, a := range nodes {
		if !a.Category.Categorized() {
			continue
		}
		posA, ok := positions[a.ID]
		if !ok {
			continue
		}
		for _, b := range nodes[i+1:] {
			if !b.Category.Categorized() {
				continue
			}
			posB, ok := positions[b.ID]
			if !ok {
				continue
			}
			if Overlaps(posA, a.Category, posB, b.Category, DefaultMinDistance) {
				count++
			}
		}
	}
	return count
}

// initParticles seeds the working state: overflow nodes go to a fixed
// grid in the top-right corner, saved coordinates are constrained into
// their band, and everything else is spread evenly around its band's
// midpoint radius. All nodes start at rest.
func (cl *ConcentricLayout) initParticles(nodes []*ibis.Node, zones *Zones, center Position) ([]particle, map[string]int) {
	particles := make([]particle, 0, len(nodes))
	index := make(map[string]int, len(nodes))

	categoryCounts := ibis.CountByCategory(nodes)
	categoryIdx := make(map[ibis.Category]int)
	overflowIdx := 0

	for _, n := range nodes {
		zone := zones.ForCategory(n.Category)

		p := particle{node: n, zone: zone}
		switch {
		case zone == nil:
			col := overflowIdx % overflowPerRow
			row := overflowIdx / overflowPerRow
			overflowIdx++
			p.x = clamp(cl.config.Width-200+float64(col)*overflowSpacing, canvasMargin, cl.config.Width-canvasMargin)
			p.y = clamp(40+float64(row)*overflowSpacing, canvasMargin, cl.config.Height-canvasMargin)

		case n.HasSavedPosition():
			pos := ConstrainToZone(Position{X: *n.SavedX, Y: *n.SavedY}, center, *zone)
			p.x = pos.X
			p.y = pos.Y

		default:
			count := categoryCount(categoryCounts, n.Category)
			angle := 2 * math.Pi * float64(categoryIdx[n.Category]) / float64(count)
			radius := zone.Midpoint()
			p.x = center.X + radius*math.Cos(angle)
			p.y = center.Y + radius*math.Sin(angle)
		}
		if zone != nil {
			categoryIdx[n.Category]++
		}

		index[n.ID] = len(particles)
		particles = append(particles, p)
	}

	return particles, index
}

func categoryCount(counts ibis.CategoryCounts, c ibis.Category) int {
	switch c {
	case ibis.CategoryIssue:
		return counts.Issues
	case ibis.CategoryPosition:
		return counts.Positions
	case ibis.CategoryArgument:
		return counts.Arguments
	}
	return counts.Uncategorized
}
