package layout

import (
	"context"
	"math"
	"testing"

	"github.com/openagora/agora/pkg/ibis"
)

func testNodes() []*ibis.Node {
	return []*ibis.Node{
		{ID: "i1", Title: "Should the library expand its hours", Category: ibis.CategoryIssue},
		{ID: "i2", Title: "How should the expansion be funded", Category: ibis.CategoryIssue},
		{ID: "p1", Title: "Open until midnight on weekdays", Category: ibis.CategoryPosition},
		{ID: "p2", Title: "Keep current hours and add Sunday", Category: ibis.CategoryPosition},
		{ID: "a1", Title: "Students need late study space", Category: ibis.CategoryArgument},
		{ID: "a2", Title: "Staffing costs would double", Category: ibis.CategoryArgument},
	}
}

func testRelationships() []*ibis.Relationship {
	return []*ibis.Relationship{
		{ID: "r1", SourceID: "p1", TargetID: "i1", Kind: ibis.KindRespondsTo},
		{ID: "r2", SourceID: "p2", TargetID: "i1", Kind: ibis.KindRespondsTo},
		{ID: "r3", SourceID: "a1", TargetID: "p1", Kind: ibis.KindSupports},
		{ID: "r4", SourceID: "a2", TargetID: "p1", Kind: ibis.KindOpposes},
	}
}

func TestComputeAssignsAllPositions(t *testing.T) {
	engine := NewConcentricLayout(&Config{Seed: 1})
	result, err := engine.Compute(context.Background(), testNodes(), testRelationships())
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}

	if len(result.Positions) != 6 {
		t.Errorf("Expected 6 positions, got %d", len(result.Positions))
	}
	for id, pos := range result.Positions {
		if math.IsNaN(pos.X) || math.IsNaN(pos.Y) {
			t.Errorf("Node %s has NaN position", id)
		}
	}
}

func TestComputeZoneContainment(t *testing.T) {
	nodes := testNodes()
	engine := NewConcentricLayout(&Config{Seed: 1})
	result, err := engine.Compute(context.Background(), nodes, testRelationships())
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}

	center := Position{X: 600, Y: 400}

	// The velocity nudge alone can equilibrate against steady cross-zone
	// attraction outside the band; the final radial clamp makes
	// containment unconditional, so no tolerance is allowed here.
	for _, n := range nodes {
		zone := result.Zones.ForCategory(n.Category)
		if zone == nil {
			continue
		}
		pos := result.Positions[n.ID]
		radius := math.Hypot(pos.X-center.X, pos.Y-center.Y)
		if radius < zone.InnerRadius || radius > zone.OuterRadius {
			t.Errorf("Node %s (%s) at radius %f outside band [%f, %f]",
				n.ID, n.Category, radius, zone.InnerRadius, zone.OuterRadius)
		}
	}
}

func TestComputeNoOverlaps(t *testing.T) {
	nodes := testNodes()
	engine := NewConcentricLayout(&Config{Seed: 1})
	result, err := engine.Compute(context.Background(), nodes, testRelationships())
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}

	for i := 0; i < len(nodes); i++ {
		for j := i + 1; j < len(nodes); j++ {
			a, b := nodes[i], nodes[j]
			if Overlaps(result.Positions[a.ID], a.Category, result.Positions[b.ID], b.Category, DefaultMinDistance) {
				t.Errorf("Nodes %s and %s overlap: %v / %v",
					a.ID, b.ID, result.Positions[a.ID], result.Positions[b.ID])
			}
		}
	}
	if result.Overlapping != 0 {
		t.Errorf("Overlapping = %d, want 0", result.Overlapping)
	}
}

func TestComputeDeterministicWithSeed(t *testing.T) {
	run := func() *Result {
		engine := NewConcentricLayout(&Config{Seed: 99})
		result, err := engine.Compute(context.Background(), testNodes(), testRelationships())
		if err != nil {
			t.Fatalf("Compute failed: %v", err)
		}
		return result
	}

	first := run()
	second := run()

	if len(first.Positions) != len(second.Positions) {
		t.Fatalf("Runs produced different node counts")
	}
	for id, pos := range first.Positions {
		if second.Positions[id] != pos {
			t.Errorf("Node %s differs across runs: %v vs %v", id, pos, second.Positions[id])
		}
	}
	if first.Zones != second.Zones {
		t.Errorf("Zones differ across runs: %v vs %v", first.Zones, second.Zones)
	}
}

func TestComputeHonorsSavedPosition(t *testing.T) {
	// A single node with a valid saved position and nothing to push it
	// around must stay exactly where it was saved.
	x, y := 700.0, 400.0
	nodes := []*ibis.Node{
		{ID: "i1", Title: "Lone issue", Category: ibis.CategoryIssue, SavedX: &x, SavedY: &y},
	}

	engine := NewConcentricLayout(&Config{Seed: 1})
	result, err := engine.Compute(context.Background(), nodes, nil)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}

	got := result.Positions["i1"]
	if got.X != x || got.Y != y {
		t.Errorf("Saved position not honored: got %v, want (%g, %g)", got, x, y)
	}
}

func TestComputeSavedPositionOutsideBandIsConstrained(t *testing.T) {
	// Saved coordinates in the wrong ring get pulled into the node's
	// band before simulation starts.
	x, y := 1190.0, 400.0 // radius 590 from center, far outside the issue band
	nodes := []*ibis.Node{
		{ID: "i1", Title: "Misplaced issue", Category: ibis.CategoryIssue, SavedX: &x, SavedY: &y},
	}

	engine := NewConcentricLayout(&Config{Seed: 1})
	result, err := engine.Compute(context.Background(), nodes, nil)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}

	got := result.Positions["i1"]
	radius := math.Hypot(got.X-600, got.Y-400)
	if radius > result.Zones.Issue.OuterRadius {
		t.Errorf("Saved position outside band survived: radius %f > %f",
			radius, result.Zones.Issue.OuterRadius)
	}
}

func TestComputeUncategorizedPinnedToOverflow(t *testing.T) {
	nodes := append(testNodes(),
		&ibis.Node{ID: "u1", Title: "Unsorted note", Category: ibis.CategoryUncategorized},
		&ibis.Node{ID: "u2", Title: "Another note", Category: ibis.CategoryUncategorized},
	)

	engine := NewConcentricLayout(&Config{Seed: 1})
	result, err := engine.Compute(context.Background(), nodes, testRelationships())
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}

	// Overflow grid starts at width-200, 40 and walks right in 60 unit
	// steps. The simulation must not move these nodes.
	want1 := Position{X: 1000, Y: 40}
	want2 := Position{X: 1060, Y: 40}
	if got := result.Positions["u1"]; got != want1 {
		t.Errorf("First overflow node at %v, want %v", got, want1)
	}
	if got := result.Positions["u2"]; got != want2 {
		t.Errorf("Second overflow node at %v, want %v", got, want2)
	}
}

func TestComputeThreeIssueScenario(t *testing.T) {
	// Three issues on the default canvas: the issue band floor wins
	// (160 + 3*16 = 208 < 240) and all three stay inside it.
	nodes := []*ibis.Node{
		{ID: "i1", Title: "Expand the bus network", Category: ibis.CategoryIssue},
		{ID: "i2", Title: "Reduce downtown parking", Category: ibis.CategoryIssue},
		{ID: "i3", Title: "Fund protected bike lanes", Category: ibis.CategoryIssue},
	}

	engine := NewConcentricLayout(&Config{Seed: 3})
	result, err := engine.Compute(context.Background(), nodes, nil)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}

	if result.Zones.Issue.OuterRadius != 240 {
		t.Errorf("Issue band outer radius = %f, want 240", result.Zones.Issue.OuterRadius)
	}
	for _, n := range nodes {
		pos := result.Positions[n.ID]
		radius := math.Hypot(pos.X-600, pos.Y-400)
		if radius > 245 {
			t.Errorf("Issue %s at radius %f, want within 240 plus tolerance", n.ID, radius)
		}
	}
}

func TestComputeAttractionPullsRelatedNodesTogether(t *testing.T) {
	nodes := func() []*ibis.Node {
		return []*ibis.Node{
			{ID: "i1", Title: "Traffic calming downtown", Category: ibis.CategoryIssue},
			{ID: "i2", Title: "Bicycle lane network", Category: ibis.CategoryIssue},
		}
	}

	dist := func(rels []*ibis.Relationship) float64 {
		engine := NewConcentricLayout(&Config{Seed: 5})
		result, err := engine.Compute(context.Background(), nodes(), rels)
		if err != nil {
			t.Fatalf("Compute failed: %v", err)
		}
		a := result.Positions["i1"]
		b := result.Positions["i2"]
		return math.Hypot(a.X-b.X, a.Y-b.Y)
	}

	unconnected := dist(nil)
	connected := dist([]*ibis.Relationship{
		{ID: "r1", SourceID: "i1", TargetID: "i2", Kind: ibis.KindSupports},
	})

	if connected >= unconnected {
		t.Errorf("Connected nodes should settle closer: %f >= %f", connected, unconnected)
	}
}

func TestComputeCrossZoneAttractionWeakened(t *testing.T) {
	// One integration step from rest isolates how hard a supports
	// relationship pulls before equilibrium and collision handling take
	// over: a cross-zone pair must close less of the same 600 unit gap
	// than a same-zone pair.
	gapAfter := func(a, b *ibis.Node) float64 {
		engine := NewConcentricLayout(&Config{Seed: 7, Iterations: 1})
		rels := []*ibis.Relationship{
			{ID: "r1", SourceID: a.ID, TargetID: b.ID, Kind: ibis.KindSupports},
		}
		result, err := engine.Compute(context.Background(), []*ibis.Node{a, b}, rels)
		if err != nil {
			t.Fatalf("Compute failed: %v", err)
		}
		pa, pb := result.Positions[a.ID], result.Positions[b.ID]
		return math.Hypot(pa.X-pb.X, pa.Y-pb.Y)
	}

	saved := func(id, title string, c ibis.Category, x, y float64) *ibis.Node {
		return &ibis.Node{ID: id, Title: title, Category: c, SavedX: &x, SavedY: &y}
	}

	sameZone := gapAfter(
		saved("p1", "Run buses all night", ibis.CategoryPosition, 300, 400),
		saved("p2", "Extend the last departure", ibis.CategoryPosition, 900, 400),
	)
	crossZone := gapAfter(
		saved("i1", "Night transit coverage", ibis.CategoryIssue, 400, 400),
		saved("p3", "Run buses all night", ibis.CategoryPosition, 1000, 400),
	)

	if crossZone <= sameZone {
		t.Errorf("Cross-zone pair should close less distance: %f <= %f", crossZone, sameZone)
	}
}

func TestCountOverlappingPairs(t *testing.T) {
	nodes := []*ibis.Node{
		{ID: "a", Category: ibis.CategoryPosition},
		{ID: "b", Category: ibis.CategoryPosition},
		{ID: "c", Category: ibis.CategoryPosition},
		{ID: "u", Category: ibis.CategoryUncategorized},
	}
	// Three cards stacked on one spot form three overlapping pairs; the
	// pinned overflow node never counts.
	spot := Position{X: 600, Y: 400}
	positions := map[string]Position{"a": spot, "b": spot, "c": spot, "u": spot}

	if got := countOverlapping(positions, nodes); got != 3 {
		t.Errorf("countOverlapping = %d, want 3", got)
	}

	positions["c"] = Position{X: 600, Y: 800}
	if got := countOverlapping(positions, nodes); got != 1 {
		t.Errorf("countOverlapping after separating one card = %d, want 1", got)
	}
}

func TestComputeSkipsDanglingRelationships(t *testing.T) {
	nodes := testNodes()
	rels := append(testRelationships(),
		&ibis.Relationship{ID: "bad", SourceID: "i1", TargetID: "ghost", Kind: ibis.KindSupports},
	)

	engine := NewConcentricLayout(&Config{Seed: 1})
	result, err := engine.Compute(context.Background(), nodes, rels)
	if err != nil {
		t.Fatalf("Dangling relationship should be skipped, got error: %v", err)
	}
	if len(result.Positions) != len(nodes) {
		t.Errorf("Expected %d positions, got %d", len(nodes), len(result.Positions))
	}
}

func TestComputeCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	engine := NewConcentricLayout(&Config{Seed: 1})
	_, err := engine.Compute(ctx, testNodes(), testRelationships())
	if err == nil {
		t.Fatal("Expected context error from cancelled Compute")
	}
	if err != context.Canceled {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestComputeEmptyGraph(t *testing.T) {
	engine := NewConcentricLayout(nil)
	result, err := engine.Compute(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("Compute on empty graph failed: %v", err)
	}
	if len(result.Positions) != 0 {
		t.Errorf("Empty graph produced %d positions", len(result.Positions))
	}
	assertZoneOrdering(t, result.Zones)
}
