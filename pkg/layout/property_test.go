package layout

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/openagora/agora/pkg/ibis"
)

// TestLayoutInvariants checks properties that must hold for any input,
// not just the hand-picked cases in the other test files.
func TestLayoutInvariants(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping property-based test in short mode")
	}

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("title similarity stays within [0, 1]", prop.ForAll(
		func(a, b string) bool {
			sim := TitleSimilarity(a, b)
			return sim >= 0 && sim <= 1
		},
		gen.AnyString(),
		gen.AnyString(),
	))

	properties.Property("title similarity is symmetric", prop.ForAll(
		func(a, b string) bool {
			return TitleSimilarity(a, b) == TitleSimilarity(b, a)
		},
		gen.AnyString(),
		gen.AnyString(),
	))

	properties.Property("embedding similarity stays within [0, 1]", prop.ForAll(
		func(a, b []float32) bool {
			sim := EmbeddingSimilarity(a, b)
			return sim >= 0 && sim <= 1 && !math.IsNaN(sim)
		},
		gen.SliceOf(gen.Float32Range(-10, 10)),
		gen.SliceOf(gen.Float32Range(-10, 10)),
	))

	properties.Property("zone bands stay ordered with a gap", prop.ForAll(
		func(width, height int, issues, positions, arguments int) bool {
			zones := ComputeZones(float64(width), float64(height), ibis.CategoryCounts{
				Issues:    issues,
				Positions: positions,
				Arguments: arguments,
			})
			return zones.Issue.InnerRadius == 0 &&
				zones.Issue.OuterRadius > zones.Issue.InnerRadius &&
				zones.Position.InnerRadius == zones.Issue.OuterRadius+20 &&
				zones.Position.OuterRadius > zones.Position.InnerRadius &&
				zones.Argument.InnerRadius == zones.Position.OuterRadius+20 &&
				zones.Argument.OuterRadius > zones.Argument.InnerRadius
		},
		gen.IntRange(200, 8000),
		gen.IntRange(200, 8000),
		gen.IntRange(0, 500),
		gen.IntRange(0, 500),
		gen.IntRange(0, 500),
	))

	properties.Property("constrained positions land inside the band", prop.ForAll(
		func(x, y int) bool {
			center := Position{X: 0, Y: 0}
			zone := Zone{InnerRadius: 100, OuterRadius: 400}
			got := ConstrainToZone(Position{X: float64(x), Y: float64(y)}, center, zone)
			radius := math.Hypot(got.X, got.Y)
			return radius >= zone.InnerRadius && radius <= zone.OuterRadius+1e-9
		},
		gen.IntRange(-2000, 2000),
		gen.IntRange(-2000, 2000),
	))

	properties.TestingRun(t)
}
