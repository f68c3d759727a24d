package layout

import (
	"math"

	"github.com/openagora/agora/pkg/ibis"
)

// zoneGap is the radial gap separating consecutive bands.
const zoneGap = 20.0

// ComputeZones derives the three concentric bands from the canvas size
// and the per-category node counts. Radii scale with how many nodes
// each band must hold, bounded so the bands always fit the canvas and
// stay strictly increasing with a gap between them, even when a
// category is empty.
func ComputeZones(width, height float64, counts ibis.CategoryCounts) Zones {
	maxRadius := math.Min(width/2, height/2) * 0.85

	issueRadius := clamp(160+float64(counts.Issues)*16, 240, maxRadius*0.5)
	positionRadius := clamp(issueRadius+240+float64(counts.Positions)*8, issueRadius+280, maxRadius*0.8)
	argumentRadius := clamp(positionRadius+200+float64(counts.Arguments)*6, positionRadius+240, maxRadius)

	return Zones{
		Issue:    Zone{InnerRadius: 0, OuterRadius: issueRadius},
		Position: Zone{InnerRadius: issueRadius + zoneGap, OuterRadius: positionRadius},
		Argument: Zone{InnerRadius: positionRadius + zoneGap, OuterRadius: argumentRadius},
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}
