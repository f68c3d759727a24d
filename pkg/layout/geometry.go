package layout

import (
	"github.com/openagora/agora/pkg/ibis"
)

// DefaultMinDistance is the buffer added around a node's bounding box
// when testing for collisions.
const DefaultMinDistance = 20.0

// Dimensions is the rendered bounding box of a node, by category.
type Dimensions struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NodeDimensions returns the fixed rendering dimensions for a node
// category. Issues render as squares, positions and arguments as wide
// cards. Unknown categories fall back to the card size.
func NodeDimensions(c ibis.Category) Dimensions {
	switch c {
	case ibis.CategoryIssue:
		return Dimensions{Width: 140, Height: 140}
	case ibis.CategoryPosition, ibis.CategoryArgument:
		return Dimensions{Width: 160, Height: 90}
	case ibis.CategoryUncategorized:
		return Dimensions{Width: 150, Height: 100}
	}
	return Dimensions{Width: 160, Height: 90}
}

// Overlaps reports whether two positioned, dimensioned nodes collide.
// Each node's axis-aligned bounding box is centered at its position;
// node A's box is additionally inflated by minDistance on all sides so
// the buffer is applied once per pair, not twice. Boxes count as
// overlapping unless strictly separated on at least one axis.
func Overlaps(a Position, aCat ibis.Category, b Position, bCat ibis.Category, minDistance float64) bool {
	da := NodeDimensions(aCat)
	db := NodeDimensions(bCat)

	aLeft := a.X - da.Width/2 - minDistance
	aRight := a.X + da.Width/2 + minDistance
	aTop := a.Y - da.Height/2 - minDistance
	aBottom := a.Y + da.Height/2 + minDistance

	bLeft := b.X - db.Width/2
	bRight := b.X + db.Width/2
	bTop := b.Y - db.Height/2
	bBottom := b.Y + db.Height/2

	separated := aRight < bLeft || bRight < aLeft || aBottom < bTop || bBottom < aTop
	return !separated
}
