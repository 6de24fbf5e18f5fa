// Package geom maps Lumatone keys to hexagons.
//
// All five boards share one coordinate space. Keys are laid out on a skewed
// grid whose axes are 60 degrees apart, every board is shifted by a fixed
// offset from the previous one, and the whole assembly is rotated so the
// instrument's long axis is horizontal. The origin is the middle of the
// middle board.
package geom

import "math"

const (
	// Boards is the number of boards in a Lumatone.
	Boards = 5
	// KeysPerBoard is the number of keys on each board.
	KeysPerBoard = 56

	// Inradius is the flat-to-flat width of one key hexagon.
	Inradius = 1.0
	// W is the hexagon width.
	W = Inradius

	// MaxOutlineInset is the inset at which a hexagon collapses to its center.
	MaxOutlineInset = W / 2
)

var (
	// Keys on a board run row by row; row r holds rowLengths[r] keys and its
	// first key sits rowOffsets[r] half-columns from the left edge.
	rowLengths = [...]int{2, 5, 6, 6, 6, 6, 6, 6, 6, 5, 2}
	rowOffsets = [...]int{0, 1, 0, 1, 0, 1, 0, 1, 0, 3, 8}

	boardOffset = V(6, 2)
	boardCenter = V(3, 4.5)
	topLeftPad  = V(0.5, -0.5)
)

// Derived once at package init and never recomputed per frame.
var (
	sqrt3over2 = math.Sqrt(3) / 2
	// point-to-point height of a key hexagon
	hexHeight = Inradius / sqrt3over2

	dx    = W
	dy    = hexHeight * 0.75
	delta = V(dx, dy)

	angle = boardOffset.Mul(delta).Angle()

	layoutCenter = boardCenter.Add(boardOffset.Scale(2))

	totalSize = Rotate(topLeftPad.Add(boardCenter.Scale(2)).Add(boardOffset.Scale(4)), angle)

	regularHexagon = [6]Vec2{
		V(W/2, hexHeight/4),
		V(0, hexHeight/2),
		V(-W/2, hexHeight/4),
		V(-W/2, -hexHeight/4),
		V(0, -hexHeight/2),
		V(W/2, -hexHeight/4),
	}

	// regularHexagon turned by angle; Rotate is linear so it can be scaled
	// and moved to each key center afterwards.
	rotatedHexagon = rotateAll(regularHexagon)

	centers = computeCenters()
	bounds  = computeBounds()
)

// Angle returns the rotation applied to the whole assembly, in radians.
func Angle() float64 {
	return angle
}

// Rows is the number of rows on one board.
func Rows() int {
	return len(rowLengths)
}

// RowLength returns how many keys row r holds.
func RowLength(r int) int {
	return rowLengths[r]
}

// RowOf returns the row holding key and the key's index within that row.
// key must be in [0, KeysPerBoard).
func RowOf(key int) (row, indexInRow int) {
	index := key
	for r, length := range rowLengths {
		if index < length {
			return r, index
		}
		index -= length
		row = r + 1
	}
	return row, index
}

// KeyPosition returns the skewed-grid column and row of key on its board.
// Columns may be half-integers.
func KeyPosition(key int) (column, row float64) {
	r, i := RowOf(key)
	offset := 0
	if r < len(rowOffsets) {
		offset = rowOffsets[r]
	}
	return float64(offset)/2 + float64(i), float64(r)
}

// unrotated returns the key center before the global rotation.
func unrotated(board, key int) Vec2 {
	x, y := KeyPosition(key)
	return boardOffset.Scale(float64(board)).Add(V(x, y)).Sub(layoutCenter).Mul(delta)
}

func rotateAll(p [6]Vec2) (out [6]Vec2) {
	for i, v := range p {
		out[i] = Rotate(v, angle)
	}
	return out
}

func computeCenters() (c [Boards][KeysPerBoard]Vec2) {
	for b := 0; b < Boards; b++ {
		for k := 0; k < KeysPerBoard; k++ {
			c[b][k] = Rotate(unrotated(b, k), angle)
		}
	}
	return c
}

// KeyCenter returns the center of the key's hexagon.
func KeyCenter(board, key int) Vec2 {
	return centers[board][key]
}

// HexagonVertices returns the six corners of the key's hexagon. The corners
// are pulled toward the center by outlineInset (clamped to
// [0, MaxOutlineInset]) to leave room for an outline stroke. Winding is
// the same for every key.
func HexagonVertices(board, key int, outlineInset float64) [6]Vec2 {
	k := 1 - clamp(outlineInset, 0, MaxOutlineInset)/MaxOutlineInset
	c := centers[board][key]

	var out [6]Vec2
	for i, v := range rotatedHexagon {
		out[i] = c.Add(v.Scale(k))
	}
	return out
}

// TotalLayoutSize is the rotated size of the five-board assembly, used to
// fit the instrument into a viewport.
func TotalLayoutSize() Vec2 {
	return totalSize
}

// FitScale is the largest uniform scale at which TotalLayoutSize fits in
// viewport.
func FitScale(viewport Vec2) float64 {
	return viewport.Mul(V(1/totalSize.X, 1/totalSize.Y)).MinElem()
}

// Rect is an axis-aligned box.
type Rect struct {
	Min, Max Vec2
}

func (r Rect) Size() Vec2 {
	return r.Max.Sub(r.Min)
}

func (r Rect) Center() Vec2 {
	return r.Min.Add(r.Max).Scale(0.5)
}

// Bounds is the box around every un-inset hexagon vertex.
func Bounds() Rect {
	return bounds
}

func computeBounds() Rect {
	r := Rect{
		Min: V(math.Inf(1), math.Inf(1)),
		Max: V(math.Inf(-1), math.Inf(-1)),
	}
	for b := 0; b < Boards; b++ {
		for k := 0; k < KeysPerBoard; k++ {
			for _, v := range HexagonVertices(b, k, 0) {
				r.Min = V(math.Min(r.Min.X, v.X), math.Min(r.Min.Y, v.Y))
				r.Max = V(math.Max(r.Max.X, v.X), math.Max(r.Max.Y, v.Y))
			}
		}
	}
	return r
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
