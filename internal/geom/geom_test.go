package geom

import (
	"math"
	"testing"
)

const eps = 1e-9

func near(a, b float64) bool {
	return math.Abs(a-b) < eps
}

func signedArea(p [6]Vec2) float64 {
	var a float64
	for i := range p {
		j := (i + 1) % len(p)
		a += p[i].X*p[j].Y - p[j].X*p[i].Y
	}
	return a / 2
}

func TestRowTableCoversBoard(t *testing.T) {
	sum := 0
	for r := 0; r < Rows(); r++ {
		sum += RowLength(r)
	}
	if sum != KeysPerBoard {
		t.Fatalf("row lengths sum to %d, want %d", sum, KeysPerBoard)
	}
	if len(rowOffsets) != len(rowLengths) {
		t.Fatalf("row offset table has %d entries, row length table %d", len(rowOffsets), len(rowLengths))
	}
}

func TestRowOfIsBijection(t *testing.T) {
	seen := make(map[[2]int]int)
	for key := 0; key < KeysPerBoard; key++ {
		row, i := RowOf(key)
		if row < 0 || row >= Rows() {
			t.Fatalf("key %d: row %d out of range", key, row)
		}
		if i < 0 || i >= RowLength(row) {
			t.Fatalf("key %d: index %d outside row %d of length %d", key, i, row, RowLength(row))
		}
		if prev, ok := seen[[2]int{row, i}]; ok {
			t.Fatalf("keys %d and %d both map to row %d index %d", prev, key, row, i)
		}
		seen[[2]int{row, i}] = key
	}
	if len(seen) != KeysPerBoard {
		t.Errorf("got %d distinct positions, want %d", len(seen), KeysPerBoard)
	}
}

func TestKeyPosition(t *testing.T) {
	tests := []struct {
		key      int
		col, row float64
	}{
		{0, 0, 0},
		{1, 1, 0},
		{2, 0.5, 1},
		{6, 4.5, 1},
		{7, 0, 2},
		{48, 5, 8},
		{49, 1.5, 9},
		{53, 5.5, 9},
		{54, 4, 10},
		{55, 5, 10},
	}
	for _, tt := range tests {
		col, row := KeyPosition(tt.key)
		if col != tt.col || row != tt.row {
			t.Errorf("KeyPosition(%d) = (%v, %v), want (%v, %v)", tt.key, col, row, tt.col, tt.row)
		}
	}
}

func TestAngleFromBoardOffset(t *testing.T) {
	want := math.Atan2(2*math.Sqrt(3)/2, 6)
	if !near(Angle(), want) {
		t.Errorf("Angle() = %v, want %v", Angle(), want)
	}
}

func TestTotalLayoutSize(t *testing.T) {
	// (0.5,-0.5) + 2*(3,4.5) + 4*(6,2) = (30.5, 16.5), rotated by Angle().
	want := Rotate(V(30.5, 16.5), Angle())
	got := TotalLayoutSize()
	if !near(got.X, want.X) || !near(got.Y, want.Y) {
		t.Errorf("TotalLayoutSize() = %+v, want %+v", got, want)
	}
	if math.Abs(got.X-33.8797) > 1e-3 || math.Abs(got.Y-7.3935) > 1e-3 {
		t.Errorf("TotalLayoutSize() = %+v, want about (33.8797, 7.3935)", got)
	}
}

func TestHexagonCentroidAndWinding(t *testing.T) {
	for b := 0; b < Boards; b++ {
		for k := 0; k < KeysPerBoard; k++ {
			for _, inset := range []float64{0, 0.1, 0.25} {
				p := HexagonVertices(b, k, inset)

				var c Vec2
				for _, v := range p {
					c = c.Add(v)
				}
				c = c.Scale(1.0 / 6)
				want := KeyCenter(b, k)
				if !near(c.X, want.X) || !near(c.Y, want.Y) {
					t.Fatalf("board %d key %d inset %v: centroid %+v, want %+v", b, k, inset, c, want)
				}

				if signedArea(p) <= 0 {
					t.Fatalf("board %d key %d inset %v: winding flipped (area %v)", b, k, inset, signedArea(p))
				}
			}
		}
	}
}

func TestInsetShrinksHexagon(t *testing.T) {
	size := TotalLayoutSize()
	prev := math.Inf(1)
	for _, inset := range []float64{0, 0.05, 0.1, 0.2, 0.3, 0.4, 0.49} {
		area := signedArea(HexagonVertices(2, 20, inset))
		if area >= prev {
			t.Errorf("inset %v: area %v did not shrink below %v", inset, area, prev)
		}
		prev = area
		if TotalLayoutSize() != size {
			t.Fatalf("TotalLayoutSize changed with inset %v", inset)
		}
	}

	collapsed := HexagonVertices(2, 20, MaxOutlineInset*2)
	for _, v := range collapsed {
		c := KeyCenter(2, 20)
		if !near(v.X, c.X) || !near(v.Y, c.Y) {
			t.Fatalf("inset past max should collapse to center, got %+v", v)
		}
	}
}

func TestFullHexagonArea(t *testing.T) {
	// A regular hexagon with apothem 0.5 has area 2*sqrt(3)*0.25.
	want := 2 * math.Sqrt(3) * 0.25
	if got := signedArea(HexagonVertices(0, 0, 0)); !near(got, want) {
		t.Errorf("area = %v, want %v", got, want)
	}
}

func TestNeighboursAreOneWidthApart(t *testing.T) {
	// Keys 2 and 3 sit side by side in row 1.
	d := KeyCenter(0, 3).Sub(KeyCenter(0, 2))
	if got := math.Hypot(d.X, d.Y); !near(got, W) {
		t.Errorf("horizontal neighbour distance = %v, want %v", got, W)
	}
	// Key 0 (row 0, col 0) and key 2 (row 1, col 0.5) are diagonal neighbours.
	d = KeyCenter(0, 2).Sub(KeyCenter(0, 0))
	if got := math.Hypot(d.X, d.Y); !near(got, W) {
		t.Errorf("diagonal neighbour distance = %v, want %v", got, W)
	}
}

func TestFitScale(t *testing.T) {
	size := TotalLayoutSize()
	tests := []struct {
		name     string
		viewport Vec2
		want     float64
	}{
		{"width bound", V(size.X*2, size.Y*10), 2},
		{"height bound", V(size.X*10, size.Y*3), 3},
		{"exact", size, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FitScale(tt.viewport); !near(got, tt.want) {
				t.Errorf("FitScale(%+v) = %v, want %v", tt.viewport, got, tt.want)
			}
		})
	}
}

func TestBoundsContainCenters(t *testing.T) {
	r := Bounds()
	for b := 0; b < Boards; b++ {
		for k := 0; k < KeysPerBoard; k++ {
			c := KeyCenter(b, k)
			if c.X < r.Min.X || c.X > r.Max.X || c.Y < r.Min.Y || c.Y > r.Max.Y {
				t.Fatalf("center of board %d key %d outside bounds", b, k)
			}
		}
	}
	if r.Size().X <= r.Size().Y {
		t.Errorf("layout should be wider than tall, got %+v", r.Size())
	}
}

func TestHexagonVerticesMatchRotatedLayout(t *testing.T) {
	for b := 0; b < Boards; b++ {
		for k := 0; k < KeysPerBoard; k++ {
			for _, inset := range []float64{0, 0.2, MaxOutlineInset} {
				s := 1 - inset/MaxOutlineInset
				got := HexagonVertices(b, k, inset)
				for i, v := range regularHexagon {
					want := Rotate(unrotated(b, k).Add(v.Scale(s)), Angle())
					if !near(got[i].X, want.X) || !near(got[i].Y, want.Y) {
						t.Fatalf("board %d key %d inset %v corner %d = %+v, want %+v", b, k, inset, i, got[i], want)
					}
				}
			}
		}
	}
}

func BenchmarkHexagonVertices(b *testing.B) {
	for i := 0; i < b.N; i++ {
		for board := 0; board < Boards; board++ {
			for key := 0; key < KeysPerBoard; key++ {
				_ = HexagonVertices(board, key, 0.05)
			}
		}
	}
}
