package model

// Cell codes used by the game map. Only CellEmpty accepts new buildings.
const (
	CellEmpty   = 0
	CellPark    = 1
	CellRoad    = 2
	CellWater   = 3
	CellBlocked = 4
)

// Grid is the rectangular map, row-major: Cells[row][col].
type Grid struct {
	Cells [][]int
}

// Rows returns the number of map rows.
func (g Grid) Rows() int { return len(g.Cells) }

// RowLen returns the width of row x, or 0 outside the map. Rows may be ragged.
func (g Grid) RowLen(x int) int {
	if x < 0 || x >= len(g.Cells) {
		return 0
	}
	return len(g.Cells[x])
}

// InBounds reports whether p addresses a cell. Ragged rows are honored.
func (g Grid) InBounds(p Position) bool {
	return p.Y >= 0 && p.Y < g.RowLen(p.X)
}

// At returns the cell code at p. Out-of-bounds positions read as CellBlocked.
func (g Grid) At(p Position) int {
	if !g.InBounds(p) {
		return CellBlocked
	}
	return g.Cells[p.X][p.Y]
}

// CountEmpty returns the number of CellEmpty cells, occupied or not.
func (g Grid) CountEmpty() int {
	n := 0
	for _, row := range g.Cells {
		for _, c := range row {
			if c == CellEmpty {
				n++
			}
		}
	}
	return n
}
