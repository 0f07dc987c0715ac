// core/dp/cursor.go
package dp

// window is the lookback view around the current cell. w[0][0] is the cell
// being computed; w[d0][d1] is d0 steps back along sequence 1 and d1 along
// sequence 2, "back" meaning against the scan direction.
type window [2][2]*Cell

// cursor walks every grid cell in raster order and hands out windows.
type cursor interface {
	hasNext() bool
	next(w *window)
	press() *window
	depth() int
}

// gridCursor is the one cursor implementation. Its strategies differ in
// scan direction, which axis is scanned row by row, and how many rows the
// ring retains: two for the rolling cursor, all of them for the matrices.
//
// Rows run along the outer axis; each row spans the inner axis. Row o lives
// in ring[o mod len(ring)].
type gridCursor struct {
	r     *run
	ext   [2]int
	outer int
	dir   int // +1 from (0,0), -1 from the far corner
	ring  [][]*Cell
	o, i  int // scan counters along outer/inner
	edge  *Cell
}

// newRollingCursor keeps two rows spanning the shorter sequence and scans
// along the longer one, so memory is O(min(len1,len2) x states).
func newRollingCursor(r *run, withBack bool) *gridCursor {
	ext := r.extent()
	outer := 0
	if ext[1] > ext[0] {
		outer = 1
	}
	return newGridCursor(r, outer, +1, 2, withBack)
}

// newMatrixCursor retains the whole grid, scanning forward.
func newMatrixCursor(r *run) *gridCursor {
	return newGridCursor(r, 1, +1, r.extent()[1], false)
}

// newBackMatrixCursor retains the whole grid, scanning from the ends inward.
func newBackMatrixCursor(r *run) *gridCursor {
	return newGridCursor(r, 1, -1, r.extent()[1], false)
}

func newGridCursor(r *run, outer, dir, rows int, withBack bool) *gridCursor {
	c := &gridCursor{
		r:     r,
		ext:   r.extent(),
		outer: outer,
		dir:   dir,
		ring:  make([][]*Cell, rows),
		edge:  edgeCell(len(r.states), r.nEmit),
	}
	width := c.ext[1-outer]
	for k := range c.ring {
		row := make([]*Cell, width)
		for j := range row {
			row[j] = newCell(len(r.states), withBack)
		}
		c.ring[k] = row
	}
	return c
}

func (c *gridCursor) depth() int { return 2 }

func (c *gridCursor) press() *window { return &window{} }

func (c *gridCursor) hasNext() bool { return c.o < c.ext[c.outer] }

func (c *gridCursor) next(w *window) {
	p0, p1 := c.coords(c.o, c.i)
	cur := c.at(p0, p1)
	c.r.emit(cur, p0, p1)
	for d0 := 0; d0 < 2; d0++ {
		for d1 := 0; d1 < 2; d1++ {
			w[d0][d1] = c.at(p0-c.dir*d0, p1-c.dir*d1)
		}
	}
	if c.i++; c.i == c.ext[1-c.outer] {
		c.i = 0
		c.o++
	}
}

// coords maps scan counters to grid coordinates (sequence 1, sequence 2).
func (c *gridCursor) coords(o, i int) (int, int) {
	if c.dir < 0 {
		o = c.ext[c.outer] - 1 - o
		i = c.ext[1-c.outer] - 1 - i
	}
	if c.outer == 0 {
		return o, i
	}
	return i, o
}

// at resolves a grid coordinate; anything outside the grid is the edge cell.
func (c *gridCursor) at(p0, p1 int) *Cell {
	if p0 < 0 || p1 < 0 || p0 >= c.ext[0] || p1 >= c.ext[1] {
		return c.edge
	}
	o, i := p0, p1
	if c.outer == 1 {
		o, i = p1, p0
	}
	return c.ring[o%len(c.ring)][i]
}
