package tough

import (
	"bufio"
	"fmt"
	"io"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/toughgrid/geometry"
	"github.com/notargets/toughgrid/mesh"
)

// down is the gravity direction BETAX is measured against
var down = r3.Vec{X: 0, Y: 0, Z: -1}

// Connection is the geometry of one CONNE record
type Connection struct {
	Cells  [2]int // Flat cell indices
	Isot   int    // Anisotropy direction 1, 2 or 3 for X, Y, Z
	D1, D2 float64
	Area   float64
	BetaX  float64 // Cosine of the angle between the connection line and gravity
}

// Connections lists every interior interface once. Cells are visited in flat
// order, a cell already visited is never paired again.
func (bw *BlockWriter) Connections() (conns []Connection, err error) {
	processed := make([]bool, bw.conn.NumCells())
	for k := range processed {
		for _, nbr := range bw.conn.NeighborsOf(k) {
			if processed[nbr] {
				continue
			}
			var c Connection
			if c, err = bw.connection(k, nbr); err != nil {
				return nil, fmt.Errorf("connection %s-%s: %w", bw.labels[k], bw.labels[nbr], err)
			}
			conns = append(conns, c)
		}
		processed[k] = true
	}
	return
}

func (bw *BlockWriter) connection(a, b int) (c Connection, err error) {
	iface, ok := bw.conn.SharedFace(a, b)
	if !ok {
		err = fmt.Errorf("cells %d and %d share no face", a, b)
		return
	}
	var (
		c1, c2 = bw.centers[a], bw.centers[b]
		face   = bw.m.CellPoints(iface.Face.Vertices)
		x      r3.Vec
		dir    r3.Vec
	)
	c.Cells = [2]int{a, b}
	if c.Isot, err = isot(r3.Sub(c2, c1), bw.opts.Isot); err != nil {
		return
	}
	if x, err = geometry.IntersectLinePlane([2]r3.Vec{c1, c2}, face); err != nil {
		return
	}
	c.D1 = geometry.Distance(c1, x)
	c.D2 = geometry.Distance(c2, x)
	c.Area = geometry.Area(face)
	if dir, err = geometry.Unit(geometry.RotateX(r3.Sub(c2, c1), bw.opts.RotationAngle)); err != nil {
		return
	}
	c.BetaX = r3.Dot(dir, down)
	return
}

// isot resolves the anisotropy direction code of a centre to centre vector
func isot(d r3.Vec, rule IsotRule) (int, error) {
	comps := [3]float64{math.Abs(d.X), math.Abs(d.Y), math.Abs(d.Z)}
	if comps[0] == 0 && comps[1] == 0 && comps[2] == 0 {
		return 0, fmt.Errorf("%w: coincident cell centers", mesh.ErrDegenerateGeometry)
	}
	best := 0
	for i := 1; i < 3; i++ {
		switch rule {
		case IsotFirstNonZero:
			if comps[best] == 0 && comps[i] != 0 {
				best = i
			}
		default:
			if comps[i] > comps[best] {
				best = i
			}
		}
	}
	return best + 1, nil
}

// WriteConne writes the CONNE block
func (bw *BlockWriter) WriteConne(w io.Writer) (err error) {
	conns, err := bw.Connections()
	if err != nil {
		return
	}
	bufw := bufio.NewWriter(w)
	if _, err = fmt.Fprintln(bufw, Ruler("CONNE")); err != nil {
		return
	}
	for _, c := range conns {
		if _, err = fmt.Fprintf(bufw, "%-5.5s%-5.5s%5s%5s%5s%5d%10.4e%10.4e%10.4e%10.3e\n",
			bw.labels[c.Cells[0]], bw.labels[c.Cells[1]], "", "", "",
			c.Isot, c.D1, c.D2, c.Area, noNegativeZero(c.BetaX)); err != nil {
			return
		}
	}
	_, err = fmt.Fprintln(bufw)
	bw.logger.Debugf("wrote %d connections", len(conns))
	return flushed(bufw, err)
}
