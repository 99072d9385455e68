// Package geometry holds the pure point, face and cell measurements used to
// turn mesh topology into element volumes and connection geometry.
package geometry

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/toughgrid/utils"
)

var (
	// ErrDegenerateGeometry reports configurations with no defined answer,
	// like a line parallel to a plane or a plane through collinear points
	ErrDegenerateGeometry = errors.New("degenerate geometry")
	// ErrUnsupportedCellType reports a cell type without a volume decomposition
	ErrUnsupportedCellType = errors.New("unsupported cell type")
)

// parallelTol is relative to |n||d|
const parallelTol = 1.e-12

// Distance between two points
func Distance(p, q r3.Vec) float64 {
	return r3.Norm(r3.Sub(p, q))
}

// Centroid is the arithmetic mean of the points
func Centroid(points []r3.Vec) (c r3.Vec) {
	if len(points) == 0 {
		return
	}
	for _, p := range points {
		c = r3.Add(c, p)
	}
	return r3.Scale(1./float64(len(points)), c)
}

// Unit returns the unit vector along v, a zero vector is degenerate
func Unit(v r3.Vec) (r3.Vec, error) {
	if r3.Norm(v) == 0 {
		return r3.Vec{}, fmt.Errorf("%w: zero length vector", ErrDegenerateGeometry)
	}
	return r3.Unit(v), nil
}

// RotateX rotates v about the X axis by angle degrees (right hand rule)
func RotateX(v r3.Vec, angle float64) r3.Vec {
	if angle == 0 {
		return v
	}
	rot := r3.NewRotation(angle*math.Pi/180., r3.Vec{X: 1})
	return rot.Rotate(v)
}

// planeNormal uses the first three points of the plane
func planeNormal(plane []r3.Vec) (n r3.Vec, err error) {
	if len(plane) < 3 {
		err = fmt.Errorf("%w: plane needs 3 points, got %d", ErrDegenerateGeometry, len(plane))
		return
	}
	n = r3.Cross(r3.Sub(plane[1], plane[0]), r3.Sub(plane[2], plane[0]))
	if r3.Norm(n) == 0 {
		err = fmt.Errorf("%w: plane points are collinear", ErrDegenerateGeometry)
	}
	return
}

// DistancePointPlane is the unsigned distance from p to the plane through the
// first three plane points
func DistancePointPlane(p r3.Vec, plane []r3.Vec) (float64, error) {
	n, err := planeNormal(plane)
	if err != nil {
		return 0, err
	}
	return math.Abs(r3.Dot(n, r3.Sub(p, plane[0]))) / r3.Norm(n), nil
}

// IntersectLinePlane returns the point where the infinite line through
// line[0], line[1] crosses the plane through the first three plane points
func IntersectLinePlane(line [2]r3.Vec, plane []r3.Vec) (r3.Vec, error) {
	n, err := planeNormal(plane)
	if err != nil {
		return r3.Vec{}, err
	}
	d := r3.Sub(line[1], line[0])
	denom := r3.Dot(n, d)
	if math.Abs(denom) <= parallelTol*r3.Norm(n)*r3.Norm(d) {
		return r3.Vec{}, fmt.Errorf("%w: line is parallel to plane", ErrDegenerateGeometry)
	}
	t := r3.Dot(n, r3.Sub(plane[0], line[0])) / denom
	return r3.Add(line[0], r3.Scale(t, d)), nil
}

// TriangleArea is half the cross product magnitude of two edges from a
func TriangleArea(a, b, c r3.Vec) float64 {
	return 0.5 * r3.Norm(r3.Cross(r3.Sub(b, a), r3.Sub(c, a)))
}

// Area of a face given in winding order. Two points are an edge of a planar
// cell, the area is then the length per unit thickness. Quads are split along
// the 0-2 diagonal.
func Area(points []r3.Vec) float64 {
	switch len(points) {
	case 2:
		return Distance(points[0], points[1])
	case 3:
		return TriangleArea(points[0], points[1], points[2])
	case 4:
		return TriangleArea(points[0], points[1], points[2]) +
			TriangleArea(points[0], points[2], points[3])
	}
	return 0.0
}

// SignedTetVolume is the scalar triple product over six
func SignedTetVolume(a, b, c, d r3.Vec) float64 {
	return r3.Dot(r3.Sub(b, a), r3.Cross(r3.Sub(c, a), r3.Sub(d, a))) / 6.
}

var tetDecomposition = map[utils.CellType][][4]int{
	utils.Tetra: {
		{0, 1, 2, 3},
	},
	utils.Pyramid: {
		{0, 1, 3, 4},
		{1, 2, 3, 4},
	},
	utils.Wedge: {
		{0, 1, 2, 3},
		{1, 2, 3, 4},
		{2, 3, 4, 5},
	},
	utils.Hexahedron: {
		{0, 1, 3, 4},
		{1, 2, 3, 6},
		{1, 4, 5, 6},
		{3, 4, 6, 7},
		{1, 3, 4, 6},
	},
}

// TetrahedralDecomposition returns the local vertex quadruples a solid is
// split into for volume integration
func TetrahedralDecomposition(ct utils.CellType) ([][4]int, bool) {
	tets, ok := tetDecomposition[ct]
	return tets, ok
}

// Volume of a solid cell from its points in local vertex order
func Volume(points []r3.Vec, ct utils.CellType) (vol float64, err error) {
	tets, ok := tetDecomposition[ct]
	if !ok {
		err = fmt.Errorf("%w: no volume for %s cells", ErrUnsupportedCellType, ct)
		return
	}
	if len(points) < ct.GetNumNodes() {
		err = fmt.Errorf("%s cell needs %d points, got %d", ct, ct.GetNumNodes(), len(points))
		return
	}
	for _, tet := range tets {
		vol += math.Abs(SignedTetVolume(
			points[tet[0]], points[tet[1]], points[tet[2]], points[tet[3]]))
	}
	return
}
