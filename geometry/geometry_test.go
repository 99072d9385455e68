package geometry

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/toughgrid/utils"
)

var unitCube = []r3.Vec{
	{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 1, Y: 1, Z: 0}, {X: 0, Y: 1, Z: 0},
	{X: 0, Y: 0, Z: 1}, {X: 1, Y: 0, Z: 1}, {X: 1, Y: 1, Z: 1}, {X: 0, Y: 1, Z: 1},
}

func TestDistance(t *testing.T) {
	assert.InDelta(t, 5., Distance(r3.Vec{X: 0, Y: 0, Z: 0}, r3.Vec{X: 3, Y: 4, Z: 0}), 1.e-14)
	assert.Equal(t, 0., Distance(unitCube[6], unitCube[6]))
}

func TestCentroid(t *testing.T) {
	c := Centroid(unitCube)
	assert.InDelta(t, 0.5, c.X, 1.e-14)
	assert.InDelta(t, 0.5, c.Y, 1.e-14)
	assert.InDelta(t, 0.5, c.Z, 1.e-14)
	assert.Equal(t, r3.Vec{}, Centroid(nil))
}

func TestArea(t *testing.T) {
	// x = 1 face of the unit cube, in winding order
	quad := []r3.Vec{unitCube[1], unitCube[2], unitCube[6], unitCube[5]}
	assert.InDelta(t, 1., Area(quad), 1.e-14)
	assert.InDelta(t, 0.5, Area(quad[:3]), 1.e-14)
	assert.InDelta(t, math.Sqrt2, Area([]r3.Vec{unitCube[0], unitCube[2]}), 1.e-14)
	assert.Equal(t, 0., Area(unitCube[:1]))
}

func TestDistancePointPlane(t *testing.T) {
	plane := []r3.Vec{unitCube[1], unitCube[2], unitCube[6]}
	d, err := DistancePointPlane(r3.Vec{X: 0.5, Y: 0.5, Z: 0.5}, plane)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, d, 1.e-14)
	d, err = DistancePointPlane(r3.Vec{X: 3, Y: -7, Z: 2}, plane)
	require.NoError(t, err)
	assert.InDelta(t, 2., d, 1.e-14)

	_, err = DistancePointPlane(r3.Vec{}, []r3.Vec{unitCube[0], unitCube[1], {X: 2}})
	assert.True(t, errors.Is(err, ErrDegenerateGeometry))
}

func TestIntersectLinePlane(t *testing.T) {
	plane := []r3.Vec{unitCube[1], unitCube[2], unitCube[6], unitCube[5]}
	line := [2]r3.Vec{{X: 0.5, Y: 0.5, Z: 0.5}, {X: 1.5, Y: 0.5, Z: 0.5}}
	p, err := IntersectLinePlane(line, plane)
	require.NoError(t, err)
	assert.InDelta(t, 1., p.X, 1.e-14)
	assert.InDelta(t, 0.5, p.Y, 1.e-14)
	assert.InDelta(t, 0.5, p.Z, 1.e-14)

	// The intersection is on the infinite line, not only the segment
	line = [2]r3.Vec{{X: 2, Y: 0, Z: 0}, {X: 3, Y: 1, Z: 0}}
	p, err = IntersectLinePlane(line, plane)
	require.NoError(t, err)
	assert.InDelta(t, 1., p.X, 1.e-14)
	assert.InDelta(t, -1., p.Y, 1.e-14)

	// Parallel lines are reported, never NaN
	line = [2]r3.Vec{{X: 0, Y: 0, Z: 0}, {X: 0, Y: 1, Z: 0}}
	_, err = IntersectLinePlane(line, plane)
	assert.True(t, errors.Is(err, ErrDegenerateGeometry))
}

func TestVolume(t *testing.T) {
	vol, err := Volume(unitCube, utils.Hexahedron)
	require.NoError(t, err)
	assert.InDelta(t, 1., vol, 1.e-14)

	tet := []r3.Vec{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 0, Y: 1, Z: 0}, {X: 0, Y: 0, Z: 1}}
	vol, err = Volume(tet, utils.Tetra)
	require.NoError(t, err)
	assert.InDelta(t, 1./6., vol, 1.e-14)

	// Left handed orientation gives the same volume
	vol, err = Volume([]r3.Vec{tet[0], tet[2], tet[1], tet[3]}, utils.Tetra)
	require.NoError(t, err)
	assert.InDelta(t, 1./6., vol, 1.e-14)

	pyramid := append(append([]r3.Vec{}, unitCube[:4]...), r3.Vec{X: 0.5, Y: 0.5, Z: 3})
	vol, err = Volume(pyramid, utils.Pyramid)
	require.NoError(t, err)
	assert.InDelta(t, 1., vol, 1.e-14)

	wedge := []r3.Vec{
		unitCube[0], unitCube[1], unitCube[3],
		unitCube[4], unitCube[5], unitCube[7],
	}
	vol, err = Volume(wedge, utils.Wedge)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, vol, 1.e-14)

	_, err = Volume(unitCube[:3], utils.Triangle)
	assert.True(t, errors.Is(err, ErrUnsupportedCellType))
	_, err = Volume(unitCube[:3], utils.Hexahedron)
	assert.Error(t, err)
}

func TestVolumeIsSumOfTetrahedra(t *testing.T) {
	// A sheared, scaled brick; every tetrahedron contributes its magnitude
	brick := make([]r3.Vec, len(unitCube))
	for i, p := range unitCube {
		brick[i] = r3.Vec{X: 2*p.X + 0.3*p.Z, Y: 3 * p.Y, Z: 0.5*p.Z + 0.1*p.X}
	}
	tets, ok := TetrahedralDecomposition(utils.Hexahedron)
	require.True(t, ok)
	assert.Len(t, tets, 5)
	var sum float64
	for _, tet := range tets {
		v := SignedTetVolume(brick[tet[0]], brick[tet[1]], brick[tet[2]], brick[tet[3]])
		sum += math.Abs(v)
	}
	vol, err := Volume(brick, utils.Hexahedron)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, vol, 0.)
	assert.InDelta(t, sum, vol, 1.e-14)

	for ct, n := range map[utils.CellType]int{utils.Tetra: 1, utils.Pyramid: 2, utils.Wedge: 3} {
		tets, ok = TetrahedralDecomposition(ct)
		require.True(t, ok)
		assert.Len(t, tets, n)
	}
	_, ok = TetrahedralDecomposition(utils.Quad)
	assert.False(t, ok)
}

func TestRotateX(t *testing.T) {
	v := RotateX(r3.Vec{Y: 1}, 90)
	assert.InDelta(t, 0., v.X, 1.e-14)
	assert.InDelta(t, 0., v.Y, 1.e-14)
	assert.InDelta(t, 1., v.Z, 1.e-14)
	assert.Equal(t, r3.Vec{X: 1, Y: 2, Z: 3}, RotateX(r3.Vec{X: 1, Y: 2, Z: 3}, 0))
	v = RotateX(r3.Vec{X: 2}, 37)
	assert.InDelta(t, 2., v.X, 1.e-14)
}

func TestUnit(t *testing.T) {
	u, err := Unit(r3.Vec{X: 0, Y: 3, Z: 4})
	require.NoError(t, err)
	assert.InDelta(t, 0.6, u.Y, 1.e-14)
	_, err = Unit(r3.Vec{})
	assert.True(t, errors.Is(err, ErrDegenerateGeometry))
}
