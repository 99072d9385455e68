package mesh

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/toughgrid/geometry"
	"github.com/notargets/toughgrid/utils"
)

func TestExtrude_TwoQuads(t *testing.T) {
	m := GetStandardTestMeshes().TwoQuads
	m.Blocks[0].Material = []int{3, 4}
	m.Blocks[0].Data = map[string][]float64{"porosity": {0.1, 0.2}}
	m.MaterialNames[3] = "SANDS"

	out, err := Extrude(m, []float64{1, 2}, 2)
	require.NoError(t, err)

	assert.Equal(t, 18, out.NumPoints())
	assert.Equal(t, r3.Vec{X: 2, Y: 1, Z: 3}, out.Points[17])
	require.Len(t, out.Blocks, 1)
	b := out.Blocks[0]
	assert.Equal(t, utils.Hexahedron, b.Type)
	require.Len(t, b.Cells, 4)
	assert.Equal(t, []int{0, 1, 2, 3, 6, 7, 8, 9}, b.Cells[0])
	assert.Equal(t, []int{7, 10, 11, 8, 13, 16, 17, 14}, b.Cells[3])
	assert.Equal(t, []int{3, 4, 3, 4}, b.Material)
	assert.Equal(t, []float64{0.1, 0.2, 0.1, 0.2}, b.Data["porosity"])
	assert.Equal(t, "SANDS", out.MaterialNames[3])

	vol, err := geometry.Volume(out.CellPoints(b.Cells[2]), b.Type)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, vol, 1e-12)

	c, err := BuildConnectivity(out, quietOptions(2))
	require.NoError(t, err)
	assert.Len(t, c.Interfaces, 4)
	assert.Equal(t, []int{2, 1}, c.NeighborsOf(0))

	// Source mesh untouched
	assert.Len(t, m.Points, 6)
	assert.Equal(t, utils.Quad, m.Blocks[0].Type)
}

func TestExtrude_MixedPlanar(t *testing.T) {
	m := GetStandardTestMeshes().IsolatedTriangle
	out, err := Extrude(m, []float64{0.5}, 1)
	require.NoError(t, err)
	require.Len(t, out.Blocks, 2)
	assert.Equal(t, utils.Hexahedron, out.Blocks[0].Type)
	assert.Equal(t, utils.Wedge, out.Blocks[1].Type)
	assert.Equal(t, []int{6, 7, 8, 15, 16, 17}, out.Blocks[1].Cells[0])
	assert.Equal(t, r3.Vec{X: 10, Y: 10.5, Z: 0}, out.Points[15])
	assert.Equal(t, 3, out.Dimension())
	assert.NoError(t, out.Validate())
}

func TestExtrude_Errors(t *testing.T) {
	tm := GetStandardTestMeshes()
	_, err := Extrude(tm.TwoQuads, []float64{1}, 3)
	assert.ErrorIs(t, err, ErrInvalidMesh)
	_, err = Extrude(tm.TwoQuads, nil, 2)
	assert.ErrorIs(t, err, ErrInvalidMesh)
	_, err = Extrude(tm.TwoQuads, []float64{1, 0}, 2)
	assert.ErrorIs(t, err, ErrInvalidMesh)
	_, err = Extrude(tm.TwoCubes, []float64{1}, 2)
	assert.ErrorIs(t, err, ErrUnsupportedCellType)
}
