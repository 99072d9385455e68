package mesh

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/toughgrid/utils"
)

func TestMesh_AddNodeAddCell(t *testing.T) {
	m := NewMesh()
	// Non contiguous file IDs as found in Gambit and Gmsh files
	m.AddNode(10, 0, 0, 0)
	m.AddNode(20, 1, 0, 0)
	m.AddNode(30, 0, 1, 0)
	m.AddNode(40, 0, 0, 1)

	idx, ok := m.GetNodeIndex(30)
	assert.True(t, ok)
	assert.Equal(t, 2, idx)
	_, ok = m.GetNodeIndex(50)
	assert.False(t, ok)

	require.NoError(t, m.AddCell(utils.Tetra, []int{10, 20, 30, 40}, 7))
	require.NoError(t, m.AddCell(utils.Triangle, []int{10, 20, 30}, 1))
	assert.Equal(t, 2, m.NumCells())
	assert.Equal(t, 4, m.NumPoints())
	assert.Equal(t, 3, m.Dimension())

	b, ok := m.Block(utils.Tetra)
	require.True(t, ok)
	assert.Equal(t, [][]int{{0, 1, 2, 3}}, b.Cells)
	assert.Equal(t, []int{7}, b.Material)
	_, ok = m.Block(utils.Wedge)
	assert.False(t, ok)
	assert.Equal(t, []r3.Vec{{}, {X: 1}, {Y: 1}}, m.CellPoints([]int{0, 1, 2}))

	assert.ErrorIs(t, m.AddCell(utils.Tetra, []int{10, 20, 30, 99}, 1), ErrInvalidMesh)
	assert.ErrorIs(t, m.AddCell(utils.Tetra, []int{10, 20, 30}, 1), ErrInvalidMesh)
	assert.ErrorIs(t, m.AddCell(utils.Unknown, nil, 1), ErrInvalidMesh)
	assert.NoError(t, m.Validate())
}

func TestMesh_Validate(t *testing.T) {
	t.Run("DuplicateBlock", func(t *testing.T) {
		m := GetStandardTestMeshes().TwoTets
		m.Blocks = append(m.Blocks, m.Blocks[0])
		assert.ErrorIs(t, m.Validate(), ErrInvalidMesh)
	})
	t.Run("MaterialLength", func(t *testing.T) {
		m := GetStandardTestMeshes().TwoCubes
		m.Blocks[0].Material = []int{1}
		assert.ErrorIs(t, m.Validate(), ErrInvalidMesh)
	})
	t.Run("FieldLength", func(t *testing.T) {
		m := GetStandardTestMeshes().TwoCubes
		m.Blocks[0].Data = map[string][]float64{"porosity": {0.1, 0.2, 0.3}}
		assert.ErrorIs(t, m.Validate(), ErrInvalidMesh)
	})
	t.Run("NegativePoint", func(t *testing.T) {
		m := GetStandardTestMeshes().TwoTets
		m.Blocks[0].Cells[0][0] = -1
		assert.ErrorIs(t, m.Validate(), ErrInvalidMesh)
	})
	t.Run("Unsupported", func(t *testing.T) {
		m := GetStandardTestMeshes().TwoTets
		m.Blocks[0].Type = utils.Line
		assert.ErrorIs(t, m.Validate(), ErrUnsupportedCellType)
	})
}

func TestMesh_Clone(t *testing.T) {
	m := GetStandardTestMeshes().TwoCubes
	m.Blocks[0].Data = map[string][]float64{"porosity": {0.1, 0.2}}
	c := m.Clone()
	assert.Equal(t, m, c)

	c.Points[0].X = 42
	c.Blocks[0].Cells[0][0] = 3
	c.Blocks[0].Material[0] = 9
	c.Blocks[0].Data["porosity"][0] = 1
	c.MaterialNames[1] = "OTHER"

	assert.Equal(t, 0.0, m.Points[0].X)
	assert.Equal(t, 0, m.Blocks[0].Cells[0][0])
	assert.Equal(t, 1, m.Blocks[0].Material[0])
	assert.Equal(t, 0.1, m.Blocks[0].Data["porosity"][0])
	assert.Equal(t, "ROCK1", m.MaterialNames[1])
}

func TestDiagnosticString(t *testing.T) {
	d := Diagnostic{Kind: OverlappingFace, Cell: 3, Message: "face shared by three cells"}
	assert.Equal(t, "OverlappingFace: face shared by three cells", d.String())
	assert.Equal(t, "MissingMaterialMetadata", MissingMaterialMetadata.String())
}
