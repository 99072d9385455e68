package tough

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/toughgrid/mesh"
	"github.com/notargets/toughgrid/utils"
)

func blank(n int) string {
	return strings.Repeat(" ", n)
}

func quietOptions() *Options {
	logger, _ := test.NewNullLogger()
	return &Options{Logger: logger, Workers: 2}
}

func TestRuler(t *testing.T) {
	r := Ruler("ELEME")
	assert.Len(t, r, RulerWidth)
	assert.Equal(t,
		"ELEME----1----*----2----*----3----*----4----*----5----*----6----*----7----*---", r)
	assert.True(t, strings.HasPrefix(Ruler("CONNE"), "CONNE----1"))
	assert.Len(t, Ruler("INCONSISTENT"), RulerWidth)
}

func TestWriteMesh_TwoCubes(t *testing.T) {
	var buf bytes.Buffer
	bw, err := WriteMesh(&buf, mesh.GetStandardTestMeshes().TwoCubes, quietOptions())
	require.NoError(t, err)
	assert.Empty(t, bw.Diagnostics())

	want := strings.Join([]string{
		Ruler("ELEME"),
		"A1100" + blank(10) + "ROCK1" + "1.0000e+00" + blank(20) + " 5.000e-01 5.000e-01 5.000e-01",
		"A1101" + blank(10) + "ROCK2" + "1.0000e+00" + blank(20) + " 1.500e+00 5.000e-01 5.000e-01",
		"",
		Ruler("CONNE"),
		"A1100A1101" + blank(15) + "    1" + "5.0000e-01" + "5.0000e-01" + "1.0000e+00" + " 0.000e+00",
		"",
		"",
	}, "\n")
	assert.Equal(t, want, buf.String())

	conns, err := bw.Connections()
	require.NoError(t, err)
	require.Len(t, conns, 1)
	assert.Equal(t, Connection{Cells: [2]int{0, 1}, Isot: 1, D1: 0.5, D2: 0.5, Area: 1}, conns[0])
}

func TestWriteEleme_Materials(t *testing.T) {
	t.Run("MissingMetadata", func(t *testing.T) {
		logger, hook := test.NewNullLogger()
		bw, err := NewBlockWriter(mesh.GetStandardTestMeshes().TwoTets,
			&Options{Logger: logger, DefaultMaterial: 3})
		require.NoError(t, err)
		var buf bytes.Buffer
		require.NoError(t, bw.WriteEleme(&buf))
		lines := strings.Split(buf.String(), "\n")
		assert.Equal(t, "    3", lines[1][15:20])
		assert.Equal(t, "    3", lines[2][15:20])

		require.Len(t, bw.Diagnostics(), 1)
		assert.Equal(t, mesh.MissingMaterialMetadata, bw.Diagnostics()[0].Kind)
		var warned bool
		for _, e := range hook.AllEntries() {
			if e.Level == logrus.WarnLevel && e.Data["kind"] == "MissingMaterialMetadata" {
				warned = true
			}
		}
		assert.True(t, warned)
	})
	t.Run("NumericIDs", func(t *testing.T) {
		bw, err := NewBlockWriter(mesh.GetStandardTestMeshes().MixedMesh, quietOptions())
		require.NoError(t, err)
		assert.Equal(t, 1, bw.Material(0))
		assert.Equal(t, 2, bw.Material(3))
		var buf bytes.Buffer
		require.NoError(t, bw.WriteEleme(&buf))
		lines := strings.Split(buf.String(), "\n")
		require.Len(t, lines, 7)
		assert.Equal(t, "    1", lines[1][15:20])
		assert.Equal(t, "    2", lines[3][15:20])
		// Wedge volume
		assert.Equal(t, "5.0000e-01", lines[3][20:30])
	})
	t.Run("DefaultIsOne", func(t *testing.T) {
		m := mesh.GetStandardTestMeshes().TwoCubes
		m.Blocks[0].Material = []int{0, 2}
		bw, err := NewBlockWriter(m, quietOptions())
		require.NoError(t, err)
		assert.Equal(t, 1, bw.Material(0))
		assert.Len(t, bw.Diagnostics(), 1)
	})
}

func TestWriteEleme_ZeroVolumeDeferred(t *testing.T) {
	m := mesh.GetStandardTestMeshes().TwoTets
	// Flatten the first cell onto the face it shares with the second
	m.Points[4] = r3.Vec{X: 0.5, Y: 0.5, Z: 0}
	m.Blocks[0].Cells = [][]int{{1, 2, 3, 4}, {0, 1, 2, 3}}

	bw, err := NewBlockWriter(m, quietOptions())
	require.NoError(t, err)
	assert.Equal(t, 0.0, bw.Volume(0))
	var buf bytes.Buffer
	require.NoError(t, bw.WriteEleme(&buf))
	lines := strings.Split(buf.String(), "\n")
	require.Len(t, lines, 5)
	assert.True(t, strings.HasPrefix(lines[1], "A1101"))
	assert.True(t, strings.HasPrefix(lines[2], "A1100"))
	assert.Equal(t, "0.0000e+00", lines[2][20:30])
}

func TestConnections_Rotation(t *testing.T) {
	// Two cells stacked along Y
	m := mesh.StructuredHexGrid(1, 2, 1, 1, 1, 1)

	bw, err := NewBlockWriter(m, quietOptions())
	require.NoError(t, err)
	conns, err := bw.Connections()
	require.NoError(t, err)
	require.Len(t, conns, 1)
	assert.Equal(t, 2, conns[0].Isot)
	assert.InDelta(t, 0.0, conns[0].BetaX, 1e-14)

	opts := quietOptions()
	opts.RotationAngle = 90
	bw, err = NewBlockWriter(m, opts)
	require.NoError(t, err)
	conns, err = bw.Connections()
	require.NoError(t, err)
	assert.InDelta(t, -1.0, conns[0].BetaX, 1e-12)
	// Anisotropy follows the unrotated mesh
	assert.Equal(t, 2, conns[0].Isot)
	assert.InDelta(t, 0.5, conns[0].D1, 1e-14)
}

func TestConnections_Vertical(t *testing.T) {
	m := mesh.StructuredHexGrid(1, 1, 2, 1, 1, 2)
	bw, err := NewBlockWriter(m, quietOptions())
	require.NoError(t, err)
	conns, err := bw.Connections()
	require.NoError(t, err)
	require.Len(t, conns, 1)
	assert.Equal(t, 3, conns[0].Isot)
	// Upward connection line against downward gravity
	assert.InDelta(t, -1.0, conns[0].BetaX, 1e-14)
	assert.InDelta(t, 1.0, conns[0].D1, 1e-14)
	assert.InDelta(t, 1.0, conns[0].D2, 1e-14)
}

func TestConnections_EachPairOnce(t *testing.T) {
	m := mesh.StructuredHexGrid(3, 3, 3, 1, 1, 1)
	bw, err := NewBlockWriter(m, quietOptions())
	require.NoError(t, err)
	conns, err := bw.Connections()
	require.NoError(t, err)
	assert.Len(t, conns, bw.Connectivity().NumInterfaces())

	seen := make(map[[2]int]bool)
	for _, c := range conns {
		assert.Less(t, c.Cells[0], c.Cells[1])
		assert.False(t, seen[c.Cells])
		seen[c.Cells] = true
		assert.InDelta(t, 1.0, c.Area, 1e-14)
		assert.InDelta(t, 1.0, c.D1+c.D2, 1e-14)
	}
}

func TestIsot(t *testing.T) {
	cases := []struct {
		d        r3.Vec
		dominant int
		first    int
	}{
		{r3.Vec{X: 1}, 1, 1},
		{r3.Vec{Y: -2}, 2, 2},
		{r3.Vec{Z: 3}, 3, 3},
		{r3.Vec{X: 0.1, Y: 0.9}, 2, 1},
		{r3.Vec{X: 0.1, Y: 0.2, Z: -0.9}, 3, 1},
		{r3.Vec{Y: 0.3, Z: 0.2}, 2, 2},
		{r3.Vec{X: 1, Y: 1}, 1, 1},
		{r3.Vec{Y: 1, Z: -1}, 2, 2},
	}
	for _, c := range cases {
		got, err := isot(c.d, IsotDominant)
		require.NoError(t, err)
		assert.Equal(t, c.dominant, got, "dominant %v", c.d)
		got, err = isot(c.d, IsotFirstNonZero)
		require.NoError(t, err)
		assert.Equal(t, c.first, got, "first non zero %v", c.d)
	}
	_, err := isot(r3.Vec{}, IsotDominant)
	assert.ErrorIs(t, err, mesh.ErrDegenerateGeometry)
}

func TestNewBlockWriter_Errors(t *testing.T) {
	tm := mesh.GetStandardTestMeshes()
	_, err := NewBlockWriter(tm.TwoQuads, nil)
	assert.ErrorIs(t, err, mesh.ErrUnsupportedCellType)

	m := tm.TwoCubes
	m.Blocks[0].Cells[1][0] = 100
	_, err = NewBlockWriter(m, quietOptions())
	assert.ErrorIs(t, err, mesh.ErrInvalidMesh)

	extruded, err := mesh.Extrude(tm.TwoQuads, []float64{1}, 2)
	require.NoError(t, err)
	bw, err := NewBlockWriter(extruded, quietOptions())
	require.NoError(t, err)
	conns, err := bw.Connections()
	require.NoError(t, err)
	require.Len(t, conns, 1)
	assert.InDelta(t, 0.5, conns[0].D1, 1e-14)
}

func TestWriteIncon(t *testing.T) {
	m := mesh.GetStandardTestMeshes().TwoCubes
	m.Blocks[0].Data = map[string][]float64{
		"porosity":    {0.1, 0.25},
		"pressure":    {1e5, 2e5},
		"temperature": {20, 30},
	}
	bw, err := NewBlockWriter(m, quietOptions())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, bw.WriteIncon(&buf, InconFields{
		Porosity:  "porosity",
		Variables: []string{"pressure", "temperature"},
	}))
	want := strings.Join([]string{
		Ruler("INCON"),
		"A1100" + blank(10) + "1.000000000e-01",
		" 1.0000000000000e+05 2.0000000000000e+01",
		"A1101" + blank(10) + "2.500000000e-01",
		" 2.0000000000000e+05 3.0000000000000e+01",
		"",
		"",
	}, "\n")
	assert.Equal(t, want, buf.String())

	buf.Reset()
	require.NoError(t, bw.WriteIncon(&buf, InconFields{Variables: []string{"pressure"}}))
	lines := strings.Split(buf.String(), "\n")
	assert.Equal(t, "A1100"+blank(25), lines[1])

	err = bw.WriteIncon(&buf, InconFields{Variables: []string{"saturation"}})
	assert.ErrorIs(t, err, mesh.ErrInvalidMesh)
	err = bw.WriteIncon(&buf, InconFields{})
	assert.ErrorIs(t, err, mesh.ErrInvalidMesh)
}

func TestConnections_DegenerateGeometry(t *testing.T) {
	t.Run("CoincidentCenters", func(t *testing.T) {
		m := mesh.GetStandardTestMeshes().TwoTets
		// Same points in another order, the centroids coincide
		m.Blocks[0].Cells[1] = []int{1, 2, 3, 0}
		bw, err := NewBlockWriter(m, quietOptions())
		require.NoError(t, err)
		_, err = bw.Connections()
		assert.ErrorIs(t, err, mesh.ErrDegenerateGeometry)
		assert.Contains(t, err.Error(), "A1100-A1101")

		var buf bytes.Buffer
		_, err = WriteMesh(&buf, m, quietOptions())
		assert.ErrorIs(t, err, mesh.ErrDegenerateGeometry)
	})
	t.Run("CenterLineInFacePlane", func(t *testing.T) {
		m := mesh.NewMesh()
		// Both tets stand on the z = 0 face {1, 2, 3}, the centre line is horizontal
		m.Points = []r3.Vec{{Z: 1}, {}, {X: 1}, {Y: 1}, {X: 1, Y: 1, Z: 1}}
		m.Blocks = []mesh.CellBlock{{
			Type:  utils.Tetra,
			Cells: [][]int{{0, 1, 2, 3}, {1, 2, 3, 4}},
		}}
		bw, err := NewBlockWriter(m, quietOptions())
		require.NoError(t, err)
		require.Equal(t, 1, bw.Connectivity().NumInterfaces())
		_, err = bw.Connections()
		assert.ErrorIs(t, err, mesh.ErrDegenerateGeometry)
		assert.Contains(t, err.Error(), "connection A1100-A1101")
	})
}
