package mesh

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/toughgrid/utils"
)

// TestMeshes provides a collection of standard meshes shared by the tests of
// the mesh, readers and tough packages. Every call builds fresh copies.
type TestMeshes struct {
	// Two unit hexahedra sharing the x = 1 face, materials ROCK1 and ROCK2
	TwoCubes *Mesh
	// Two tetrahedra sharing face {1, 2, 3}
	TwoTets *Mesh
	// A unit hexahedron with a pyramid on its top face, a wedge against its
	// x = 1 face and a tetrahedron on one triangle of the pyramid
	MixedMesh *Mesh
	// Two unit quads sharing the x = 1 edge
	TwoQuads *Mesh
	// TwoQuads plus a triangle sharing no point with them
	IsolatedTriangle *Mesh
}

// GetStandardTestMeshes returns a set of standard test meshes
func GetStandardTestMeshes() *TestMeshes {
	return &TestMeshes{
		TwoCubes:         createTwoCubes(),
		TwoTets:          createTwoTets(),
		MixedMesh:        createMixedMesh(),
		TwoQuads:         createTwoQuads(),
		IsolatedTriangle: createIsolatedTriangle(),
	}
}

func pointsFrom(coords [][3]float64) []r3.Vec {
	pts := make([]r3.Vec, len(coords))
	for i, c := range coords {
		pts[i] = r3.Vec{X: c[0], Y: c[1], Z: c[2]}
	}
	return pts
}

func createTwoCubes() *Mesh {
	m := NewMesh()
	m.Points = pointsFrom([][3]float64{
		{0, 0, 0}, // 0
		{1, 0, 0}, // 1
		{1, 1, 0}, // 2
		{0, 1, 0}, // 3
		{0, 0, 1}, // 4
		{1, 0, 1}, // 5
		{1, 1, 1}, // 6
		{0, 1, 1}, // 7
		{2, 0, 0}, // 8
		{2, 1, 0}, // 9
		{2, 0, 1}, // 10
		{2, 1, 1}, // 11
	})
	m.Blocks = []CellBlock{{
		Type: utils.Hexahedron,
		Cells: [][]int{
			{0, 1, 2, 3, 4, 5, 6, 7},
			{1, 8, 9, 2, 5, 10, 11, 6},
		},
		Material: []int{1, 2},
	}}
	m.MaterialNames = map[int]string{1: "ROCK1", 2: "ROCK2"}
	return m
}

func createTwoTets() *Mesh {
	m := NewMesh()
	m.Points = pointsFrom([][3]float64{
		{0, 0, 0},
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
		{1, 1, 1},
	})
	m.Blocks = []CellBlock{{
		Type: utils.Tetra,
		Cells: [][]int{
			{0, 1, 2, 3},
			{1, 2, 3, 4},
		},
	}}
	return m
}

func createMixedMesh() *Mesh {
	m := NewMesh()
	m.Points = pointsFrom([][3]float64{
		{0, 0, 0},         // 0
		{1, 0, 0},         // 1
		{1, 1, 0},         // 2
		{0, 1, 0},         // 3
		{0, 0, 1},         // 4
		{1, 0, 1},         // 5
		{1, 1, 1},         // 6
		{0, 1, 1},         // 7
		{0.5, 0.5, 1.5},   // 8: pyramid apex
		{2, 0, 0},         // 9
		{2, 1, 0},         // 10
		{0.5, -0.5, 1.25}, // 11: tet tip
	})
	m.Blocks = []CellBlock{
		{Type: utils.Hexahedron, Cells: [][]int{{0, 1, 2, 3, 4, 5, 6, 7}}, Material: []int{1}},
		{Type: utils.Pyramid, Cells: [][]int{{4, 5, 6, 7, 8}}, Material: []int{1}},
		{Type: utils.Wedge, Cells: [][]int{{1, 9, 5, 2, 10, 6}}, Material: []int{2}},
		{Type: utils.Tetra, Cells: [][]int{{4, 5, 8, 11}}, Material: []int{2}},
	}
	return m
}

func createTwoQuads() *Mesh {
	m := NewMesh()
	m.Points = pointsFrom([][3]float64{
		{0, 0, 0},
		{1, 0, 0},
		{1, 1, 0},
		{0, 1, 0},
		{2, 0, 0},
		{2, 1, 0},
	})
	m.Blocks = []CellBlock{{
		Type: utils.Quad,
		Cells: [][]int{
			{0, 1, 2, 3},
			{1, 4, 5, 2},
		},
	}}
	return m
}

func createIsolatedTriangle() *Mesh {
	m := createTwoQuads()
	m.Points = append(m.Points, pointsFrom([][3]float64{
		{10, 10, 0},
		{11, 10, 0},
		{10, 11, 0},
	})...)
	m.Blocks = append(m.Blocks, CellBlock{
		Type:  utils.Triangle,
		Cells: [][]int{{6, 7, 8}},
	})
	return m
}

// StructuredHexGrid builds nx*ny*nz hexahedra of size dx*dy*dz, cells ordered
// with i fastest
func StructuredHexGrid(nx, ny, nz int, dx, dy, dz float64) *Mesh {
	m := NewMesh()
	pid := func(i, j, k int) int {
		return i + (nx+1)*(j+(ny+1)*k)
	}
	for k := 0; k <= nz; k++ {
		for j := 0; j <= ny; j++ {
			for i := 0; i <= nx; i++ {
				m.Points = append(m.Points,
					r3.Vec{X: float64(i) * dx, Y: float64(j) * dy, Z: float64(k) * dz})
			}
		}
	}
	b := CellBlock{Type: utils.Hexahedron}
	for k := 0; k < nz; k++ {
		for j := 0; j < ny; j++ {
			for i := 0; i < nx; i++ {
				b.Cells = append(b.Cells, []int{
					pid(i, j, k), pid(i+1, j, k), pid(i+1, j+1, k), pid(i, j+1, k),
					pid(i, j, k+1), pid(i+1, j, k+1), pid(i+1, j+1, k+1), pid(i, j+1, k+1),
				})
			}
		}
	}
	m.Blocks = []CellBlock{b}
	return m
}
