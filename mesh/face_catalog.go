package mesh

import (
	"fmt"
	"sort"

	"github.com/notargets/toughgrid/utils"
)

// FaceGroup lists the faces of one face type a cell type produces, as local
// vertex indices in winding order
type FaceGroup struct {
	Type  utils.CellType
	Local [][]int
}

// faceCatalog is read only after package init
var faceCatalog = map[utils.CellType][]FaceGroup{
	utils.Triangle: {
		{utils.Line, [][]int{{0, 1}, {1, 2}, {0, 2}}},
	},
	utils.Quad: {
		{utils.Line, [][]int{{0, 1}, {1, 2}, {2, 3}, {0, 3}}},
	},
	utils.Tetra: {
		{utils.Triangle, [][]int{{0, 1, 2}, {0, 1, 3}, {1, 2, 3}, {0, 2, 3}}},
	},
	utils.Pyramid: {
		{utils.Triangle, [][]int{{0, 1, 4}, {1, 2, 4}, {2, 3, 4}, {0, 3, 4}}},
		{utils.Quad, [][]int{{0, 1, 2, 3}}},
	},
	utils.Wedge: {
		{utils.Triangle, [][]int{{0, 1, 2}, {3, 4, 5}}},
		{utils.Quad, [][]int{{0, 1, 4, 3}, {1, 2, 5, 4}, {0, 2, 5, 3}}},
	},
	utils.Hexahedron: {
		{utils.Quad, [][]int{
			{0, 1, 2, 3}, // bottom
			{4, 5, 6, 7}, // top
			{0, 1, 5, 4},
			{1, 2, 6, 5},
			{2, 3, 7, 6},
			{0, 3, 7, 4},
		}},
	},
}

// GetFaceCatalog returns the face groups of a cell type
func GetFaceCatalog(ct utils.CellType) ([]FaceGroup, error) {
	groups, ok := faceCatalog[ct]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCellType, ct)
	}
	return groups, nil
}

// NumFaces is the number of faces a cell type has, 0 if unsupported
func NumFaces(ct utils.CellType) (n int) {
	for _, g := range faceCatalog[ct] {
		n += len(g.Local)
	}
	return
}

// Face of a cell, Vertices are global point indices in winding order
type Face struct {
	Type     utils.CellType
	Vertices []int
}

// Key is the orientation independent identity of the face
func (f Face) Key() FaceKey {
	return NewFaceKey(f.Vertices)
}

// FaceKey holds the sorted point indices of a face; unused slots are -1 so
// faces of different sizes never compare equal
type FaceKey [4]int

// NewFaceKey canonicalizes up to 4 point indices
func NewFaceKey(vertices []int) (key FaceKey) {
	key = FaceKey{-1, -1, -1, -1}
	copy(key[:], vertices)
	n := len(vertices)
	if n > len(key) {
		n = len(key)
	}
	sort.Ints(key[:n])
	return
}

// GetCellFaces returns the faces of a cell in local face order
func GetCellFaces(ct utils.CellType, cell []int) ([]Face, error) {
	groups, err := GetFaceCatalog(ct)
	if err != nil {
		return nil, err
	}
	faces := make([]Face, 0, NumFaces(ct))
	for _, g := range groups {
		for _, local := range g.Local {
			verts := make([]int, len(local))
			for i, l := range local {
				verts[i] = cell[l]
			}
			faces = append(faces, Face{Type: g.Type, Vertices: verts})
		}
	}
	return faces, nil
}
