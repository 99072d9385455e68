package utils

import (
	"fmt"
	"strings"
)

// CellType represents the supported mesh cell (and face) types

type CellType int

const (
	Unknown CellType = iota
	// 1D, only ever produced as a face of a planar cell
	Line
	// 2D cells
	Triangle
	Quad
	// 3D cells
	Tetra
	Pyramid
	Wedge
	Hexahedron
)

var cellTypeNames = []string{
	"Unknown",
	"Line",
	"Triangle", "Quad",
	"Tetra", "Pyramid", "Wedge", "Hexahedron",
}

// String representation of cell types
func (e CellType) String() string {
	if int(e) >= 0 && int(e) < len(cellTypeNames) {
		return cellTypeNames[e]
	}
	return "Invalid"
}

// GetDimension returns the spatial dimension of the cell
func (e CellType) GetDimension() int {
	switch e {
	case Line:
		return 1
	case Triangle, Quad:
		return 2
	case Tetra, Pyramid, Wedge, Hexahedron:
		return 3
	default:
		return -1
	}
}

// GetNumNodes returns the number of vertices for each cell type
func (e CellType) GetNumNodes() int {
	switch e {
	case Line:
		return 2
	case Triangle:
		return 3
	case Quad:
		return 4
	case Tetra:
		return 4
	case Pyramid:
		return 5
	case Wedge:
		return 6
	case Hexahedron:
		return 8
	default:
		return 0
	}
}

// IsSolid is true for the 3D cell types
func (e CellType) IsSolid() bool {
	return e.GetDimension() == 3
}

// ParseCellType accepts our names as well as the usual meshio / VTK aliases
func ParseCellType(name string) (CellType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "line":
		return Line, nil
	case "triangle", "tri":
		return Triangle, nil
	case "quad", "quadrilateral":
		return Quad, nil
	case "tetra", "tet", "tetrahedron":
		return Tetra, nil
	case "pyramid":
		return Pyramid, nil
	case "wedge", "prism":
		return Wedge, nil
	case "hexahedron", "hex", "brick":
		return Hexahedron, nil
	}
	return Unknown, fmt.Errorf("unknown cell type name %q", name)
}
