package mesh

import (
	"errors"
	"fmt"

	"github.com/notargets/toughgrid/geometry"
)

var (
	// ErrUnsupportedCellType is returned for a cell type missing from the face catalog
	ErrUnsupportedCellType = geometry.ErrUnsupportedCellType
	// ErrInvalidMesh is returned for malformed cell arrays and out of range point indices
	ErrInvalidMesh = errors.New("invalid mesh")
	// ErrDegenerateGeometry is returned when interface geometry has no defined value
	ErrDegenerateGeometry = geometry.ErrDegenerateGeometry
)

// DiagnosticKind classifies non fatal findings
type DiagnosticKind uint8

const (
	IsolatedCell DiagnosticKind = iota
	OverlappingFace
	DegenerateCell
	MultipleSharedFaces
	MissingMaterialMetadata
)

func (k DiagnosticKind) String() string {
	return [...]string{
		"IsolatedCell", "OverlappingFace", "DegenerateCell",
		"MultipleSharedFaces", "MissingMaterialMetadata",
	}[k]
}

// Diagnostic is a warning surfaced to the caller, the result is still
// usable but may be semantically incomplete
type Diagnostic struct {
	Kind    DiagnosticKind
	Cell    int   // Flat cell index, -1 when the finding is not about one cell
	Cells   []int // Flat cells involved, for face findings
	Message string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s", d.Kind, d.Message)
}
