package mesh

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/toughgrid/utils"
)

// CellBlock holds every cell of one type, in iteration order
type CellBlock struct {
	Type  utils.CellType
	Cells [][]int // Cell to point connectivity [ncells][nverts_per_cell]

	// Optional per cell metadata, nil when absent
	Material []int                // Rock group id per cell
	Data     map[string][]float64 // Named scalar fields per cell
}

// Mesh represents an unstructured mesh of mixed cell types
type Mesh struct {
	Points []r3.Vec // Point coordinates, 2D meshes carry Z = 0

	Blocks        []CellBlock    // One block per cell type, in iteration order
	MaterialNames map[int]string // Material id -> symbolic rock group name

	// File node ID -> point index, filled by readers using AddNode
	NodeIDMap map[int]int
}

// NewMesh creates an empty mesh ready for AddNode / AddCell
func NewMesh() *Mesh {
	return &Mesh{
		MaterialNames: make(map[int]string),
		NodeIDMap:     make(map[int]int),
	}
}

// AddNode appends a point known in the source file as nodeID
func (m *Mesh) AddNode(nodeID int, x, y, z float64) {
	if m.NodeIDMap == nil {
		m.NodeIDMap = make(map[int]int)
	}
	m.NodeIDMap[nodeID] = len(m.Points)
	m.Points = append(m.Points, r3.Vec{X: x, Y: y, Z: z})
}

// GetNodeIndex translates a file node ID into a point index
func (m *Mesh) GetNodeIndex(nodeID int) (idx int, ok bool) {
	idx, ok = m.NodeIDMap[nodeID]
	return
}

// AddCell appends a cell given by file node IDs to the block of its type,
// creating the block on first use
func (m *Mesh) AddCell(ct utils.CellType, nodeIDs []int, material int) error {
	if ct.GetNumNodes() == 0 || len(nodeIDs) != ct.GetNumNodes() {
		return fmt.Errorf("%w: %s cell with %d nodes", ErrInvalidMesh, ct, len(nodeIDs))
	}
	cell := make([]int, len(nodeIDs))
	for i, id := range nodeIDs {
		idx, ok := m.GetNodeIndex(id)
		if !ok {
			return fmt.Errorf("%w: node %d not found", ErrInvalidMesh, id)
		}
		cell[i] = idx
	}
	b := m.blockFor(ct)
	b.Cells = append(b.Cells, cell)
	b.Material = append(b.Material, material)
	return nil
}

func (m *Mesh) blockFor(ct utils.CellType) *CellBlock {
	for i := range m.Blocks {
		if m.Blocks[i].Type == ct {
			return &m.Blocks[i]
		}
	}
	m.Blocks = append(m.Blocks, CellBlock{Type: ct})
	return &m.Blocks[len(m.Blocks)-1]
}

// Block returns the block holding cells of type ct
func (m *Mesh) Block(ct utils.CellType) (*CellBlock, bool) {
	for i := range m.Blocks {
		if m.Blocks[i].Type == ct {
			return &m.Blocks[i], true
		}
	}
	return nil, false
}

// NumCells over all blocks
func (m *Mesh) NumCells() (n int) {
	for _, b := range m.Blocks {
		n += len(b.Cells)
	}
	return
}

// NumPoints in the mesh
func (m *Mesh) NumPoints() int {
	return len(m.Points)
}

// CellPoints gathers the coordinates of a cell in local vertex order
func (m *Mesh) CellPoints(cell []int) []r3.Vec {
	pts := make([]r3.Vec, len(cell))
	for i, p := range cell {
		pts[i] = m.Points[p]
	}
	return pts
}

// Dimension is the largest cell dimension present
func (m *Mesh) Dimension() (dim int) {
	for _, b := range m.Blocks {
		if d := b.Type.GetDimension(); d > dim {
			dim = d
		}
	}
	return
}

// Validate checks the preconditions the connectivity builder relies on. It
// does not check mesh quality or conformity.
func (m *Mesh) Validate() error {
	npts := len(m.Points)
	seen := make(map[utils.CellType]bool)
	for bi, b := range m.Blocks {
		if _, ok := faceCatalog[b.Type]; !ok {
			return fmt.Errorf("%w: block %d has type %s", ErrUnsupportedCellType, bi, b.Type)
		}
		if seen[b.Type] {
			return fmt.Errorf("%w: more than one %s block", ErrInvalidMesh, b.Type)
		}
		seen[b.Type] = true
		nv := b.Type.GetNumNodes()
		for ci, cell := range b.Cells {
			if len(cell) != nv {
				return fmt.Errorf("%w: %s cell %d has %d vertices, want %d",
					ErrInvalidMesh, b.Type, ci, len(cell), nv)
			}
			for _, p := range cell {
				if p < 0 || p >= npts {
					return fmt.Errorf("%w: %s cell %d references point %d, mesh has %d points",
						ErrInvalidMesh, b.Type, ci, p, npts)
				}
			}
		}
		if len(b.Material) != 0 && len(b.Material) != len(b.Cells) {
			return fmt.Errorf("%w: %s block has %d materials for %d cells",
				ErrInvalidMesh, b.Type, len(b.Material), len(b.Cells))
		}
		for name, field := range b.Data {
			if len(field) != len(b.Cells) {
				return fmt.Errorf("%w: %s block field %q has %d values for %d cells",
					ErrInvalidMesh, b.Type, name, len(field), len(b.Cells))
			}
		}
	}
	return nil
}

// Clone returns a deep copy sharing no slices or maps with m
func (m *Mesh) Clone() *Mesh {
	c := &Mesh{
		Points:        append([]r3.Vec(nil), m.Points...),
		Blocks:        make([]CellBlock, len(m.Blocks)),
		MaterialNames: make(map[int]string, len(m.MaterialNames)),
		NodeIDMap:     make(map[int]int, len(m.NodeIDMap)),
	}
	for k, v := range m.MaterialNames {
		c.MaterialNames[k] = v
	}
	for k, v := range m.NodeIDMap {
		c.NodeIDMap[k] = v
	}
	for i, b := range m.Blocks {
		nb := CellBlock{
			Type:  b.Type,
			Cells: make([][]int, len(b.Cells)),
		}
		for j, cell := range b.Cells {
			nb.Cells[j] = append([]int(nil), cell...)
		}
		if b.Material != nil {
			nb.Material = append([]int(nil), b.Material...)
		}
		if b.Data != nil {
			nb.Data = make(map[string][]float64, len(b.Data))
			for k, v := range b.Data {
				nb.Data[k] = append([]float64(nil), v...)
			}
		}
		c.Blocks[i] = nb
	}
	return c
}
