package mesh

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/toughgrid/utils"
)

var extrudedType = map[utils.CellType]utils.CellType{
	utils.Triangle: utils.Wedge,
	utils.Quad:     utils.Hexahedron,
}

// Extrude builds a new 3D mesh from a planar one, one layer of cells per
// height along axis (0, 1 or 2). Triangles become wedges and quads become
// hexahedra; materials and fields are repeated in every layer. m is not
// modified.
func Extrude(m *Mesh, heights []float64, axis int) (*Mesh, error) {
	if axis < 0 || axis > 2 {
		return nil, fmt.Errorf("%w: extrusion axis %d", ErrInvalidMesh, axis)
	}
	if len(heights) == 0 {
		return nil, fmt.Errorf("%w: no extrusion heights", ErrInvalidMesh)
	}
	for _, h := range heights {
		if h <= 0 {
			return nil, fmt.Errorf("%w: extrusion height %g", ErrInvalidMesh, h)
		}
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	for _, b := range m.Blocks {
		if _, ok := extrudedType[b.Type]; !ok {
			return nil, fmt.Errorf("%w: cannot extrude %s cells", ErrUnsupportedCellType, b.Type)
		}
	}

	var (
		npts    = len(m.Points)
		nlayers = len(heights)
		out     = &Mesh{
			Points:        make([]r3.Vec, 0, npts*(nlayers+1)),
			Blocks:        make([]CellBlock, len(m.Blocks)),
			MaterialNames: make(map[int]string, len(m.MaterialNames)),
			NodeIDMap:     make(map[int]int),
		}
		offset float64
	)
	for k, v := range m.MaterialNames {
		out.MaterialNames[k] = v
	}
	for l := 0; l <= nlayers; l++ {
		for _, p := range m.Points {
			out.Points = append(out.Points, shiftAxis(p, axis, offset))
		}
		if l < nlayers {
			offset += heights[l]
		}
	}

	for bi, b := range m.Blocks {
		nb := CellBlock{
			Type:  extrudedType[b.Type],
			Cells: make([][]int, 0, len(b.Cells)*nlayers),
		}
		nv := len(b.Cells)
		for l := 0; l < nlayers; l++ {
			bottom, top := l*npts, (l+1)*npts
			for _, cell := range b.Cells {
				solid := make([]int, 2*len(cell))
				for i, p := range cell {
					solid[i] = bottom + p
					solid[i+len(cell)] = top + p
				}
				nb.Cells = append(nb.Cells, solid)
			}
		}
		if len(b.Material) != 0 {
			nb.Material = make([]int, 0, nv*nlayers)
			for l := 0; l < nlayers; l++ {
				nb.Material = append(nb.Material, b.Material...)
			}
		}
		if b.Data != nil {
			nb.Data = make(map[string][]float64, len(b.Data))
			for name, field := range b.Data {
				f := make([]float64, 0, nv*nlayers)
				for l := 0; l < nlayers; l++ {
					f = append(f, field...)
				}
				nb.Data[name] = f
			}
		}
		out.Blocks[bi] = nb
	}
	return out, nil
}

func shiftAxis(p r3.Vec, axis int, d float64) r3.Vec {
	switch axis {
	case 0:
		p.X += d
	case 1:
		p.Y += d
	default:
		p.Z += d
	}
	return p
}
