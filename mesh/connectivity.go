package mesh

import (
	"encoding/binary"
	"fmt"
	"sort"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/sirupsen/logrus"

	"github.com/notargets/toughgrid/utils"
)

var log = utils.NamedLogger("mesh")

// BuildOptions tune BuildConnectivity, the zero value is usable
type BuildOptions struct {
	Workers int                // Parallel degree, <= 0 means one per CPU
	Logger  logrus.FieldLogger // Receives the diagnostics, nil uses the package logger
}

// CellRef locates a cell in its block
type CellRef struct {
	Type  utils.CellType
	Index int
}

// Interface is a face shared by exactly two cells
type Interface struct {
	Cells [2]int // Flat cell indices, Cells[0] enumerates the face first
	Faces [2]int // Local face index of the face within each cell
	Face  Face   // Winding as seen from Cells[0]
}

// Connectivity is the cell adjacency of one mesh, rebuilt from scratch on
// every BuildConnectivity call
type Connectivity struct {
	Offsets []int     // Flat index of the first cell of each block
	Cells   []CellRef // Flat index -> block cell

	// Neighbors[flat][type] lists the local indices of neighbors of that type,
	// in the local face order of the cell. Types without neighbors have no key.
	Neighbors []map[utils.CellType][]int

	Interfaces       []Interface  // Sorted by first owner, then its local face
	NumBoundaryFaces int          // Faces with a single owner
	Diagnostics      []Diagnostic // Sorted by cell

	neighborOrder [][]int // Flat neighbors per cell
	pairs         map[[2]int]int
	blockOf       map[utils.CellType]int
}

type faceRecord struct {
	key   FaceKey
	cell  int
	local int
}

type faceOwner struct {
	cell, local int
}

type groupResult struct {
	pairs       [][2]faceOwner
	boundary    int
	diagnostics []Diagnostic
}

// BuildConnectivity finds every pair of cells sharing a face. Faces are
// matched by their sorted point indices, so a conforming mesh is assumed.
func BuildConnectivity(m *Mesh, opts *BuildOptions) (c *Connectivity, err error) {
	if opts == nil {
		opts = &BuildOptions{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = log
	}
	if err = m.Validate(); err != nil {
		return
	}
	c = newConnectivity(m)
	K := len(c.Cells)
	if K == 0 {
		return
	}

	var (
		np      = utils.ParallelDegreeFor(opts.Workers, K)
		pm      = utils.NewPartitionMap(np, K)
		buckets = make([][][]faceRecord, np) // [source][destination]
		results = make([]groupResult, np)
		wg      sync.WaitGroup
	)
	// Each worker enumerates the faces of its cell range and routes every face
	// to the worker owning its key hash
	for n := 0; n < np; n++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			buckets[n] = c.enumerateFaces(m, pm.Partitions[n], np)
		}(n)
	}
	wg.Wait()
	// Each worker groups the faces routed to it, buckets are read only here
	for n := 0; n < np; n++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			results[n] = groupFaces(buckets, n)
		}(n)
	}
	wg.Wait()

	c.assemble(m, results)
	c.report(logger)
	return
}

func newConnectivity(m *Mesh) (c *Connectivity) {
	c = &Connectivity{
		Offsets: make([]int, len(m.Blocks)),
		blockOf: make(map[utils.CellType]int, len(m.Blocks)),
		pairs:   make(map[[2]int]int),
	}
	for bi, b := range m.Blocks {
		c.Offsets[bi] = len(c.Cells)
		c.blockOf[b.Type] = bi
		for i := range b.Cells {
			c.Cells = append(c.Cells, CellRef{Type: b.Type, Index: i})
		}
	}
	c.Neighbors = make([]map[utils.CellType][]int, len(c.Cells))
	c.neighborOrder = make([][]int, len(c.Cells))
	return
}

func (c *Connectivity) cellVertices(m *Mesh, flat int) []int {
	ref := c.Cells[flat]
	return m.Blocks[c.blockOf[ref.Type]].Cells[ref.Index]
}

func (c *Connectivity) enumerateFaces(m *Mesh, krange [2]int, np int) (out [][]faceRecord) {
	out = make([][]faceRecord, np)
	verts := make([]int, 4)
	for k := krange[0]; k < krange[1]; k++ {
		var (
			ct    = c.Cells[k].Type
			cell  = c.cellVertices(m, k)
			local int
		)
		for _, g := range faceCatalog[ct] {
			for _, lf := range g.Local {
				for i, l := range lf {
					verts[i] = cell[l]
				}
				key := NewFaceKey(verts[:len(lf)])
				dst := 0
				if np > 1 {
					dst = int(key.hash() % uint64(np))
				}
				out[dst] = append(out[dst], faceRecord{key: key, cell: k, local: local})
				local++
			}
		}
	}
	return
}

func (k FaceKey) hash() uint64 {
	var buf [len(k) * 8]byte
	for i, v := range k {
		binary.LittleEndian.PutUint64(buf[i*8:], uint64(v))
	}
	return xxhash.Sum64(buf[:])
}

// groupFaces collects the records routed to worker dst. Sources are visited in
// cell range order, so owners within a group ascend by (cell, local face).
func groupFaces(buckets [][][]faceRecord, dst int) (res groupResult) {
	groups := make(map[FaceKey][]faceOwner)
	for src := range buckets {
		for _, rec := range buckets[src][dst] {
			groups[rec.key] = append(groups[rec.key], faceOwner{rec.cell, rec.local})
		}
	}
	for key, owners := range groups {
		if len(owners) == 1 {
			res.boundary++
			continue
		}
		cells := distinctCells(owners)
		switch {
		case len(cells) == 1:
			res.diagnostics = append(res.diagnostics, Diagnostic{
				Kind:    DegenerateCell,
				Cell:    cells[0],
				Cells:   cells,
				Message: fmt.Sprintf("cell %d owns face %v %d times", cells[0], key.vertices(), len(owners)),
			})
		case len(owners) == 2:
			res.pairs = append(res.pairs, [2]faceOwner{owners[0], owners[1]})
		default:
			res.diagnostics = append(res.diagnostics, Diagnostic{
				Kind:    OverlappingFace,
				Cell:    cells[0],
				Cells:   cells,
				Message: fmt.Sprintf("face %v shared by cells %v, not connected", key.vertices(), cells),
			})
		}
	}
	return
}

func distinctCells(owners []faceOwner) (cells []int) {
	for _, o := range owners {
		if len(cells) == 0 || cells[len(cells)-1] != o.cell {
			cells = append(cells, o.cell)
		}
	}
	return
}

func (k FaceKey) vertices() []int {
	for i, v := range k {
		if v < 0 {
			return k[:i]
		}
	}
	return k[:]
}

func (c *Connectivity) assemble(m *Mesh, results []groupResult) {
	var pairs [][2]faceOwner
	for _, res := range results {
		pairs = append(pairs, res.pairs...)
		c.NumBoundaryFaces += res.boundary
		c.Diagnostics = append(c.Diagnostics, res.diagnostics...)
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i][0].cell != pairs[j][0].cell {
			return pairs[i][0].cell < pairs[j][0].cell
		}
		return pairs[i][0].local < pairs[j][0].local
	})

	type slot struct{ local, nbr int }
	slots := make([][]slot, len(c.Cells))
	for _, p := range pairs {
		a, b := p[0], p[1]
		pk := [2]int{a.cell, b.cell}
		if _, dup := c.pairs[pk]; dup {
			c.Diagnostics = append(c.Diagnostics, Diagnostic{
				Kind:    MultipleSharedFaces,
				Cell:    a.cell,
				Cells:   []int{a.cell, b.cell},
				Message: fmt.Sprintf("cells %d and %d share more than one face, possible duplicate cell", a.cell, b.cell),
			})
			continue
		}
		c.pairs[pk] = len(c.Interfaces)
		c.Interfaces = append(c.Interfaces, Interface{
			Cells: [2]int{a.cell, b.cell},
			Faces: [2]int{a.local, b.local},
			Face:  c.localFace(m, a.cell, a.local),
		})
		slots[a.cell] = append(slots[a.cell], slot{a.local, b.cell})
		slots[b.cell] = append(slots[b.cell], slot{b.local, a.cell})
	}

	for k, ss := range slots {
		if len(ss) == 0 {
			c.Diagnostics = append(c.Diagnostics, Diagnostic{
				Kind:    IsolatedCell,
				Cell:    k,
				Cells:   []int{k},
				Message: fmt.Sprintf("%s cell %d has no neighbors", c.Cells[k].Type, c.Cells[k].Index),
			})
			continue
		}
		sort.SliceStable(ss, func(i, j int) bool { return ss[i].local < ss[j].local })
		c.Neighbors[k] = make(map[utils.CellType][]int)
		c.neighborOrder[k] = make([]int, len(ss))
		for i, s := range ss {
			ref := c.Cells[s.nbr]
			c.Neighbors[k][ref.Type] = append(c.Neighbors[k][ref.Type], ref.Index)
			c.neighborOrder[k][i] = s.nbr
		}
	}

	sort.SliceStable(c.Diagnostics, func(i, j int) bool {
		di, dj := c.Diagnostics[i], c.Diagnostics[j]
		if di.Cell != dj.Cell {
			return di.Cell < dj.Cell
		}
		if di.Kind != dj.Kind {
			return di.Kind < dj.Kind
		}
		return di.Message < dj.Message
	})
}

func (c *Connectivity) localFace(m *Mesh, flat, local int) (f Face) {
	cell := c.cellVertices(m, flat)
	for _, g := range faceCatalog[c.Cells[flat].Type] {
		if local < len(g.Local) {
			f.Type = g.Type
			f.Vertices = make([]int, len(g.Local[local]))
			for i, l := range g.Local[local] {
				f.Vertices[i] = cell[l]
			}
			return
		}
		local -= len(g.Local)
	}
	return
}

func (c *Connectivity) report(logger logrus.FieldLogger) {
	for _, d := range c.Diagnostics {
		logger.WithFields(logrus.Fields{
			"kind":  d.Kind.String(),
			"cells": d.Cells,
		}).Warn(d.Message)
	}
	logger.WithFields(logrus.Fields{
		"cells":      len(c.Cells),
		"interfaces": len(c.Interfaces),
		"boundary":   c.NumBoundaryFaces,
	}).Debug("connectivity built")
}

// NumCells in the flat numbering
func (c *Connectivity) NumCells() int {
	return len(c.Cells)
}

// NumInterfaces is the number of interior faces
func (c *Connectivity) NumInterfaces() int {
	return len(c.Interfaces)
}

// BoundaryFaces is the number of faces owned by a single cell
func (c *Connectivity) BoundaryFaces() int {
	return c.NumBoundaryFaces
}

// FlatIndex of cell index of type ct
func (c *Connectivity) FlatIndex(ct utils.CellType, index int) (int, bool) {
	bi, ok := c.blockOf[ct]
	if !ok || index < 0 {
		return 0, false
	}
	flat := c.Offsets[bi] + index
	if flat >= len(c.Cells) || c.Cells[flat].Type != ct {
		return 0, false
	}
	return flat, true
}

// NeighborsOf returns the flat neighbors of a cell in local face order
func (c *Connectivity) NeighborsOf(flat int) []int {
	return c.neighborOrder[flat]
}

// SharedFace returns the interface between two cells, in either order
func (c *Connectivity) SharedFace(a, b int) (Interface, bool) {
	if idx, ok := c.pairs[[2]int{a, b}]; ok {
		return c.Interfaces[idx], true
	}
	if idx, ok := c.pairs[[2]int{b, a}]; ok {
		return c.Interfaces[idx], true
	}
	return Interface{}, false
}

// IsolatedCells lists the flat cells with no neighbor
func (c *Connectivity) IsolatedCells() (cells []int) {
	for k, nbrs := range c.neighborOrder {
		if len(nbrs) == 0 {
			cells = append(cells, k)
		}
	}
	return
}
