package tough

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/toughgrid/geometry"
	"github.com/notargets/toughgrid/mesh"
	"github.com/notargets/toughgrid/utils"
)

var log = utils.NamedLogger("tough")

// RulerWidth is the width of the header line framing every block
const RulerWidth = 78

// IsotRule selects the anisotropy direction code of a connection
type IsotRule int

const (
	// IsotDominant picks the axis with the largest centre to centre component,
	// ties resolve X, then Y, then Z
	IsotDominant IsotRule = iota
	// IsotFirstNonZero picks the first axis, in X, Y, Z order, along which
	// the centre to centre vector has a non zero component
	IsotFirstNonZero
)

// Options tune the block writer, the zero value is usable
type Options struct {
	RotationAngle   float64 // Degrees about X applied to connection lines before BETAX
	Isot            IsotRule
	DefaultMaterial int                // Material id for cells without one, 0 means 1
	Workers         int                // Parallel degree, <= 0 means one per CPU
	Logger          logrus.FieldLogger // nil uses the package logger
}

// BlockWriter renders the MESH blocks of one mesh. Geometry, labels and
// connectivity are computed once by NewBlockWriter.
type BlockWriter struct {
	m       *mesh.Mesh
	conn    *mesh.Connectivity
	opts    Options
	logger  logrus.FieldLogger
	labels  []string
	centers []r3.Vec
	volumes []float64

	diagnostics []mesh.Diagnostic
}

// NewBlockWriter validates m, builds its connectivity and computes the cell
// geometry. Planar meshes are rejected, extrude them first.
func NewBlockWriter(m *mesh.Mesh, opts *Options) (bw *BlockWriter, err error) {
	if opts == nil {
		opts = &Options{}
	}
	bw = &BlockWriter{m: m, opts: *opts, logger: opts.Logger}
	if bw.logger == nil {
		bw.logger = log
	}
	if bw.opts.DefaultMaterial <= 0 {
		bw.opts.DefaultMaterial = 1
	}
	for _, b := range m.Blocks {
		if !b.Type.IsSolid() {
			return nil, fmt.Errorf("%w: %s cells have no volume, extrude the mesh first",
				mesh.ErrUnsupportedCellType, b.Type)
		}
	}
	if bw.conn, err = mesh.BuildConnectivity(m, &mesh.BuildOptions{
		Workers: opts.Workers,
		Logger:  bw.logger,
	}); err != nil {
		return nil, err
	}
	if bw.labels, err = Labels(m); err != nil {
		return nil, err
	}
	if err = bw.computeGeometry(); err != nil {
		return nil, err
	}
	bw.diagnostics = append(bw.diagnostics, bw.conn.Diagnostics...)
	bw.checkMaterials()
	return bw, nil
}

func (bw *BlockWriter) computeGeometry() error {
	var (
		K    = bw.conn.NumCells()
		np   = utils.ParallelDegreeFor(bw.opts.Workers, K)
		pm   = utils.NewPartitionMap(np, K)
		errs = make([]error, np)
		wg   sync.WaitGroup
	)
	bw.centers = make([]r3.Vec, K)
	bw.volumes = make([]float64, K)
	if K == 0 {
		return nil
	}
	for n := 0; n < np; n++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for k := pm.Partitions[n][0]; k < pm.Partitions[n][1]; k++ {
				pts := bw.m.CellPoints(bw.cell(k))
				bw.centers[k] = geometry.Centroid(pts)
				vol, err := geometry.Volume(pts, bw.conn.Cells[k].Type)
				if err != nil {
					errs[n] = err
					return
				}
				bw.volumes[k] = vol
			}
		}(n)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func (bw *BlockWriter) cell(flat int) []int {
	ref := bw.conn.Cells[flat]
	b, _ := bw.m.Block(ref.Type)
	return b.Cells[ref.Index]
}

func (bw *BlockWriter) checkMaterials() {
	for _, b := range bw.m.Blocks {
		if len(b.Cells) == 0 {
			continue
		}
		var missing int
		if len(b.Material) == 0 {
			missing = len(b.Cells)
		} else {
			for _, mat := range b.Material {
				if mat <= 0 {
					missing++
				}
			}
		}
		if missing == 0 {
			continue
		}
		d := mesh.Diagnostic{
			Kind: mesh.MissingMaterialMetadata,
			Cell: -1,
			Message: fmt.Sprintf("%d of %d %s cells have no material, using %d",
				missing, len(b.Cells), b.Type, bw.opts.DefaultMaterial),
		}
		bw.diagnostics = append(bw.diagnostics, d)
		bw.logger.WithField("kind", d.Kind.String()).Warn(d.Message)
	}
}

// Diagnostics collects the connectivity and material findings
func (bw *BlockWriter) Diagnostics() []mesh.Diagnostic {
	return bw.diagnostics
}

// Connectivity the blocks are written from
func (bw *BlockWriter) Connectivity() *mesh.Connectivity {
	return bw.conn
}

// Label of a flat cell
func (bw *BlockWriter) Label(flat int) string {
	return bw.labels[flat]
}

// Volume of a flat cell
func (bw *BlockWriter) Volume(flat int) float64 {
	return bw.volumes[flat]
}

// Center of a flat cell, the mean of its points
func (bw *BlockWriter) Center(flat int) r3.Vec {
	return bw.centers[flat]
}

// Ruler returns the header line of a block, keyword followed by a column
// scale to RulerWidth characters
func Ruler(keyword string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-5.5s", keyword))
	for p := 6; p <= RulerWidth; p++ {
		switch {
		case p%10 == 0:
			sb.WriteByte(byte('0' + p/10))
		case p%10 == 5:
			sb.WriteByte('*')
		default:
			sb.WriteByte('-')
		}
	}
	return sb.String()
}

// WriteMesh writes the ELEME block followed by the CONNE block
func (bw *BlockWriter) WriteMesh(w io.Writer) error {
	if err := bw.WriteEleme(w); err != nil {
		return err
	}
	return bw.WriteConne(w)
}

// WriteMesh converts m and writes its ELEME and CONNE blocks
func WriteMesh(w io.Writer, m *mesh.Mesh, opts *Options) (*BlockWriter, error) {
	bw, err := NewBlockWriter(m, opts)
	if err != nil {
		return nil, err
	}
	return bw, bw.WriteMesh(w)
}

func flushed(bufw *bufio.Writer, err error) error {
	if err != nil {
		return err
	}
	return bufw.Flush()
}

// noNegativeZero maps -0 to 0 so it prints without a sign
func noNegativeZero(v float64) float64 {
	if v == 0 {
		return 0
	}
	return v
}
