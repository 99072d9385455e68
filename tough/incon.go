package tough

import (
	"bufio"
	"fmt"
	"io"

	"github.com/notargets/toughgrid/mesh"
)

// InconFields names the per cell fields of the INCON block
type InconFields struct {
	Porosity  string   // Optional porosity field, blank porosity when absent
	Variables []string // Primary variable fields, in output order
}

// WriteIncon writes initial conditions from per cell data fields, elements
// in ELEME order. Every variable field must exist on every block.
func (bw *BlockWriter) WriteIncon(w io.Writer, fields InconFields) (err error) {
	if len(fields.Variables) == 0 {
		return fmt.Errorf("%w: no primary variable fields", mesh.ErrInvalidMesh)
	}
	for _, b := range bw.m.Blocks {
		for _, name := range fields.Variables {
			if _, ok := b.Data[name]; !ok && len(b.Cells) != 0 {
				return fmt.Errorf("%w: %s block has no field %q", mesh.ErrInvalidMesh, b.Type, name)
			}
		}
	}

	bufw := bufio.NewWriter(w)
	if _, err = fmt.Fprintln(bufw, Ruler("INCON")); err != nil {
		return
	}
	for _, k := range bw.elementOrder() {
		ref := bw.conn.Cells[k]
		b, _ := bw.m.Block(ref.Type)
		if por, ok := b.Data[fields.Porosity]; ok && fields.Porosity != "" {
			_, err = fmt.Fprintf(bufw, "%-5.5s%5s%5s%15.9e\n", bw.labels[k], "", "", por[ref.Index])
		} else {
			_, err = fmt.Fprintf(bufw, "%-5.5s%5s%5s%15s\n", bw.labels[k], "", "", "")
		}
		if err != nil {
			return
		}
		for _, name := range fields.Variables {
			if _, err = fmt.Fprintf(bufw, "%20.13e", b.Data[name][ref.Index]); err != nil {
				return
			}
		}
		if _, err = fmt.Fprintln(bufw); err != nil {
			return
		}
	}
	_, err = fmt.Fprintln(bufw)
	return flushed(bufw, err)
}

// elementOrder is the flat cell order of the ELEME block
func (bw *BlockWriter) elementOrder() []int {
	order := make([]int, 0, len(bw.labels))
	var deferred []int
	for k := range bw.labels {
		if bw.volumes[k] == 0 {
			deferred = append(deferred, k)
			continue
		}
		order = append(order, k)
	}
	return append(order, deferred...)
}
