package tough

import (
	"bufio"
	"fmt"
	"io"
)

// WriteEleme writes the ELEME block, zero volume cells after all others
func (bw *BlockWriter) WriteEleme(w io.Writer) (err error) {
	bufw := bufio.NewWriter(w)
	if _, err = fmt.Fprintln(bufw, Ruler("ELEME")); err != nil {
		return
	}
	order := bw.elementOrder()
	for _, k := range order {
		if err = bw.writeElement(bufw, k); err != nil {
			return
		}
	}
	_, err = fmt.Fprintln(bufw)
	bw.logger.Debugf("wrote %d elements", len(order))
	return flushed(bufw, err)
}

func (bw *BlockWriter) writeElement(w io.Writer, k int) (err error) {
	var (
		c   = bw.centers[k]
		mat = bw.materialField(k)
	)
	_, err = fmt.Fprintf(w, "%-5.5s%5s%5s%s%10.4e%10s%10s%10.3e%10.3e%10.3e\n",
		bw.labels[k], "", "", mat, bw.volumes[k], "", "",
		noNegativeZero(c.X), noNegativeZero(c.Y), noNegativeZero(c.Z))
	return
}

// Material of a flat cell, the default when the cell carries none
func (bw *BlockWriter) Material(k int) int {
	ref := bw.conn.Cells[k]
	b, _ := bw.m.Block(ref.Type)
	if len(b.Material) == 0 || b.Material[ref.Index] <= 0 {
		return bw.opts.DefaultMaterial
	}
	return b.Material[ref.Index]
}

// materialField is the symbolic rock name when one is known, else the id
func (bw *BlockWriter) materialField(k int) string {
	id := bw.Material(k)
	if name, ok := bw.m.MaterialNames[id]; ok && name != "" {
		return fmt.Sprintf("%-5.5s", name)
	}
	return fmt.Sprintf("%5d", id)
}
