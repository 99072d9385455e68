package mesh

import (
	"fmt"
	"io"
	"sort"
)

// PrintStatistics writes mesh and connectivity statistics
func (c *Connectivity) PrintStatistics(w io.Writer, m *Mesh) {
	fmt.Fprintf(w, "Mesh Statistics:\n")
	fmt.Fprintf(w, "  Points: %d\n", m.NumPoints())
	fmt.Fprintf(w, "  Cells: %d\n", c.NumCells())

	fmt.Fprintf(w, "  Cell types:\n")
	for _, b := range m.Blocks {
		fmt.Fprintf(w, "    %s: %d\n", b.Type, len(b.Cells))
	}

	fmt.Fprintf(w, "  Interior faces: %d\n", len(c.Interfaces))
	fmt.Fprintf(w, "  Boundary faces: %d\n", c.NumBoundaryFaces)

	degrees := c.Degrees()
	keys := make([]int, 0, len(degrees))
	for k := range degrees {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	fmt.Fprintf(w, "  Neighbor counts:\n")
	for _, k := range keys {
		fmt.Fprintf(w, "    %d neighbors: %d cells\n", k, degrees[k])
	}

	counts := make(map[DiagnosticKind]int)
	for _, d := range c.Diagnostics {
		counts[d.Kind]++
	}
	if len(counts) != 0 {
		fmt.Fprintf(w, "  Diagnostics:\n")
		for kind := IsolatedCell; kind <= MissingMaterialMetadata; kind++ {
			if counts[kind] != 0 {
				fmt.Fprintf(w, "    %s: %d\n", kind, counts[kind])
			}
		}
	}
	fmt.Fprintf(w, "  Symmetric: %v\n", c.IsSymmetric())
}
