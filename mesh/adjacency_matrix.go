package mesh

import (
	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/mat"
)

// Matrix returns the cell to cell adjacency as a sparse matrix in flat
// numbering, with a 1 for every directed neighbor entry. Nil for an empty mesh.
func (c *Connectivity) Matrix() *sparse.CSR {
	K := len(c.Cells)
	if K == 0 {
		return nil
	}
	dok := sparse.NewDOK(K, K)
	for k, nbrs := range c.neighborOrder {
		for _, nbr := range nbrs {
			dok.Set(k, nbr, 1)
		}
	}
	return dok.ToCSR()
}

// IsSymmetric checks that every neighbor entry has its reverse
func (c *Connectivity) IsSymmetric() bool {
	A := c.Matrix()
	if A == nil {
		return true
	}
	return mat.Equal(A, A.T())
}

// Degrees counts cells by number of neighbors
func (c *Connectivity) Degrees() map[int]int {
	histo := make(map[int]int)
	for _, nbrs := range c.neighborOrder {
		histo[len(nbrs)]++
	}
	return histo
}
