package tough

import (
	"errors"
	"fmt"

	"github.com/notargets/toughgrid/mesh"
)

const (
	alpha = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	nomen = "123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	// MaxLabels is the number of distinct 5 character element labels
	MaxLabels = len(alpha) * len(nomen) * len(nomen) * 100
)

// ErrLabelOverflow is returned for an element counter past MaxLabels
var ErrLabelOverflow = errors.New("element label overflow")

// Label encodes a counter as a 5 character element name. The two low digits
// cycle 00-99, the next two characters cycle 1-9 then A-Z and the leading one
// cycles A-Z, so 0 is "A1100", 99 is "A1199" and 100 is "A1200".
func Label(i int) (string, error) {
	if i < 0 || i >= MaxLabels {
		return "", fmt.Errorf("%w: counter %d, capacity %d", ErrLabelOverflow, i, MaxLabels)
	}
	var (
		q1, r1 = i / 100, i % 100
		q2, r2 = q1 / len(nomen), q1 % len(nomen)
		q3     = q2 / len(nomen)
	)
	return fmt.Sprintf("%c%c%c%02d",
		alpha[q3%len(alpha)], nomen[q2%len(nomen)], nomen[r2], r1), nil
}

// Labels names every cell of m in flat order: blocks in mesh order, then cell
// index ascending
func Labels(m *mesh.Mesh) (labels []string, err error) {
	n := m.NumCells()
	if n > MaxLabels {
		return nil, fmt.Errorf("%w: mesh has %d cells, capacity %d", ErrLabelOverflow, n, MaxLabels)
	}
	labels = make([]string, n)
	for i := range labels {
		if labels[i], err = Label(i); err != nil {
			return nil, err
		}
	}
	return
}
