package readers

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/notargets/toughgrid/mesh"
	"github.com/notargets/toughgrid/utils"
)

// gambitCellType maps Gambit NTYPE codes to cell types
var gambitCellType = map[int]utils.CellType{
	2: utils.Quad,
	3: utils.Triangle,
	4: utils.Hexahedron,
	5: utils.Wedge,
	6: utils.Tetra,
	7: utils.Pyramid,
}

// gambitNodeOrder permutes Gambit node order into our vertex order. Gambit
// numbers brick and pyramid base nodes lexicographically.
var gambitNodeOrder = map[utils.CellType][]int{
	utils.Hexahedron: {0, 1, 3, 2, 4, 5, 7, 6},
	utils.Pyramid:    {0, 1, 3, 2, 4},
}

type gambitCell struct {
	id    int
	ctype utils.CellType
	nodes []int
}

// ReadGambitNeutral reads a Gambit neutral file (.neu). Element groups become
// materials: the group MATERIAL number is the material id and the group name
// its symbolic name.
func ReadGambitNeutral(filename string) (*mesh.Mesh, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	msh, err := ParseGambitNeutral(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	logSummary(filename, msh)
	return msh, nil
}

// ParseGambitNeutral reads Gambit neutral content
func ParseGambitNeutral(r io.Reader) (*mesh.Mesh, error) {
	var (
		msh              = mesh.NewMesh()
		scanner          = bufio.NewScanner(r)
		numnp, nelem     int
		ngrps            int
		haveControl      bool
		cells            []gambitCell
		materialOf       = make(map[int]int) // element ID -> material
		skippedCells     int
	)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		switch {
		case strings.Contains(line, "NUMNP") && strings.Contains(line, "NELEM"):
			if !scanner.Scan() {
				return nil, fmt.Errorf("unexpected EOF after control header")
			}
			values := strings.Fields(scanner.Text())
			if len(values) < 3 {
				return nil, fmt.Errorf("invalid control line: %q", scanner.Text())
			}
			numnp, _ = strconv.Atoi(values[0])
			nelem, _ = strconv.Atoi(values[1])
			ngrps, _ = strconv.Atoi(values[2])
			haveControl = true

		case strings.Contains(line, "NODAL COORDINATES"):
			if !haveControl {
				return nil, fmt.Errorf("nodal coordinates before control info")
			}
			for i := 0; i < numnp; i++ {
				if !scanner.Scan() {
					return nil, fmt.Errorf("unexpected EOF reading nodes")
				}
				fields := strings.Fields(scanner.Text())
				if len(fields) < 3 {
					return nil, fmt.Errorf("invalid node line: %q", scanner.Text())
				}
				var (
					nodeID, err = strconv.Atoi(fields[0])
					xyz         [3]float64
				)
				if err != nil {
					return nil, fmt.Errorf("invalid node ID: %w", err)
				}
				// 2D files carry two coordinates
				for j := 1; j < len(fields) && j <= 3; j++ {
					if xyz[j-1], err = strconv.ParseFloat(fields[j], 64); err != nil {
						return nil, fmt.Errorf("node %d: invalid coordinate: %w", nodeID, err)
					}
				}
				msh.AddNode(nodeID, xyz[0], xyz[1], xyz[2])
			}

		case strings.Contains(line, "ELEMENTS/CELLS"):
			for i := 0; i < nelem; i++ {
				cell, ok, err := readGambitCell(scanner)
				if err != nil {
					return nil, err
				}
				if !ok {
					skippedCells++
					continue
				}
				cells = append(cells, cell)
			}

		case strings.Contains(line, "ELEMENT GROUP"):
			if err := readGambitGroup(scanner, msh, materialOf); err != nil {
				return nil, err
			}
			ngrps--
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading file: %v", err)
	}
	if !haveControl {
		return nil, fmt.Errorf("missing CONTROL INFO section")
	}
	if ngrps > 0 {
		log.Warnf("%d element groups announced but not found", ngrps)
	}
	if skippedCells > 0 {
		log.Debugf("skipped %d edge or unknown elements", skippedCells)
	}

	for _, c := range cells {
		if err := msh.AddCell(c.ctype, c.nodes, materialOf[c.id]); err != nil {
			return nil, fmt.Errorf("element %d: %w", c.id, err)
		}
	}
	dropUnsetMaterials(msh)
	return msh, nil
}

// readGambitCell reads one element record, which may continue over several
// lines when it has more than 7 nodes. ok is false for unsupported types.
func readGambitCell(scanner *bufio.Scanner) (cell gambitCell, ok bool, err error) {
	if !scanner.Scan() {
		err = fmt.Errorf("unexpected EOF reading elements")
		return
	}
	fields := strings.Fields(scanner.Text())
	if len(fields) < 3 {
		err = fmt.Errorf("invalid element line: %q", scanner.Text())
		return
	}
	cell.id, _ = strconv.Atoi(fields[0])
	ntype, _ := strconv.Atoi(fields[1])
	ndp, _ := strconv.Atoi(fields[2])
	nodes := fields[3:]
	for len(nodes) < ndp {
		if !scanner.Scan() {
			err = fmt.Errorf("unexpected EOF reading element %d nodes", cell.id)
			return
		}
		nodes = append(nodes, strings.Fields(scanner.Text())...)
	}

	if cell.ctype, ok = gambitCellType[ntype]; !ok {
		return
	}
	if ndp != cell.ctype.GetNumNodes() {
		err = fmt.Errorf("element %d: %s with %d nodes", cell.id, cell.ctype, ndp)
		return
	}
	ids := make([]int, ndp)
	for j := 0; j < ndp; j++ {
		if ids[j], err = strconv.Atoi(nodes[j]); err != nil {
			err = fmt.Errorf("element %d: invalid node ID: %w", cell.id, err)
			return
		}
	}
	cell.nodes = ids
	if order, reorder := gambitNodeOrder[cell.ctype]; reorder {
		cell.nodes = make([]int, ndp)
		for j, o := range order {
			cell.nodes[j] = ids[o]
		}
	}
	return
}

// readGambitGroup reads one ELEMENT GROUP section
func readGambitGroup(scanner *bufio.Scanner, msh *mesh.Mesh, materialOf map[int]int) error {
	if !scanner.Scan() {
		return fmt.Errorf("unexpected EOF in element group")
	}
	var (
		groupLine                     = strings.TrimSpace(scanner.Text())
		parts                         = strings.Fields(groupLine)
		groupID, numElems, materialID int
		nflags                        int
	)
	if !strings.HasPrefix(groupLine, "GROUP:") {
		return fmt.Errorf("expected GROUP: line, got %q", groupLine)
	}
	for i := 0; i < len(parts)-1; i++ {
		switch parts[i] {
		case "GROUP:":
			groupID, _ = strconv.Atoi(parts[i+1])
		case "ELEMENTS:":
			numElems, _ = strconv.Atoi(parts[i+1])
		case "MATERIAL:":
			materialID, _ = strconv.Atoi(parts[i+1])
		case "NFLAGS:":
			nflags, _ = strconv.Atoi(parts[i+1])
		}
	}
	// Groups without a material number use the group ID
	if materialID <= 0 {
		materialID = groupID
	}

	if !scanner.Scan() {
		return fmt.Errorf("unexpected EOF reading group %d name", groupID)
	}
	name := strings.TrimSpace(scanner.Text())
	if _, ok := msh.MaterialNames[materialID]; !ok && name != "" {
		msh.MaterialNames[materialID] = name
	}

	if nflags > 0 && !scanner.Scan() {
		return fmt.Errorf("unexpected EOF reading group %d flags", groupID)
	}

	for read := 0; read < numElems; {
		if !scanner.Scan() {
			return fmt.Errorf("unexpected EOF reading group %d elements", groupID)
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "ENDOFSECTION" {
			return fmt.Errorf("group %d: %d of %d elements listed", groupID, read, numElems)
		}
		for _, field := range strings.Fields(line) {
			elemID, err := strconv.Atoi(field)
			if err != nil {
				return fmt.Errorf("group %d: invalid element ID %q", groupID, field)
			}
			materialOf[elemID] = materialID
			read++
		}
	}
	return nil
}
