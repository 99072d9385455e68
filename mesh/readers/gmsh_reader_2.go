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

// gmshElementType maps Gmsh element type numbers, shared by 2.2 and 4.1, to
// cell types
var gmshElementType = map[int]utils.CellType{
	1: utils.Line,       // 2-node line
	2: utils.Triangle,   // 3-node triangle
	3: utils.Quad,       // 4-node quadrangle
	4: utils.Tetra,      // 4-node tetrahedron
	5: utils.Hexahedron, // 8-node hexahedron
	6: utils.Wedge,      // 6-node prism
	7: utils.Pyramid,    // 5-node pyramid
}

type gmshElement struct {
	id       int
	ctype    utils.CellType
	physical int
	nodeIDs  []int
}

type physicalName struct {
	dim  int
	name string
}

// ReadGmsh22 reads a Gmsh MSH file format version 2.2. Only elements of the
// highest dimension present become cells; their physical tag is the material
// and $PhysicalNames of that dimension supply the material names.
func ReadGmsh22(filename string) (*mesh.Mesh, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	msh, err := ParseGmsh22(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	logSummary(filename, msh)
	return msh, nil
}

// ParseGmsh22 reads Gmsh 2.2 ASCII content
func ParseGmsh22(r io.Reader) (*mesh.Mesh, error) {
	var (
		scanner  = bufio.NewScanner(r)
		msh      = mesh.NewMesh()
		names    = make(map[int]physicalName)
		elements []gmshElement
		err      error
	)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch line {
		case "$MeshFormat":
			err = readMeshFormat22(scanner)
		case "$PhysicalNames":
			err = readPhysicalNames(scanner, names)
		case "$Nodes":
			err = readNodes22(scanner, msh)
		case "$Elements":
			elements, err = readElements22(scanner)
		default:
			// Skip $Periodic, data and unknown sections
			if strings.HasPrefix(line, "$") && !strings.HasPrefix(line, "$End") {
				skipSection(scanner, "$End"+line[1:])
			}
		}
		if err != nil {
			return nil, err
		}
	}
	if err = scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanner error: %v", err)
	}

	return assembleGmsh(msh, elements, names)
}

// assembleGmsh adds the elements of the highest dimension as cells, their
// physical tag is the material
func assembleGmsh(msh *mesh.Mesh, elements []gmshElement, names map[int]physicalName) (*mesh.Mesh, error) {
	dim := 0
	for _, e := range elements {
		if d := e.ctype.GetDimension(); d > dim {
			dim = d
		}
	}
	if dim < 2 {
		return nil, fmt.Errorf("no 2D or 3D elements found")
	}
	var lower int
	for _, e := range elements {
		if e.ctype.GetDimension() != dim {
			lower++
			continue
		}
		if err := msh.AddCell(e.ctype, e.nodeIDs, e.physical); err != nil {
			return nil, fmt.Errorf("element %d: %w", e.id, err)
		}
	}
	if lower > 0 {
		log.Debugf("skipped %d elements below dimension %d", lower, dim)
	}
	for tag, pn := range names {
		if pn.dim == dim {
			msh.MaterialNames[tag] = pn.name
		}
	}
	dropUnsetMaterials(msh)
	return msh, nil
}

func skipSection(scanner *bufio.Scanner, endMarker string) {
	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) == endMarker {
			return
		}
	}
}

// readMeshFormat22 reads the MeshFormat section
func readMeshFormat22(scanner *bufio.Scanner) error {
	if !scanner.Scan() {
		return fmt.Errorf("unexpected EOF in MeshFormat")
	}
	parts := strings.Fields(scanner.Text())
	if len(parts) < 3 {
		return fmt.Errorf("invalid MeshFormat line")
	}
	if !strings.HasPrefix(parts[0], "2.") {
		return fmt.Errorf("unsupported Gmsh format version: %s", parts[0])
	}
	if fileType, _ := strconv.Atoi(parts[1]); fileType != 0 {
		return fmt.Errorf("binary Gmsh files are not supported")
	}
	skipSection(scanner, "$EndMeshFormat")
	return nil
}

// readPhysicalNames reads physical group names
func readPhysicalNames(scanner *bufio.Scanner, names map[int]physicalName) error {
	if !scanner.Scan() {
		return fmt.Errorf("unexpected EOF in PhysicalNames")
	}
	numNames, _ := strconv.Atoi(strings.TrimSpace(scanner.Text()))

	for i := 0; i < numNames; i++ {
		if !scanner.Scan() {
			return fmt.Errorf("unexpected EOF reading physical names")
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) < 3 {
			return fmt.Errorf("invalid physical name line: %q", scanner.Text())
		}
		dimension, _ := strconv.Atoi(parts[0])
		tag, _ := strconv.Atoi(parts[1])
		// Names may contain spaces
		name := strings.Trim(strings.Join(parts[2:], " "), "\"")
		names[tag] = physicalName{dim: dimension, name: name}
	}
	skipSection(scanner, "$EndPhysicalNames")
	return nil
}

// readNodes22 reads nodes in v2.2 format
func readNodes22(scanner *bufio.Scanner, msh *mesh.Mesh) error {
	if !scanner.Scan() {
		return fmt.Errorf("unexpected EOF in Nodes")
	}
	numNodes, _ := strconv.Atoi(strings.TrimSpace(scanner.Text()))

	for i := 0; i < numNodes; i++ {
		if !scanner.Scan() {
			return fmt.Errorf("unexpected EOF reading nodes")
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) < 4 {
			return fmt.Errorf("invalid node line: %s", scanner.Text())
		}
		nodeID, err := strconv.Atoi(parts[0])
		if err != nil {
			return fmt.Errorf("invalid node ID: %w", err)
		}
		var xyz [3]float64
		for j := range xyz {
			if xyz[j], err = strconv.ParseFloat(parts[1+j], 64); err != nil {
				return fmt.Errorf("node %d: invalid coordinate: %w", nodeID, err)
			}
		}
		msh.AddNode(nodeID, xyz[0], xyz[1], xyz[2])
	}
	skipSection(scanner, "$EndNodes")
	return nil
}

// readElements22 reads elements in v2.2 format, unsupported types are skipped
func readElements22(scanner *bufio.Scanner) (elements []gmshElement, err error) {
	if !scanner.Scan() {
		return nil, fmt.Errorf("unexpected EOF in Elements")
	}
	numElements, _ := strconv.Atoi(strings.TrimSpace(scanner.Text()))
	elements = make([]gmshElement, 0, numElements)

	for i := 0; i < numElements; i++ {
		if !scanner.Scan() {
			return nil, fmt.Errorf("unexpected EOF reading elements")
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) < 4 {
			return nil, fmt.Errorf("invalid element line: %q", scanner.Text())
		}

		elemID, _ := strconv.Atoi(parts[0])
		elemType, _ := strconv.Atoi(parts[1])
		numTags, _ := strconv.Atoi(parts[2])
		if len(parts) < 3+numTags {
			return nil, fmt.Errorf("element %d: invalid element tags", elemID)
		}

		etype, ok := gmshElementType[elemType]
		if !ok {
			continue
		}
		e := gmshElement{id: elemID, ctype: etype}
		if numTags > 0 {
			e.physical, _ = strconv.Atoi(parts[3])
		}

		expectedNodes := etype.GetNumNodes()
		nodeStart := 3 + numTags
		if len(parts) < nodeStart+expectedNodes {
			return nil, fmt.Errorf("element %d: expected %d nodes, got %d",
				elemID, expectedNodes, len(parts)-nodeStart)
		}
		e.nodeIDs = make([]int, expectedNodes)
		for j := range e.nodeIDs {
			if e.nodeIDs[j], err = strconv.Atoi(parts[nodeStart+j]); err != nil {
				return nil, fmt.Errorf("element %d: invalid node ID: %w", elemID, err)
			}
		}
		elements = append(elements, e)
	}
	skipSection(scanner, "$EndElements")
	return elements, nil
}
