package readers

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/notargets/toughgrid/mesh"
)

// entityKey identifies a geometric entity, tags are unique per dimension
type entityKey struct {
	dim, tag int
}

// ReadGmsh4 reads a Gmsh MSH file format version 4.1. Elements take the
// first physical tag of their entity as material, otherwise it follows the
// 2.2 reader.
func ReadGmsh4(filename string) (*mesh.Mesh, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	msh, err := ParseGmsh4(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	logSummary(filename, msh)
	return msh, nil
}

// ParseGmsh4 reads Gmsh 4.1 ASCII content
func ParseGmsh4(r io.Reader) (*mesh.Mesh, error) {
	var (
		scanner  = bufio.NewScanner(r)
		msh      = mesh.NewMesh()
		names    = make(map[int]physicalName)
		physical = make(map[entityKey]int)
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
			err = readMeshFormat4(scanner)
		case "$PhysicalNames":
			err = readPhysicalNames(scanner, names)
		case "$Entities":
			err = readEntities4(scanner, physical)
		case "$Nodes":
			err = readNodes4(scanner, msh)
		case "$Elements":
			elements, err = readElements4(scanner, physical)
		default:
			// $PartitionedEntities, $Periodic, $GhostElements and data sections
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

func readMeshFormat4(scanner *bufio.Scanner) error {
	if !scanner.Scan() {
		return fmt.Errorf("unexpected EOF in MeshFormat")
	}
	parts := strings.Fields(scanner.Text())
	if len(parts) < 3 {
		return fmt.Errorf("invalid MeshFormat line")
	}
	if parts[0] != "4.1" {
		return fmt.Errorf("unsupported Gmsh format version: %s, export as 4.1 or 2.2", parts[0])
	}
	if fileType, _ := strconv.Atoi(parts[1]); fileType != 0 {
		return fmt.Errorf("binary Gmsh files are not supported")
	}
	skipSection(scanner, "$EndMeshFormat")
	return nil
}

// readEntities4 records the first physical tag of every entity carrying one.
// Point entities have 4 leading fields, the others 7 (tag and bounding box).
func readEntities4(scanner *bufio.Scanner, physical map[entityKey]int) error {
	if !scanner.Scan() {
		return fmt.Errorf("unexpected EOF in Entities")
	}
	counts := strings.Fields(scanner.Text())
	if len(counts) < 4 {
		return fmt.Errorf("invalid entity counts: %q", scanner.Text())
	}
	for dim := 0; dim < 4; dim++ {
		num, err := strconv.Atoi(counts[dim])
		if err != nil {
			return fmt.Errorf("invalid entity count: %w", err)
		}
		lead := 7
		if dim == 0 {
			lead = 4
		}
		for i := 0; i < num; i++ {
			if !scanner.Scan() {
				return fmt.Errorf("unexpected EOF reading dimension %d entities", dim)
			}
			fields := strings.Fields(scanner.Text())
			if len(fields) < lead+1 {
				return fmt.Errorf("invalid entity line: %q", scanner.Text())
			}
			tag, _ := strconv.Atoi(fields[0])
			numPhysical, _ := strconv.Atoi(fields[lead])
			if numPhysical > 0 && len(fields) > lead+1 {
				phys, _ := strconv.Atoi(fields[lead+1])
				// Negative tags mark an orientation, the group is the same
				if phys < 0 {
					phys = -phys
				}
				physical[entityKey{dim, tag}] = phys
			}
		}
	}
	skipSection(scanner, "$EndEntities")
	return nil
}

// readNodes4 reads the node blocks, each lists its tags then its coordinates
func readNodes4(scanner *bufio.Scanner, msh *mesh.Mesh) error {
	if !scanner.Scan() {
		return fmt.Errorf("unexpected EOF in Nodes")
	}
	// numEntityBlocks numNodes minNodeTag maxNodeTag
	header := strings.Fields(scanner.Text())
	if len(header) < 4 {
		return fmt.Errorf("invalid Nodes header: %q", scanner.Text())
	}
	numBlocks, _ := strconv.Atoi(header[0])

	for i := 0; i < numBlocks; i++ {
		if !scanner.Scan() {
			return fmt.Errorf("unexpected EOF in node block %d", i)
		}
		// entityDim entityTag parametric numNodesInBlock
		blockHeader := strings.Fields(scanner.Text())
		if len(blockHeader) < 4 {
			return fmt.Errorf("invalid node block header: %q", scanner.Text())
		}
		numNodes, _ := strconv.Atoi(blockHeader[3])

		tags := make([]int, numNodes)
		for j := range tags {
			if !scanner.Scan() {
				return fmt.Errorf("unexpected EOF reading node tags")
			}
			var err error
			if tags[j], err = strconv.Atoi(strings.TrimSpace(scanner.Text())); err != nil {
				return fmt.Errorf("invalid node tag: %w", err)
			}
		}
		for j := range tags {
			if !scanner.Scan() {
				return fmt.Errorf("unexpected EOF reading node coordinates")
			}
			fields := strings.Fields(scanner.Text())
			if len(fields) < 3 {
				return fmt.Errorf("invalid node line: %s", scanner.Text())
			}
			// Parametric coordinates, when present, follow xyz
			var (
				xyz [3]float64
				err error
			)
			for k := range xyz {
				if xyz[k], err = strconv.ParseFloat(fields[k], 64); err != nil {
					return fmt.Errorf("node %d: invalid coordinate: %w", tags[j], err)
				}
			}
			msh.AddNode(tags[j], xyz[0], xyz[1], xyz[2])
		}
	}
	skipSection(scanner, "$EndNodes")
	return nil
}

// readElements4 reads the element blocks, unsupported types are skipped
func readElements4(scanner *bufio.Scanner, physical map[entityKey]int) (elements []gmshElement, err error) {
	if !scanner.Scan() {
		return nil, fmt.Errorf("unexpected EOF in Elements")
	}
	// numEntityBlocks numElements minElementTag maxElementTag
	header := strings.Fields(scanner.Text())
	if len(header) < 4 {
		return nil, fmt.Errorf("invalid Elements header: %q", scanner.Text())
	}
	numBlocks, _ := strconv.Atoi(header[0])
	numElements, _ := strconv.Atoi(header[1])
	elements = make([]gmshElement, 0, numElements)

	for i := 0; i < numBlocks; i++ {
		if !scanner.Scan() {
			return nil, fmt.Errorf("unexpected EOF in element block %d", i)
		}
		// entityDim entityTag elementType numElementsInBlock
		blockHeader := strings.Fields(scanner.Text())
		if len(blockHeader) < 4 {
			return nil, fmt.Errorf("invalid element block header: %q", scanner.Text())
		}
		entityDim, _ := strconv.Atoi(blockHeader[0])
		entityTag, _ := strconv.Atoi(blockHeader[1])
		elemType, _ := strconv.Atoi(blockHeader[2])
		numInBlock, _ := strconv.Atoi(blockHeader[3])

		etype, ok := gmshElementType[elemType]
		if !ok {
			for j := 0; j < numInBlock; j++ {
				scanner.Scan()
			}
			continue
		}
		phys := physical[entityKey{entityDim, entityTag}]
		expectedNodes := etype.GetNumNodes()

		for j := 0; j < numInBlock; j++ {
			if !scanner.Scan() {
				return nil, fmt.Errorf("unexpected EOF reading elements")
			}
			fields := strings.Fields(scanner.Text())
			if len(fields) < 1+expectedNodes {
				return nil, fmt.Errorf("invalid element line: expected %d nodes, got %d fields",
					expectedNodes, len(fields)-1)
			}
			e := gmshElement{ctype: etype, physical: phys, nodeIDs: make([]int, expectedNodes)}
			e.id, _ = strconv.Atoi(fields[0])
			for k := range e.nodeIDs {
				if e.nodeIDs[k], err = strconv.Atoi(fields[1+k]); err != nil {
					return nil, fmt.Errorf("element %d: invalid node ID: %w", e.id, err)
				}
			}
			elements = append(elements, e)
		}
	}
	skipSection(scanner, "$EndElements")
	return elements, nil
}
