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

// su2CellType maps SU2 (VTK) element type identifiers to cell types
var su2CellType = map[int]utils.CellType{
	5:  utils.Triangle,   // VTK_TRIANGLE
	9:  utils.Quad,       // VTK_QUAD
	10: utils.Tetra,      // VTK_TETRA
	12: utils.Hexahedron, // VTK_HEXAHEDRON
	13: utils.Wedge,      // VTK_WEDGE
	14: utils.Pyramid,    // VTK_PYRAMID
}

// ReadSU2 reads an SU2 native format file. SU2 carries no cell groups, so the
// mesh has no material metadata.
func ReadSU2(filename string) (*mesh.Mesh, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	msh, err := ParseSU2(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	logSummary(filename, msh)
	return msh, nil
}

// ParseSU2 reads SU2 content. Marker sections are skipped, boundaries are
// recovered from the connectivity.
func ParseSU2(r io.Reader) (*mesh.Mesh, error) {
	var (
		msh                = mesh.NewMesh()
		scanner            = bufio.NewScanner(r)
		ndime              int
		hasNDIME, hasNPOIN bool
		cellTypes          []utils.CellType
		cellNodes          [][]int
	)

	for scanner.Scan() {
		line := stripSU2Comment(scanner.Text())
		if line == "" {
			continue
		}

		switch {
		case strings.HasPrefix(line, "NDIME="):
			hasNDIME = true
			fmt.Sscanf(line, "NDIME=%d", &ndime)
			if ndime != 2 && ndime != 3 {
				return nil, fmt.Errorf("unsupported dimension: NDIME=%d", ndime)
			}

		case strings.HasPrefix(line, "NELEM="):
			var nelem int
			fmt.Sscanf(line, "NELEM=%d", &nelem)
			for i := 0; i < nelem; i++ {
				if !scanner.Scan() {
					return nil, fmt.Errorf("unexpected EOF reading elements")
				}
				fields := strings.Fields(scanner.Text())
				if len(fields) < 2 {
					return nil, fmt.Errorf("invalid element line")
				}
				su2Type, err := strconv.Atoi(fields[0])
				if err != nil {
					return nil, fmt.Errorf("invalid element type: %v", err)
				}
				ct, ok := su2CellType[su2Type]
				if !ok {
					return nil, fmt.Errorf("unknown element type: %d", su2Type)
				}
				numNodes := ct.GetNumNodes()
				if len(fields) < numNodes+1 {
					return nil, fmt.Errorf("element type %v expects %d nodes, got %d fields",
						ct, numNodes, len(fields)-1)
				}
				// Element ID is implicit, a trailing legacy ID is ignored
				nodes := make([]int, numNodes)
				for j := range nodes {
					if nodes[j], err = strconv.Atoi(fields[1+j]); err != nil {
						return nil, fmt.Errorf("invalid node index: %v", err)
					}
				}
				cellTypes = append(cellTypes, ct)
				cellNodes = append(cellNodes, nodes)
			}

		case strings.HasPrefix(line, "NPOIN="):
			if !hasNDIME {
				return nil, fmt.Errorf("NPOIN= before NDIME=")
			}
			hasNPOIN = true
			var npoin int
			fmt.Sscanf(line, "NPOIN=%d", &npoin)
			for i := 0; i < npoin; i++ {
				if !scanner.Scan() {
					return nil, fmt.Errorf("unexpected EOF reading nodes")
				}
				fields := strings.Fields(scanner.Text())
				if len(fields) < ndime {
					return nil, fmt.Errorf("invalid node line: expected at least %d coordinates", ndime)
				}
				var (
					xyz [3]float64
					err error
				)
				for j := 0; j < ndime; j++ {
					if xyz[j], err = strconv.ParseFloat(fields[j], 64); err != nil {
						return nil, fmt.Errorf("invalid coordinate: %v", err)
					}
				}
				// Node ID is implicit (0-based)
				msh.AddNode(i, xyz[0], xyz[1], xyz[2])
			}

		case strings.HasPrefix(line, "NMARK="):
			if err := skipSU2Markers(scanner, line); err != nil {
				return nil, err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading file: %v", err)
	}
	if !hasNDIME {
		return nil, fmt.Errorf("missing required NDIME= section")
	}
	if !hasNPOIN {
		return nil, fmt.Errorf("missing required NPOIN= section")
	}

	// NELEM usually precedes NPOIN, so cells are added once points exist
	for i, ct := range cellTypes {
		if err := msh.AddCell(ct, cellNodes[i], 0); err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
	}
	dropUnsetMaterials(msh)
	return msh, nil
}

func stripSU2Comment(line string) string {
	if idx := strings.Index(line, "%"); idx >= 0 {
		line = line[:idx]
	}
	return strings.TrimSpace(line)
}

func skipSU2Markers(scanner *bufio.Scanner, header string) error {
	var nmark int
	fmt.Sscanf(header, "NMARK=%d", &nmark)
	for i := 0; i < nmark; i++ {
		if !scanner.Scan() {
			return fmt.Errorf("unexpected EOF reading marker %d", i)
		}
		if tag := stripSU2Comment(scanner.Text()); !strings.HasPrefix(tag, "MARKER_TAG=") {
			return fmt.Errorf("expected MARKER_TAG=, got: %s", tag)
		}
		if !scanner.Scan() {
			return fmt.Errorf("unexpected EOF reading marker %d elements", i)
		}
		var n int
		elemLine := stripSU2Comment(scanner.Text())
		if _, err := fmt.Sscanf(elemLine, "MARKER_ELEMS=%d", &n); err != nil {
			return fmt.Errorf("invalid MARKER_ELEMS line: %s", elemLine)
		}
		for j := 0; j < n; j++ {
			if !scanner.Scan() {
				return fmt.Errorf("unexpected EOF reading boundary elements")
			}
		}
	}
	return nil
}
