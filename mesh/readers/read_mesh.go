package readers

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/notargets/toughgrid/mesh"
	"github.com/notargets/toughgrid/utils"
)

var log = utils.NamedLogger("readers")

// ReadMeshFile reads a mesh file based on extension
func ReadMeshFile(filename string) (*mesh.Mesh, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	switch ext {
	case ".neu":
		return ReadGambitNeutral(filename)
	case ".msh":
		return ReadGmshAuto(filename)
	case ".su2":
		return ReadSU2(filename)
	default:
		return nil, fmt.Errorf("unsupported mesh format: %s", ext)
	}
}

// ReadGmshAuto detects the Gmsh format version and reads the file
func ReadGmshAuto(filename string) (*mesh.Mesh, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	scanner := bufio.NewScanner(file)
	var version string
	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) == "$MeshFormat" {
			if scanner.Scan() {
				if parts := strings.Fields(scanner.Text()); len(parts) > 0 {
					version = parts[0]
				}
			}
			break
		}
	}
	file.Close()

	switch {
	case version == "4.1":
		return ReadGmsh4(filename)
	case strings.HasPrefix(version, "2."):
		return ReadGmsh22(filename)
	case version == "":
		return nil, fmt.Errorf("could not find $MeshFormat section")
	default:
		return nil, fmt.Errorf("unsupported Gmsh format version: %s, export as 4.1 or 2.2", version)
	}
}

// dropUnsetMaterials clears the material array of blocks where no cell
// carried a group, so writers see the metadata as missing
func dropUnsetMaterials(msh *mesh.Mesh) {
	for i := range msh.Blocks {
		b := &msh.Blocks[i]
		set := false
		for _, mat := range b.Material {
			if mat > 0 {
				set = true
				break
			}
		}
		if !set {
			b.Material = nil
		}
	}
}

func logSummary(filename string, msh *mesh.Mesh) {
	fields := map[string]interface{}{
		"file":   filepath.Base(filename),
		"points": msh.NumPoints(),
		"cells":  msh.NumCells(),
	}
	for _, b := range msh.Blocks {
		fields[strings.ToLower(b.Type.String())] = len(b.Cells)
	}
	log.WithFields(fields).Debug("mesh read")
}
