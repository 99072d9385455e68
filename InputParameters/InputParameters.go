package InputParameters

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/ghodss/yaml"
)

// MeshParameters obtained from the YAML conversion file
type MeshParameters struct {
	Title           string             `json:"Title"`
	RotationAngle   float64            `json:"RotationAngle"`   // Degrees about X for the gravity cosine
	Isot            string             `json:"Isot"`            // "dominant" or "firstnonzero"
	DefaultMaterial int                `json:"DefaultMaterial"` // Used for cells without a material
	MaterialNames   map[int]string     `json:"MaterialNames"`   // Overrides names read from the mesh
	ExtrudeHeights  []float64          `json:"ExtrudeHeights"`  // Layer heights for planar meshes
	ExtrudeAxis     int                `json:"ExtrudeAxis"`     // 0, 1 or 2, default Z
	Porosity        string             `json:"Porosity"`        // INCON porosity field
	Variables       []string           `json:"Variables"`       // INCON primary variable fields
	Initial         map[string]float64 `json:"Initial"`         // Uniform values for fields the mesh lacks
	Workers         int                `json:"Workers"`
}

// ExampleFile documents the parameter file format
const ExampleFile = `
########################################
Title: "Two layer aquifer"
RotationAngle: 0.           # Degrees about X
Isot: dominant              # Can be "firstnonzero"
DefaultMaterial: 1
MaterialNames:
  1: SANDS
  2: SHALE
ExtrudeHeights: [10., 10.]  # Only for planar meshes
ExtrudeAxis: 2
Porosity: porosity
Variables: [pressure, temperature]
Initial:                    # Used when the mesh has no such field
  porosity: 0.35
  pressure: 1.e5
  temperature: 20.
########################################
`

// NewMeshParameters returns the defaults used without a parameter file
func NewMeshParameters() *MeshParameters {
	return &MeshParameters{
		Isot:            "dominant",
		DefaultMaterial: 1,
		ExtrudeAxis:     2,
	}
}

func (mp *MeshParameters) Parse(data []byte) error {
	if err := yaml.Unmarshal(data, mp); err != nil {
		return err
	}
	return mp.Validate()
}

// ReadFile parses a parameter file over the defaults
func ReadFile(filename string) (mp *MeshParameters, err error) {
	var data []byte
	if data, err = os.ReadFile(filename); err != nil {
		return
	}
	mp = NewMeshParameters()
	if err = mp.Parse(data); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return
}

func (mp *MeshParameters) Validate() error {
	switch strings.ToLower(mp.Isot) {
	case "", "dominant", "firstnonzero":
	default:
		return fmt.Errorf("unknown Isot rule %q, use dominant or firstnonzero", mp.Isot)
	}
	if mp.ExtrudeAxis < 0 || mp.ExtrudeAxis > 2 {
		return fmt.Errorf("ExtrudeAxis must be 0, 1 or 2, got %d", mp.ExtrudeAxis)
	}
	for _, h := range mp.ExtrudeHeights {
		if h <= 0 {
			return fmt.Errorf("ExtrudeHeights must be positive, got %g", h)
		}
	}
	if mp.DefaultMaterial < 0 {
		return fmt.Errorf("DefaultMaterial must not be negative, got %d", mp.DefaultMaterial)
	}
	return nil
}

func (mp *MeshParameters) Print() {
	mp.Fprint(os.Stdout)
}

func (mp *MeshParameters) Fprint(w io.Writer) {
	fmt.Fprintf(w, "\"%s\"\t\t= Title\n", mp.Title)
	fmt.Fprintf(w, "%8.5f\t\t= RotationAngle\n", mp.RotationAngle)
	fmt.Fprintf(w, "[%s]\t\t= Isot\n", mp.Isot)
	fmt.Fprintf(w, "[%d]\t\t\t= DefaultMaterial\n", mp.DefaultMaterial)
	if len(mp.ExtrudeHeights) != 0 {
		fmt.Fprintf(w, "%v\t\t= ExtrudeHeights, axis %d\n", mp.ExtrudeHeights, mp.ExtrudeAxis)
	}
	if len(mp.Variables) != 0 {
		fmt.Fprintf(w, "[%s] %v\t= INCON porosity, variables\n", mp.Porosity, mp.Variables)
	}
	fields := make([]string, 0, len(mp.Initial))
	for name := range mp.Initial {
		fields = append(fields, name)
	}
	sort.Strings(fields)
	for _, name := range fields {
		fmt.Fprintf(w, "Initial[%s] = %g\n", name, mp.Initial[name])
	}
	keys := make([]int, 0, len(mp.MaterialNames))
	for k := range mp.MaterialNames {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	for _, key := range keys {
		fmt.Fprintf(w, "MaterialNames[%d] = %s\n", key, mp.MaterialNames[key])
	}
}
