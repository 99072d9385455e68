/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/notargets/toughgrid/InputParameters"
	"github.com/notargets/toughgrid/mesh"
	"github.com/notargets/toughgrid/mesh/readers"
	"github.com/notargets/toughgrid/tough"
)

type ConvertConfig struct {
	GridFile            string
	InputParametersFile string
	OutputFile          string
	InconFile           string // Empty skips the INCON block
	Workers             int
}

// convertCmd represents the convert command
var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Writes the TOUGH MESH blocks of an unstructured mesh",
	Long: `
Reads a mesh, rebuilds its connectivity and writes the ELEME and CONNE blocks.
Planar meshes are extruded using the ExtrudeHeights of the parameter file.

toughgrid convert -F mesh.su2 -I params.yaml -o MESH --incon INCON`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cc := &ConvertConfig{
			GridFile:            getString(cmd, "gridFile"),
			InputParametersFile: getString(cmd, "inputParametersFile"),
			OutputFile:          getString(cmd, "output"),
			InconFile:           getString(cmd, "incon"),
			Workers:             viper.GetInt("workers"),
		}
		return RunConvert(cc, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)
	convertCmd.Flags().StringP("gridFile", "F", "", "Mesh file to convert (.neu, .msh or .su2)")
	convertCmd.Flags().StringP("inputParametersFile", "I", "", "YAML file with conversion parameters")
	convertCmd.Flags().StringP("output", "o", "MESH", "TOUGH MESH file to write")
	convertCmd.Flags().String("incon", "", "also write an INCON file from the Porosity and Variables fields")
	if err := convertCmd.MarkFlagRequired("gridFile"); err != nil {
		panic(err)
	}
}

func getString(cmd *cobra.Command, name string) string {
	val, err := cmd.Flags().GetString(name)
	if err != nil {
		panic(err)
	}
	return val
}

// RunConvert performs one conversion, a summary goes to out
func RunConvert(cc *ConvertConfig, out io.Writer) (err error) {
	var (
		m  *mesh.Mesh
		mp = InputParameters.NewMeshParameters()
	)
	if cc.InputParametersFile != "" {
		if mp, err = InputParameters.ReadFile(cc.InputParametersFile); err != nil {
			return
		}
	}
	mp.Fprint(out)
	if m, err = readers.ReadMeshFile(cc.GridFile); err != nil {
		return
	}
	if m, err = PrepareMesh(m, mp); err != nil {
		return
	}

	opts := ToughOptions(mp, cc.Workers)
	var bw *tough.BlockWriter
	if bw, err = writeFile(cc.OutputFile, func(w io.Writer) (bw *tough.BlockWriter, err error) {
		return tough.WriteMesh(w, m, opts)
	}); err != nil {
		return
	}
	if cc.InconFile != "" {
		fields := tough.InconFields{Porosity: mp.Porosity, Variables: mp.Variables}
		if _, err = writeFile(cc.InconFile, func(w io.Writer) (*tough.BlockWriter, error) {
			return bw, bw.WriteIncon(w, fields)
		}); err != nil {
			return
		}
	}

	counts := make(map[mesh.DiagnosticKind]int)
	for _, d := range bw.Diagnostics() {
		counts[d.Kind]++
	}
	fields := logrus.Fields{
		"cells":       bw.Connectivity().NumCells(),
		"connections": bw.Connectivity().NumInterfaces(),
	}
	for kind, n := range counts {
		fields[kind.String()] = n
	}
	log.WithFields(fields).Info("wrote ", cc.OutputFile)
	fmt.Fprintf(out, "Wrote %d elements and %d connections to %s\n",
		bw.Connectivity().NumCells(), bw.Connectivity().NumInterfaces(), cc.OutputFile)
	return
}

func writeFile(filename string, write func(w io.Writer) (*tough.BlockWriter, error)) (bw *tough.BlockWriter, err error) {
	var file *os.File
	if file, err = os.Create(filename); err != nil {
		return
	}
	if bw, err = write(file); err != nil {
		file.Close()
		os.Remove(filename)
		return
	}
	if err = file.Close(); err != nil {
		os.Remove(filename)
	}
	return
}

// PrepareMesh applies the parameter file to a mesh read from disk: material
// name overrides, uniform initial fields and extrusion of planar meshes
func PrepareMesh(m *mesh.Mesh, mp *InputParameters.MeshParameters) (*mesh.Mesh, error) {
	for id, name := range mp.MaterialNames {
		m.MaterialNames[id] = name
	}
	for bi := range m.Blocks {
		b := &m.Blocks[bi]
		for name, val := range mp.Initial {
			if _, ok := b.Data[name]; ok {
				continue
			}
			if b.Data == nil {
				b.Data = make(map[string][]float64)
			}
			field := make([]float64, len(b.Cells))
			for i := range field {
				field[i] = val
			}
			b.Data[name] = field
		}
	}
	switch m.Dimension() {
	case 2:
		if len(mp.ExtrudeHeights) == 0 {
			return nil, fmt.Errorf("%w: planar mesh needs ExtrudeHeights in the parameter file",
				mesh.ErrUnsupportedCellType)
		}
		return mesh.Extrude(m, mp.ExtrudeHeights, mp.ExtrudeAxis)
	case 3:
		if len(mp.ExtrudeHeights) != 0 {
			log.Warn("ExtrudeHeights ignored for a volume mesh")
		}
	}
	return m, nil
}

// ToughOptions maps the parameter file onto writer options, workers from the
// command line apply when the file leaves them unset
func ToughOptions(mp *InputParameters.MeshParameters, workers int) *tough.Options {
	opts := &tough.Options{
		RotationAngle:   mp.RotationAngle,
		DefaultMaterial: mp.DefaultMaterial,
		Workers:         mp.Workers,
	}
	if opts.Workers == 0 {
		opts.Workers = workers
	}
	if strings.ToLower(mp.Isot) == "firstnonzero" {
		opts.Isot = tough.IsotFirstNonZero
	}
	return opts
}
