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

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/notargets/toughgrid/mesh"
	"github.com/notargets/toughgrid/mesh/readers"
	"github.com/notargets/toughgrid/tough"
)

// infoCmd represents the info command
var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Prints mesh and connectivity statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunInfo(getString(cmd, "gridFile"), viper.GetInt("workers"), cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
	infoCmd.Flags().StringP("gridFile", "F", "", "Mesh file to inspect (.neu, .msh or .su2)")
	if err := infoCmd.MarkFlagRequired("gridFile"); err != nil {
		panic(err)
	}
}

func RunInfo(gridFile string, workers int, out io.Writer) (err error) {
	var (
		m    *mesh.Mesh
		conn *mesh.Connectivity
	)
	if m, err = readers.ReadMeshFile(gridFile); err != nil {
		return
	}
	if conn, err = mesh.BuildConnectivity(m, &mesh.BuildOptions{Workers: workers}); err != nil {
		return
	}
	fmt.Fprintf(out, "%s: dimension %d\n", gridFile, m.Dimension())
	conn.PrintStatistics(out, m)
	if conn.NumCells() > tough.MaxLabels {
		fmt.Fprintf(out, "  Too many cells for TOUGH labels, limit is %d\n", tough.MaxLabels)
	}
	return
}
