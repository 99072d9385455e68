package main

import "github.com/notargets/toughgrid/cmd"

func main() {
	cmd.Execute()
}
