package main

import (
	"fmt"
	"os"

	"github.com/pders01/git-reauthor/cmd/cli"
)

const (
	exitErrorTemplateConstant = "%v\n"
)

// main executes the git-reauthor command-line application.
func main() {
	if executionError := cli.Execute(); executionError != nil {
		fmt.Fprintf(os.Stderr, exitErrorTemplateConstant, executionError)
		os.Exit(1)
	}
}
