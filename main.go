package main

import (
	_ "embed" // this is required in order for go:embed to work
	"errors"
	"fmt"
	"os"
	"strings"
)

//go:embed VERSION
var versionString string // comes from the VERSION file which we update for each release

func version() string { return strings.TrimSpace(versionString) }

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, errTestsFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
