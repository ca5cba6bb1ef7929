// Command presetpatch merges a flat JSON parameter map into a preset
// document's settings and writes the result to a new file.
package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"presetcore/internal/patch"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) != 3 {
		fmt.Fprintln(stderr, "usage: presetpatch <base.json> <patch.json> <output.json>")
		return 1
	}
	basePath, patchPath, outputPath := args[0], args[1], args[2]

	if err := patch.ApplyFile(basePath, patchPath, outputPath); err != nil {
		var perr *patch.ParseError
		switch {
		case errors.Is(err, fs.ErrNotExist):
			fmt.Fprintf(stderr, "presetpatch: input file not found: %v\n", err)
		case errors.As(err, &perr):
			fmt.Fprintf(stderr, "presetpatch: invalid JSON in %s: %v\n", perr.Path, perr.Err)
		default:
			fmt.Fprintf(stderr, "presetpatch: %v\n", err)
		}
		return 1
	}
	fmt.Fprintf(stdout, "wrote %s\n", outputPath)
	return 0
}
