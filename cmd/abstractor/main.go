// abstractor runs the chart abstraction pipeline from the command line.
//
// Usage:
//
//	abstractor run --input notes.jsonl [--workers N] [--format json|table|markdown|csv] [--evidence]
//	abstractor sections <note-file> [--note-type LABEL]
//	abstractor mcp
//	abstractor version
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
