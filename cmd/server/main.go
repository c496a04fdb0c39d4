package main

import (
	"os"
)

// main runs the dinefind command line. See `dinefind --help`.
func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
