// Command validate-level checks level files for authoring errors
// without loading them into a catalog. It prints every diagnostic and
// exits non-zero if any file has errors.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/dunnston/dungeongraph/internal/domain/level"
	"github.com/dunnston/dungeongraph/internal/repositories/levels"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <level-file>...\n", os.Args[0])
		os.Exit(2)
	}

	failed := false
	for _, path := range os.Args[1:] {
		l, err := levels.LoadFile(path)
		if err != nil {
			log.Printf("%s: %v", path, err)
			failed = true
			continue
		}

		diags := level.Validate(l)
		for _, d := range diags {
			fmt.Printf("%s: %s\n", path, d)
		}
		if level.HasErrors(diags) {
			failed = true
		} else {
			fmt.Printf("%s: ok (%d nodes, %d edges)\n", path, len(l.Nodes), len(l.Edges))
		}
	}

	if failed {
		os.Exit(1)
	}
}
