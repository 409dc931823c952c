//go:build !cgo

package main

import (
	"fmt"

	"github.com/dusk-indust/luagraph/internal/graph"
)

// openStore falls back to the in-memory store on cgo-less builds; KuzuDB
// needs its C library.
func openStore(dbPath string) (graph.Store, error) {
	if dbPath != "" {
		return nil, fmt.Errorf("persistent graph store requires a cgo build")
	}
	return graph.NewMemStore(), nil
}
