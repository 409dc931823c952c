//go:build cgo

package main

import "github.com/dusk-indust/luagraph/internal/graph"

// openStore returns a file-backed KuzuDB store when a path is given,
// otherwise an in-memory store.
func openStore(dbPath string) (graph.Store, error) {
	if dbPath == "" {
		return graph.NewMemStore(), nil
	}
	return graph.NewKuzuFileStore(dbPath)
}
