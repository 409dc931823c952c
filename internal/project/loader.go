// Package project discovers and reads the Lua sources of an analysis
// request. Read failures are carried per file, not returned, so one
// unreadable file never hides the rest of the project.
package project

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// File is one discovered source file. Err is set when the file could not
// be read; Source is nil in that case.
type File struct {
	Path   string
	Source []byte
	Err    error
}

// LoadDir walks root and reads every .lua file beneath it, skipping
// hidden directories. Paths are relative to root with forward slashes, so
// file identities stay stable across machines.
func LoadDir(root string) ([]File, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("project: stat %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("project: %s is not a directory", root)
	}

	var files []File
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			// Unreadable entry: record and keep walking.
			files = append(files, File{Path: relPath(root, path), Err: walkErr})
			return nil
		}
		if d.IsDir() {
			if name := d.Name(); name != "." && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(d.Name(), ".lua") {
			return nil
		}
		source, readErr := os.ReadFile(path)
		files = append(files, File{
			Path:   relPath(root, path),
			Source: source,
			Err:    readErr,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("project: walk %s: %w", root, err)
	}

	sortFiles(files)
	return files, nil
}

// LoadZip reads every .lua file from a zip archive. Entry names are used
// as file identities unchanged.
func LoadZip(path string) ([]File, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("project: open archive %s: %w", path, err)
	}
	defer r.Close()

	var files []File
	for _, entry := range r.File {
		if entry.FileInfo().IsDir() || !strings.HasSuffix(entry.Name, ".lua") {
			continue
		}
		source, readErr := readZipEntry(entry)
		files = append(files, File{
			Path:   entry.Name,
			Source: source,
			Err:    readErr,
		})
	}

	sortFiles(files)
	return files, nil
}

func readZipEntry(entry *zip.File) ([]byte, error) {
	rc, err := entry.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// relPath makes path relative to root using forward slashes.
func relPath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	return filepath.ToSlash(rel)
}

// sortFiles orders files by path for deterministic processing order.
func sortFiles(files []File) {
	sort.Slice(files, func(i, j int) bool {
		return files[i].Path < files[j].Path
	})
}
