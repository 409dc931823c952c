package project

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDir_FindsLuaFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "lib"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".git"), 0o755))

	write := func(rel, content string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, rel), []byte(content), 0o644))
	}
	write("main.lua", "return 1\n")
	write(filepath.Join("lib", "util.lua"), "return 2\n")
	write("README.md", "docs")
	write(filepath.Join(".git", "hook.lua"), "ignored")

	files, err := LoadDir(dir)
	require.NoError(t, err)
	require.Len(t, files, 2)

	assert.Equal(t, "lib/util.lua", files[0].Path, "paths are slash-separated and sorted")
	assert.Equal(t, "main.lua", files[1].Path)
	assert.NoError(t, files[0].Err)
	assert.Equal(t, "return 2\n", string(files[0].Source))
}

func TestLoadDir_NotADirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "x.lua")
	require.NoError(t, os.WriteFile(file, []byte("return 1\n"), 0o644))

	_, err := LoadDir(file)
	require.Error(t, err)
}

func TestLoadDir_Missing(t *testing.T) {
	_, err := LoadDir(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
}

func TestLoadZip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "project.zip")
	f, err := os.Create(path)
	require.NoError(t, err)

	w := zip.NewWriter(f)
	add := func(name, content string) {
		entry, err := w.Create(name)
		require.NoError(t, err)
		_, err = entry.Write([]byte(content))
		require.NoError(t, err)
	}
	add("src/main.lua", "return 1\n")
	add("src/notes.txt", "skip me")
	add("util.lua", "return 2\n")
	require.NoError(t, w.Close())
	require.NoError(t, f.Close())

	files, err := LoadZip(path)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "src/main.lua", files[0].Path)
	assert.Equal(t, "util.lua", files[1].Path)
	assert.Equal(t, "return 1\n", string(files[0].Source))
}

func TestLoadZip_Missing(t *testing.T) {
	_, err := LoadZip(filepath.Join(t.TempDir(), "nope.zip"))
	require.Error(t, err)
}
