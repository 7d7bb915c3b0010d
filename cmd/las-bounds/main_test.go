package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/las-bounds/internal/lasbounds"
	"github.com/banshee-data/las-bounds/internal/testutil"
)

func writeLAS(t *testing.T, path string, minX, minY, maxX, maxY float64) {
	t.Helper()
	testutil.WriteLAS(t, path, r3.Vec{X: minX, Y: minY}, r3.Vec{X: maxX, Y: maxY, Z: 1})
}

func execute(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	lasbounds.SetLogWriters(lasbounds.LogWriters{})
	return code, stdout.String(), stderr.String()
}

func TestRun_DirectoryMode(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "tiles")
	require.NoError(t, os.Mkdir(dir, 0755))
	writeLAS(t, filepath.Join(dir, "a.las"), 0, 0, 10, 10)
	writeLAS(t, filepath.Join(dir, "b.las"), 10, 0, 20, 10)

	code, stdout, stderr := execute(t, "-e", "2180", dir)
	require.Equal(t, exitOK, code, stderr)

	assert.Contains(t, stdout, "[1/2] "+filepath.Join(dir, "a.las"))
	assert.Contains(t, stdout, "[2/2] "+filepath.Join(dir, "b.las"))
	for _, ext := range []string{".shp", ".shx", ".dbf", ".prj"} {
		assert.FileExists(t, filepath.Join(root, "tiles"+ext))
	}
}

func TestRun_FlagsAfterDirectory(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "tiles")
	require.NoError(t, os.Mkdir(dir, 0755))
	writeLAS(t, filepath.Join(dir, "a.las"), 0, 0, 10, 10)

	code, _, stderr := execute(t, dir, "-e", "2180")
	require.Equal(t, exitOK, code, stderr)
	assert.FileExists(t, filepath.Join(root, "tiles.shp"))
	assert.FileExists(t, filepath.Join(root, "tiles.prj"))

	code, _, _ = execute(t, "-txt", dir, "-mode", "per-file")
	require.Equal(t, exitOK, code)
	assert.FileExists(t, filepath.Join(dir, "a.txt"))
	assert.FileExists(t, filepath.Join(dir, "a.shp"))
}

func TestRun_PerFileModeWithConfig(t *testing.T) {
	dir := t.TempDir()
	writeLAS(t, filepath.Join(dir, "a.las"), 0, 0, 10, 10)

	cfgPath := filepath.Join(t.TempDir(), "run.json")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`{"mode":"per-file","write_text":true,"epsg":4326}`), 0644))

	code, stdout, stderr := execute(t, "-config", cfgPath, "-epsg", "0", dir)
	require.Equal(t, exitOK, code, stderr)

	assert.Equal(t, "Searching in: "+dir+"\n", stdout)
	assert.FileExists(t, filepath.Join(dir, "a.shp"))
	assert.FileExists(t, filepath.Join(dir, "a.txt"))
	assert.NoFileExists(t, filepath.Join(dir, "a.prj"), "-epsg 0 on the command line overrides the file")
}

func TestRun_UsageErrors(t *testing.T) {
	dir := t.TempDir()
	badCfg := filepath.Join(dir, "run.yaml")
	require.NoError(t, os.WriteFile(badCfg, []byte("mode: directory"), 0644))

	tests := []struct {
		name       string
		args       []string
		wantStderr string
	}{
		{"no directory", nil, "exactly one DIRECTORY"},
		{"two directories", []string{dir, dir}, "exactly one DIRECTORY"},
		{"two directories around flags", []string{dir, "-e", "2180", dir}, "exactly one DIRECTORY"},
		{"unknown flag", []string{"-nope", dir}, "-nope"},
		{"bad mode", []string{"-mode", "sideways", dir}, "validation error"},
		{"negative epsg", []string{"-e", "-5", dir}, "validation error"},
		{"bad output", []string{"-o", "out.gpkg", dir}, "validation error"},
		{"config not json", []string{"-config", badCfg, dir}, "config " + badCfg + ": validation error"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			code, _, stderr := execute(t, tc.args...)
			assert.Equal(t, exitUsage, code)
			assert.Contains(t, stderr, tc.wantStderr)
		})
	}
}

func TestRun_RunErrors(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.las"), []byte("garbage"), 0644))

	code, _, stderr := execute(t, dir)
	assert.Equal(t, exitRun, code)
	assert.Contains(t, stderr, "format error")

	code, _, stderr = execute(t, filepath.Join(dir, "missing"))
	assert.Equal(t, exitRun, code)
	assert.Contains(t, stderr, "I/O error")

	code, _, stderr = execute(t, "-e", "999999", dir)
	assert.Equal(t, exitRun, code)
	assert.Contains(t, stderr, "output-driver error")
}

func TestRun_ListEPSG(t *testing.T) {
	code, stdout, _ := execute(t, "-list-epsg")
	require.Equal(t, exitOK, code)
	assert.Contains(t, stdout, "EPSG:2180")
	assert.Contains(t, stdout, "EPSG:32633")
	assert.Greater(t, strings.Count(stdout, "\n"), 100)
}

func TestRun_Version(t *testing.T) {
	code, stdout, _ := execute(t, "-version")
	require.Equal(t, exitOK, code)
	assert.True(t, strings.HasPrefix(stdout, "las-bounds dev"))
}

func TestRun_Verbose(t *testing.T) {
	dir := t.TempDir()
	writeLAS(t, filepath.Join(dir, "a.las"), 0, 0, 1, 1)

	code, _, stderr := execute(t, "-v", "-mode", "per-file", dir)
	require.Equal(t, exitOK, code, stderr)
	assert.Contains(t, stderr, "[las-bounds] ")
	assert.Contains(t, stderr, "wrote "+filepath.Join(dir, "a.shp"))
}
