package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/chazu/sdfkit/pkg/geom"
	"github.com/chazu/sdfkit/pkg/kernel"
	"github.com/chazu/sdfkit/pkg/mesh"
	"github.com/chazu/sdfkit/pkg/stl"
	"github.com/mitchellh/go-homedir"
	"github.com/segmentio/encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// coarse keeps grids and marching cubes small enough for unit tests.
var coarse = []string{"--dim", "12", "--cells", "24", "--resolution", "12"}

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	homedir.DisableCache = true
	t.Cleanup(func() { homedir.DisableCache = false })
}

func runCtx(t *testing.T, ctx context.Context, args ...string) (string, string, error) {
	t.Helper()
	isolate(t)
	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	return stdout.String(), stderr.String(), err
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	return runCtx(t, context.Background(), args...)
}

// writeCube writes a closed cube of edge 2 centred at (x, 0, 0).
func writeCube(t *testing.T, dir, name string, x float64) string {
	t.Helper()
	path := filepath.Join(dir, name+".stl")
	m := kernel.FromHalfEdge(mesh.Cube(geom.Pt(x, 0, 0), 2))
	require.NoError(t, stl.Write(path, m))
	return path
}

func writeScript(t *testing.T, dir, source string) string {
	t.Helper()
	path := filepath.Join(dir, "scene.lisp")
	require.NoError(t, os.WriteFile(path, []byte(source), 0o644))
	return path
}

func TestVersion(t *testing.T) {
	out, _, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "sdfkit dev")
}

func TestInfo(t *testing.T) {
	cube := writeCube(t, t.TempDir(), "cube", 0)

	out, _, err := run(t, "info", cube)
	require.NoError(t, err)
	assert.Contains(t, out, "Vertices: 8")
	assert.Contains(t, out, "Faces: 12")
	assert.Contains(t, out, "Boundary edges: 0")
	assert.Contains(t, out, "Closed: true")
	assert.Contains(t, out, "Min: (-1.000000, -1.000000, -1.000000)")
}

func TestInfoMissingFile(t *testing.T) {
	_, _, err := run(t, "info", filepath.Join(t.TempDir(), "nope.stl"))
	require.Error(t, err)
}

func TestDistance(t *testing.T) {
	cube := writeCube(t, t.TempDir(), "cube", 0)

	out, _, err := run(t, "distance", cube, "3", "0", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "Distance: 2.000000")

	out, _, err = run(t, "distance", cube, "0.5", "0.2", "0.1", "--signed")
	require.NoError(t, err)
	assert.Contains(t, out, "Distance: -0.500000")

	_, _, err = run(t, "distance", cube, "1", "two", "3")
	require.ErrorContains(t, err, "coordinate 2")
}

func TestNear(t *testing.T) {
	cube := writeCube(t, t.TempDir(), "cube", 0)

	out, _, err := run(t, "near", cube, "3", "0", "0", "--max", "2.5")
	require.NoError(t, err)
	assert.Equal(t, "true\n", out)

	out, _, err = run(t, "near", cube, "3", "0", "0", "--max", "1.5")
	require.NoError(t, err)
	assert.Equal(t, "false\n", out)

	_, _, err = run(t, "near", cube, "3", "0", "0")
	require.Error(t, err, "--max is required")
}

func TestIntersect(t *testing.T) {
	dir := t.TempDir()
	a := writeCube(t, dir, "a", 0)
	overlapping := writeCube(t, dir, "b", 1)
	far := writeCube(t, dir, "c", 10)

	out, _, err := run(t, "intersect", a, far)
	require.NoError(t, err)
	assert.Contains(t, out, "Intersecting pairs: 0 ")

	out, _, err = run(t, "intersect", a, overlapping, "--list")
	require.NoError(t, err)
	assert.NotContains(t, out, "Intersecting pairs: 0 ")
	assert.Contains(t, out, "\t", "--list prints face pairs")
}

func TestEval(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "out")
	script := writeScript(t, dir, `
(defvolume "ball" (sphere 1))
(defvolume "block" (translate (box 1 1 1) 3 0 0))
`)

	args := append([]string{"eval", script, "--out-dir", outDir}, coarse...)
	out, _, err := run(t, args...)
	require.NoError(t, err)
	assert.Contains(t, out, "ball.stl")
	assert.Contains(t, out, "block.stl")

	m, err := stl.Parse(filepath.Join(outDir, "block.stl"))
	require.NoError(t, err)
	assert.InDelta(t, 3.0, m.Bounds.Center().X, 0.2)
}

func TestEvalJSON(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, `(defvolume "ball" (sphere 1))`)

	args := append([]string{"eval", script, "--json", "--out-dir", dir}, coarse...)
	out, _, err := run(t, args...)
	require.NoError(t, err)

	var result EvalResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.Len(t, result.Meshes, 1)
	assert.Empty(t, result.Errors)
	assert.Equal(t, "ball", result.Meshes[0].PartName)
	assert.Equal(t, colorPalette[0], result.Meshes[0].Color)
	assert.Equal(t, filepath.Join(dir, "ball.stl"), result.Meshes[0].Path)
	assert.Positive(t, result.Meshes[0].Triangles)
	assert.FileExists(t, result.Meshes[0].Path)
}

func TestEvalJSONErrors(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, "(+ 1")

	out, _, err := run(t, "eval", script, "--json", "--out-dir", dir)
	require.ErrorIs(t, err, ErrEvaluation)

	var result EvalResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.NotEmpty(t, result.Errors)
	assert.Empty(t, result.Meshes)
}

func TestEvalMerged(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, `
(defvolume "a" (sphere 1))
(defvolume "b" (translate (sphere 1) 3 0 0))
`)

	args := append([]string{"eval", script, "--merged", "--out-dir", dir}, coarse...)
	_, _, err := run(t, args...)
	require.NoError(t, err)

	m, err := stl.Parse(filepath.Join(dir, "scene.stl"))
	require.NoError(t, err)
	assert.Less(t, m.Bounds.Min.X, -0.8)
	assert.Greater(t, m.Bounds.Max.X, 3.8)
}

func TestEvalErrors(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, "(defvolume \"a\" (sphere 1)\n")

	_, stderr, err := run(t, "eval", script, "--out-dir", dir)
	require.ErrorIs(t, err, ErrEvaluation)
	assert.Contains(t, stderr, "scene.lisp")

	_, _, err = run(t, "eval", filepath.Join(dir, "missing.lisp"))
	require.Error(t, err)
}

func TestEvalBadConfig(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, "")

	_, _, err := run(t, "eval", script, "--dim", "1")
	require.ErrorContains(t, err, "dim 1")
}

func TestSdf(t *testing.T) {
	dir := t.TempDir()
	cube := writeCube(t, dir, "cube", 0)
	output := filepath.Join(dir, "voxel.stl")

	args := append([]string{"sdf", cube, "-o", output, "--padding", "0.25"}, coarse...)
	out, _, err := run(t, args...)
	require.NoError(t, err)
	assert.Contains(t, out, output)

	m, err := stl.Parse(output)
	require.NoError(t, err)
	assert.InDelta(t, -1.0, m.Bounds.Min.X, 0.3)
	assert.InDelta(t, 1.0, m.Bounds.Max.X, 0.3)
}

func TestSdfDefaultOutput(t *testing.T) {
	dir := t.TempDir()
	cube := writeCube(t, dir, "cube", 0)

	args := append([]string{"sdf", cube, "--out-dir", dir}, coarse...)
	_, _, err := run(t, args...)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "cube-sdf.stl"))
}

func TestWatchRunsOnceAndStops(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, `(defvolume "ball" (sphere 1))`)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	args := append([]string{"watch", script, "--out-dir", dir}, coarse...)
	_, _, err := runCtx(t, ctx, args...)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "ball.stl"))
}
