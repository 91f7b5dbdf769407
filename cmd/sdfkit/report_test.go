package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/chazu/sdfkit/pkg/engine"
	"github.com/chazu/sdfkit/pkg/kernel/sdfx"
)

// evalSource runs the evaluate pipeline with small grids.
func evalSource(t *testing.T, source string, merged bool) EvalResult {
	t.Helper()
	eng := engine.NewEngineWithOptions(engine.Options{Dim: 10, Padding: 0.2})
	result, err := evaluate(context.Background(), eng, &sdfx.SdfxKernel{Cells: 20}, source, merged)
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	return result
}

func failOnErrors(t *testing.T, result EvalResult) {
	t.Helper()
	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			t.Errorf("eval error (line %d): %s", e.Line, e.Message)
		}
		t.FailNow()
	}
}

// TestE2EScene exercises the full pipeline: source → engine → scene →
// tessellate → mesh summaries.
func TestE2EScene(t *testing.T) {
	source := `
(def r 1)
(defvolume "ball" (sphere r))
(defvolume "post" (translate (cylinder 2 0.5) 3 0 0))
(defvolume "cut" (difference (box 2 2 2) (sphere 1.2)))
`
	result := evalSource(t, source, false)
	failOnErrors(t, result)

	if len(result.Meshes) != 3 {
		t.Fatalf("expected 3 meshes, got %d", len(result.Meshes))
	}
	for i, want := range []string{"ball", "post", "cut"} {
		m := result.Meshes[i]
		if m.PartName != want {
			t.Errorf("mesh %d: part name %q, want %q", i, m.PartName, want)
		}
		if m.Triangles == 0 {
			t.Errorf("part %q: no triangles", m.PartName)
		}
		if m.Color == "" {
			t.Errorf("part %q: no color assigned", m.PartName)
		}
	}
	if post := result.Meshes[1]; post.Min[0] < 2 || post.Max[0] > 4 {
		t.Errorf("post x range = [%.2f, %.2f], expected inside [2, 4]", post.Min[0], post.Max[0])
	}
}

// TestE2EEmptySource ensures the pipeline handles empty input gracefully.
func TestE2EEmptySource(t *testing.T) {
	for _, source := range []string{"", "   \n\t ", ";; just a comment\n; another"} {
		result := evalSource(t, source, false)
		if len(result.Errors) > 0 {
			t.Errorf("unexpected errors for %q: %v", source, result.Errors)
		}
		if len(result.Meshes) != 0 {
			t.Errorf("expected 0 meshes for %q, got %d", source, len(result.Meshes))
		}
	}
}

// TestE2ESyntaxError ensures eval errors are reported, not fatal errors.
func TestE2ESyntaxError(t *testing.T) {
	result := evalSource(t, "(defvolume \"test\"", false)

	if len(result.Errors) == 0 {
		t.Fatal("expected eval errors for syntax error")
	}
	if len(result.Meshes) != 0 {
		t.Errorf("expected 0 meshes on error, got %d", len(result.Meshes))
	}
}

func TestE2EUndefinedVolumeReference(t *testing.T) {
	result := evalSource(t, `(defvolume "a" (sphere 1))
(defvolume "b" (translate (volume "missing") 1 0 0))`, false)

	if len(result.Errors) == 0 {
		t.Fatal("expected an error for an undefined volume")
	}
	if !strings.Contains(result.Errors[0].Message, "missing") {
		t.Errorf("error should name the missing volume, got %q", result.Errors[0].Message)
	}
}

func TestE2ENegativeDimension(t *testing.T) {
	result := evalSource(t, `(defvolume "bad" (box -1 1 1))`, false)
	if len(result.Errors) == 0 {
		t.Fatal("expected an error for a negative box size")
	}
}

func TestE2ETessellationErrorIsReported(t *testing.T) {
	// Intersecting two spheres that never meet leaves no surface.
	result := evalSource(t, `(defvolume "a" (sphere 1))
(defvolume "b" (translate (sphere 1) 10 0 0))
(defvolume "none" (intersection (volume "a") (volume "b")))`, false)

	if len(result.Errors) == 0 {
		t.Fatal("expected an error for a volume with no surface")
	}
}

func TestE2EMerged(t *testing.T) {
	result := evalSource(t, `(defvolume "a" (sphere 1))
(defvolume "b" (translate (sphere 1) 3 0 0))`, true)
	failOnErrors(t, result)

	if len(result.Meshes) != 1 {
		t.Fatalf("expected 1 merged mesh, got %d", len(result.Meshes))
	}
	if result.Meshes[0].PartName != "scene" {
		t.Errorf("merged part name = %q", result.Meshes[0].PartName)
	}
}

func TestE2ERapidEvaluationAlternating(t *testing.T) {
	// Alternates between valid and invalid sources rapidly.
	// Ensures the engine recovers cleanly between error and success states.
	eng := engine.NewEngineWithOptions(engine.Options{Dim: 8})
	k := &sdfx.SdfxKernel{Cells: 16}

	sources := []string{
		`(defvolume "ok" (sphere 1))`,
		`(defvolume "broken"`,
		``,
		`(volume "missing")`,
		`(defvolume "also-ok" (box 1 2 3))`,
		`(+ 1 2)`,
		`;; just a comment`,
		`(undefined-func 1 2 3)`,
		`(defvolume "last" (torus 2 0.5))`,
	}

	for i, source := range sources {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Errorf("iteration %d panicked on source %q: %v", i, source, r)
				}
			}()
			if _, err := evaluate(context.Background(), eng, k, source, false); err != nil {
				t.Errorf("iteration %d: fatal error %v", i, err)
			}
		}()
	}
}

func TestE2EColorPaletteWrapping(t *testing.T) {
	// More volumes than the palette has colors.
	var b strings.Builder
	for i := 0; i < len(colorPalette)+1; i++ {
		fmt.Fprintf(&b, "(defvolume \"p%d\" (translate (sphere 1) %d 0 0))\n", i, 3*i)
	}
	result := evalSource(t, b.String(), false)
	failOnErrors(t, result)

	if len(result.Meshes) != len(colorPalette)+1 {
		t.Fatalf("expected %d meshes, got %d", len(colorPalette)+1, len(result.Meshes))
	}
	if first, last := result.Meshes[0].Color, result.Meshes[len(colorPalette)].Color; first != last {
		t.Errorf("palette should wrap: first %q, last %q", first, last)
	}
}

func TestE2ECancelledIsFatal(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	eng := engine.NewEngineWithOptions(engine.Options{Dim: 8})
	_, err := evaluate(ctx, eng, &sdfx.SdfxKernel{Cells: 16}, `(defvolume "a" (sphere 1))`, false)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
