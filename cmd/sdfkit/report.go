package main

import (
	"context"

	"github.com/chazu/sdfkit/pkg/engine"
	"github.com/chazu/sdfkit/pkg/kernel"
	"github.com/chazu/sdfkit/pkg/tessellate"
)

// colorPalette is a default palette used to assign distinct colors to parts.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// MeshData summarises one exported mesh.
type MeshData struct {
	PartName  string     `json:"partName"`
	Color     string     `json:"color"`
	Path      string     `json:"path,omitempty"`
	Triangles int        `json:"triangles"`
	Min       [3]float32 `json:"min"`
	Max       [3]float32 `json:"max"`

	mesh *kernel.Mesh
}

// EvalErrorData is a JSON-serializable eval error.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// EvalResult is the full result of evaluating and tessellating a script.
type EvalResult struct {
	Meshes []MeshData      `json:"meshes"`
	Errors []EvalErrorData `json:"errors"`
}

// evaluate runs source through the engine and tessellates the scene.
// Script and tessellation problems are reported in the result; only fatal
// engine errors (timeout, cancellation, superseded) are returned.
func evaluate(ctx context.Context, eng *engine.Engine, k kernel.Kernel, source string, merged bool) (EvalResult, error) {
	result := EvalResult{
		Meshes: []MeshData{},
		Errors: []EvalErrorData{},
	}

	// Step 1: Evaluate the source into a scene.
	sc, evalErrs, err := eng.EvaluateContext(ctx, source)
	if err != nil {
		return result, err
	}

	// Step 2: Convert eval errors.
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, EvalErrorData{
				Line:    e.Line,
				Col:     e.Col,
				Message: e.Message,
			})
		}
		return result, nil
	}

	// Step 3: Tessellate the scene into triangle meshes.
	var meshes []*kernel.Mesh
	if merged {
		var m *kernel.Mesh
		m, err = tessellate.Merged(sc, k)
		if m != nil {
			meshes = []*kernel.Mesh{m}
		}
	} else {
		meshes, err = tessellate.Tessellate(sc, k)
	}
	if err != nil {
		log.WithError(err).Debug("tessellation failed")
		result.Errors = append(result.Errors, EvalErrorData{
			Message: "tessellation failed: " + err.Error(),
		})
		return result, nil
	}

	// Step 4: Summarise each mesh and assign a color.
	for i, m := range meshes {
		min, max := m.Bounds()
		result.Meshes = append(result.Meshes, MeshData{
			PartName:  m.PartName,
			Color:     colorPalette[i%len(colorPalette)],
			Triangles: m.TriangleCount(),
			Min:       min,
			Max:       max,
			mesh:      m,
		})
	}
	return result, nil
}
