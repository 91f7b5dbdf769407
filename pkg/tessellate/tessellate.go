// Package tessellate walks a scene and produces triangle meshes using a
// geometry kernel. One mesh is produced per volume.
package tessellate

import (
	"fmt"

	"github.com/chazu/sdfkit/pkg/kernel"
	"github.com/chazu/sdfkit/pkg/scene"
	"github.com/chazu/sdfkit/pkg/volume"
)

// MergedName is the part name of the mesh produced by Merged.
const MergedName = "scene"

// Tessellate produces one triangle mesh per scene volume, in definition
// order, with each volume's rotation and position applied. The tessellator
// is read-only and never mutates the scene.
func Tessellate(sc *scene.Scene, k kernel.Kernel) ([]*kernel.Mesh, error) {
	if sc == nil {
		return nil, nil
	}

	meshes := make([]*kernel.Mesh, 0, sc.Len())
	for _, v := range sc.List() {
		m, err := k.ToMesh(placed(k, v))
		if err != nil {
			return nil, fmt.Errorf("tessellate: ToMesh failed for volume %s: %w", partName(v), err)
		}
		m.PartName = partName(v)
		meshes = append(meshes, m)
	}
	return meshes, nil
}

// Merged unions every placed volume and extracts a single mesh. It returns
// nil for an empty scene.
func Merged(sc *scene.Scene, k kernel.Kernel) (*kernel.Mesh, error) {
	if sc == nil || sc.Len() == 0 {
		return nil, nil
	}

	var solid kernel.Solid
	for _, v := range sc.List() {
		s := placed(k, v)
		if solid == nil {
			solid = s
			continue
		}
		solid = k.Union(solid, s)
	}

	m, err := k.ToMesh(solid)
	if err != nil {
		return nil, fmt.Errorf("tessellate: ToMesh failed for merged scene: %w", err)
	}
	m.PartName = MergedName
	return m, nil
}

// placed wraps v's grid and applies its rotation first, then translation.
func placed(k kernel.Kernel, v *volume.Volume) kernel.Solid {
	return kernel.Place(k, k.Volume(v), v)
}

// partName prefers the volume's Name, falling back to its short ID.
func partName(v *volume.Volume) string {
	if v.Name != "" {
		return v.Name
	}
	return v.ID.String()[:8]
}
