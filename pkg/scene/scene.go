package scene

import (
	"errors"
	"fmt"

	"github.com/chazu/sdfkit/pkg/geom"
	"github.com/chazu/sdfkit/pkg/volume"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

// Default grid settings for volumes created without explicit options.
const (
	DefaultDim     = 64
	DefaultPadding = 0.1
)

// ErrDuplicateName is returned by Add when a name is already registered.
var ErrDuplicateName = errors.New("scene: duplicate volume name")

// Defaults contains scene-wide grid settings.
type Defaults struct {
	Dim     int     `json:"dim"`     // samples per axis
	Padding float64 `json:"padding"` // fraction of each axis extent
}

// Scene holds the volumes defined by one evaluation.
type Scene struct {
	Volumes   map[uuid.UUID]*volume.Volume `json:"volumes"`
	Order     []uuid.UUID                  `json:"order"`
	NameIndex map[string]uuid.UUID         `json:"name_index"`
	Defaults  Defaults                     `json:"defaults"`
	Version   uint64                       `json:"version"`
}

// New creates an empty Scene with default settings.
func New() *Scene {
	return &Scene{
		Volumes:   make(map[uuid.UUID]*volume.Volume),
		NameIndex: make(map[string]uuid.UUID),
		Defaults: Defaults{
			Dim:     DefaultDim,
			Padding: DefaultPadding,
		},
	}
}

// Add registers v. Unnamed volumes are kept but cannot be looked up.
func (s *Scene) Add(v *volume.Volume) error {
	if v.Name != "" {
		if _, ok := s.NameIndex[v.Name]; ok {
			return fmt.Errorf("%w: %q", ErrDuplicateName, v.Name)
		}
		s.NameIndex[v.Name] = v.ID
	}
	if _, ok := s.Volumes[v.ID]; !ok {
		s.Order = append(s.Order, v.ID)
	}
	s.Volumes[v.ID] = v
	return nil
}

// Lookup returns the volume with the given name, or nil.
func (s *Scene) Lookup(name string) *volume.Volume {
	id, ok := s.NameIndex[name]
	if !ok {
		return nil
	}
	return s.Volumes[id]
}

// MustLookup returns the volume with the given name, or panics.
func (s *Scene) MustLookup(name string) *volume.Volume {
	v := s.Lookup(name)
	if v == nil {
		panic(fmt.Sprintf("scene: no volume named %q", name))
	}
	return v
}

// Get returns the volume with the given ID, or nil.
func (s *Scene) Get(id uuid.UUID) *volume.Volume {
	return s.Volumes[id]
}

// List returns the volumes in the order they were added.
func (s *Scene) List() []*volume.Volume {
	return lo.FilterMap(s.Order, func(id uuid.UUID, _ int) (*volume.Volume, bool) {
		v, ok := s.Volumes[id]
		return v, ok
	})
}

// Names returns the registered names in the order they were added.
func (s *Scene) Names() []string {
	return lo.FilterMap(s.List(), func(v *volume.Volume, _ int) (string, bool) {
		return v.Name, v.Name != ""
	})
}

// Selected returns the volumes flagged as selected.
func (s *Scene) Selected() []*volume.Volume {
	return lo.Filter(s.List(), func(v *volume.Volume, _ int) bool {
		return v.Selected
	})
}

// Len returns the number of volumes.
func (s *Scene) Len() int {
	return len(s.Volumes)
}

// Bounds returns the union of every volume's world box. It is empty for
// an empty scene.
func (s *Scene) Bounds() geom.Box {
	b := geom.EmptyBox()
	for _, v := range s.List() {
		b = b.Union(v.WorldBox())
	}
	return b
}
