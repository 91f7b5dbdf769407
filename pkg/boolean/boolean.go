// Package boolean combines signed distance volumes with union,
// intersection and difference.
//
// Inputs are resampled through their own model transforms onto a fresh
// cubic grid covering the combined world box, so volumes with different
// resolutions, placements and rotations can be mixed freely.
package boolean

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/chazu/sdfkit/pkg/geom"
	"github.com/chazu/sdfkit/pkg/logging"
	"github.com/chazu/sdfkit/pkg/volume"
	"github.com/chewxy/math32"
	"github.com/deadsy/sdfx/sdf"
	"github.com/sirupsen/logrus"
)

var log = logging.NamedLogger("boolean")

// BoxPadding is the fraction of the combined box's largest extent added
// on every side.
const BoxPadding = 0.05

var (
	// ErrTooFewVolumes is returned when fewer than two volumes are given.
	ErrTooFewVolumes = errors.New("boolean: at least two volumes are required")
	// ErrEmptyIntersection is returned when the inputs' world boxes do not
	// overlap in intersection mode.
	ErrEmptyIntersection = errors.New("boolean: volumes do not overlap")
	// ErrUnknownMode is returned by ParseMode.
	ErrUnknownMode = errors.New("boolean: unknown mode")
)

// Mode selects the combining operation.
type Mode int

const (
	Union Mode = iota
	Intersection
	Difference
)

func (m Mode) String() string {
	switch m {
	case Union:
		return "union"
	case Intersection:
		return "intersection"
	case Difference:
		return "difference"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode accepts the names printed by String.
func ParseMode(s string) (Mode, error) {
	for _, m := range []Mode{Union, Intersection, Difference} {
		if strings.EqualFold(s, m.String()) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// fold merges one more operand into the running value.
func (m Mode) fold(acc, v float32) float32 {
	switch m {
	case Intersection:
		return math32.Max(acc, v)
	case Difference:
		return math32.Max(acc, -v)
	}
	return math32.Min(acc, v)
}

// ComputeAABB returns the world box a combination covers before padding:
// the union of the inputs' world boxes, their intersection, or the first
// volume's box for a difference.
func ComputeAABB(vols []*volume.Volume, mode Mode) (geom.Box, error) {
	if len(vols) == 0 {
		return geom.Box{}, ErrTooFewVolumes
	}
	box := vols[0].WorldBox()
	if mode == Difference {
		return box, nil
	}
	for _, v := range vols[1:] {
		if mode == Intersection {
			box = box.Intersect(v.WorldBox())
		} else {
			box = box.Union(v.WorldBox())
		}
	}
	if box.IsEmpty() {
		return geom.Box{}, ErrEmptyIntersection
	}
	return box, nil
}

// Combine folds vols into a new volume on a resolution³ grid. Difference
// subtracts every volume after the first from the first.
func Combine(ctx context.Context, vols []*volume.Volume, mode Mode, resolution int) (*volume.Volume, error) {
	if len(vols) < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrTooFewVolumes, len(vols))
	}
	box, err := ComputeAABB(vols, mode)
	if err != nil {
		return nil, err
	}
	box = box.PadUniform(box.MaxExtent() * BoxPadding)

	out, err := volume.Cubic(GenerateName(mode), resolution)
	if err != nil {
		return nil, fmt.Errorf("boolean: %w", err)
	}
	out.SetBounds(box)
	out.Workers = vols[0].Workers

	invs := make([]sdf.M44, len(vols))
	for i, v := range vols {
		invs[i] = v.InvModel()
	}

	start := time.Now()
	err = out.Fill(ctx, func(p geom.Point3) (float32, error) {
		acc := volume.Resample(vols[0], invs[0], p)
		for i := 1; i < len(vols); i++ {
			acc = mode.fold(acc, volume.Resample(vols[i], invs[i], p))
		}
		return acc, nil
	})
	if err != nil {
		return nil, fmt.Errorf("boolean: %s: %w", mode, err)
	}

	log.WithFields(logrus.Fields{
		"name":       out.Name,
		"inputs":     len(vols),
		"resolution": resolution,
		"elapsed":    time.Since(start),
	}).Debug("combined volumes")
	return out, nil
}

// ---------------------------------------------------------------------------
// Naming
// ---------------------------------------------------------------------------

// Namer hands out "union1", "union2", "intersection1" and so on, one
// counter per mode.
type Namer struct {
	mu     sync.Mutex
	counts map[Mode]int
}

// Next returns the next name for mode.
func (n *Namer) Next(mode Mode) string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.counts == nil {
		n.counts = make(map[Mode]int)
	}
	n.counts[mode]++
	return fmt.Sprintf("%s%d", mode, n.counts[mode])
}

var defaultNamer Namer

// GenerateName returns the next process-wide name for mode.
func GenerateName(mode Mode) string {
	return defaultNamer.Next(mode)
}
