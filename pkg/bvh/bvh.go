// Package bvh builds a quad-split bounding volume hierarchy over the faces
// of a half-edge mesh and answers nearest-point, proximity and
// triangle-intersection queries against it.
package bvh

import (
	"errors"
	"fmt"
	"math"

	"github.com/chazu/sdfkit/pkg/geom"
	"github.com/chazu/sdfkit/pkg/mesh"
)

const (
	// MaxDepth is the depth at which nodes stop splitting.
	MaxDepth = 10
	// MinFaces is the face count below which a node is a leaf.
	MinFaces = 6
)

// ErrMalformedSplit is returned when a face fits none of the four
// quadrants of a split, which happens with NaN coordinates.
var ErrMalformedSplit = errors.New("bvh: face matches no split quadrant")

// ErrNoFaces is returned by distance queries on a tree with no usable faces.
var ErrNoFaces = errors.New("bvh: no faces to query")

// Node is an axis-aligned box over a set of mesh faces. Internal nodes
// always have four children, some of which may hold no faces.
type Node struct {
	Box      geom.Box
	Depth    int
	Leaf     bool
	Children [4]*Node
	Faces    []int
}

// BVH is a tree of Nodes over a mesh.
type BVH struct {
	Root *Node
	Mesh *mesh.Mesh
	// OwnsMesh is set when the BVH built its own private mesh.
	OwnsMesh bool
}

// New builds a BVH over the live faces of m. The mesh must not be
// modified while the BVH is in use.
func New(m *mesh.Mesh) (*BVH, error) {
	root, err := newNode(m, m.LiveFaces(), 0)
	if err != nil {
		return nil, err
	}
	return &BVH{Root: root, Mesh: m}, nil
}

// NewFromArrays builds a private mesh from flat xyz positions and triangle
// indices, prepares its adjacency, bounds and face normals, and builds a
// BVH over it.
func NewFromArrays(positions []float64, indices []int) (*BVH, error) {
	m, err := mesh.FromArrays("bvh", positions, indices)
	if err != nil {
		return nil, fmt.Errorf("bvh: %w", err)
	}
	m.UpdateEdgeMate()
	m.UpdateBndBox()
	m.UpdateNormal(mesh.NormalFace)

	b, err := New(m)
	if err != nil {
		return nil, err
	}
	b.OwnsMesh = true
	return b, nil
}

func newNode(m *mesh.Mesh, faces []int, depth int) (*Node, error) {
	n := &Node{Depth: depth, Faces: faces, Box: geom.EmptyBox()}
	for _, f := range faces {
		for _, v := range m.Faces[f].V {
			n.Box.Extend(m.Vertices[v].Pos)
		}
	}
	n.Leaf = depth >= MaxDepth || len(faces) < MinFaces
	if n.Leaf {
		return n, nil
	}

	buckets, err := n.divide(m)
	if err != nil {
		return nil, err
	}
	for i := range buckets {
		child, err := newNode(m, buckets[i], depth+1)
		if err != nil {
			return nil, err
		}
		n.Children[i] = child
	}
	return n, nil
}

// splitAxes returns the two axes to split: every axis except the one with
// the strictly smallest extent, x by default.
func splitAxes(size geom.Vector3) (int, int) {
	switch {
	case size.Y < size.X && size.Y < size.Z:
		return 2, 0
	case size.Z < size.X && size.Z < size.Y:
		return 0, 1
	}
	return 1, 2
}

// divide sorts the node's faces into four quadrants by the position of
// each face's first vertex.
func (n *Node) divide(m *mesh.Mesh) ([4][]int, error) {
	var buckets [4][]int
	a0, a1 := splitAxes(n.Box.Size())
	c := n.Box.Center()
	c0, c1 := c.Axis(a0), c.Axis(a1)

	for _, f := range n.Faces {
		p := m.Vertices[m.Faces[f].V[0]].Pos
		x, y := p.Axis(a0), p.Axis(a1)
		switch {
		case x <= c0 && y <= c1:
			buckets[0] = append(buckets[0], f)
		case x > c0 && y <= c1:
			buckets[1] = append(buckets[1], f)
		case x > c0 && y > c1:
			buckets[2] = append(buckets[2], f)
		case x <= c0 && y > c1:
			buckets[3] = append(buckets[3], f)
		default:
			return buckets, fmt.Errorf("%w: face %d at depth %d", ErrMalformedSplit, f, n.Depth)
		}
	}
	return buckets, nil
}

func (n *Node) empty() bool {
	return len(n.Faces) == 0
}

// Stats summarizes the shape of a tree.
type Stats struct {
	Nodes    int
	Leaves   int
	Empty    int
	MaxDepth int
	MaxLeaf  int
}

// Stats walks the tree and counts its nodes.
func (b *BVH) Stats() Stats {
	var s Stats
	var walk func(n *Node)
	walk = func(n *Node) {
		s.Nodes++
		s.MaxDepth = max(s.MaxDepth, n.Depth)
		if n.Leaf {
			s.Leaves++
			if n.empty() {
				s.Empty++
			}
			s.MaxLeaf = max(s.MaxLeaf, len(n.Faces))
			return
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	if b.Root != nil {
		walk(b.Root)
	}
	return s
}

// lowerBound is the squared distance from p to the node's box, or +Inf
// for nodes without faces.
func (n *Node) lowerBound(p geom.Point3) float64 {
	if n.empty() {
		return math.Inf(1)
	}
	return n.Box.SqDistLowerBound(p)
}
