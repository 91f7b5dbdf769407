// Package stl reads STL files into half-edge meshes and writes extracted
// render meshes back out as binary STL.
package stl

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chazu/sdfkit/pkg/geom"
	"github.com/chazu/sdfkit/pkg/mesh"
)

// WeldTolerance is the grid on which coincident vertices are merged.
const WeldTolerance = 1e-6

const (
	headerSize   = 80
	triangleSize = 50
)

// ErrEmpty is returned when a file holds no triangles.
var ErrEmpty = errors.New("stl: no triangles")

// Parse reads an STL file. The mesh is named after the file.
func Parse(filename string) (*mesh.Mesh, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("stl: failed to open file: %w", err)
	}
	defer file.Close()

	m, err := Read(file)
	if err != nil {
		return nil, fmt.Errorf("stl: %s: %w", filename, err)
	}
	if m.Name == "" {
		m.Name = strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	}
	return m, nil
}

// Read decodes an ASCII or binary STL stream. Coincident vertices are
// welded, and the mesh comes back with edge mates, bounds and face
// normals built.
func Read(r io.Reader) (*mesh.Mesh, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read: %w", err)
	}

	var (
		name string
		tris []geom.Triangle
	)
	if isBinary(data) {
		name, tris, err = parseBinary(bytes.NewReader(data))
	} else {
		name, tris, err = parseASCII(bytes.NewReader(data))
	}
	if err != nil {
		return nil, err
	}
	if len(tris) == 0 {
		return nil, ErrEmpty
	}

	m, err := weld(name, tris)
	if err != nil {
		return nil, err
	}
	m.EnsureMaterial()
	m.UpdateEdgeMate()
	m.UpdateBndBox()
	m.UpdateNormal(mesh.NormalFace)
	return m, nil
}

// isBinary checks the triangle count against the stream length, since
// binary files may also begin with "solid".
func isBinary(data []byte) bool {
	if len(data) < headerSize+4 {
		return false
	}
	n := binary.LittleEndian.Uint32(data[headerSize:])
	if int64(len(data)) == headerSize+4+int64(n)*triangleSize {
		return true
	}
	return !bytes.HasPrefix(bytes.TrimLeft(data, " \t\r\n"), []byte("solid"))
}

type weldKey [3]int64

func keyOf(p geom.Point3) weldKey {
	return weldKey{
		int64(math.Round(p.X / WeldTolerance)),
		int64(math.Round(p.Y / WeldTolerance)),
		int64(math.Round(p.Z / WeldTolerance)),
	}
}

func weld(name string, tris []geom.Triangle) (*mesh.Mesh, error) {
	m := mesh.New(name)
	index := make(map[weldKey]int, len(tris))
	for i, t := range tris {
		var v [3]int
		for c, p := range t {
			k := keyOf(p)
			id, ok := index[k]
			if !ok {
				id = m.AddVertex(p)
				index[k] = id
			}
			v[c] = id
		}
		if v[0] == v[1] || v[1] == v[2] || v[0] == v[2] {
			// Collapsed by welding.
			continue
		}
		if _, err := m.AddFace(v[0], v[1], v[2]); err != nil {
			return nil, fmt.Errorf("triangle %d: %w", i, err)
		}
	}
	return m, nil
}

func parseASCII(reader io.Reader) (string, []geom.Triangle, error) {
	scanner := bufio.NewScanner(reader)
	var (
		name     string
		tris     []geom.Triangle
		vertices []geom.Point3
		line     int
	)
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "solid":
			if len(fields) > 1 {
				name = strings.Join(fields[1:], " ")
			}

		case "vertex":
			if len(fields) < 4 {
				return "", nil, fmt.Errorf("line %d: vertex needs three coordinates", line)
			}
			var xyz [3]float64
			for i := range xyz {
				f, err := strconv.ParseFloat(fields[i+1], 64)
				if err != nil {
					return "", nil, fmt.Errorf("line %d: %w", line, err)
				}
				xyz[i] = f
			}
			vertices = append(vertices, geom.Pt(xyz[0], xyz[1], xyz[2]))

		case "endfacet":
			if len(vertices) != 3 {
				return "", nil, fmt.Errorf("line %d: facet has %d vertices", line, len(vertices))
			}
			tris = append(tris, geom.Tri(vertices[0], vertices[1], vertices[2]))
			vertices = vertices[:0]
		}
	}
	if err := scanner.Err(); err != nil {
		return "", nil, fmt.Errorf("error reading ASCII STL: %w", err)
	}
	return name, tris, nil
}

func parseBinary(reader io.Reader) (string, []geom.Triangle, error) {
	header := make([]byte, headerSize)
	if _, err := io.ReadFull(reader, header); err != nil {
		return "", nil, fmt.Errorf("failed to read header: %w", err)
	}
	name := strings.TrimSpace(string(bytes.TrimRight(header, "\x00")))

	var count uint32
	if err := binary.Read(reader, binary.LittleEndian, &count); err != nil {
		return "", nil, fmt.Errorf("failed to read triangle count: %w", err)
	}

	// normal, three vertices, attribute byte count
	var rec struct {
		Normal    [3]float32
		V         [3][3]float32
		Attribute uint16
	}
	tris := make([]geom.Triangle, 0, count)
	for i := uint32(0); i < count; i++ {
		if err := binary.Read(reader, binary.LittleEndian, &rec); err != nil {
			return "", nil, fmt.Errorf("failed to read triangle %d: %w", i, err)
		}
		var t geom.Triangle
		for c, v := range rec.V {
			t[c] = geom.Pt(float64(v[0]), float64(v[1]), float64(v[2]))
		}
		tris = append(tris, t)
	}
	return name, tris, nil
}
