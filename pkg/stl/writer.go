package stl

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/chazu/sdfkit/pkg/kernel"
)

// Encode writes m as binary STL. Facet normals are recomputed from the
// vertex positions.
func Encode(w io.Writer, m *kernel.Mesh) error {
	bw := bufio.NewWriter(w)

	var header [headerSize]byte
	copy(header[:], m.PartName)
	if _, err := bw.Write(header[:]); err != nil {
		return fmt.Errorf("stl: failed to write header: %w", err)
	}

	n := m.TriangleCount()
	if err := binary.Write(bw, binary.LittleEndian, uint32(n)); err != nil {
		return fmt.Errorf("stl: failed to write triangle count: %w", err)
	}

	var rec [12]float32
	for t := 0; t < n; t++ {
		for c := 0; c < 3; c++ {
			i := m.Indices[t*3+c]
			if int(i) >= m.VertexCount() {
				return fmt.Errorf("stl: triangle %d references vertex %d of %d", t, i, m.VertexCount())
			}
			copy(rec[3+c*3:6+c*3], m.Vertices[i*3:i*3+3])
		}
		nx, ny, nz := facetNormal(rec[3:12])
		rec[0], rec[1], rec[2] = nx, ny, nz
		if err := binary.Write(bw, binary.LittleEndian, rec); err != nil {
			return fmt.Errorf("stl: failed to write triangle %d: %w", t, err)
		}
		if err := binary.Write(bw, binary.LittleEndian, uint16(0)); err != nil {
			return fmt.Errorf("stl: failed to write triangle %d: %w", t, err)
		}
	}
	return bw.Flush()
}

// Write saves m as a binary STL file.
func Write(filename string, m *kernel.Mesh) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("stl: failed to create file: %w", err)
	}
	if err := Encode(file, m); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func facetNormal(v []float32) (float32, float32, float32) {
	ax, ay, az := float64(v[3]-v[0]), float64(v[4]-v[1]), float64(v[5]-v[2])
	bx, by, bz := float64(v[6]-v[0]), float64(v[7]-v[1]), float64(v[8]-v[2])
	nx, ny, nz := ay*bz-az*by, az*bx-ax*bz, ax*by-ay*bx
	l := math.Sqrt(nx*nx + ny*ny + nz*nz)
	if l == 0 {
		return 0, 0, 0
	}
	return float32(nx / l), float32(ny / l), float32(nz / l)
}
