package loaders

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/df07/go-recursive-raytracer/pkg/core"
)

// stlTriangleSize is the size of one binary STL record: normal, three
// vertices and the attribute byte count
const stlTriangleSize = 50

// LoadSTL loads an ascii or binary STL file
func LoadSTL(filename string) (*MeshData, error) {
	startTime := time.Now()

	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open STL file: %w", err)
	}
	defer file.Close()

	data, err := ReadSTL(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	if data.Name == "" {
		data.Name = strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	}

	logger.Infof("loaded STL %s: %d unique vertices, %d triangles in %v",
		filename, len(data.Vertices), len(data.Faces), time.Since(startTime))
	return data, nil
}

// ReadSTL parses STL data, detecting the format from its contents. STL
// stores every triangle with its own corners, so identical positions are
// merged into shared vertices; this lets smooth normals be generated. Facet
// normals are ignored.
func ReadSTL(r io.Reader) (*MeshData, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read STL data: %w", err)
	}

	builder := newVertexDeduplicator()
	if isASCIISTL(content) {
		err = parseASCIISTL(bytes.NewReader(content), builder)
	} else {
		err = parseBinarySTL(content, builder)
	}
	if err != nil {
		return nil, err
	}
	return builder.data, nil
}

// isASCIISTL reports whether content is ascii. Some binary exporters also
// start their header with "solid", so the binary size is checked first.
func isASCIISTL(content []byte) bool {
	if !bytes.HasPrefix(content, []byte("solid")) {
		return false
	}
	if len(content) >= 84 {
		count := binary.LittleEndian.Uint32(content[80:84])
		if uint64(len(content)) == 84+uint64(count)*stlTriangleSize {
			return false
		}
	}
	return true
}

// parseASCIISTL parses an ASCII STL file
func parseASCIISTL(reader io.Reader, builder *vertexDeduplicator) error {
	scanner := bufio.NewScanner(reader)
	var vertices []core.Vec3
	line := 0

	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "solid":
			if len(fields) > 1 {
				builder.data.Name = strings.Join(fields[1:], " ")
			}

		case "vertex":
			if len(fields) < 4 {
				return fmt.Errorf("line %d: vertex needs three coordinates: %w", line, ErrMalformed)
			}
			var coords [3]float64
			for k := range coords {
				value, err := strconv.ParseFloat(fields[k+1], 64)
				if err != nil {
					return fmt.Errorf("line %d: invalid coordinate %q: %w", line, fields[k+1], ErrMalformed)
				}
				coords[k] = value
			}
			vertices = append(vertices, core.NewVec3(coords[0], coords[1], coords[2]))

		case "endfacet":
			if len(vertices) != 3 {
				return fmt.Errorf("line %d: facet with %d vertices: %w", line, len(vertices), ErrMalformed)
			}
			builder.addTriangle(vertices[0], vertices[1], vertices[2])
			vertices = vertices[:0]
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading ASCII STL: %w", err)
	}
	return nil
}

// parseBinarySTL parses a binary STL file
func parseBinarySTL(content []byte, builder *vertexDeduplicator) error {
	if len(content) < 84 {
		return fmt.Errorf("binary STL shorter than its header: %w", ErrMalformed)
	}

	name := strings.TrimSpace(string(bytes.TrimRight(content[:80], "\x00")))
	builder.data.Name = name

	count := binary.LittleEndian.Uint32(content[80:84])
	body := content[84:]
	if uint64(len(body)) < uint64(count)*stlTriangleSize {
		return fmt.Errorf("binary STL declares %d triangles but holds %d: %w",
			count, len(body)/stlTriangleSize, ErrMalformed)
	}

	reader := bytes.NewReader(body)
	for i := uint32(0); i < count; i++ {
		var record struct {
			Normal     [3]float32
			V1, V2, V3 [3]float32
			Attributes uint16
		}
		if err := binary.Read(reader, binary.LittleEndian, &record); err != nil {
			return fmt.Errorf("failed to read triangle %d: %w", i, err)
		}
		builder.addTriangle(toVec3(record.V1), toVec3(record.V2), toVec3(record.V3))
	}
	return nil
}

func toVec3(v [3]float32) core.Vec3 {
	return core.NewVec3(float64(v[0]), float64(v[1]), float64(v[2]))
}

// vertexDeduplicator merges identical positions into shared vertex indices
type vertexDeduplicator struct {
	data    *MeshData
	indices map[core.Vec3]int
}

func newVertexDeduplicator() *vertexDeduplicator {
	return &vertexDeduplicator{
		data:    &MeshData{},
		indices: make(map[core.Vec3]int),
	}
}

func (d *vertexDeduplicator) vertex(v core.Vec3) int {
	if index, ok := d.indices[v]; ok {
		return index
	}
	index := len(d.data.Vertices)
	d.data.Vertices = append(d.data.Vertices, v)
	d.indices[v] = index
	return index
}

func (d *vertexDeduplicator) addTriangle(a, b, c core.Vec3) {
	d.data.Faces = append(d.data.Faces, [3]int{d.vertex(a), d.vertex(b), d.vertex(c)})
}
