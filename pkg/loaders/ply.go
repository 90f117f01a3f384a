package loaders

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/df07/go-recursive-raytracer/pkg/core"
)

// PLYHeader represents the parsed header information from a PLY file
type PLYHeader struct {
	Format      string // "binary_little_endian", "binary_big_endian", or "ascii"
	Version     string // Usually "1.0"
	VertexCount int
	FaceCount   int
	VertexProps []PLYProperty
	FaceProps   []PLYProperty

	// Elements other than vertex and face, in file order
	Others []PLYElement

	HasNormals    bool
	NormalIndices [3]int // Indices of nx, ny, nz properties
	order         []string
}

// PLYElement is an element the loader skips
type PLYElement struct {
	Name  string
	Count int
	Props []PLYProperty
}

// PLYProperty represents a property definition in the PLY header
type PLYProperty struct {
	Name     string
	Type     string
	IsList   bool
	ListType string // For list properties, the type of the count
	DataType string // For list properties, the type of the data
}

// LoadPLY loads a PLY file
func LoadPLY(filename string) (*MeshData, error) {
	startTime := time.Now()

	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open PLY file: %w", err)
	}
	defer file.Close()

	data, err := ReadPLY(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	data.Name = strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))

	logger.Infof("loaded PLY %s: %d vertices, %d triangles in %v",
		filename, len(data.Vertices), len(data.Faces), time.Since(startTime))
	return data, nil
}

// ReadPLY parses ascii, binary little endian and binary big endian PLY data.
// Polygons with more than three corners are split into a triangle fan.
func ReadPLY(r io.Reader) (*MeshData, error) {
	reader := bufio.NewReaderSize(r, 1024*1024)

	header, err := parsePLYHeader(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to parse PLY header: %w", err)
	}

	var source plySource
	switch header.Format {
	case "ascii":
		source = &asciiSource{reader: reader}
	case "binary_little_endian":
		source = &binarySource{reader: reader, order: binary.LittleEndian}
	case "binary_big_endian":
		source = &binarySource{reader: reader, order: binary.BigEndian}
	default:
		return nil, fmt.Errorf("unsupported PLY format %q: %w", header.Format, ErrMalformed)
	}

	data := &MeshData{
		Vertices: make([]core.Vec3, 0, header.VertexCount),
		Faces:    make([][3]int, 0, header.FaceCount),
	}
	if header.HasNormals {
		data.Normals = make([]core.Vec3, 0, header.VertexCount)
	}

	for _, element := range header.order {
		switch element {
		case "vertex":
			if err := readPLYVertices(source, header, data); err != nil {
				return nil, err
			}
		case "face":
			if err := readPLYFaces(source, header, data); err != nil {
				return nil, err
			}
		default:
			if err := skipPLYElement(source, header, element); err != nil {
				return nil, err
			}
		}
	}
	return data, nil
}

// parsePLYHeader parses the header up to and including end_header
func parsePLYHeader(reader *bufio.Reader) (*PLYHeader, error) {
	header := &PLYHeader{}
	var currentElement string
	first := true

	for {
		raw, err := reader.ReadString('\n')
		if err != nil && (err != io.EOF || raw == "") {
			return nil, fmt.Errorf("header ended before end_header: %w", ErrMalformed)
		}
		line := strings.TrimSpace(raw)

		if first {
			if line != "ply" {
				return nil, fmt.Errorf("missing ply magic number: %w", ErrMalformed)
			}
			first = false
			continue
		}
		if line == "end_header" {
			break
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "format":
			if len(parts) >= 3 {
				header.Format = parts[1]
				header.Version = parts[2]
			}
		case "comment", "obj_info":
			// Ignore comments
		case "element":
			if len(parts) < 3 {
				return nil, fmt.Errorf("invalid element line %q: %w", line, ErrMalformed)
			}
			count, err := strconv.Atoi(parts[2])
			if err != nil || count < 0 {
				return nil, fmt.Errorf("invalid element count %q: %w", parts[2], ErrMalformed)
			}

			currentElement = parts[1]
			header.order = append(header.order, currentElement)
			switch currentElement {
			case "vertex":
				header.VertexCount = count
			case "face":
				header.FaceCount = count
			default:
				header.Others = append(header.Others, PLYElement{Name: currentElement, Count: count})
			}
		case "property":
			prop, err := parsePLYProperty(parts[1:])
			if err != nil {
				return nil, fmt.Errorf("failed to parse property: %w", err)
			}

			switch currentElement {
			case "vertex":
				header.VertexProps = append(header.VertexProps, prop)
				propIndex := len(header.VertexProps) - 1
				switch prop.Name {
				case "nx":
					header.HasNormals = true
					header.NormalIndices[0] = propIndex
				case "ny":
					header.NormalIndices[1] = propIndex
				case "nz":
					header.NormalIndices[2] = propIndex
				}
			case "face":
				header.FaceProps = append(header.FaceProps, prop)
			case "":
				return nil, fmt.Errorf("property before any element: %w", ErrMalformed)
			default:
				other := &header.Others[len(header.Others)-1]
				other.Props = append(other.Props, prop)
			}
		}
	}

	return header, nil
}

// parsePLYProperty parses a property line from the PLY header
func parsePLYProperty(parts []string) (PLYProperty, error) {
	if len(parts) < 2 {
		return PLYProperty{}, fmt.Errorf("invalid property definition: %w", ErrMalformed)
	}

	prop := PLYProperty{}

	if parts[0] == "list" {
		if len(parts) < 4 {
			return PLYProperty{}, fmt.Errorf("invalid list property definition: %w", ErrMalformed)
		}
		prop.IsList = true
		prop.ListType = parts[1]
		prop.DataType = parts[2]
		prop.Name = parts[3]
	} else {
		prop.Type = parts[0]
		prop.Name = parts[1]
	}

	if getTypeSize(prop.Type) == 0 && !prop.IsList {
		return PLYProperty{}, fmt.Errorf("unknown property type %q: %w", prop.Type, ErrMalformed)
	}
	return prop, nil
}

func readPLYVertices(source plySource, header *PLYHeader, data *MeshData) error {
	values := make([]float64, len(header.VertexProps))
	for i := 0; i < header.VertexCount; i++ {
		for p, prop := range header.VertexProps {
			if prop.IsList {
				if err := skipPLYList(source, prop); err != nil {
					return fmt.Errorf("vertex %d: %w", i, err)
				}
				continue
			}
			value, err := source.scalar(prop.Type)
			if err != nil {
				return fmt.Errorf("vertex %d property %s: %w", i, prop.Name, err)
			}
			values[p] = value
		}

		var vertex core.Vec3
		for p, prop := range header.VertexProps {
			switch prop.Name {
			case "x":
				vertex.X = values[p]
			case "y":
				vertex.Y = values[p]
			case "z":
				vertex.Z = values[p]
			}
		}
		data.Vertices = append(data.Vertices, vertex)

		if header.HasNormals {
			n := header.NormalIndices
			data.Normals = append(data.Normals, core.NewVec3(values[n[0]], values[n[1]], values[n[2]]))
		}
	}
	return nil
}

func readPLYFaces(source plySource, header *PLYHeader, data *MeshData) error {
	for i := 0; i < header.FaceCount; i++ {
		for _, prop := range header.FaceProps {
			if !prop.IsList || (prop.Name != "vertex_indices" && prop.Name != "vertex_index") {
				if err := skipPLYProperty(source, prop); err != nil {
					return fmt.Errorf("face %d property %s: %w", i, prop.Name, err)
				}
				continue
			}

			count, err := source.scalar(prop.ListType)
			if err != nil {
				return fmt.Errorf("face %d vertex count: %w", i, err)
			}
			if count < 3 || count > math.MaxUint16 {
				return fmt.Errorf("face %d has %v vertices: %w", i, count, ErrMalformed)
			}

			indices := make([]int, int(count))
			for k := range indices {
				value, err := source.scalar(prop.DataType)
				if err != nil {
					return fmt.Errorf("face %d index %d: %w", i, k, err)
				}
				indices[k] = int(value)
			}

			// Fan triangulation around the first corner
			for k := 1; k+1 < len(indices); k++ {
				data.Faces = append(data.Faces, [3]int{indices[0], indices[k], indices[k+1]})
			}
		}
	}
	return nil
}

func skipPLYElement(source plySource, header *PLYHeader, name string) error {
	for _, element := range header.Others {
		if element.Name != name {
			continue
		}
		for i := 0; i < element.Count; i++ {
			for _, prop := range element.Props {
				if err := skipPLYProperty(source, prop); err != nil {
					return fmt.Errorf("%s %d: %w", name, i, err)
				}
			}
		}
	}
	return nil
}

func skipPLYProperty(source plySource, prop PLYProperty) error {
	if prop.IsList {
		return skipPLYList(source, prop)
	}
	_, err := source.scalar(prop.Type)
	return err
}

func skipPLYList(source plySource, prop PLYProperty) error {
	count, err := source.scalar(prop.ListType)
	if err != nil {
		return err
	}
	for k := 0; k < int(count); k++ {
		if _, err := source.scalar(prop.DataType); err != nil {
			return err
		}
	}
	return nil
}

// getTypeSize returns the size in bytes of a PLY data type, or 0 if unknown
func getTypeSize(dataType string) int {
	switch dataType {
	case "float", "float32", "int", "int32", "uint", "uint32":
		return 4
	case "double", "float64":
		return 8
	case "short", "int16", "ushort", "uint16":
		return 2
	case "char", "int8", "uchar", "uint8":
		return 1
	default:
		return 0
	}
}

// plySource reads scalar values of a given PLY type from the body
type plySource interface {
	scalar(dataType string) (float64, error)
}

// asciiSource reads whitespace-separated tokens
type asciiSource struct {
	reader *bufio.Reader
}

func (s *asciiSource) token() (string, error) {
	var sb strings.Builder
	for {
		b, err := s.reader.ReadByte()
		if err != nil {
			if err == io.EOF && sb.Len() > 0 {
				return sb.String(), nil
			}
			return "", fmt.Errorf("unexpected end of data: %w", ErrMalformed)
		}
		if b == ' ' || b == '\n' || b == '\r' || b == '\t' {
			if sb.Len() > 0 {
				return sb.String(), nil
			}
			continue
		}
		sb.WriteByte(b)
	}
}

func (s *asciiSource) scalar(dataType string) (float64, error) {
	tok, err := s.token()
	if err != nil {
		return 0, err
	}
	value, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", dataType, tok, ErrMalformed)
	}
	return value, nil
}

// binarySource decodes fixed-size values in the given byte order
type binarySource struct {
	reader *bufio.Reader
	order  binary.ByteOrder
	buf    [8]byte
}

func (s *binarySource) scalar(dataType string) (float64, error) {
	size := getTypeSize(dataType)
	if size == 0 {
		return 0, fmt.Errorf("unknown type %q: %w", dataType, ErrMalformed)
	}
	b := s.buf[:size]
	if _, err := io.ReadFull(s.reader, b); err != nil {
		return 0, fmt.Errorf("unexpected end of data: %w", ErrMalformed)
	}

	switch dataType {
	case "char", "int8":
		return float64(int8(b[0])), nil
	case "uchar", "uint8":
		return float64(b[0]), nil
	case "short", "int16":
		return float64(int16(s.order.Uint16(b))), nil
	case "ushort", "uint16":
		return float64(s.order.Uint16(b)), nil
	case "int", "int32":
		return float64(int32(s.order.Uint32(b))), nil
	case "uint", "uint32":
		return float64(s.order.Uint32(b)), nil
	case "float", "float32":
		return float64(math.Float32frombits(s.order.Uint32(b))), nil
	default:
		return math.Float64frombits(s.order.Uint64(b)), nil
	}
}
