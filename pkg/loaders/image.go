package loaders

import (
	"fmt"
	"image"
	_ "image/jpeg" // JPEG decoder
	_ "image/png"  // PNG decoder
	"io"
	"os"

	_ "golang.org/x/image/bmp"  // BMP decoder
	_ "golang.org/x/image/tiff" // TIFF decoder

	"github.com/df07/go-recursive-raytracer/pkg/material"
)

// LoadImage loads a PNG, JPEG, BMP or TIFF image as a texture
func LoadImage(filename string) (*material.ImageTexture, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open image file: %w", err)
	}
	defer file.Close()

	texture, format, err := ReadImage(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}

	logger.Debugf("loaded %s image %s (%dx%d)", format, filename, texture.Width, texture.Height)
	return texture, nil
}

// ReadImage decodes an image, detecting the format from its header
func ReadImage(r io.Reader) (*material.ImageTexture, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}
	return material.NewImageTextureFromImage(img), format, nil
}

// LoadCubeMap loads six face images in +x, -x, +y, -y, +z, -z order
func LoadCubeMap(filenames [6]string) (*material.CubeMap, error) {
	var faces [6]material.ColorSource
	for i, filename := range filenames {
		if filename == "" {
			return nil, fmt.Errorf("cube map face %s has no image", material.FaceNames[i])
		}
		texture, err := LoadImage(filename)
		if err != nil {
			return nil, fmt.Errorf("cube map face %s: %w", material.FaceNames[i], err)
		}
		texture.Bilinear = true
		faces[i] = texture
	}
	return material.NewCubeMap(faces), nil
}
