package main

import (
	"bytes"
	"context"
	"image"
	_ "image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "golang.org/x/image/bmp"

	"github.com/df07/go-recursive-raytracer/pkg/config"
	"github.com/df07/go-recursive-raytracer/pkg/scene"
)

func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func decodeImage(t *testing.T, path string) image.Image {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()
	img, _, err := image.Decode(file)
	require.NoError(t, err)
	return img
}

func TestRender_BuiltinScene(t *testing.T) {
	output := filepath.Join(t.TempDir(), "renders", "default.png")

	out, err := executeCommand(t, "render", "default", "--width", "32", "--samples", "2", "--workers", "2", "-o", output)
	require.NoError(t, err)
	assert.Contains(t, out, "default")
	assert.Contains(t, out, "32x18")

	img := decodeImage(t, output)
	assert.Equal(t, image.Rect(0, 0, 32, 18), img.Bounds())
}

func TestRender_ConfigFileWithFlagOverride(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "frame.bmp")
	configPath := filepath.Join(dir, "render.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("width: 20\nheight: 10\nmax_depth: 2\noutput: "+output+"\n"), 0644))

	_, err := executeCommand(t, "render", "cornell", "--config", configPath, "--width", "12")
	require.NoError(t, err)

	img := decodeImage(t, output)
	assert.Equal(t, image.Rect(0, 0, 12, 10), img.Bounds())
}

func TestRender_TreeMatchesLinearScan(t *testing.T) {
	dir := t.TempDir()
	withTree := filepath.Join(dir, "bvh.png")
	withoutTree := filepath.Join(dir, "linear.png")

	_, err := executeCommand(t, "render", "default", "--width", "24", "-o", withTree)
	require.NoError(t, err)
	_, err = executeCommand(t, "render", "default", "--width", "24", "--no-bvh", "-o", withoutTree)
	require.NoError(t, err)

	a, b := decodeImage(t, withTree), decodeImage(t, withoutTree)
	require.Equal(t, a.Bounds(), b.Bounds())
	for y := a.Bounds().Min.Y; y < a.Bounds().Max.Y; y++ {
		for x := a.Bounds().Min.X; x < a.Bounds().Max.X; x++ {
			require.Equal(t, a.At(x, y), b.At(x, y), "pixel (%d, %d)", x, y)
		}
	}
}

func TestRender_YAMLScene(t *testing.T) {
	dir := t.TempDir()
	scenePath := filepath.Join(dir, "ball.yaml")
	content := `
camera:
  center: [0, 0, 3]
  look_at: [0, 0, 0]
  aspect_ratio: 2
materials:
  red:
    diffuse: [1, 0, 0]
objects:
  - type: sphere
    material: red
    radius: 1
lights:
  - type: directional
    direction: [0, 0, -1]
    color: 1
`
	require.NoError(t, os.WriteFile(scenePath, []byte(content), 0644))
	output := filepath.Join(dir, "ball.png")

	_, err := executeCommand(t, "render", scenePath, "--width", "16", "-o", output)
	require.NoError(t, err)

	img := decodeImage(t, output)
	require.Equal(t, image.Rect(0, 0, 16, 8), img.Bounds())

	// The sphere fills the center; the corners see the black background
	r, g, b, _ := img.At(8, 4).RGBA()
	assert.Greater(t, r, uint32(0x8000))
	assert.Zero(t, g)
	assert.Zero(t, b)
	r, _, _, _ = img.At(0, 0).RGBA()
	assert.Zero(t, r)
}

func TestRender_Errors(t *testing.T) {
	output := filepath.Join(t.TempDir(), "x.png")

	_, err := executeCommand(t, "render", "no-such-scene", "-o", output)
	assert.ErrorIs(t, err, scene.ErrUnknownScene)

	_, err = executeCommand(t, "render", "default", "--depth", "-1", "-o", output)
	assert.ErrorIs(t, err, config.ErrInvalidConfig)

	_, err = executeCommand(t, "render", "default", "--width", "8", "-o", filepath.Join(t.TempDir(), "x.gif"))
	assert.Error(t, err)

	_, err = executeCommand(t, "render", "default", "--watch", "-o", output)
	assert.ErrorContains(t, err, "--watch")
}

func TestInfo(t *testing.T) {
	out, err := executeCommand(t, "info", "meshes")
	require.NoError(t, err)
	assert.Contains(t, out, "Scene: meshes")
	assert.Contains(t, out, "Mesh faces")
	// Box, pyramid and icosahedron faces
	assert.Contains(t, out, "38")

	_, err = executeCommand(t, "info", "meshes", "--max-obj-num", "0")
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestScenes(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "glass-room.yaml"), []byte("description: Glass everywhere\n"), 0644))

	out, err := executeCommand(t, "scenes", "--dir", dir)
	require.NoError(t, err)
	for _, id := range []string{"default", "cornell", "sphere-grid", "meshes", "primitives"} {
		assert.Contains(t, out, id)
	}
	assert.Contains(t, out, "Glass Room")
	assert.Contains(t, out, "Glass everywhere")
}

func TestWaitForChange(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "render.yaml")
	scenePath := filepath.Join(dir, "scene.yaml")
	initial := config.Default()

	t.Run("broken config waits for the next change", func(t *testing.T) {
		require.NoError(t, os.WriteFile(configPath, []byte("width: [\n"), 0644))
		changes := make(chan string, 2)
		changes <- mustAbs(configPath)
		changes <- scenePath

		cfg, ok := waitForChange(context.Background(), changes, initial, configPath)
		assert.True(t, ok)
		assert.Equal(t, initial, cfg)
		assert.Empty(t, changes, "the scene change triggered the render")
	})

	t.Run("valid config is reloaded", func(t *testing.T) {
		require.NoError(t, os.WriteFile(configPath, []byte("width: 24\n"), 0644))
		changes := make(chan string, 1)
		changes <- mustAbs(configPath)

		cfg, ok := waitForChange(context.Background(), changes, initial, configPath)
		assert.True(t, ok)
		assert.Equal(t, 24, cfg.Width)
	})

	t.Run("canceled", func(t *testing.T) {
		require.NoError(t, os.WriteFile(configPath, []byte("width: [\n"), 0644))
		ctx, cancel := context.WithCancel(context.Background())
		changes := make(chan string, 1)
		changes <- mustAbs(configPath)
		cancel()

		_, ok := waitForChange(ctx, changes, initial, configPath)
		assert.False(t, ok)
	})
}
