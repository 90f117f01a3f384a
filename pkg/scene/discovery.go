package scene

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrUnknownScene is returned by Load for a name that is neither a built-in
// scene nor a scene file
var ErrUnknownScene = errors.New("unknown scene")

// Scene source types
const (
	TypeBuiltin = "builtin"
	TypeYAML    = "yaml"
)

// SceneInfo represents a discovered scene with its metadata
type SceneInfo struct {
	ID          string // Name accepted by Load
	DisplayName string
	Description string
	Type        string // TypeBuiltin or TypeYAML
	FilePath    string // Scene file (yaml type only)
}

// sceneHeader is the subset of a description read during discovery
type sceneHeader struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// ListDescriptions scans dir for *.yaml and *.yml scene files. A missing
// directory yields an empty list.
func ListDescriptions(dir string) ([]SceneInfo, error) {
	if _, err := os.Stat(dir); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan scenes directory: %w", err)
	}

	var files []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("failed to scan scenes directory: %w", err)
		}
		files = append(files, matches...)
	}

	var scenes []SceneInfo
	for _, path := range files {
		info, err := ReadSceneInfo(path)
		if err != nil {
			logger.Warningf("skipping %s: %v", path, err)
			continue
		}
		scenes = append(scenes, info)
	}

	sort.Slice(scenes, func(i, j int) bool {
		return scenes[i].DisplayName < scenes[j].DisplayName
	})
	return scenes, nil
}

// ReadSceneInfo reads the name and description of a scene file. The file
// name is the fallback display name.
func ReadSceneInfo(path string) (SceneInfo, error) {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	info := SceneInfo{
		ID:          path,
		DisplayName: titleCase(base),
		Type:        TypeYAML,
		FilePath:    path,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return info, err
	}
	var header sceneHeader
	if err := yaml.Unmarshal(data, &header); err != nil {
		return info, fmt.Errorf("failed to parse scene header: %w", err)
	}
	if header.Name != "" {
		info.DisplayName = header.Name
	}
	info.Description = header.Description
	return info, nil
}

// ListAll returns the built-in scenes followed by the scene files in dir
func ListAll(dir string) ([]SceneInfo, error) {
	scenes := Builtins()
	if dir == "" {
		return scenes, nil
	}
	files, err := ListDescriptions(dir)
	if err != nil {
		return nil, err
	}
	return append(scenes, files...), nil
}

// Load returns a built-in scene by ID, or the scene in a .yaml/.yml file
func Load(nameOrPath string) (*Scene, error) {
	switch strings.ToLower(filepath.Ext(nameOrPath)) {
	case ".yaml", ".yml":
		return LoadDescription(nameOrPath)
	}
	if builtin, ok := builtins[nameOrPath]; ok {
		return builtin.build()
	}
	return nil, fmt.Errorf("%q: %w", nameOrPath, ErrUnknownScene)
}

// titleCase converts a filename-style string to title case
// e.g., "cornell-empty" -> "Cornell Empty"
func titleCase(s string) string {
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")

	words := strings.Fields(s)
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
	}
	return strings.Join(words, " ")
}
