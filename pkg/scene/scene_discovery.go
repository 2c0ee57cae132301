package scene

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/df07/go-weekend-raytracer/pkg/log"
)

// DefaultSceneName is rendered when no scene is requested
const DefaultSceneName = "ring"

// SceneInfo represents a discovered scene with its metadata
type SceneInfo struct {
	ID          string `json:"id"`                 // Name accepted by LoadScene
	DisplayName string `json:"displayName"`        // UI display name
	Description string `json:"description"`        // Optional description
	Type        string `json:"type"`               // "builtin" or "file"
	FilePath    string `json:"filePath,omitempty"` // Path to the JSON file (file type only)
}

type builtinScene struct {
	info  SceneInfo
	build func() (*Scene, error)
}

var builtinScenes = []builtinScene{
	{
		info: SceneInfo{
			ID:          "ring",
			DisplayName: "Ring",
			Description: "Chrome sphere inside a ring of twelve colored diffuse spheres",
			Type:        "builtin",
		},
		build: func() (*Scene, error) { return NewRingScene() },
	},
	{
		info: SceneInfo{
			ID:          "ring-glass",
			DisplayName: "Ring With Glass",
			Description: "Ring scene with an inner ring of glass spheres",
			Type:        "builtin",
		},
		build: func() (*Scene, error) { return NewRingGlassScene() },
	},
	{
		info: SceneInfo{
			ID:          "materials",
			DisplayName: "Materials",
			Description: "Diffuse, metal and glass spheres side by side",
			Type:        "builtin",
		},
		build: func() (*Scene, error) { return NewMaterialsScene() },
	},
}

var logger = log.New("scene")

// ListScenes returns the built-in scenes followed by the JSON scenes found in dir,
// sorted by display name. A missing directory yields only the built-ins.
func ListScenes(dir string) ([]SceneInfo, error) {
	scenes := make([]SceneInfo, 0, len(builtinScenes))
	for _, b := range builtinScenes {
		scenes = append(scenes, b.info)
	}

	if dir == "" {
		return scenes, nil
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return scenes, nil
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to scan scenes directory: %w", err)
	}

	var fileScenes []SceneInfo
	for _, filePath := range files {
		info, err := readSceneInfo(filePath)
		if err != nil {
			logger.Warningf("skipping %s: %v", filePath, err)
			continue
		}
		fileScenes = append(fileScenes, info)
	}

	sort.Slice(fileScenes, func(i, j int) bool {
		return fileScenes[i].DisplayName < fileScenes[j].DisplayName
	})

	return append(scenes, fileScenes...), nil
}

// LoadScene resolves a built-in name, an explicit .json path, or a
// <name>.json file in dir, in that order. It opens any path it is given, so
// names from untrusted callers go through LoadSceneByID instead.
func LoadScene(nameOrPath, dir string) (*Scene, error) {
	if nameOrPath == "" {
		nameOrPath = DefaultSceneName
	}

	if b, ok := findBuiltin(nameOrPath); ok {
		return b.build()
	}

	if strings.HasSuffix(nameOrPath, ".json") {
		if _, err := os.Stat(nameOrPath); err == nil {
			return LoadSceneFile(nameOrPath)
		}
	}

	return loadFromDir(nameOrPath, dir)
}

// LoadSceneByID resolves only the IDs ListScenes reports: a built-in name or
// the base name of a .json file directly inside dir. IDs holding a path
// separator or a ".." element are unknown.
func LoadSceneByID(id, dir string) (*Scene, error) {
	if id == "" {
		id = DefaultSceneName
	}

	if b, ok := findBuiltin(id); ok {
		return b.build()
	}

	if !isPlainID(id) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScene, id)
	}
	return loadFromDir(id, dir)
}

func findBuiltin(id string) (builtinScene, bool) {
	for _, b := range builtinScenes {
		if b.info.ID == id {
			return b, true
		}
	}
	return builtinScene{}, false
}

func loadFromDir(name, dir string) (*Scene, error) {
	if dir != "" {
		candidate := filepath.Join(dir, name+".json")
		if _, err := os.Stat(candidate); err == nil {
			return LoadSceneFile(candidate)
		}
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownScene, name)
}

// isPlainID reports whether id names a file directly inside a directory
func isPlainID(id string) bool {
	return id != "." &&
		!strings.ContainsAny(id, `/\`) &&
		!strings.Contains(id, "..") &&
		filepath.Base(id) == id
}

func readSceneInfo(filePath string) (SceneInfo, error) {
	id := strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))
	info := SceneInfo{
		ID:          id,
		DisplayName: titleCase(id),
		Type:        "file",
		FilePath:    filePath,
	}

	f, err := os.Open(filePath)
	if err != nil {
		return info, err
	}
	defer f.Close()

	cfg, err := ParseSceneConfig(f)
	if err != nil {
		return info, err
	}
	if cfg.Name != "" {
		info.DisplayName = cfg.Name
	}
	info.Description = cfg.Description
	return info, nil
}

// titleCase converts a filename-style string to title case
// e.g., "three-spheres" -> "Three Spheres"
func titleCase(s string) string {
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")

	words := strings.Fields(s)
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
	}

	return strings.Join(words, " ")
}
