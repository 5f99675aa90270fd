package scene

import (
	"embed"
	"os"
	"path/filepath"
	"strings"
)

//go:embed *.yaml
var ScenesFS embed.FS

//go:embed scripts/*.tengo
var ScriptsFS embed.FS

// Load reads a scene from disk when a file of that name exists under scenes/
// or at the given path, and falls back to the embedded copy.
func Load(name string) ([]byte, error) {
	if data, err := os.ReadFile(name); err == nil {
		return data, nil
	}
	clean := cleanScenePath(name)
	if data, err := os.ReadFile(diskScenePath(clean)); err == nil {
		return data, nil
	}
	return ScenesFS.ReadFile(clean)
}

func LoadScript(name string) ([]byte, error) {
	if data, err := os.ReadFile(name); err == nil {
		return data, nil
	}
	return ScriptsFS.ReadFile(cleanScriptPath(name))
}

func cleanScenePath(path string) string {
	if path == "" {
		return ""
	}
	s := filepath.ToSlash(path)
	s = strings.TrimPrefix(s, "scene/")
	s = strings.TrimPrefix(s, "scenes/")
	if filepath.Ext(s) == "" {
		s += ".yaml"
	}
	return s
}

func cleanScriptPath(path string) string {
	s := filepath.ToSlash(path)
	if after, ok := strings.CutPrefix(s, "scene/"); ok {
		s = after
	}
	if after, ok := strings.CutPrefix(s, "scripts/"); ok {
		s = after
	}
	if filepath.Ext(s) == "" {
		s += ".tengo"
	}
	return "scripts/" + s
}

func diskScenePath(clean string) string {
	return filepath.Join("scenes", filepath.FromSlash(clean))
}
