package scene

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Spec describes a scene shared by every session participant.
type Spec struct {
	Name     string       `yaml:"name"`
	Entities []EntitySpec `yaml:"entities"`
}

// EntitySpec is one scene entity. ID is optional; when empty the object id is
// derived from the scene and entity names.
type EntitySpec struct {
	Name       string         `yaml:"name"`
	ID         string         `yaml:"id"`
	Components map[string]any `yaml:"components"`
}

type TransformComponentSpec struct {
	X        float64 `yaml:"x"`
	Y        float64 `yaml:"y"`
	ScaleX   float64 `yaml:"scale_x"`
	ScaleY   float64 `yaml:"scale_y"`
	Rotation float64 `yaml:"rotation"`
}

type BoundsComponentSpec struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

type DragControlsComponentSpec struct {
	Enabled *bool `yaml:"enabled"`
}

type TransformControlsComponentSpec struct {
	DragControlsDisabled bool `yaml:"drag_controls_disabled"`
}

func Parse(data []byte) (Spec, error) {
	var spec Spec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return Spec{}, fmt.Errorf("scene: unmarshal: %w", err)
	}
	if err := spec.validate(); err != nil {
		return Spec{}, err
	}
	return spec, nil
}

func LoadSpec(name string) (Spec, error) {
	data, err := Load(name)
	if err != nil {
		return Spec{}, fmt.Errorf("scene: load %s: %w", name, err)
	}
	spec, err := Parse(data)
	if err != nil {
		return Spec{}, fmt.Errorf("scene: %s: %w", name, err)
	}
	return spec, nil
}

func (s Spec) validate() error {
	if s.Name == "" {
		return fmt.Errorf("scene: name is required")
	}
	seen := make(map[string]bool, len(s.Entities))
	for i, e := range s.Entities {
		if e.Name == "" {
			return fmt.Errorf("scene %q: entity[%d]: name is required", s.Name, i)
		}
		if seen[e.Name] {
			return fmt.Errorf("scene %q: duplicate entity %q", s.Name, e.Name)
		}
		seen[e.Name] = true
	}
	return nil
}

// DecodeComponentSpec re-decodes a loosely typed component block into T.
func DecodeComponentSpec[T any](raw any) (T, error) {
	var zero T
	if raw == nil {
		return zero, nil
	}
	b, err := yaml.Marshal(raw)
	if err != nil {
		return zero, err
	}
	var out T
	if err := yaml.Unmarshal(b, &out); err != nil {
		return zero, err
	}
	return out, nil
}
