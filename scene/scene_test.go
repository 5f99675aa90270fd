package scene

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
		count   int
	}{
		{
			name:  "ok",
			yaml:  "name: s\nentities:\n  - name: a\n    components:\n      transform: {x: 1}\n  - name: b\n",
			count: 2,
		},
		{name: "missing_scene_name", yaml: "entities: []\n", wantErr: "name is required"},
		{name: "missing_entity_name", yaml: "name: s\nentities:\n  - components: {}\n", wantErr: "entity[0]"},
		{name: "duplicate_entity", yaml: "name: s\nentities:\n  - name: a\n  - name: a\n", wantErr: "duplicate entity"},
		{name: "bad_yaml", yaml: "name: [\n", wantErr: "unmarshal"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			spec, err := Parse([]byte(tc.yaml))
			if tc.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
					t.Fatalf("expected error containing %q, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(spec.Entities) != tc.count {
				t.Fatalf("expected %d entities, got %d", tc.count, len(spec.Entities))
			}
		})
	}
}

func TestDecodeComponentSpec(t *testing.T) {
	spec, err := Parse([]byte("name: s\nentities:\n  - name: a\n    components:\n      transform: {x: 3, y: 4}\n      drag_controls: {enabled: false}\n      transform_controls: {drag_controls_disabled: true}\n"))
	if err != nil {
		t.Fatal(err)
	}
	comps := spec.Entities[0].Components

	tr, err := DecodeComponentSpec[TransformComponentSpec](comps["transform"])
	if err != nil || tr.X != 3 || tr.Y != 4 {
		t.Fatalf("transform = %+v, err %v", tr, err)
	}
	dc, err := DecodeComponentSpec[DragControlsComponentSpec](comps["drag_controls"])
	if err != nil || dc.Enabled == nil || *dc.Enabled {
		t.Fatalf("drag_controls = %+v, err %v", dc, err)
	}
	tcs, err := DecodeComponentSpec[TransformControlsComponentSpec](comps["transform_controls"])
	if err != nil || !tcs.DragControlsDisabled {
		t.Fatalf("transform_controls = %+v, err %v", tcs, err)
	}
	empty, err := DecodeComponentSpec[BoundsComponentSpec](nil)
	if err != nil || empty != (BoundsComponentSpec{}) {
		t.Fatalf("nil block should decode to zero value, got %+v, err %v", empty, err)
	}
}

func TestObjectID(t *testing.T) {
	a := Spec{Name: "workbench"}
	b := Spec{Name: "workbench"}
	other := Spec{Name: "other"}
	crate := EntitySpec{Name: "crate"}

	if a.ObjectID(crate) != b.ObjectID(crate) {
		t.Fatalf("object ids must be stable across loads")
	}
	if a.ObjectID(crate) == other.ObjectID(crate) {
		t.Fatalf("object ids must differ between scenes")
	}
	if a.ObjectID(crate) == a.ObjectID(EntitySpec{Name: "barrel"}) {
		t.Fatalf("object ids must differ between entities")
	}
	if got := a.ObjectID(EntitySpec{Name: "x", ID: "fixed"}); got != "fixed" {
		t.Fatalf("explicit id ignored, got %q", got)
	}
	if NewReplicaID() == NewReplicaID() {
		t.Fatalf("replica ids should be unique")
	}
}

func TestLoadEmbedded(t *testing.T) {
	for _, name := range []string{"workbench", "workbench.yaml", "scenes/workbench"} {
		t.Run(name, func(t *testing.T) {
			spec, err := LoadSpec(name)
			if err != nil {
				t.Fatalf("load %s: %v", name, err)
			}
			if spec.Name != "workbench" || len(spec.Entities) == 0 {
				t.Fatalf("unexpected scene %+v", spec)
			}
		})
	}

	if _, err := LoadSpec("missing"); err == nil {
		t.Fatalf("expected error for a missing scene")
	}

	src, err := LoadScript("late_join")
	if err != nil || len(src) == 0 {
		t.Fatalf("load script: %v", err)
	}
}

func TestLoadPrefersDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	if err := os.WriteFile(path, []byte("name: custom\nentities:\n  - name: only\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	spec, err := LoadSpec(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if spec.Name != "custom" || len(spec.Entities) != 1 {
		t.Fatalf("unexpected scene %+v", spec)
	}
}

func TestWatcherReportsSceneWrites(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir)
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "edit.yaml")
	if err := os.WriteFile(path, []byte("name: edit\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	timeout := time.After(5 * time.Second)
	for {
		select {
		case name := <-w.Events:
			if filepath.Base(name) == "notes.txt" {
				t.Fatalf("non-scene file reported: %s", name)
			}
			if filepath.Clean(name) == filepath.Clean(path) {
				return
			}
		case err := <-w.Errors:
			t.Fatalf("watcher error: %v", err)
		case <-timeout:
			t.Fatalf("no event for %s", path)
		}
	}
}
