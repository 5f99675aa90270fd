package ecs

import (
	"errors"
	"strings"
	"testing"

	"github.com/milk9111/workbench/ecs/component"
)

func TestSparseWorldEntityLifecycle(t *testing.T) {
	cases := []struct {
		name         string
		create       int
		destroyIndex int // -1 = none
	}{
		{"single", 1, 0},
		{"three_create_destroy_middle", 3, 1},
		{"none_destroy", 2, -1},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := NewWorld()
			ents := make([]Entity, 0, c.create)
			for i := 0; i < c.create; i++ {
				ents = append(ents, CreateEntity(w))
			}
			if len(Entities(w)) != c.create {
				t.Fatalf("expected %d entities, got %d", c.create, len(Entities(w)))
			}
			if c.destroyIndex >= 0 {
				if !DestroyEntity(w, ents[c.destroyIndex]) {
					t.Fatalf("DestroyEntity should return true for alive entity")
				}
				if IsAlive(w, ents[c.destroyIndex]) {
					t.Fatalf("entity should not be alive after destruction")
				}
				if DestroyEntity(w, ents[c.destroyIndex]) {
					t.Fatalf("DestroyEntity should return false for a dead entity")
				}
				if len(Entities(w)) != c.create-1 {
					t.Fatalf("expected %d entities after destroy, got %d", c.create-1, len(Entities(w)))
				}
			}
		})
	}
}

func TestEntityHandleReuse(t *testing.T) {
	w := NewWorld()
	h := component.NewComponent[int]()

	old := CreateEntity(w)
	if !old.Valid() {
		t.Fatalf("expected a valid handle, got %v", old)
	}
	if err := Add(w, old, h.Kind(), intPtr(1)); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	DestroyEntity(w, old)

	fresh := CreateEntity(w)
	if fresh.id() != old.id() {
		t.Fatalf("expected slot %d to be recycled, got %d", old.id(), fresh.id())
	}
	if fresh == old {
		t.Fatalf("recycled handle must differ by generation")
	}
	if IsAlive(w, old) {
		t.Fatalf("stale handle reported alive")
	}
	if Has(w, fresh, h.Kind()) {
		t.Fatalf("recycled entity inherited a component")
	}
	if err := Add(w, old, h.Kind(), intPtr(2)); !errors.Is(err, component.ErrEntityNotAlive) {
		t.Fatalf("expected ErrEntityNotAlive for stale handle, got %v", err)
	}
	if Entity(0).Valid() {
		t.Fatalf("zero entity must be invalid")
	}
}

func toSet(ents []Entity) map[Entity]struct{} {
	m := make(map[Entity]struct{}, len(ents))
	for _, e := range ents {
		m[e] = struct{}{}
	}
	return m
}

func intPtr(i int) *int {
	return &i
}

func stringPtr(s string) *string {
	return &s
}

func float64Ptr(f float64) *float64 {
	return &f
}

func TestSparseWorldComponentsAndQueries(t *testing.T) {
	t.Run("component_table", func(t *testing.T) {
		w := NewWorld()

		h1 := component.NewComponent[int]()
		h2 := component.NewComponent[string]()
		h3 := component.NewComponent[float64]()

		e1 := CreateEntity(w)
		e2 := CreateEntity(w)

		tests := []struct {
			name     string
			setup    func() error
			check    func(t *testing.T)
			teardown func() bool
		}{
			{
				name:  "add_int_to_e1",
				setup: func() error { return Add(w, e1, h1.Kind(), intPtr(10)) },
				check: func(t *testing.T) {
					v, ok := Get(w, e1, h1.Kind())
					if !ok || *v != 10 {
						t.Fatalf("expected 10, got %v ok=%v", v, ok)
					}
				},
				teardown: func() bool { return Remove(w, e1, h1.Kind()) },
			},
			{
				name: "add_str_to_e1_and_e2",
				setup: func() error {
					if err := Add(w, e1, h2.Kind(), stringPtr("a")); err != nil {
						return err
					}
					return Add(w, e2, h2.Kind(), stringPtr("b"))
				},
				check: func(t *testing.T) {
					if !Has(w, e1, h2.Kind()) || !Has(w, e2, h2.Kind()) {
						t.Fatalf("expected both entities to have string component")
					}
					if Count(w, h2.Kind()) != 2 {
						t.Fatalf("expected count 2, got %d", Count(w, h2.Kind()))
					}
				},
				teardown: func() bool { return Remove(w, e1, h2.Kind()) },
			},
			{
				name: "replace_keeps_single_entry",
				setup: func() error {
					if err := Add(w, e1, h3.Kind(), float64Ptr(1.23)); err != nil {
						return err
					}
					return Add(w, e1, h3.Kind(), float64Ptr(4.56))
				},
				check: func(t *testing.T) {
					v, ok := Get(w, e1, h3.Kind())
					if !ok || *v != 4.56 {
						t.Fatalf("expected replaced value 4.56, got %v ok=%v", v, ok)
					}
					if Count(w, h3.Kind()) != 1 {
						t.Fatalf("expected count 1, got %d", Count(w, h3.Kind()))
					}
				},
				teardown: func() bool { return Remove(w, e1, h3.Kind()) },
			},
		}

		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				if err := tc.setup(); err != nil {
					t.Fatalf("setup failed: %v", err)
				}
				tc.check(t)
				if !tc.teardown() {
					t.Fatalf("teardown failed for %s", tc.name)
				}
			})
		}
	})

	t.Run("add_errors", func(t *testing.T) {
		w := NewWorld()
		h := component.NewComponent[int]()
		e := CreateEntity(w)

		tests := []struct {
			name string
			err  error
			add  func() error
		}{
			{"invalid_kind", component.ErrInvalidComponentKind, func() error { return Add(w, e, component.ComponentKind[int]{}, intPtr(1)) }},
			{"nil_value", component.ErrNilComponent, func() error { return Add(w, e, h.Kind(), nil) }},
			{"dead_entity", component.ErrEntityNotAlive, func() error { return Add(w, Entity(0), h.Kind(), intPtr(1)) }},
		}
		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				if err := tc.add(); !errors.Is(err, tc.err) {
					t.Fatalf("expected %v, got %v", tc.err, err)
				}
			})
		}
	})

	t.Run("destroy_removes_components", func(t *testing.T) {
		w := NewWorld()
		h := component.NewComponent[int]()
		e1 := CreateEntity(w)
		e2 := CreateEntity(w)
		if err := Add(w, e1, h.Kind(), intPtr(1)); err != nil {
			t.Fatal(err)
		}
		if err := Add(w, e2, h.Kind(), intPtr(2)); err != nil {
			t.Fatal(err)
		}
		DestroyEntity(w, e1)
		if Count(w, h.Kind()) != 1 {
			t.Fatalf("expected count 1 after destroy, got %d", Count(w, h.Kind()))
		}
		first, ok := First(w, h.Kind())
		if !ok || first != e2 {
			t.Fatalf("expected First to return e2, got %v ok=%v", first, ok)
		}
	})
}

func TestForEach(t *testing.T) {
	t.Run("basic", func(t *testing.T) {
		w := NewWorld()
		h := component.NewComponent[int]()

		e1 := CreateEntity(w)
		e2 := CreateEntity(w)
		e3 := CreateEntity(w)

		if err := Add(w, e1, h.Kind(), intPtr(1)); err != nil {
			t.Fatalf("add failed: %v", err)
		}
		if err := Add(w, e3, h.Kind(), intPtr(3)); err != nil {
			t.Fatalf("add failed: %v", err)
		}

		var ents []Entity
		ForEach(w, h.Kind(), func(e Entity, _ *int) { ents = append(ents, e) })
		set := toSet(ents)

		if _, ok := set[e1]; !ok {
			t.Fatalf("expected e1 in ForEach result")
		}
		if _, ok := set[e3]; !ok {
			t.Fatalf("expected e3 in ForEach result")
		}
		if _, ok := set[e2]; ok {
			t.Fatalf("did not expect e2 in ForEach result")
		}
	})

	t.Run("mutation_during_iteration", func(t *testing.T) {
		w := NewWorld()
		h := component.NewComponent[int]()

		ents := []Entity{CreateEntity(w), CreateEntity(w), CreateEntity(w)}
		for i, e := range ents {
			if err := Add(w, e, h.Kind(), intPtr(i)); err != nil {
				t.Fatal(err)
			}
		}

		var visited []Entity
		ForEach(w, h.Kind(), func(e Entity, _ *int) {
			visited = append(visited, e)
			if e == ents[0] {
				Remove(w, e, h.Kind())
				DestroyEntity(w, ents[2])
			}
		})
		if len(visited) != 2 {
			t.Fatalf("expected 2 visits, got %v", visited)
		}
		if _, ok := toSet(visited)[ents[2]]; ok {
			t.Fatalf("destroyed entity was visited")
		}
		if Count(w, h.Kind()) != 1 {
			t.Fatalf("expected 1 remaining component, got %d", Count(w, h.Kind()))
		}
	})
}

func TestForEach3(t *testing.T) {
	tests := []struct {
		name string
		run  func(t *testing.T)
	}{
		{
			name: "intersection",
			run: func(t *testing.T) {
				w := NewWorld()
				e1 := CreateEntity(w)
				e2 := CreateEntity(w)
				e3 := CreateEntity(w)
				e4 := CreateEntity(w)

				ka := component.NewComponentKind[int]()
				kb := component.NewComponentKind[int]()
				kc := component.NewComponentKind[int]()

				if err := Add(w, e1, ka, intPtr(1)); err != nil {
					t.Fatal(err)
				}
				if err := Add(w, e2, ka, intPtr(2)); err != nil {
					t.Fatal(err)
				}
				if err := Add(w, e2, kb, intPtr(3)); err != nil {
					t.Fatal(err)
				}
				if err := Add(w, e2, kc, intPtr(5)); err != nil {
					t.Fatal(err)
				}
				if err := Add(w, e3, kb, intPtr(4)); err != nil {
					t.Fatal(err)
				}
				if err := Add(w, e4, kc, intPtr(6)); err != nil {
					t.Fatal(err)
				}

				var res []Entity
				ForEach3(w, ka, kb, kc, func(e Entity, _ *int, _ *int, _ *int) { res = append(res, e) })
				if len(res) != 1 || res[0].id() != e2.id() {
					t.Fatalf("expected only e2, got %v", res)
				}
			},
		},
		{
			name: "ignores_dead_entities",
			run: func(t *testing.T) {
				w := NewWorld()
				e := CreateEntity(w)

				ka := component.NewComponentKind[int]()
				kb := component.NewComponentKind[int]()
				kc := component.NewComponentKind[int]()

				if err := Add(w, e, ka, intPtr(1)); err != nil {
					t.Fatal(err)
				}
				if err := Add(w, e, kb, intPtr(2)); err != nil {
					t.Fatal(err)
				}
				if err := Add(w, e, kc, intPtr(3)); err != nil {
					t.Fatal(err)
				}

				if !DestroyEntity(w, e) {
					t.Fatal("failed to destroy entity")
				}

				var res []Entity
				ForEach3(w, ka, kb, kc, func(e Entity, _ *int, _ *int, _ *int) { res = append(res, e) })
				if len(res) != 0 {
					t.Fatalf("expected empty result after destroy, got %v", res)
				}
			},
		},
		{
			name: "missing_store_returns_nil",
			run: func(t *testing.T) {
				w := NewWorld()
				e := CreateEntity(w)

				ka := component.NewComponentKind[int]()
				kb := component.NewComponentKind[int]()
				kc := component.NewComponentKind[int]()

				if err := Add(w, e, ka, intPtr(1)); err != nil {
					t.Fatal(err)
				}

				var res []Entity
				ForEach3(w, ka, kb, kc, func(e Entity, _ *int, _ *int, _ *int) { res = append(res, e) })
				if len(res) != 0 {
					t.Fatalf("expected empty when other store missing, got %v", res)
				}
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, tc.run)
	}
}

type recordingSystem struct {
	name string
	log  *[]string
}

func (s recordingSystem) Update(w *World) {
	*s.log = append(*s.log, s.name)
}

func TestSchedulerRunsInOrder(t *testing.T) {
	var log []string
	s := NewScheduler(recordingSystem{"a", &log}, nil, recordingSystem{"b", &log})
	s.Add(recordingSystem{"c", &log})

	s.Update(NewWorld())
	s.Update(NewWorld())

	want := []string{"a", "b", "c", "a", "b", "c"}
	if len(log) != len(want) {
		t.Fatalf("expected %v, got %v", want, log)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, log)
		}
	}
	if len(s.Systems()) != 3 {
		t.Fatalf("expected 3 systems, got %d", len(s.Systems()))
	}
	if s.Ticks() != 2 {
		t.Fatalf("expected 2 ticks, got %d", s.Ticks())
	}
	if i := s.Index(recordingSystem{"b", &log}); i != 1 {
		t.Fatalf("expected b at index 1, got %d", i)
	}
	if i := s.Index(recordingSystem{"d", &log}); i != -1 {
		t.Fatalf("expected unscheduled system at -1, got %d", i)
	}
}

func TestEntityRawRoundTrip(t *testing.T) {
	w := NewWorld()
	e := CreateEntity(w)
	DestroyEntity(w, e)
	e = CreateEntity(w)

	if got := EntityFromRaw(e.Raw()); got != e {
		t.Fatalf("round trip changed handle: %v -> %v", e, got)
	}
	if got, want := e.String(), "#1@1"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
	if NoEntity.String() != "none" {
		t.Fatalf("zero handle should print as none, got %q", NoEntity.String())
	}
}

func TestAddErrorNamesKind(t *testing.T) {
	w := NewWorld()
	kind := component.NewComponent[component.Transform]().Kind()

	err := Add(w, NoEntity, kind, &component.Transform{})
	if !errors.Is(err, component.ErrEntityNotAlive) {
		t.Fatalf("expected ErrEntityNotAlive, got %v", err)
	}
	if !strings.Contains(err.Error(), "component.Transform") {
		t.Fatalf("error %q does not name the component", err)
	}
	if kind.Name() != "component.Transform" {
		t.Fatalf("kind name = %q", kind.Name())
	}
	if (component.ComponentKind[int]{}).String() != "invalid" {
		t.Fatalf("zero kind should print as invalid")
	}
}
