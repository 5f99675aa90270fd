package sim

import (
	"context"
	"fmt"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
)

// RunScript executes a tengo script against the harness. The script sees a
// global `wb` exposing:
//
//	join(peer) leave(peer) rejoin(peer) tick(n) despawn(entity)
//	click(peer, entity) release(peer, entity) drag(peer, x0, y0, x1, y1)
//	state(peer, entity) gizmo(peer) names(peer) expect(cond, message)
//	log(args...)
//
// Output from log is collected and returned.
func (h *Harness) RunScript(ctx context.Context, src []byte) ([]string, error) {
	var out []string
	script := tengo.NewScript(src)
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))
	if err := script.Add("wb", h.scriptEngine(&out)); err != nil {
		return nil, err
	}
	if _, err := script.RunContext(ctx); err != nil {
		return out, fmt.Errorf("sim: script: %w", err)
	}
	return out, nil
}

func (h *Harness) scriptEngine(out *[]string) *tengo.ImmutableMap {
	values := map[string]tengo.Object{}

	fn := func(name string, f tengo.CallableFunc) {
		values[name] = &tengo.UserFunction{Name: name, Value: f}
	}
	peerArg := func(args []tengo.Object, i int) (*Peer, error) {
		name, err := stringArg(args, i, "peer")
		if err != nil {
			return nil, err
		}
		p, ok := h.Peer(name)
		if !ok {
			return nil, fmt.Errorf("unknown participant %q", name)
		}
		return p, nil
	}

	fn("join", func(args ...tengo.Object) (tengo.Object, error) {
		name, err := stringArg(args, 0, "peer")
		if err != nil {
			return nil, err
		}
		if _, err := h.Join(name); err != nil {
			return nil, err
		}
		return tengo.TrueValue, nil
	})
	fn("leave", func(args ...tengo.Object) (tengo.Object, error) {
		name, err := stringArg(args, 0, "peer")
		if err != nil {
			return nil, err
		}
		return tengo.TrueValue, h.Leave(name)
	})
	fn("rejoin", func(args ...tengo.Object) (tengo.Object, error) {
		name, err := stringArg(args, 0, "peer")
		if err != nil {
			return nil, err
		}
		if _, err := h.Rejoin(name); err != nil {
			return nil, err
		}
		return tengo.TrueValue, nil
	})
	fn("tick", func(args ...tengo.Object) (tengo.Object, error) {
		n := 1
		if len(args) > 0 {
			v, ok := tengo.ToInt(args[0])
			if !ok || v < 0 {
				return nil, tengo.ErrInvalidArgumentType{Name: "n", Expected: "non-negative int", Found: args[0].TypeName()}
			}
			n = v
		}
		h.Tick(n)
		return tengo.UndefinedValue, nil
	})
	fn("despawn", func(args ...tengo.Object) (tengo.Object, error) {
		name, err := stringArg(args, 0, "entity")
		if err != nil {
			return nil, err
		}
		return tengo.TrueValue, h.Despawn(name)
	})
	fn("click", func(args ...tengo.Object) (tengo.Object, error) {
		p, err := peerArg(args, 0)
		if err != nil {
			return nil, err
		}
		name, err := stringArg(args, 1, "entity")
		if err != nil {
			return nil, err
		}
		return tengo.TrueValue, p.Click(name)
	})
	fn("release", func(args ...tengo.Object) (tengo.Object, error) {
		p, err := peerArg(args, 0)
		if err != nil {
			return nil, err
		}
		name, err := stringArg(args, 1, "entity")
		if err != nil {
			return nil, err
		}
		return tengo.TrueValue, p.Release(name)
	})
	fn("drag", func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) != 5 {
			return nil, tengo.ErrWrongNumArguments
		}
		p, err := peerArg(args, 0)
		if err != nil {
			return nil, err
		}
		coords := make([]float64, 4)
		for i := range coords {
			v, ok := tengo.ToFloat64(args[i+1])
			if !ok {
				return nil, tengo.ErrInvalidArgumentType{Name: "coordinate", Expected: "float", Found: args[i+1].TypeName()}
			}
			coords[i] = v
		}
		p.Drag(coords[0], coords[1], coords[2], coords[3])
		return tengo.UndefinedValue, nil
	})
	fn("state", func(args ...tengo.Object) (tengo.Object, error) {
		p, err := peerArg(args, 0)
		if err != nil {
			return nil, err
		}
		name, err := stringArg(args, 1, "entity")
		if err != nil {
			return nil, err
		}
		st, ok := p.State(name)
		if !ok {
			return tengo.UndefinedValue, nil
		}
		return &tengo.ImmutableMap{Value: map[string]tengo.Object{
			"name":                   &tengo.String{Value: st.Name},
			"x":                      &tengo.Float{Value: st.X},
			"y":                      &tengo.Float{Value: st.Y},
			"gizmo":                  boolObject(st.HasGizmo),
			"has_drag_controls":      boolObject(st.HasDragControls),
			"drag_enabled":           boolObject(st.DragEnabled),
			"drag_controls_disabled": boolObject(st.DragControlsDisabled),
		}}, nil
	})
	fn("gizmo", func(args ...tengo.Object) (tengo.Object, error) {
		p, err := peerArg(args, 0)
		if err != nil {
			return nil, err
		}
		owner, ok := p.GizmoOwner()
		if !ok {
			return tengo.UndefinedValue, nil
		}
		return &tengo.String{Value: owner}, nil
	})
	fn("names", func(args ...tengo.Object) (tengo.Object, error) {
		p, err := peerArg(args, 0)
		if err != nil {
			return nil, err
		}
		arr := &tengo.Array{}
		for _, n := range p.Names() {
			arr.Value = append(arr.Value, &tengo.String{Value: n})
		}
		return arr, nil
	})
	fn("expect", func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 {
			return nil, tengo.ErrWrongNumArguments
		}
		if !args[0].IsFalsy() {
			return tengo.TrueValue, nil
		}
		msg := "expectation failed"
		if len(args) > 1 {
			msg = objectAsString(args[1])
		}
		return nil, fmt.Errorf("%s", msg)
	})
	fn("log", func(args ...tengo.Object) (tengo.Object, error) {
		parts := make([]string, 0, len(args))
		for _, a := range args {
			parts = append(parts, objectAsString(a))
		}
		*out = append(*out, strings.Join(parts, " "))
		return tengo.UndefinedValue, nil
	})

	return &tengo.ImmutableMap{Value: values}
}

func stringArg(args []tengo.Object, i int, name string) (string, error) {
	if i >= len(args) {
		return "", tengo.ErrWrongNumArguments
	}
	s, ok := args[i].(*tengo.String)
	if !ok {
		return "", tengo.ErrInvalidArgumentType{Name: name, Expected: "string", Found: args[i].TypeName()}
	}
	return s.Value, nil
}

func boolObject(b bool) tengo.Object {
	if b {
		return tengo.TrueValue
	}
	return tengo.FalseValue
}

func objectAsString(obj tengo.Object) string {
	if obj == nil {
		return ""
	}
	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	default:
		return strings.Trim(v.String(), "\"")
	}
}
