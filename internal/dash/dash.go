// Package dash is a minimal reactive binding layer: each output component
// property is bound to an ordered list of input properties and a handler.
// The page posts the current input values whenever one of them changes and
// gets back the handler's result for that output.
//
// Callbacks are registered at startup and the table is read-only while
// serving.
package dash

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lox/gdpdash/internal/metrics"
)

var (
	ErrUnknownOutput   = errors.New("unknown output")
	ErrInputMismatch   = errors.New("inputs do not match callback")
	ErrDuplicateOutput = errors.New("output already bound")
)

// Dependency names a component property, e.g. {"year--slider1", "value"}.
type Dependency struct {
	ID       string `json:"id"`
	Property string `json:"property"`
}

func (d Dependency) String() string { return d.ID + "." + d.Property }

func Output(id, property string) Dependency { return Dependency{ID: id, Property: property} }

func Input(id, property string) Dependency { return Dependency{ID: id, Property: property} }

// Handler receives input values in registration order.
type Handler func(ctx context.Context, values []any) (any, error)

type Binding struct {
	Output Dependency   `json:"output"`
	Inputs []Dependency `json:"inputs"`
}

type callback struct {
	Binding
	fn Handler
}

type App struct {
	callbacks map[string]*callback
	order     []string
}

func New() *App {
	return &App{callbacks: make(map[string]*callback)}
}

// Callback binds output to inputs. Each output may have one callback.
func (a *App) Callback(output Dependency, inputs []Dependency, fn Handler) error {
	key := output.String()
	if _, ok := a.callbacks[key]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateOutput, key)
	}
	if len(inputs) == 0 {
		return fmt.Errorf("callback %s: no inputs", key)
	}
	seen := make(map[string]bool, len(inputs))
	for _, in := range inputs {
		if seen[in.String()] {
			return fmt.Errorf("callback %s: duplicate input %s", key, in)
		}
		seen[in.String()] = true
	}
	a.callbacks[key] = &callback{
		Binding: Binding{Output: output, Inputs: append([]Dependency(nil), inputs...)},
		fn:      fn,
	}
	a.order = append(a.order, key)
	return nil
}

// Dependencies lists bindings in registration order.
func (a *App) Dependencies() []Binding {
	out := make([]Binding, 0, len(a.order))
	for _, key := range a.order {
		out = append(out, a.callbacks[key].Binding)
	}
	return out
}

type InputValue struct {
	ID       string `json:"id"`
	Property string `json:"property"`
	Value    any    `json:"value"`
}

type UpdateRequest struct {
	Output string       `json:"output"`
	Inputs []InputValue `json:"inputs"`
}

// UpdateResponse mirrors the {"response": {id: {property: value}}} shape.
type UpdateResponse struct {
	Response map[string]map[string]any `json:"response"`
}

// Dispatch runs the callback bound to req.Output. Every registered input
// must be present exactly once and nothing else may be sent.
func (a *App) Dispatch(ctx context.Context, req UpdateRequest) (*UpdateResponse, error) {
	cb, ok := a.callbacks[req.Output]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownOutput, req.Output)
	}

	if len(req.Inputs) != len(cb.Inputs) {
		return nil, fmt.Errorf("%w: %s wants %d inputs, got %d", ErrInputMismatch, req.Output, len(cb.Inputs), len(req.Inputs))
	}
	got := make(map[string]any, len(req.Inputs))
	for _, in := range req.Inputs {
		key := Dependency{ID: in.ID, Property: in.Property}.String()
		if _, dup := got[key]; dup {
			return nil, fmt.Errorf("%w: duplicate input %s", ErrInputMismatch, key)
		}
		got[key] = in.Value
	}
	values := make([]any, len(cb.Inputs))
	for i, dep := range cb.Inputs {
		v, ok := got[dep.String()]
		if !ok {
			return nil, fmt.Errorf("%w: missing input %s", ErrInputMismatch, dep)
		}
		values[i] = v
	}

	result, err := cb.fn(ctx, values)
	if err != nil {
		metrics.CallbacksTotal.WithLabelValues(req.Output, "error").Inc()
		return nil, fmt.Errorf("callback %s: %w", req.Output, err)
	}
	metrics.CallbacksTotal.WithLabelValues(req.Output, "ok").Inc()

	return &UpdateResponse{
		Response: map[string]map[string]any{
			cb.Output.ID: {cb.Output.Property: result},
		},
	}, nil
}

// String returns values[i] as a string. JSON numbers are formatted.
func String(values []any, i int) (string, bool) {
	if i < 0 || i >= len(values) {
		return "", false
	}
	switch v := values[i].(type) {
	case string:
		return v, true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	default:
		return "", false
	}
}

// Int returns values[i] as an int, accepting JSON numbers without a
// fractional part and numeric strings (slider marks are sent as strings).
func Int(values []any, i int) (int, bool) {
	if i < 0 || i >= len(values) {
		return 0, false
	}
	switch v := values[i].(type) {
	case float64:
		if v != float64(int(v)) {
			return 0, false
		}
		return int(v), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}
