package devices

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/muurk/blauberg/internal/protocol"
)

// ErrUnsupported is returned for a purpose the profile has no action for.
var ErrUnsupported = errors.New("purpose not supported by profile")

// Reader reads parameters from a fan.
type Reader interface {
	ReadParams(ctx context.Context, ids ...protocol.ParamID) (protocol.Params, error)
}

// Writer writes parameters to a fan and returns its answer.
type Writer interface {
	WriteValues(ctx context.Context, values protocol.Params) (protocol.Params, error)
}

// Profile describes one fan model.
type Profile struct {
	Name string

	// Type is the unit type code reported in parameter 0x00B9; 0 matches none.
	Type uint64

	Actions map[Purpose]Action

	// Attributes are extra read only values shown alongside the purposes.
	Attributes map[string]Action

	Presets []string
}

// Supports reports whether the profile has an action for purpose.
func (p *Profile) Supports(purpose Purpose) bool {
	_, ok := p.Actions[purpose]
	return ok
}

// Purposes returns the purposes the profile supports in name order.
func (p *Profile) Purposes() []Purpose {
	out := make([]Purpose, 0, len(p.Actions))
	for purpose := range p.Actions {
		out = append(out, purpose)
	}
	sortPurposes(out)
	return out
}

// Params returns the distinct parameters behind purposes, or behind every
// supported purpose when none are given.
func (p *Profile) Params(purposes ...Purpose) ([]protocol.ParamID, error) {
	if len(purposes) == 0 {
		purposes = p.Purposes()
	}
	seen := make(map[protocol.ParamID]bool)
	var ids []protocol.ParamID
	for _, purpose := range purposes {
		action, ok := p.Actions[purpose]
		if !ok {
			return nil, fmt.Errorf("%s: %w", purpose, ErrUnsupported)
		}
		for _, id := range action.Params {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// Read fetches the parameters of every requested purpose in one exchange
// and parses them. A purpose whose parameters the fan did not report maps
// to nil.
func (p *Profile) Read(ctx context.Context, r Reader, purposes ...Purpose) (map[Purpose]any, error) {
	if len(purposes) == 0 {
		purposes = p.Purposes()
	}
	ids, err := p.Params(purposes...)
	if err != nil {
		return nil, err
	}

	params, err := r.ReadParams(ctx, ids...)
	if err != nil {
		return nil, err
	}

	out := make(map[Purpose]any, len(purposes))
	for _, purpose := range purposes {
		out[purpose] = p.Actions[purpose].Parse(params)
	}
	return out, nil
}

// ReadAttributes fetches and parses every attribute.
func (p *Profile) ReadAttributes(ctx context.Context, r Reader) (map[string]any, error) {
	if len(p.Attributes) == 0 {
		return map[string]any{}, nil
	}
	seen := make(map[protocol.ParamID]bool)
	var ids []protocol.ParamID
	for _, a := range p.Attributes {
		for _, id := range a.Params {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}

	params, err := r.ReadParams(ctx, ids...)
	if err != nil {
		return nil, err
	}
	out := make(map[string]any, len(p.Attributes))
	for name, a := range p.Attributes {
		out[name] = a.Parse(params)
	}
	return out, nil
}

// Apply writes value through the action of purpose and returns the value
// parsed from the fan's answer.
func (p *Profile) Apply(ctx context.Context, w Writer, purpose Purpose, value any) (any, error) {
	action, ok := p.Actions[purpose]
	if !ok {
		return nil, fmt.Errorf("%s: %w", purpose, ErrUnsupported)
	}
	if action.Request == nil {
		return nil, fmt.Errorf("%s: %w", purpose, ErrReadOnly)
	}

	req, err := action.Request(value)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", purpose, err)
	}
	params, err := w.WriteValues(ctx, req)
	if err != nil {
		return nil, err
	}
	return action.Parse(params), nil
}
