package devices

import (
	"fmt"
	"sort"
	"sync"

	"github.com/muurk/blauberg/internal/protocol"
)

// Parameters shared by most models.
const (
	ParamPower      protocol.ParamID = 0x0001
	ParamSpeed      protocol.ParamID = 0x0002
	ParamHumidity   protocol.ParamID = 0x0025
	ParamSearch     protocol.ParamID = 0x007C
	ParamFirmware   protocol.ParamID = 0x0086
	ParamUnitType   protocol.ParamID = 0x00B9
	ParamManualRate protocol.ParamID = 0x0044
)

// Generic covers the parameters common to Blauberg Wi-Fi fans. Speed presets
// 1 to 3 are named low, medium and high.
var Generic = &Profile{
	Name: "generic",
	Actions: map[Purpose]Action{
		PurposePower:   SinglePointAction(ParamPower),
		PurposeSpeed:   SinglePointAction(ParamManualRate),
		PurposeMoist:   SinglePointAction(ParamHumidity),
		PurposePreset:  PresetAction(ParamSpeed, []string{"low", "medium", "high"}),
		PurposeVersion: firmwareAction(),
	},
	Attributes: map[string]Action{
		"device_id": StringAction(ParamSearch),
		"unit_type": SinglePointAction(ParamUnitType),
	},
	Presets: []string{"low", "medium", "high"},
}

// PresetAction maps the values 1..len(names) of id to names.
func PresetAction(id protocol.ParamID, names []string) Action {
	return Action{
		Params: []protocol.ParamID{id},
		Parse: func(p protocol.Params) any {
			v, ok := p.Get(id)
			if !ok || v == 0 || v > uint64(len(names)) {
				return nil
			}
			return names[v-1]
		},
		Request: func(in any) (protocol.Params, error) {
			name, ok := in.(string)
			if !ok {
				return nil, fmt.Errorf("preset must be a name, got %T", in)
			}
			for i, n := range names {
				if n == name {
					return protocol.Params{id: protocol.Known(uint64(i + 1))}, nil
				}
			}
			return nil, fmt.Errorf("unknown preset %q", name)
		},
	}
}

// firmwareAction formats the firmware parameter: major, minor, then a
// little-endian day, month and year when present.
func firmwareAction() Action {
	return Action{
		Params: []protocol.ParamID{ParamFirmware},
		Parse: func(p protocol.Params) any {
			v, ok := p[ParamFirmware]
			if !ok || !v.IsKnown() {
				return nil
			}
			b := v.Bytes()
			switch {
			case len(b) >= 6:
				year := int(b[4]) | int(b[5])<<8
				return fmt.Sprintf("%d.%d (%04d-%02d-%02d)", b[0], b[1], year, b[3], b[2])
			case len(b) >= 2:
				return fmt.Sprintf("%d.%d", b[0], b[1])
			default:
				return v.String()
			}
		},
	}
}

// Catalog finds the profile of a fan by unit type.
type Catalog struct {
	mu     sync.RWMutex
	byType map[uint64]*Profile
	byName map[string]*Profile
}

// NewCatalog returns a catalog holding profiles.
func NewCatalog(profiles ...*Profile) *Catalog {
	c := &Catalog{
		byType: make(map[uint64]*Profile),
		byName: make(map[string]*Profile),
	}
	for _, p := range profiles {
		c.Register(p)
	}
	return c
}

// Register adds or replaces a profile. Profiles with Type 0 are reachable
// by name only.
func (c *Catalog) Register(p *Profile) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byName[p.Name] = p
	if p.Type != 0 {
		c.byType[p.Type] = p
	}
}

// Lookup returns the profile registered for unit type t.
func (c *Catalog) Lookup(t uint64) (*Profile, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.byType[t]
	return p, ok
}

// Named returns the profile registered under name.
func (c *Catalog) Named(name string) (*Profile, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.byName[name]
	return p, ok
}

// Resolve returns the profile for unit type t, falling back to Generic.
func (c *Catalog) Resolve(t uint64) *Profile {
	if p, ok := c.Lookup(t); ok {
		return p
	}
	return Generic
}

// Names lists registered profile names in order.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.byName))
	for n := range c.byName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// FromMapping builds a profile whose purposes each map to one parameter.
// The preset purpose, when present and presets are named, maps parameter
// values 1..n to the preset names. The version purpose is read as text.
func FromMapping(name string, unitType uint64, params map[Purpose]protocol.ParamID, presets []string) (*Profile, error) {
	if name == "" {
		return nil, fmt.Errorf("profile name is required")
	}
	p := &Profile{
		Name:    name,
		Type:    unitType,
		Actions: make(map[Purpose]Action, len(params)),
		Presets: presets,
	}
	for purpose, id := range params {
		if !knownPurposes[purpose] {
			return nil, fmt.Errorf("profile %s: unknown purpose %q", name, purpose)
		}
		switch {
		case purpose == PurposePreset && len(presets) > 0:
			p.Actions[purpose] = PresetAction(id, presets)
		case purpose == PurposeVersion:
			p.Actions[purpose] = StringAction(id)
		default:
			p.Actions[purpose] = SinglePointAction(id)
		}
	}
	return p, nil
}
