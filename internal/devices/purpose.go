package devices

import (
	"fmt"
	"sort"
)

// Purpose names what a parameter is used for.
type Purpose string

const (
	PurposePower   Purpose = "power"
	PurposeSpeed   Purpose = "speed"
	PurposeMoist   Purpose = "moist"
	PurposeTemp    Purpose = "temp"
	PurposePreset  Purpose = "preset"
	PurposeVersion Purpose = "version"
)

var knownPurposes = map[Purpose]bool{
	PurposePower:   true,
	PurposeSpeed:   true,
	PurposeMoist:   true,
	PurposeTemp:    true,
	PurposePreset:  true,
	PurposeVersion: true,
}

// ParsePurpose validates a purpose name.
func ParsePurpose(s string) (Purpose, error) {
	p := Purpose(s)
	if !knownPurposes[p] {
		return "", fmt.Errorf("unknown purpose %q", s)
	}
	return p, nil
}

// AllPurposes returns every purpose in name order.
func AllPurposes() []Purpose {
	out := make([]Purpose, 0, len(knownPurposes))
	for p := range knownPurposes {
		out = append(out, p)
	}
	sortPurposes(out)
	return out
}

func sortPurposes(ps []Purpose) {
	sort.Slice(ps, func(i, j int) bool { return ps[i] < ps[j] })
}
