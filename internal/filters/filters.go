package filters

import (
	"fmt"
	"sort"

	"github.com/zhotheone/discordmusicbot/internal/errors"
)

// Kind identifies one of the supported audio filters. The set is closed so
// validation and spec rendering can be exhaustive.
type Kind string

const (
	KindBassBoost  Kind = "bassboost"
	KindReverb     Kind = "reverb"
	KindSlowed     Kind = "slowed"
	KindSpatial    Kind = "spatial"
	KindNightcore  Kind = "nightcore"
	KindVaporwave  Kind = "vaporwave"
	KindEqualizer  Kind = "equalizer"
	KindDistortion Kind = "distortion"
	KindCompressor Kind = "compressor"
)

// String returns the string representation
func (k Kind) String() string {
	return string(k)
}

// Params maps parameter names to values for one filter
type Params map[string]float64

// paramDef declares a numeric parameter with its valid range
type paramDef struct {
	name     string
	def      float64
	min, max float64
}

// definition describes one filter kind and its configurable parameters
type definition struct {
	kind   Kind
	params []paramDef
}

// Filter parameter tables. Values outside [min,max] are rejected, never
// clamped.
var definitions = map[Kind]definition{
	KindBassBoost: {
		kind: KindBassBoost,
		params: []paramDef{
			{name: "gain", def: 15, min: 0, max: 30},
			{name: "frequency", def: 200, min: 100, max: 500},
		},
	},
	KindReverb: {
		kind: KindReverb,
		params: []paramDef{
			{name: "room_size", def: 0.5, min: 0, max: 1},
			{name: "damping", def: 0.5, min: 0.1, max: 0.9},
		},
	},
	KindSlowed: {
		kind: KindSlowed,
		params: []paramDef{
			{name: "speed", def: 0.85, min: 0.5, max: 2.0},
			{name: "pitch", def: 1.0, min: 0.5, max: 2.0},
		},
	},
	KindSpatial: {
		kind: KindSpatial,
		params: []paramDef{
			{name: "frequency", def: 0.2, min: 0.1, max: 2.0},
		},
	},
	KindNightcore: {
		kind: KindNightcore,
		params: []paramDef{
			{name: "tempo", def: 1.3, min: 1.0, max: 2.0},
			{name: "pitch", def: 1.3, min: 1.0, max: 2.0},
			{name: "bass_gain", def: 5, min: 0, max: 15},
		},
	},
	KindVaporwave: {
		kind: KindVaporwave,
		params: []paramDef{
			{name: "speed", def: 0.8, min: 0.5, max: 1.0},
			{name: "pitch", def: 0.9, min: 0.5, max: 1.0},
		},
	},
	KindEqualizer: {
		kind: KindEqualizer,
		params: []paramDef{
			{name: "freq1", def: 100, min: 20, max: 500},
			{name: "gain1", def: 0, min: -20, max: 20},
			{name: "width1", def: 50, min: 10, max: 200},
			{name: "freq2", def: 1000, min: 500, max: 5000},
			{name: "gain2", def: 0, min: -20, max: 20},
			{name: "width2", def: 100, min: 10, max: 500},
			{name: "freq3", def: 8000, min: 2000, max: 20000},
			{name: "gain3", def: 0, min: -20, max: 20},
			{name: "width3", def: 200, min: 10, max: 1000},
		},
	},
	KindDistortion: {
		kind: KindDistortion,
		params: []paramDef{
			{name: "drive", def: 12, min: 3, max: 30},
			{name: "level_in", def: 1.0, min: 0.5, max: 2.0},
			{name: "level_out", def: 0.8, min: 0.3, max: 1.0},
			{name: "limit", def: 0.9, min: 0.5, max: 0.98},
			{name: "output", def: -3, min: -10, max: 3},
		},
	},
	KindCompressor: {
		kind: KindCompressor,
		params: []paramDef{
			{name: "threshold", def: 0.5, min: 0.1, max: 1.0},
			{name: "ratio", def: 4, min: 1, max: 20},
			{name: "attack", def: 5, min: 1, max: 100},
			{name: "release", def: 50, min: 10, max: 1000},
		},
	},
}

// Kinds returns all supported filter kinds in a stable order
func Kinds() []Kind {
	kinds := make([]Kind, 0, len(definitions))
	for k := range definitions {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// ParseKind converts user input to a filter kind
func ParseKind(s string) (Kind, error) {
	kind := Kind(s)
	if _, ok := definitions[kind]; !ok {
		return "", fmt.Errorf("%w: %s", errors.ErrInvalidFilterName, s)
	}
	return kind, nil
}

// DescribeParams returns the parameter ranges for a filter kind, for display
func DescribeParams(kind Kind) ([]string, error) {
	def, ok := definitions[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errors.ErrInvalidFilterName, kind)
	}
	out := make([]string, 0, len(def.params))
	for _, p := range def.params {
		out = append(out, fmt.Sprintf("%s (%g-%g, default %g)", p.name, p.min, p.max, p.def))
	}
	return out, nil
}

// resolve validates the given overrides against the definition and returns a
// complete parameter set (defaults filled in). It never partially applies.
func resolve(kind Kind, overrides Params) (Params, error) {
	def, ok := definitions[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errors.ErrInvalidFilterName, kind)
	}

	resolved := make(Params, len(def.params))
	for _, p := range def.params {
		resolved[p.name] = p.def
	}

	for name, value := range overrides {
		p, ok := lookupParam(def, name)
		if !ok {
			return nil, fmt.Errorf("%w: %s.%s", errors.ErrUnknownParameter, kind, name)
		}
		if value < p.min || value > p.max {
			return nil, fmt.Errorf("%w: %s.%s=%g (valid %g-%g)",
				errors.ErrParameterOutOfRange, kind, name, value, p.min, p.max)
		}
		resolved[name] = value
	}

	return resolved, nil
}

func lookupParam(def definition, name string) (paramDef, bool) {
	for _, p := range def.params {
		if p.name == name {
			return p, true
		}
	}
	return paramDef{}, false
}
