package filters

import "sort"

// presetEntry is one filter configuration inside a preset
type presetEntry struct {
	kind   Kind
	params Params
}

// preset is a named, ordered set of filter configurations applied atomically
type preset struct {
	name    string
	entries []presetEntry
}

var presets = map[string]preset{
	"gaming": {
		name: "gaming",
		entries: []presetEntry{
			{kind: KindCompressor, params: Params{"threshold": 0.3, "ratio": 6, "attack": 2, "release": 30}},
			{kind: KindEqualizer, params: Params{"freq2": 2000, "gain2": 3, "freq3": 6000, "gain3": 2}},
		},
	},
	"music": {
		name: "music",
		entries: []presetEntry{
			{kind: KindBassBoost, params: Params{"gain": 8, "frequency": 150}},
			{kind: KindEqualizer, params: Params{"freq1": 80, "gain1": 2, "freq3": 12000, "gain3": 1}},
		},
	},
	"vocal": {
		name: "vocal",
		entries: []presetEntry{
			{kind: KindCompressor, params: Params{"threshold": 0.6, "ratio": 3, "attack": 1, "release": 100}},
			{kind: KindEqualizer, params: Params{"freq2": 1500, "gain2": 4, "width2": 200}},
		},
	},
	"nightcore": {
		name: "nightcore",
		entries: []presetEntry{
			{kind: KindNightcore, params: nil},
		},
	},
	"vaporwave": {
		name: "vaporwave",
		entries: []presetEntry{
			{kind: KindVaporwave, params: nil},
			{kind: KindReverb, params: Params{"room_size": 0.6, "damping": 0.4}},
		},
	},
}

// PresetNames returns all preset names in a stable order
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
