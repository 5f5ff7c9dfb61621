package filters

import (
	"fmt"
	"strings"
)

// FilterSpec is one rendered filter in a Spec
type FilterSpec struct {
	Kind   Kind
	Params Params
	Expr   string // ffmpeg -af expression
}

// Spec is the ordered, read-only description of a filter chain handed to the
// audio pipeline when building a stream
type Spec []FilterSpec

// FFmpegFilter joins the rendered expressions into a single -af argument.
// Returns "" when no filters are active.
func (s Spec) FFmpegFilter() string {
	if len(s) == 0 {
		return ""
	}
	exprs := make([]string, len(s))
	for i, f := range s {
		exprs[i] = f.Expr
	}
	return strings.Join(exprs, ",")
}

// Names returns the filter names in chain order
func (s Spec) Names() []string {
	names := make([]string, len(s))
	for i, f := range s {
		names[i] = f.Kind.String()
	}
	return names
}

// renderExpr builds the ffmpeg expression for one filter. The switch is
// exhaustive over the closed kind set.
func renderExpr(kind Kind, p Params) string {
	switch kind {
	case KindBassBoost:
		return fmt.Sprintf("bass=g=%s,dynaudnorm=f=%s", num(p["gain"]), num(p["frequency"]))
	case KindReverb:
		// room size maps to echo delay in ms, damping to decay
		return fmt.Sprintf("aecho=0.8:0.9:%d:%s", int(p["room_size"]*1000), num(p["damping"]))
	case KindSlowed:
		if p["pitch"] != 1.0 {
			return fmt.Sprintf("atempo=%s,asetrate=44100*%s,aresample=44100", num(p["speed"]), num(p["pitch"]))
		}
		return fmt.Sprintf("atempo=%s", num(p["speed"]))
	case KindSpatial:
		return fmt.Sprintf("apulsator=hz=%s:mode=sine", num(p["frequency"]))
	case KindNightcore:
		return fmt.Sprintf("atempo=%s,asetrate=44100*%s,aresample=44100,bass=g=%s",
			num(p["tempo"]), num(p["pitch"]), num(p["bass_gain"]))
	case KindVaporwave:
		return fmt.Sprintf("atempo=%s,asetrate=44100*%s,aresample=44100", num(p["speed"]), num(p["pitch"]))
	case KindEqualizer:
		return fmt.Sprintf(
			"equalizer=f=%s:t=h:w=%s:g=%s,equalizer=f=%s:t=h:w=%s:g=%s,equalizer=f=%s:t=h:w=%s:g=%s",
			num(p["freq1"]), num(p["width1"]), num(p["gain1"]),
			num(p["freq2"]), num(p["width2"]), num(p["gain2"]),
			num(p["freq3"]), num(p["width3"]), num(p["gain3"]))
	case KindDistortion:
		return fmt.Sprintf("volume=%sdB,alimiter=level_in=%s:level_out=%s:limit=%s:attack=5:release=50,volume=%sdB",
			num(p["drive"]), num(p["level_in"]), num(p["level_out"]), num(p["limit"]), num(p["output"]))
	case KindCompressor:
		return fmt.Sprintf("acompressor=threshold=%s:ratio=%s:attack=%s:release=%s",
			num(p["threshold"]), num(p["ratio"]), num(p["attack"]), num(p["release"]))
	}
	return ""
}

// num formats a parameter without trailing zeros
func num(v float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.3f", v), "0"), ".")
}
