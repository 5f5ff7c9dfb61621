package filters

import (
	"fmt"

	"github.com/zhotheone/discordmusicbot/internal/errors"
)

// entry is one enabled filter with fully resolved parameters
type entry struct {
	kind   Kind
	params Params
}

// Chain is an ordered set of enabled filters. A kind appears at most once.
// The chain is owned by a playback session and only mutated from that
// session's command loop.
type Chain struct {
	entries []entry
}

// NewChain creates an empty filter chain
func NewChain() *Chain {
	return &Chain{
		entries: make([]entry, 0),
	}
}

// Enable turns a filter on with the given parameter overrides (defaults fill
// the rest). A newly enabled filter goes to the end of the chain; re-enabling
// an active filter updates its parameters in place and keeps its position.
// On any validation error the chain is left unchanged.
func (c *Chain) Enable(kind Kind, overrides Params) error {
	resolved, err := resolve(kind, overrides)
	if err != nil {
		return err
	}

	for i := range c.entries {
		if c.entries[i].kind == kind {
			c.entries[i].params = resolved
			return nil
		}
	}

	c.entries = append(c.entries, entry{kind: kind, params: resolved})
	return nil
}

// Disable removes a filter from the chain. Disabling an inactive filter is a
// no-op, not an error.
func (c *Chain) Disable(kind Kind) {
	for i := range c.entries {
		if c.entries[i].kind == kind {
			c.entries = append(c.entries[:i], c.entries[i+1:]...)
			return
		}
	}
}

// Clear removes all filters
func (c *Chain) Clear() {
	c.entries = c.entries[:0]
}

// Enabled returns the active filter kinds in chain order
func (c *Chain) Enabled() []Kind {
	kinds := make([]Kind, len(c.entries))
	for i, e := range c.entries {
		kinds[i] = e.kind
	}
	return kinds
}

// IsEnabled reports whether a filter is active
func (c *Chain) IsEnabled(kind Kind) bool {
	for _, e := range c.entries {
		if e.kind == kind {
			return true
		}
	}
	return false
}

// ApplyPreset replaces the entire chain with the named preset. If any preset
// entry fails validation nothing is changed.
func (c *Chain) ApplyPreset(name string) error {
	preset, ok := presets[name]
	if !ok {
		return fmt.Errorf("%w: %s", errors.ErrInvalidPreset, name)
	}

	replacement := NewChain()
	for _, p := range preset.entries {
		if err := replacement.Enable(p.kind, p.params); err != nil {
			return err
		}
	}

	c.entries = replacement.entries
	return nil
}

// Spec produces an ordered, read-only description of the active chain for the
// audio pipeline. It is a pure function of the current chain state; a spec
// handed to an in-flight stream is never affected by later chain mutations.
func (c *Chain) Spec() Spec {
	spec := make(Spec, len(c.entries))
	for i, e := range c.entries {
		params := make(Params, len(e.params))
		for k, v := range e.params {
			params[k] = v
		}
		spec[i] = FilterSpec{
			Kind:   e.kind,
			Params: params,
			Expr:   renderExpr(e.kind, e.params),
		}
	}
	return spec
}
