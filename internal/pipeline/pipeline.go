package pipeline

import (
	"context"

	"github.com/zhotheone/discordmusicbot/internal/domain/entities"
	"github.com/zhotheone/discordmusicbot/internal/filters"
)

// Handle represents one in-flight audio stream. The playback session treats
// it as opaque: it only pauses it, adjusts gain when supported, and waits on
// Done.
type Handle interface {
	// Done resolves exactly once when the stream ends: nil for natural
	// completion, context.Canceled when the build context was cancelled, any
	// other error for a stream failure.
	Done() <-chan error

	// Pause suspends or resumes frame delivery
	Pause(paused bool)

	// SetVolume applies live gain to the running stream. Returns false when
	// the pipeline cannot adjust a stream in flight.
	SetVolume(percent int) bool
}

// Options for building a stream
type Options struct {
	// Volume in percent (0-150), applied when the stream is built
	Volume int
	// Sink receives encoded Opus frames, typically the voice connection's
	// send channel
	Sink chan<- []byte
}

// Pipeline turns a track plus a filter spec into a playable stream. Cancelling
// the build context stops the stream immediately; Done resolves promptly.
type Pipeline interface {
	BuildStream(ctx context.Context, track *entities.Track, spec filters.Spec, opts Options) (Handle, error)

	// SupportsLiveGain declares whether SetVolume on a running handle takes
	// effect. When false, a volume change applies starting with the next
	// built stream.
	SupportsLiveGain() bool
}
