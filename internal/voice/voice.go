package voice

import (
	"context"
)

// Connection is an exclusively owned handle to one guild's voice channel. The
// owning playback session is the only writer.
type Connection interface {
	// OpusSend returns the channel Opus frames are written to
	OpusSend() chan<- []byte

	// Speaking toggles the speaking indicator
	Speaking(on bool) error

	// ChannelID returns the connected voice channel
	ChannelID() string

	// Disconnect releases the connection; the handle is unusable afterwards
	Disconnect() error
}

// Transport acquires voice connections. Connect blocks until the connection
// is ready or ctx expires; it must not hold any lock shared across guilds.
type Transport interface {
	Connect(ctx context.Context, guildID, channelID string) (Connection, error)
}
