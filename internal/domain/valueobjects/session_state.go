package valueobjects

// SessionState represents the lifecycle state of a guild playback session
type SessionState string

const (
	SessionIdle       SessionState = "idle"
	SessionConnecting SessionState = "connecting"
	SessionPlaying    SessionState = "playing"
	SessionPaused     SessionState = "paused"
	SessionTerminated SessionState = "terminated"
)

// String returns the string representation
func (s SessionState) String() string {
	return string(s)
}

// Active reports whether the session still accepts commands
func (s SessionState) Active() bool {
	return s != SessionTerminated
}
