package valueobjects

// RepeatMode defines how the queue advances after a track finishes
type RepeatMode string

const (
	RepeatModeOff   RepeatMode = "off"
	RepeatModeTrack RepeatMode = "track"
	RepeatModeQueue RepeatMode = "queue"
)

// String returns the string representation
func (m RepeatMode) String() string {
	return string(m)
}

// IsValid checks if the repeat mode is valid
func (m RepeatMode) IsValid() bool {
	switch m {
	case RepeatModeOff, RepeatModeTrack, RepeatModeQueue:
		return true
	}
	return false
}

// ParseRepeatMode converts user input to a RepeatMode, defaulting to off
func ParseRepeatMode(s string) (RepeatMode, bool) {
	mode := RepeatMode(s)
	return mode, mode.IsValid()
}
