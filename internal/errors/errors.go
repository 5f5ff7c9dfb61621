package errors

import (
	"errors"
	"fmt"
)

// Common error types for better error handling
var (
	// Session state errors
	ErrInvalidState   = errors.New("operation not valid in current session state")
	ErrNothingPlaying = errors.New("nothing is currently playing")
	ErrSessionClosed  = errors.New("session has been terminated")

	// Queue errors
	ErrQueueFull = errors.New("queue is full")

	// Filter errors
	ErrInvalidFilterName   = errors.New("unknown filter name")
	ErrUnknownParameter    = errors.New("unknown filter parameter")
	ErrParameterOutOfRange = errors.New("parameter value out of range")
	ErrInvalidPreset       = errors.New("unknown filter preset")

	// Pipeline and voice errors
	ErrPipelineFailure  = errors.New("audio pipeline failed to produce a stream")
	ErrConnectionFailed = errors.New("failed to acquire voice connection")

	// Resolution errors
	ErrInvalidURL    = errors.New("invalid URL")
	ErrTrackNotFound = errors.New("no matching track found")

	// Playlist errors
	ErrPlaylistNotFound = errors.New("playlist not found")
	ErrPlaylistExists   = errors.New("playlist already exists")
)

// UserError wraps an error with a user-friendly message
type UserError struct {
	Err     error
	Message string
}

func (e *UserError) Error() string {
	return e.Err.Error()
}

func (e *UserError) Unwrap() error {
	return e.Err
}

func (e *UserError) UserMessage() string {
	return e.Message
}

// NewUserError creates a new user error
func NewUserError(err error, message string) *UserError {
	return &UserError{
		Err:     err,
		Message: message,
	}
}

// WrapUserError wraps an error with a user-friendly message
func WrapUserError(err error, format string, args ...interface{}) *UserError {
	return &UserError{
		Err:     err,
		Message: fmt.Sprintf(format, args...),
	}
}

// GetUserMessage extracts user-friendly message from error
func GetUserMessage(err error) string {
	var userErr *UserError
	if errors.As(err, &userErr) {
		return userErr.UserMessage()
	}

	// Map common errors to user-friendly messages
	switch {
	case errors.Is(err, ErrNothingPlaying):
		return "❌ Nothing is playing right now"
	case errors.Is(err, ErrInvalidState):
		return "⚠️ That command is not available right now"
	case errors.Is(err, ErrSessionClosed):
		return "⚠️ Playback already ended. Use `/play` to start again"
	case errors.Is(err, ErrQueueFull):
		return "⚠️ Queue is full. Please wait or clear the queue"
	case errors.Is(err, ErrInvalidFilterName):
		return "🎛️ Unknown filter. Use `/filter list` to see what is available"
	case errors.Is(err, ErrUnknownParameter):
		return "🎛️ That filter has no such parameter"
	case errors.Is(err, ErrParameterOutOfRange):
		return "🎛️ Value is outside the allowed range"
	case errors.Is(err, ErrInvalidPreset):
		return "🎛️ Unknown preset"
	case errors.Is(err, ErrPipelineFailure):
		return "❌ Could not play that track. Skipping it"
	case errors.Is(err, ErrConnectionFailed):
		return "🔊 Could not join the voice channel. Please try again"
	case errors.Is(err, ErrInvalidURL):
		return "🔗 Invalid URL. Please provide a valid YouTube or Spotify link"
	case errors.Is(err, ErrTrackNotFound):
		return "🔍 No results found for that query"
	case errors.Is(err, ErrPlaylistNotFound):
		return "📋 No playlist with that name. Use `/playlist list` to see them"
	case errors.Is(err, ErrPlaylistExists):
		return "📋 A playlist with that name already exists"
	default:
		return "❌ An error occurred. Please try again later"
	}
}
