// Package alert delivers user-facing notifications. The HTTP client and the
// state stores raise alerts for terminal failures; consumers decide how they
// are rendered. The default implementation writes them to the log.
package alert

import (
	"sync"

	"github.com/rs/zerolog/log"
)

type Level int

const (
	LevelInfo Level = iota
	LevelWarning
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelInfo:
		return "info"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	}
	return "unknown"
}

// Notifier receives user-visible notifications. Implementations must be safe
// for concurrent use.
type Notifier interface {
	Notify(level Level, message string)
}

// LogNotifier writes notifications to the global zerolog logger.
type LogNotifier struct{}

func (LogNotifier) Notify(level Level, message string) {
	switch level {
	case LevelError:
		log.Error().Str("alert", level.String()).Msg(message)
	case LevelWarning:
		log.Warn().Str("alert", level.String()).Msg(message)
	default:
		log.Info().Str("alert", level.String()).Msg(message)
	}
}

// Notice is a recorded notification.
type Notice struct {
	Level   Level
	Message string
}

// Recorder retains notifications for later inspection. Used by tests and by
// UI layers that render a notification feed.
type Recorder struct {
	mu      sync.Mutex
	notices []Notice
}

func (r *Recorder) Notify(level Level, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, Notice{Level: level, Message: message})
}

// Notices returns a copy of all recorded notifications in delivery order.
func (r *Recorder) Notices() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notice, len(r.notices))
	copy(out, r.notices)
	return out
}

// Reset discards all recorded notifications.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = nil
}
