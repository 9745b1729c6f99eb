// Package speech abstracts the streaming transcription engine behind a small
// interface so the wake controller can be driven by a live engine or a
// synthetic event source in tests.
package speech

import "errors"

// Root causes for session start failures. Wrap them with context via
// fmt.Errorf("...: %w", Err...).
var (
	// ErrUnavailable means the engine cannot serve the requested locale or
	// cannot be reached at all.
	ErrUnavailable = errors.New("transcription engine unavailable")

	// ErrPermissionDenied means microphone or speech access was not granted.
	ErrPermissionDenied = errors.New("speech permission denied")

	// ErrMisconfiguredHost means a required platform capability is missing,
	// e.g. the local transcription helper is not installed or not running.
	ErrMisconfiguredHost = errors.New("host misconfigured for speech capture")
)

// Event is one incremental transcript update. Fragments are cumulative
// revisions of the current utterance, not deltas. A non-nil Err terminates
// the stream.
type Event struct {
	Text    string
	IsFinal bool
	Err     error
}

// SessionOptions parameterize one capture session.
type SessionOptions struct {
	Locale     string
	Microphone string   // preferred input device identifier, may be empty
	Triggers   []string // hint for engines that support phrase boosting
}

// Session is one live capture session. Events is closed when the stream ends.
// Stop is idempotent.
type Session interface {
	Events() <-chan Event
	Stop()
}

// Engine is the interface that transcription engines must implement.
type Engine interface {
	Name() string
	Start(opts SessionOptions) (Session, error)
}
