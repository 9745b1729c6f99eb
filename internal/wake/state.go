// Package wake implements the wake-phrase detection lifecycle: it consumes a
// live transcript stream, decides when a trigger phrase has occurred, holds
// the session open through trailing speech, and hands the transcript to the
// forward dispatcher.
package wake

import "time"

// Phase is the lifecycle phase of a detection session.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseRequesting
	PhaseListening
	PhaseHearing
	PhaseDetected
	PhaseFailed
)

// String returns the lowercase phase name used in status files and logs.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseRequesting:
		return "requesting"
	case PhaseListening:
		return "listening"
	case PhaseHearing:
		return "hearing"
	case PhaseDetected:
		return "detected"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// State is one observable point in the session lifecycle. Exactly one state
// is current at a time; the controller emits a State on every transition.
type State struct {
	Phase     Phase
	Text      string // transcript for Hearing and Detected
	Reason    string // cause for Failed
	SessionID string
	At        time.Time
}
