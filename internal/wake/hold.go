package wake

import "time"

// HoldPolicy bounds how long a session stays open after a wake detection:
// MaxHold caps the whole session from its start, SilenceGap ends it once no
// speech has arrived for that long, and PollInterval is how often the hold
// loop re-checks both deadlines.
type HoldPolicy struct {
	MaxHold      time.Duration
	SilenceGap   time.Duration
	PollInterval time.Duration
}

// DefaultHoldPolicy matches the reference timing: a 10s absolute cap, a 1s
// trailing-silence window, checked every 250ms.
func DefaultHoldPolicy() HoldPolicy {
	return HoldPolicy{
		MaxHold:      10 * time.Second,
		SilenceGap:   time.Second,
		PollInterval: 250 * time.Millisecond,
	}
}

// withDefaults fills zero fields from DefaultHoldPolicy.
func (p HoldPolicy) withDefaults() HoldPolicy {
	def := DefaultHoldPolicy()
	if p.MaxHold <= 0 {
		p.MaxHold = def.MaxHold
	}
	if p.SilenceGap <= 0 {
		p.SilenceGap = def.SilenceGap
	}
	if p.PollInterval <= 0 {
		p.PollInterval = def.PollInterval
	}
	return p
}

// expired reports whether the hold should finalize: either the absolute cap
// measured from session start, or the trailing-silence gap measured from the
// last speech, has elapsed.
func (p HoldPolicy) expired(now, sessionStart, lastSpeech time.Time) bool {
	return now.Sub(sessionStart) >= p.MaxHold || now.Sub(lastSpeech) >= p.SilenceGap
}
