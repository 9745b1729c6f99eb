package wake

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sungkue/openclaw/internal/diaglog"
	"github.com/sungkue/openclaw/internal/forward"
	"github.com/sungkue/openclaw/internal/speech"
)

// Snapshot is the configuration a session reads from its provider: triggers
// and capture options at session start, the forward config at detection time.
type Snapshot struct {
	Triggers   []string
	Locale     string
	Microphone string
	Forward    forward.Config
}

// Forwarder hands a detected transcript to the background dispatch pool.
// Implemented by *forward.Dispatcher.
type Forwarder interface {
	DispatchSession(transcript string, cfg forward.Config, sessionID string)
}

// Options configure a Controller. Engine and Config are required; the rest
// are optional.
type Options struct {
	Engine    speech.Engine
	Config    func() Snapshot  // live settings provider, read per session
	Forwarder Forwarder        // nil disables forwarding entirely
	OnWake    func(text string) // host notification hook, called once per detection
	Preflight func() error     // capability gate run before engine start
	Hold      HoldPolicy       // zero fields take defaults
	Logger    *diaglog.Logger
}

// Controller owns the wake detection lifecycle. All transitions are
// serialized under one mutex; late events arriving after a session stopped
// are discarded, so each session emits exactly one terminal state.
type Controller struct {
	engine    speech.Engine
	snapshot  func() Snapshot
	forwarder Forwarder
	onWake    func(string)
	preflight func() error
	hold      HoldPolicy
	logger    *diaglog.Logger

	mu      sync.Mutex
	sess    *session
	current State
	states  chan State
}

// session is the per-start mutable state, owned by the controller.
type session struct {
	id         string
	triggers   []string
	startedAt  time.Time
	lastSpeech time.Time
	lastHeard  string // most recent non-empty fragment
	captured   string // winning transcript once detected
	detected   bool
	stopping   bool
	stream     speech.Session
}

// NewController creates a controller. The state channel buffers transitions;
// a consumer that stops draining loses intermediate states but never blocks
// the lifecycle.
func NewController(opts Options) *Controller {
	return &Controller{
		engine:    opts.Engine,
		snapshot:  opts.Config,
		forwarder: opts.Forwarder,
		onWake:    opts.OnWake,
		preflight: opts.Preflight,
		hold:      opts.Hold.withDefaults(),
		logger:    opts.Logger,
		current:   State{Phase: PhaseIdle},
		states:    make(chan State, 32),
	}
}

// States returns the state stream. Never closed; each Start produces a fresh
// run of transitions on the same channel.
func (c *Controller) States() <-chan State {
	return c.states
}

// Current returns the most recently emitted state.
func (c *Controller) Current() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Start begins a new detection session. A Start while a session is active is
// a no-op.
func (c *Controller) Start() {
	c.mu.Lock()
	if c.sess != nil && !c.sess.stopping {
		c.mu.Unlock()
		return
	}
	snap := c.snapshot()
	s := &session{
		id:        uuid.NewString(),
		triggers:  append([]string(nil), snap.Triggers...),
		startedAt: time.Now(),
	}
	c.sess = s
	c.emitLocked(State{Phase: PhaseRequesting, SessionID: s.id})
	c.mu.Unlock()

	c.log(diaglog.LogEntry{
		Event:     diaglog.EventSessionStart,
		SessionID: s.id,
		Payload:   map[string]interface{}{"triggers": len(s.triggers), "locale": snap.Locale},
	})

	if c.preflight != nil {
		if err := c.preflight(); err != nil {
			c.failSession(s, err.Error())
			return
		}
	}

	// Engine start may dial out; keep it outside the lock.
	stream, err := c.engine.Start(speech.SessionOptions{
		Locale:     snap.Locale,
		Microphone: snap.Microphone,
		Triggers:   s.triggers,
	})
	if err != nil {
		c.failSession(s, err.Error())
		return
	}

	c.mu.Lock()
	if s.stopping {
		// Stopped while the engine was starting up.
		c.mu.Unlock()
		stream.Stop()
		return
	}
	s.stream = stream
	c.emitLocked(State{Phase: PhaseListening, SessionID: s.id})
	c.mu.Unlock()

	go c.consume(s)
}

// Stop tears down the active session: cancels the transcript subscription and
// lets the hold loop exit without emitting. Idempotent; safe to call from an
// event path, the hold loop, or an external caller concurrently.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.sess
	if s == nil || s.stopping {
		return
	}
	c.stopSessionLocked(s)
	// An externally stopped session produced no terminal state; report the
	// return to idle so the host knows the detector is re-armable.
	c.emitLocked(State{Phase: PhaseIdle, SessionID: s.id})
}

// consume pumps the speech session's events into the state machine.
// Events are handled in delivery order.
func (c *Controller) consume(s *session) {
	for ev := range s.stream.Events() {
		c.handleEvent(s, ev)
	}
	c.handleStreamEnd(s)
}

func (c *Controller) handleEvent(s *session, ev speech.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if s != c.sess || s.stopping {
		return // late event after teardown
	}

	if ev.Err != nil {
		if s.detected {
			// The utterance is already captured; let the hold finalize it.
			c.log(diaglog.LogEntry{
				Event:     diaglog.EventEngineError,
				SessionID: s.id,
				Reason:    ev.Err.Error(),
			})
			return
		}
		c.failLocked(s, ev.Err.Error())
		return
	}

	heard := strings.TrimSpace(ev.Text) != ""
	if heard {
		s.lastSpeech = time.Now()
		s.lastHeard = ev.Text
	}

	if s.detected {
		// Trailing speech during the hold window: fragments are cumulative
		// revisions, so the latest one is the fullest transcript.
		if heard {
			s.captured = ev.Text
		}
		return
	}

	if heard && Matches(ev.Text, s.triggers) {
		c.detectLocked(s, ev.Text)
		return
	}

	if ev.IsFinal {
		// Stream completed without a match.
		if strings.TrimSpace(ev.Text) == "" {
			c.failLocked(s, "No speech detected")
		} else {
			c.failLocked(s, "No trigger heard: "+ev.Text)
		}
		return
	}

	if heard {
		c.emitLocked(State{Phase: PhaseHearing, Text: ev.Text, SessionID: s.id})
	}
}

// handleStreamEnd covers engines whose stream closes without a final event:
// treat it as completion.
func (c *Controller) handleStreamEnd(s *session) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if s != c.sess || s.stopping || s.detected {
		return
	}
	if s.lastHeard == "" {
		c.failLocked(s, "No speech detected")
	} else {
		c.failLocked(s, "No trigger heard: "+s.lastHeard)
	}
}

// detectLocked performs the Detected transition and its side effects: host
// notification, forward dispatch of the matched text under a config snapshot
// taken now, and the silence-hold loop.
func (c *Controller) detectLocked(s *session, text string) {
	s.detected = true
	s.captured = text
	c.emitLocked(State{Phase: PhaseDetected, Text: text, SessionID: s.id})

	c.log(diaglog.LogEntry{
		Event:     diaglog.EventWakeDetected,
		SessionID: s.id,
		Payload:   map[string]interface{}{"transcript": text},
	})

	if c.onWake != nil {
		// Decoupled from the forward outcome and from this lock.
		go c.onWake(text)
	}

	if c.forwarder != nil {
		fwd := c.snapshot().Forward
		c.forwarder.DispatchSession(text, fwd, s.id)
	}

	go c.holdLoop(s)
}

// holdLoop keeps the session alive after detection until the hold policy
// expires, then stops the session and emits the terminal Detected
// confirmation. Exits silently when another path stopped the session first.
func (c *Controller) holdLoop(s *session) {
	ticker := time.NewTicker(c.hold.PollInterval)
	defer ticker.Stop()

	for range ticker.C {
		c.mu.Lock()
		if s != c.sess || s.stopping {
			c.mu.Unlock()
			return
		}
		if c.hold.expired(time.Now(), s.startedAt, s.lastSpeech) {
			text := s.captured
			c.stopSessionLocked(s)
			if text != "" {
				c.emitLocked(State{Phase: PhaseDetected, Text: text, SessionID: s.id})
			}
			c.mu.Unlock()
			c.log(diaglog.LogEntry{
				Component: diaglog.ComponentHoldTimer,
				Event:     diaglog.EventHoldElapsed,
				SessionID: s.id,
			})
			return
		}
		c.mu.Unlock()
	}
}

// failSession is failLocked for callers not yet holding the lock.
func (c *Controller) failSession(s *session, reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s != c.sess || s.stopping {
		return
	}
	c.failLocked(s, reason)
}

// failLocked stops the session and emits the terminal Failed state.
func (c *Controller) failLocked(s *session, reason string) {
	c.stopSessionLocked(s)
	c.emitLocked(State{Phase: PhaseFailed, Reason: reason, SessionID: s.id})
	c.log(diaglog.LogEntry{
		Event:     diaglog.EventSessionFailed,
		SessionID: s.id,
		Reason:    reason,
	})
}

// stopSessionLocked sets the stopping flag and releases the transcript
// subscription. Emissions after this point come only from the caller that
// flipped the flag.
func (c *Controller) stopSessionLocked(s *session) {
	if s.stopping {
		return
	}
	s.stopping = true
	if s.stream != nil {
		s.stream.Stop()
	}
	c.log(diaglog.LogEntry{Event: diaglog.EventSessionStop, SessionID: s.id})
}

// emitLocked records the transition and pushes it to the state channel
// without blocking; an undrained channel drops the oldest visibility, not the
// lifecycle.
func (c *Controller) emitLocked(st State) {
	st.At = time.Now()
	c.current = st
	select {
	case c.states <- st:
	default:
		c.log(diaglog.LogEntry{
			Event:  diaglog.EventStateDropped,
			Reason: st.Phase.String(),
		})
	}
}

func (c *Controller) log(entry diaglog.LogEntry) {
	if c.logger == nil {
		return
	}
	if entry.Component == "" {
		entry.Component = diaglog.ComponentController
	}
	c.logger.Log(entry)
}
