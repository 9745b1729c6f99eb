// Package wsengine implements speech.Engine over a streaming websocket
// transcription service. The client dials /v1/stream, sends one start frame
// describing the session, then consumes transcript frames until the server
// closes the stream or an error frame arrives.
package wsengine

import (
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/sungkue/openclaw/internal/diaglog"
	"github.com/sungkue/openclaw/internal/speech"
)

// Frame op codes for the stream protocol.
const (
	opStart      = "start"
	opTranscript = "transcript"
	opError      = "error"
)

// frame is the single wire message shape; unused fields stay empty.
type frame struct {
	Op         string   `json:"op"`
	Locale     string   `json:"locale,omitempty"`
	Triggers   []string `json:"triggers,omitempty"`
	Microphone string   `json:"microphone,omitempty"`
	Text       string   `json:"text,omitempty"`
	Final      bool     `json:"final,omitempty"`
	Message    string   `json:"message,omitempty"`
}

// Engine dials a websocket transcription endpoint per session.
type Engine struct {
	url         string
	dialTimeout time.Duration

	logger   *diaglog.Logger
	loggerMu sync.RWMutex
}

// New creates an Engine for the given ws:// or wss:// stream URL.
func New(url string) *Engine {
	return &Engine{
		url:         url,
		dialTimeout: 10 * time.Second,
	}
}

func (e *Engine) Name() string { return "websocket" }

// SetLogger injects a diaglog.Logger. Passing nil disables structured logging.
func (e *Engine) SetLogger(l *diaglog.Logger) {
	e.loggerMu.Lock()
	e.logger = l
	e.loggerMu.Unlock()
}

// Start dials the endpoint and begins streaming. A dial failure means the
// engine is unreachable for this locale and host.
func (e *Engine) Start(opts speech.SessionOptions) (speech.Session, error) {
	dialer := websocket.Dialer{HandshakeTimeout: e.dialTimeout}
	conn, _, err := dialer.Dial(e.url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %v: %w", e.url, err, speech.ErrUnavailable)
	}

	start := frame{
		Op:         opStart,
		Locale:     opts.Locale,
		Triggers:   opts.Triggers,
		Microphone: opts.Microphone,
	}
	if err := conn.WriteJSON(start); err != nil {
		conn.Close()
		return nil, fmt.Errorf("send start frame: %v: %w", err, speech.ErrUnavailable)
	}

	e.log(diaglog.LogEntry{
		Event:   diaglog.EventEngineConnect,
		Payload: map[string]interface{}{"url": e.url, "locale": opts.Locale},
	})

	s := &session{
		engine: e,
		conn:   conn,
		events: make(chan speech.Event, 16),
		done:   make(chan struct{}),
	}
	go s.readLoop()
	return s, nil
}

func (e *Engine) log(entry diaglog.LogEntry) {
	e.loggerMu.RLock()
	l := e.logger
	e.loggerMu.RUnlock()
	if l == nil {
		return
	}
	if entry.Component == "" {
		entry.Component = diaglog.ComponentEngine
	}
	l.Log(entry)
}

// session is one live websocket stream.
type session struct {
	engine *Engine
	conn   *websocket.Conn
	events chan speech.Event
	done   chan struct{}
	once   sync.Once
}

func (s *session) Events() <-chan speech.Event { return s.events }

// Stop closes the socket. The read loop notices the closed connection and
// drains out; Events is then closed.
func (s *session) Stop() {
	s.once.Do(func() {
		close(s.done)
		deadline := time.Now().Add(time.Second)
		_ = s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
		s.conn.Close()
	})
}

func (s *session) readLoop() {
	defer func() {
		s.Stop()
		close(s.events)
		s.engine.log(diaglog.LogEntry{Event: diaglog.EventEngineClose})
	}()

	for {
		var f frame
		if err := s.conn.ReadJSON(&f); err != nil {
			select {
			case <-s.done:
				// Local Stop; not an engine fault.
				return
			default:
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return
			}
			s.engine.log(diaglog.LogEntry{
				Event:  diaglog.EventEngineError,
				Reason: err.Error(),
			})
			s.emit(speech.Event{Err: fmt.Errorf("stream read: %w", err)})
			return
		}

		switch f.Op {
		case opTranscript:
			s.emit(speech.Event{Text: f.Text, IsFinal: f.Final})
			if f.Final {
				return
			}
		case opError:
			s.engine.log(diaglog.LogEntry{
				Event:  diaglog.EventEngineError,
				Reason: f.Message,
			})
			s.emit(speech.Event{Err: fmt.Errorf("engine: %s", f.Message)})
			return
		}
	}
}

func (s *session) emit(ev speech.Event) {
	select {
	case s.events <- ev:
	case <-s.done:
	}
}
