package testutil

import (
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// MockStreamServer simulates a streaming transcription websocket endpoint
// for testing the wsengine client.
type MockStreamServer struct {
	listener  net.Listener
	server    *http.Server
	conn      *websocket.Conn
	mu        sync.Mutex
	connected bool
	mode      string
	script    []map[string]interface{}
	starts    []map[string]interface{}
}

// Failure modes define how the mock server behaves after the start frame.
const (
	ModeNormal     = "normal"     // send script, then close cleanly
	ModeHoldOpen   = "holdopen"   // send script, then wait for client close
	ModeDisconnect = "disconnect" // drop the connection abruptly
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// NewMockStream creates a new mock transcription server.
func NewMockStream() *MockStreamServer {
	return &MockStreamServer{mode: ModeNormal}
}

// Start begins listening on a dynamic port.
func (m *MockStreamServer) Start() error {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}
	m.listener = listener

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/stream", m.handleWebSocket)

	m.server = &http.Server{Handler: mux}

	go func() {
		_ = m.server.Serve(m.listener)
	}()

	// Give server time to start
	time.Sleep(50 * time.Millisecond)

	return nil
}

// Stop gracefully shuts down the server.
func (m *MockStreamServer) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.conn != nil {
		_ = m.conn.Close()
		m.conn = nil
	}

	if m.server != nil {
		_ = m.server.Close()
	}

	if m.listener != nil {
		_ = m.listener.Close()
	}

	m.connected = false
	return nil
}

// URL returns the ws:// stream URL clients should dial.
func (m *MockStreamServer) URL() string {
	if m.listener == nil {
		return ""
	}
	return fmt.Sprintf("ws://%s/v1/stream", m.listener.Addr().String())
}

// SetMode configures how the server behaves after the start frame.
func (m *MockStreamServer) SetMode(mode string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mode = mode
}

// QueueTranscript appends a transcript frame to the outgoing script.
func (m *MockStreamServer) QueueTranscript(text string, final bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, map[string]interface{}{
		"op": "transcript", "text": text, "final": final,
	})
}

// QueueError appends an error frame to the outgoing script. The server stops
// sending after it.
func (m *MockStreamServer) QueueError(message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, map[string]interface{}{
		"op": "error", "message": message,
	})
}

// LastStart returns the most recent start frame received from a client.
func (m *MockStreamServer) LastStart() map[string]interface{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.starts) == 0 {
		return nil
	}
	return m.starts[len(m.starts)-1]
}

// Connected returns whether a client is currently connected.
func (m *MockStreamServer) Connected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

// handleWebSocket manages one client connection.
func (m *MockStreamServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	m.mu.Lock()
	m.conn = conn
	m.connected = true
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.connected = false
		m.mu.Unlock()
		_ = conn.Close()
	}()

	// First frame must be the start frame.
	var start map[string]interface{}
	if err := conn.ReadJSON(&start); err != nil {
		return
	}

	m.mu.Lock()
	m.starts = append(m.starts, start)
	script := make([]map[string]interface{}, len(m.script))
	copy(script, m.script)
	mode := m.mode
	m.mu.Unlock()

	if mode == ModeDisconnect {
		return
	}

	for _, frame := range script {
		if err := conn.WriteJSON(frame); err != nil {
			return
		}
	}

	if mode == ModeHoldOpen {
		// Block until the client closes or the server is stopped.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}

	deadline := time.Now().Add(time.Second)
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
	time.Sleep(50 * time.Millisecond)
}
