package forward

import (
	"strings"
	"sync"
	"sync/atomic"

	"github.com/sungkue/openclaw/internal/diaglog"
)

type job struct {
	transcript string
	cfg        Config
	sessionID  string
}

// Stats are cumulative dispatcher counters since construction.
type Stats struct {
	Sent    uint64 // jobs handed to the runner that completed without error
	Failed  uint64 // runner failures
	Dropped uint64 // jobs dropped on queue overflow
	Skipped uint64 // dispatches skipped (disabled or blank target)
}

// Dispatcher runs forwards on a bounded background worker pool, detached from
// the detection lifecycle. Dispatch never blocks the caller; when the queue is
// full the job is dropped and counted rather than stalling the controller.
type Dispatcher struct {
	runner Runner
	jobs   chan job
	wg     sync.WaitGroup

	sent    atomic.Uint64
	failed  atomic.Uint64
	dropped atomic.Uint64
	skipped atomic.Uint64

	logger   *diaglog.Logger
	loggerMu sync.RWMutex

	closeOnce sync.Once
}

// NewDispatcher creates a dispatcher with the given pool size. workers and
// queueSize are clamped to at least 1.
func NewDispatcher(runner Runner, workers, queueSize int) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	d := &Dispatcher{
		runner: runner,
		jobs:   make(chan job, queueSize),
	}
	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
	return d
}

// SetLogger injects a diaglog.Logger for dispatch diagnostics.
func (d *Dispatcher) SetLogger(l *diaglog.Logger) {
	d.loggerMu.Lock()
	d.logger = l
	d.loggerMu.Unlock()
}

func (d *Dispatcher) log(entry diaglog.LogEntry) {
	d.loggerMu.RLock()
	l := d.logger
	d.loggerMu.RUnlock()
	if l == nil {
		return
	}
	if entry.Component == "" {
		entry.Component = diaglog.ComponentDispatcher
	}
	l.Log(entry)
}

// Dispatch submits a forward of transcript under the given config snapshot.
// No-op when forwarding is disabled or the target is blank. Never blocks.
func (d *Dispatcher) Dispatch(transcript string, cfg Config) {
	d.DispatchSession(transcript, cfg, "")
}

// DispatchSession is Dispatch with a session id attached for diagnostics.
func (d *Dispatcher) DispatchSession(transcript string, cfg Config, sessionID string) {
	if skippable(cfg) {
		d.skipped.Add(1)
		d.log(diaglog.LogEntry{
			Event:     diaglog.EventForwardSkipped,
			SessionID: sessionID,
			Reason:    "forwarding disabled or target blank",
		})
		return
	}

	select {
	case d.jobs <- job{transcript: transcript, cfg: cfg, sessionID: sessionID}:
	default:
		d.dropped.Add(1)
		d.log(diaglog.LogEntry{
			Event:     diaglog.EventForwardDropped,
			SessionID: sessionID,
			Reason:    "dispatch queue full",
		})
	}
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for j := range d.jobs {
		d.run(j)
	}
}

func (d *Dispatcher) run(j job) {
	command := BuildCommand(j.cfg, j.transcript)
	d.log(diaglog.LogEntry{
		Event:     diaglog.EventForwardDispatch,
		SessionID: j.sessionID,
		Payload: map[string]interface{}{
			"target":        j.cfg.Target,
			"identity_path": j.cfg.IdentityPath,
			"transcript":    j.transcript,
		},
	})

	err := d.runner.Run(j.cfg.Target, j.cfg.IdentityPath, command, strings.NewReader(j.transcript))
	if err != nil {
		d.failed.Add(1)
		d.log(diaglog.LogEntry{
			Event:     diaglog.EventForwardFailed,
			SessionID: j.sessionID,
			Reason:    err.Error(),
		})
		return
	}
	d.sent.Add(1)
}

// Stats returns a snapshot of the dispatcher counters.
func (d *Dispatcher) Stats() Stats {
	return Stats{
		Sent:    d.sent.Load(),
		Failed:  d.failed.Load(),
		Dropped: d.dropped.Load(),
		Skipped: d.skipped.Load(),
	}
}

// Close stops accepting work and waits for in-flight forwards to finish.
func (d *Dispatcher) Close() {
	d.closeOnce.Do(func() {
		close(d.jobs)
	})
	d.wg.Wait()
}
