// Package pump runs the capture loop: acquire a desktop frame, overlay
// the pointer, scale into the output surface, publish, sleep to hold
// cadence. One background goroutine owns the loop; consumers interact
// through the publish callback and the status channel.
package pump

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/alphonsez1/ARSmoothDesk/internal/capture"
	"github.com/alphonsez1/ARSmoothDesk/internal/logger"
	"github.com/alphonsez1/ARSmoothDesk/internal/pointer"
	"github.com/alphonsez1/ARSmoothDesk/internal/scale"
)

// State is the pump lifecycle state.
type State int32

const (
	StateIdle State = iota
	StateStarting
	StateRunning
	StateStopping
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	}
	return "unknown"
}

// EventKind classifies status events surfaced to the host.
type EventKind int

const (
	// EventStarted fires once a capture path is open and the loop runs.
	EventStarted EventKind = iota
	// EventSourceLost fires when the capture source became invalid and
	// the pump is rebuilding it.
	EventSourceLost
	// EventRecovered fires when a lost source was reopened.
	EventRecovered
	// EventStopped fires after the loop has fully wound down.
	EventStopped
	// EventFatal fires when no capture path could be established.
	EventFatal
)

// Status is one event on the pump's status channel.
type Status struct {
	Kind    EventKind
	Backend string
	Err     error
}

// Config is the immutable pump configuration. Changing it requires a
// pump restart.
type Config struct {
	FrameRate      int           // target publishes per second
	FrameSkip      int           // publish every (N+1)th cycle when > 0
	MinSleep       time.Duration // floor for the inter-cycle sleep
	AcquireTimeout time.Duration // bounded wait for a changed frame
	JoinTimeout    time.Duration // bounded wait for loop shutdown
}

func (c *Config) withDefaults() Config {
	out := *c
	if out.FrameRate <= 0 {
		out.FrameRate = 30
	}
	if out.MinSleep <= 0 {
		out.MinSleep = time.Millisecond
	}
	if out.AcquireTimeout <= 0 {
		out.AcquireTimeout = 100 * time.Millisecond
	}
	if out.JoinTimeout <= 0 {
		out.JoinTimeout = 2 * time.Second
	}
	return out
}

func (c *Config) interval() time.Duration {
	return time.Second / time.Duration(c.FrameRate)
}

// PublishFunc receives the scaled frame once per successful cycle. The
// frame is only valid for the duration of the call.
type PublishFunc func(*scale.OutputFrame)

// Stats is a snapshot of pump counters for diagnostics.
type Stats struct {
	State     string `json:"state"`
	Backend   string `json:"backend"`
	Cycles    uint64 `json:"cycles"`
	Published uint64 `json:"published"`
	Skipped   uint64 `json:"skipped"`
	Timeouts  uint64 `json:"timeouts"`
	Reopens   uint64 `json:"reopens"`
}

// Pump drives the capture pipeline.
type Pump struct {
	cfg     Config
	open    capture.Opener
	scaler  *scale.Scaler
	publish PublishFunc
	log     *zerolog.Logger

	state  atomic.Int32
	busy   atomic.Bool
	stop   chan struct{}
	done   chan struct{}
	status chan Status

	// raw and ptr are owned by the loop goroutine; rawMu covers the
	// capture-and-composite window, outMu the scale-and-publish
	// window. The two are never held together.
	rawMu sync.Mutex
	raw   *capture.RawFrame
	ptr   capture.PointerState
	outMu sync.Mutex

	cap     capture.Capturer
	backend atomic.Value // string

	cycles    atomic.Uint64
	published atomic.Uint64
	skipped   atomic.Uint64
	timeouts  atomic.Uint64
	reopens   atomic.Uint64
}

// New creates a pump. open is called at start and again after source
// loss; publish may be nil.
func New(cfg Config, open capture.Opener, scaler *scale.Scaler, publish PublishFunc) *Pump {
	p := &Pump{
		cfg:     cfg.withDefaults(),
		open:    open,
		scaler:  scaler,
		publish: publish,
		log:     logger.WithComponent("pump"),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
		status:  make(chan Status, 16),
		raw:     &capture.RawFrame{},
	}
	p.state.Store(int32(StateIdle))
	p.backend.Store("")
	return p
}

// State returns the current lifecycle state.
func (p *Pump) State() State {
	return State(p.state.Load())
}

// Status returns the event channel. Events are dropped, not blocked
// on, when the host does not drain it.
func (p *Pump) Status() <-chan Status {
	return p.status
}

// Snapshot returns current counters.
func (p *Pump) Snapshot() Stats {
	backend, _ := p.backend.Load().(string)
	return Stats{
		State:     p.State().String(),
		Backend:   backend,
		Cycles:    p.cycles.Load(),
		Published: p.published.Load(),
		Skipped:   p.skipped.Load(),
		Timeouts:  p.timeouts.Load(),
		Reopens:   p.reopens.Load(),
	}
}

// Start opens the capture path and launches the loop. Failure to open
// any path leaves the pump idle and is returned to the caller.
func (p *Pump) Start() error {
	if !p.state.CompareAndSwap(int32(StateIdle), int32(StateStarting)) {
		return fmt.Errorf("pump already started (state %s)", p.State())
	}

	c, err := p.open()
	if err != nil {
		p.state.Store(int32(StateIdle))
		p.emit(Status{Kind: EventFatal, Err: err})
		return fmt.Errorf("no capture path available: %w", err)
	}
	p.cap = c
	p.backend.Store(c.Name())

	p.state.Store(int32(StateRunning))
	p.emit(Status{Kind: EventStarted, Backend: c.Name()})
	w, h := c.Bounds()
	p.log.Info().
		Str("backend", c.Name()).
		Int("width", w).
		Int("height", h).
		Int("frame_rate", p.cfg.FrameRate).
		Msg("Capture pump started")

	go p.loop()
	return nil
}

// Stop signals the loop and waits, bounded by the join timeout, for it
// to wind down. Safe to call once after a successful Start.
func (p *Pump) Stop() {
	if !p.state.CompareAndSwap(int32(StateRunning), int32(StateStopping)) {
		return
	}
	close(p.stop)

	select {
	case <-p.done:
	case <-time.After(p.cfg.JoinTimeout):
		p.log.Warn().Msg("Capture loop did not stop within join timeout, abandoning")
	}
	p.state.Store(int32(StateStopped))
	p.emit(Status{Kind: EventStopped})
	p.log.Info().Msg("Capture pump stopped")
}

func (p *Pump) emit(s Status) {
	select {
	case p.status <- s:
	default:
	}
}

func (p *Pump) loop() {
	defer close(p.done)
	defer func() {
		if p.cap != nil {
			p.cap.Close()
			p.cap = nil
		}
	}()

	interval := p.cfg.interval()
	cycle := 0
	for {
		select {
		case <-p.stop:
			return
		default:
		}

		start := time.Now()
		cycle++
		p.cycles.Add(1)

		switch {
		case p.cfg.FrameSkip > 0 && cycle%(p.cfg.FrameSkip+1) != 0:
			p.skipped.Add(1)
		case !p.busy.CompareAndSwap(false, true):
			// Previous cycle still executing; drop this one rather
			// than queue it.
			p.skipped.Add(1)
		default:
			p.runCycle()
			p.busy.Store(false)
		}

		sleep := interval - time.Since(start)
		if sleep < p.cfg.MinSleep {
			sleep = p.cfg.MinSleep
		}
		select {
		case <-p.stop:
			return
		case <-time.After(sleep):
		}
	}
}

// runCycle performs one capture-composite-scale-publish pass. Errors
// never escape: the pump recovers or degrades and keeps running.
func (p *Pump) runCycle() {
	if p.cap == nil {
		p.reopen()
		return
	}

	p.rawMu.Lock()
	outcome, err := p.cap.Capture(p.raw, &p.ptr, p.cfg.AcquireTimeout)
	switch outcome {
	case capture.SourceLost:
		p.rawMu.Unlock()
		p.log.Warn().Err(err).Msg("Capture source lost, rebuilding capture path")
		p.emit(Status{Kind: EventSourceLost, Err: err})
		p.cap.Close()
		p.cap = nil
		p.reopen()
		return
	case capture.FrameCaptured:
		pointer.Composite(p.raw, p.ptr)
	case capture.NoNewFrame:
		if err != nil {
			p.log.Debug().Err(err).Msg("Capture cycle degraded, reusing previous frame")
		} else {
			p.timeouts.Add(1)
		}
	}
	p.rawMu.Unlock()

	if p.raw.Width == 0 || p.raw.Height == 0 {
		// Nothing captured yet.
		return
	}

	p.outMu.Lock()
	out := p.scaler.Scale(p.raw)
	if p.publish != nil {
		p.publish(out)
	}
	p.outMu.Unlock()
	p.published.Add(1)
}

// reopen rebuilds the capture path after source loss. One attempt per
// cycle keeps the loop responsive to stop while the source is gone.
func (p *Pump) reopen() {
	c, err := p.open()
	if err != nil {
		p.log.Debug().Err(err).Msg("Capture path reopen failed, will retry")
		return
	}
	p.cap = c
	p.backend.Store(c.Name())
	p.reopens.Add(1)
	p.emit(Status{Kind: EventRecovered, Backend: c.Name()})
	p.log.Info().Str("backend", c.Name()).Msg("Capture path reopened")
}
