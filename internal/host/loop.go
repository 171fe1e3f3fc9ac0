package host

import (
	"context"
	"sync"
	"time"

	"github.com/nerrad567/gray-logic-audio/internal/sound"
)

// Logger is the logging dependency.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Advancer is a device whose playhead the loop moves every tick.
type Advancer interface {
	Advance(dt time.Duration)
}

// Status is the loop state.
type Status string

const (
	StatusStopped Status = "stopped"
	StatusRunning Status = "running"
)

// Stats describes the loop for the health endpoint.
type Stats struct {
	Status   Status        `json:"status"`
	Ticks    uint64        `json:"ticks"`
	Uptime   time.Duration `json:"uptime"`
	Queued   int           `json:"queued"`
	Interval time.Duration `json:"interval"`
}

// Loop owns the sound manager and the scene. Every tick it advances each
// playing device and then calls Manager.Tick. Other goroutines reach the
// manager only through Do, which runs the function between ticks.
type Loop struct {
	mgr      *sound.Manager
	scene    *Scene
	interval time.Duration
	cmds     chan func()
	logger   Logger

	hooks []func(dt time.Duration)

	mu      sync.RWMutex
	status  Status
	started time.Time
	ticks   uint64
	done    chan struct{}
}

// NewLoop returns a stopped loop ticking every interval. queue bounds the
// number of commands waiting for the loop.
func NewLoop(mgr *sound.Manager, scene *Scene, interval time.Duration, queue int) *Loop {
	if queue < 1 {
		queue = 1
	}
	return &Loop{
		mgr:      mgr,
		scene:    scene,
		interval: interval,
		cmds:     make(chan func(), queue),
		logger:   noopLogger{},
		status:   StatusStopped,
		done:     make(chan struct{}),
	}
}

// SetLogger replaces the logger. Call before Run.
func (l *Loop) SetLogger(logger Logger) {
	if logger == nil {
		logger = noopLogger{}
	}
	l.logger = logger
}

// OnTick adds a hook run on the loop goroutine after every tick. Call
// before Run.
func (l *Loop) OnTick(fn func(dt time.Duration)) {
	l.hooks = append(l.hooks, fn)
}

// Manager returns the manager. Only use it from inside Do or a hook.
func (l *Loop) Manager() *sound.Manager { return l.mgr }

// Scene returns the scene. Only use it from inside Do or a hook.
func (l *Loop) Scene() *Scene { return l.scene }

// Run ticks until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	l.mu.Lock()
	l.status = StatusRunning
	l.started = time.Now()
	l.mu.Unlock()
	l.logger.Info("sound loop started", "interval", l.interval)

	defer func() {
		l.mu.Lock()
		l.status = StatusStopped
		l.mu.Unlock()
		close(l.done)
		l.logger.Info("sound loop stopped")
	}()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case fn := <-l.cmds:
			l.exec(fn)
		case now := <-ticker.C:
			l.Step(now.Sub(last))
			last = now
		}
	}
}

// Step advances devices and the manager by dt on the calling goroutine.
// Run calls it on every tick; tests call it directly.
func (l *Loop) Step(dt time.Duration) {
	reg := l.mgr.Registry()
	for _, name := range reg.Names() {
		h, code := reg.Lookup(name)
		if code != sound.OK {
			continue
		}
		devs, _ := h.Devices(sound.All)
		for _, d := range devs {
			if a, ok := d.(Advancer); ok {
				a.Advance(dt)
			}
		}
	}

	l.mgr.Tick(dt)
	for _, fn := range l.hooks {
		fn(dt)
	}

	l.mu.Lock()
	l.ticks++
	l.mu.Unlock()
}

func (l *Loop) exec(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("sound command panic recovered", "panic", r)
		}
	}()
	fn()
}

// Do runs fn on the loop goroutine and waits for it to finish.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	wrapped := func() {
		defer close(finished)
		fn()
	}

	select {
	case l.cmds <- wrapped:
	case <-l.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-finished:
		return nil
	case <-l.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Post queues fn without waiting. It reports false when the queue is full
// or the loop has stopped. Use it from callbacks already on the loop.
func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case l.cmds <- fn:
		return true
	default:
		return false
	}
}

// Stats returns a snapshot of the loop state.
func (l *Loop) Stats() Stats {
	l.mu.RLock()
	defer l.mu.RUnlock()
	st := Stats{
		Status:   l.status,
		Ticks:    l.ticks,
		Queued:   len(l.cmds),
		Interval: l.interval,
	}
	if l.status == StatusRunning {
		st.Uptime = time.Since(l.started)
	}
	return st
}
