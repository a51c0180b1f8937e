package race

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"
)

// Scheduler paces ticks. Wait blocks until the next tick is due or ctx is
// done.
type Scheduler interface {
	Wait(ctx context.Context) error
}

// Renderer receives every frame a running session emits.
type Renderer interface {
	Render(ctx context.Context, frame Frame) error
}

// NewIntervalScheduler releases one tick per interval, the first one a full
// interval after creation. A non-positive interval never blocks.
func NewIntervalScheduler(interval time.Duration) Scheduler {
	limiter := rate.NewLimiter(rate.Every(interval), 1)
	limiter.Allow()
	return limiter
}

type run struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Runner drives sessions on their own goroutine: wait, tick, render, until
// the session finishes or the run is stopped.
type Runner struct {
	renderer     Renderer
	newScheduler func() Scheduler
	logger       *log.Logger

	mu      sync.Mutex
	running map[string]*run
}

func NewRunner(renderer Renderer, newScheduler func() Scheduler, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		renderer:     renderer,
		newScheduler: newScheduler,
		logger:       logger,
		running:      map[string]*run{},
	}
}

// Start launches the loop for s. It reports false when s already runs or
// has nothing to race.
func (r *Runner) Start(s *Session) bool {
	if st := s.State(); st != StateRacing {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.running[s.ID]; ok {
		return false
	}

	ctx, cancel := context.WithCancel(context.Background())
	rn := &run{cancel: cancel, done: make(chan struct{})}
	r.running[s.ID] = rn
	go r.loop(ctx, s, rn)
	return true
}

// Stop cancels the loop for sessionID and waits for it to exit.
func (r *Runner) Stop(sessionID string) bool {
	r.mu.Lock()
	rn, ok := r.running[sessionID]
	r.mu.Unlock()
	if !ok {
		return false
	}
	rn.cancel()
	<-rn.done
	return true
}

func (r *Runner) Running(sessionID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.running[sessionID]
	return ok
}

// StopAll stops every loop; used on shutdown.
func (r *Runner) StopAll() {
	r.mu.Lock()
	ids := make([]string, 0, len(r.running))
	for id := range r.running {
		ids = append(ids, id)
	}
	r.mu.Unlock()

	for _, id := range ids {
		r.Stop(id)
	}
}

// Emit hands a frame to the renderer; frames from manual ticks go through
// here as well.
func (r *Runner) Emit(ctx context.Context, frame Frame) error {
	if r.renderer == nil {
		return nil
	}
	return r.renderer.Render(ctx, frame)
}

func (r *Runner) loop(ctx context.Context, s *Session, rn *run) {
	logger := r.logger.With("session", s.ID)
	defer func() {
		r.mu.Lock()
		if r.running[s.ID] == rn {
			delete(r.running, s.ID)
		}
		r.mu.Unlock()
		rn.cancel()
		close(rn.done)
	}()

	sched := r.newScheduler()
	for {
		if err := sched.Wait(ctx); err != nil {
			logger.Debug("race loop stopped", "err", err)
			return
		}
		frame, ok := s.Tick()
		if ok {
			if err := r.Emit(ctx, frame); err != nil {
				logger.Warn("render frame failed", "track", frame.Track, "cursor", frame.Cursor, "err", err)
			}
			if frame.State != StateFinished {
				continue
			}
			logger.Info("race finished", "track", frame.Track)
		}
		if r.release(s, rn) {
			return
		}
	}
}

// release drops rn from the running set unless the session was put back on
// a track meanwhile. Start refuses while rn is registered, so a track
// selected during the last render is picked up by this loop instead.
func (r *Runner) release(s *Session, rn *run) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.State() == StateRacing {
		return false
	}
	if r.running[s.ID] == rn {
		delete(r.running, s.ID)
	}
	return true
}
