package workers

import (
	"context"
	"sync"
	"time"

	"cav/flightrelay/internal/common"
	"cav/flightrelay/internal/constants"
	"cav/flightrelay/internal/logging"
	"cav/flightrelay/internal/metrics"
)

// PollState is the lifecycle state of a Poller.
type PollState int

const (
	StateIdle PollState = iota
	StateFetching
	StateStopped
)

func (s PollState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFetching:
		return "fetching"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// FetchFunc loads the full collection a poller displays.
type FetchFunc[T any] func(ctx context.Context) ([]T, error)

// PollerConfig configures a Poller.
type PollerConfig[T any] struct {
	// Source names the poller in logs and metrics
	Source string
	// Plugin tags notifications
	Plugin   string
	Interval time.Duration
	// FailureMessage is shown once per failed fetch
	FailureMessage string
	// Describe picks the failure message per error when set
	Describe func(err error) string

	Notifier common.Notifier
	Metrics  *metrics.MetricsRegistry

	// OnChange receives every applied collection. It must not call Stop.
	OnChange func(items []T)
}

// Poller keeps a collection fresh by fetching it on an interval.
//
// Each fetch is stamped with a generation number when issued. A completed
// fetch is applied only when no later-issued fetch has been applied already,
// so the collection always reflects the newest issued request that finished.
// A failed fetch replaces the collection with an empty one and raises exactly
// one notification. After Stop nothing is applied and no callback fires.
type Poller[T any] struct {
	cfg   PollerConfig[T]
	fetch FetchFunc[T]

	// applyMu serializes result application with Stop
	applyMu sync.Mutex

	mu       sync.Mutex
	state    PollState
	data     []T
	issued   uint64
	applied  uint64
	inFlight int
	started  bool
	ctx      context.Context
	cancel   context.CancelFunc

	wg sync.WaitGroup
}

func NewPoller[T any](cfg PollerConfig[T], fetch FetchFunc[T]) *Poller[T] {
	if cfg.Notifier == nil {
		cfg.Notifier = common.LogNotifier{}
	}
	return &Poller[T]{
		cfg:   cfg,
		fetch: fetch,
		state: StateIdle,
		data:  []T{},
	}
}

// Start fetches immediately and then once per interval until Stop or until
// ctx is cancelled. The immediate fetch is skipped when a FetchNow already
// completed. Calling Start twice has no effect.
func (p *Poller[T]) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started || p.state == StateStopped {
		p.mu.Unlock()
		return
	}
	p.started = true
	primed := p.applied > 0
	p.ctx, p.cancel = context.WithCancel(ctx)
	loopCtx := p.ctx
	p.wg.Add(1)
	p.mu.Unlock()

	logging.Debug("Poller started", "source", p.cfg.Source, "interval", p.cfg.Interval.String())
	go p.loop(loopCtx, primed)
}

func (p *Poller[T]) loop(ctx context.Context, primed bool) {
	defer p.wg.Done()

	// Cancelling the start context tears the poller down like Stop
	defer p.Stop()

	if !primed {
		p.runCycle(ctx)
	}

	if p.cfg.Interval <= 0 {
		<-ctx.Done()
		return
	}

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.runCycle(ctx)
		}
	}
}

// Refresh issues one extra fetch without waiting for it. A fetch already in
// flight is not aborted.
func (p *Poller[T]) Refresh() {
	p.mu.Lock()
	if !p.started || p.state == StateStopped {
		p.mu.Unlock()
		return
	}
	ctx := p.ctx
	p.wg.Add(1)
	p.mu.Unlock()

	go func() {
		defer p.wg.Done()
		p.runCycle(ctx)
	}()
}

// FetchNow runs one fetch cycle on the caller's goroutine.
func (p *Poller[T]) FetchNow(ctx context.Context) {
	p.mu.Lock()
	if p.started && p.ctx != nil {
		parent := p.ctx
		p.mu.Unlock()
		var cancel context.CancelFunc
		ctx, cancel = mergeCancel(ctx, parent)
		defer cancel()
	} else {
		p.mu.Unlock()
	}
	p.runCycle(ctx)
}

// Stop cancels the timer and any in-flight fetch. Results that arrive later
// are discarded. Stop does not wait for goroutines; use Wait for that.
func (p *Poller[T]) Stop() {
	p.applyMu.Lock()
	defer p.applyMu.Unlock()

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == StateStopped {
		return
	}
	p.state = StateStopped
	if p.cancel != nil {
		p.cancel()
	}
	logging.Debug("Poller stopped", "source", p.cfg.Source)
}

// Wait blocks until the loop and all refresh goroutines have returned.
func (p *Poller[T]) Wait() {
	p.wg.Wait()
}

// Snapshot returns a copy of the current collection.
func (p *Poller[T]) Snapshot() []T {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]T, len(p.data))
	copy(out, p.data)
	return out
}

func (p *Poller[T]) State() PollState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *Poller[T]) runCycle(ctx context.Context) {
	p.mu.Lock()
	if p.state == StateStopped {
		p.mu.Unlock()
		return
	}
	p.issued++
	gen := p.issued
	p.inFlight++
	p.state = StateFetching
	p.mu.Unlock()

	items, err := p.fetch(ctx)
	if ctx.Err() != nil {
		p.abandon(gen)
		return
	}

	p.apply(gen, items, err)
}

// abandon retires a fetch whose context ended. Data and notifications are
// left untouched.
func (p *Poller[T]) abandon(gen uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == StateStopped {
		return
	}
	p.inFlight--
	if p.inFlight == 0 {
		p.state = StateIdle
	}
	logging.Debug("Discarding cancelled poll", "source", p.cfg.Source, "generation", gen)
}

func (p *Poller[T]) apply(gen uint64, items []T, err error) {
	p.applyMu.Lock()
	defer p.applyMu.Unlock()

	p.mu.Lock()
	if p.state == StateStopped {
		p.mu.Unlock()
		return
	}
	p.inFlight--
	if p.inFlight == 0 {
		p.state = StateIdle
	}
	if gen < p.applied {
		p.mu.Unlock()
		logging.Debug("Discarding stale poll response", "source", p.cfg.Source, "generation", gen)
		if p.cfg.Metrics != nil {
			p.cfg.Metrics.PollStaleDropped.WithLabelValues(p.cfg.Source).Inc()
		}
		// Newer data stays, but the failure is still reported
		if err != nil {
			p.notifyFailure(err)
		}
		return
	}
	p.applied = gen
	if err != nil || items == nil {
		items = []T{}
	}
	p.data = items
	snapshot := make([]T, len(items))
	copy(snapshot, items)
	p.mu.Unlock()

	result := "ok"
	if err != nil {
		result = "error"
		p.notifyFailure(err)
	}
	if p.cfg.Metrics != nil {
		p.cfg.Metrics.PollCyclesTotal.WithLabelValues(p.cfg.Source, result).Inc()
	}

	if p.cfg.OnChange != nil {
		p.cfg.OnChange(snapshot)
	}
}

func (p *Poller[T]) notifyFailure(err error) {
	logging.Warn("Poll failed", "source", p.cfg.Source, "error", err.Error())
	p.cfg.Notifier.Notify(common.Notification{
		Plugin:  p.cfg.Plugin,
		Type:    constants.NotifyDanger,
		Message: p.failureMessage(err),
	})
}

func (p *Poller[T]) failureMessage(err error) string {
	if p.cfg.Describe != nil {
		if msg := p.cfg.Describe(err); msg != "" {
			return msg
		}
	}
	return p.cfg.FailureMessage
}

// mergeCancel returns a context cancelled when either a or b is done.
func mergeCancel(a, b context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(a)
	stop := context.AfterFunc(b, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}
