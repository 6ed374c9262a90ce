package coordinator

import (
	"context"
	"log/slog"
)

// State of the refresh loop.
type State int

const (
	// Idle means no refresh is in flight
	Idle State = iota
	// Refreshing means a worker is running the aggregations
	Refreshing
)

func (s State) String() string {
	if s == Refreshing {
		return "refreshing"
	}
	return "idle"
}

// Presenter receives completed snapshots on the loop's goroutine.
type Presenter interface {
	Present(Snapshot)
}

// PresenterFunc adapts a function to the Presenter interface.
type PresenterFunc func(Snapshot)

// Present implements Presenter
func (f PresenterFunc) Present(s Snapshot) { f(s) }

// Refresher produces snapshots. *Coordinator implements it.
type Refresher interface {
	Refresh(ctx context.Context) Snapshot
}

// Loop owns the Idle/Refreshing state machine. Refreshes run on a worker
// goroutine; the loop itself never waits on the network and hands every
// completed snapshot to the presenter.
type Loop struct {
	refresher Refresher
	presenter Presenter
	log       *slog.Logger
}

// NewLoop creates a refresh loop. A nil logger uses slog.Default().
func NewLoop(r Refresher, p Presenter, log *slog.Logger) *Loop {
	if log == nil {
		log = slog.Default()
	}
	return &Loop{refresher: r, presenter: p, log: log}
}

// Run refreshes once on start, then once per trigger received while idle.
// Triggers arriving during a refresh are dropped. Run returns when ctx is done;
// a refresh already started is not cancelled and its result is discarded.
func (l *Loop) Run(ctx context.Context, triggers <-chan struct{}) error {
	results := make(chan Snapshot, 1)
	state := Idle

	start := func() {
		state = Refreshing
		l.log.Debug("refresh started")
		go func() {
			results <- l.refresher.Refresh(context.WithoutCancel(ctx))
		}()
	}

	start()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case _, ok := <-triggers:
			if !ok {
				triggers = nil
				continue
			}
			if state == Refreshing {
				l.log.Debug("refresh already in flight, trigger dropped")
				continue
			}
			start()

		case snap := <-results:
			state = Idle
			l.presenter.Present(snap)
		}
	}
}
