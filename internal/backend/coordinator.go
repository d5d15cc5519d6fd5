// Package backend sequences inventory refreshes against the service manager
// and publishes results to the UI. Each refresh carries a monotonically
// increasing sequence number; a result is emitted only if it is the newest
// seen so far, so the view never regresses to older inventory data.
package backend

import (
	"context"
	"time"

	"vawter.tech/stopper"

	"github.com/unitdeck/unitdeck/internal/inventory"
	"github.com/unitdeck/unitdeck/internal/logging/events"
)

// Reason records what triggered a refresh. Only ReasonConfirm events may
// resolve control requests; a general refresh is never taken as confirmation.
type Reason string

const (
	ReasonInitial Reason = "initial"
	ReasonPoll    Reason = "poll"
	ReasonManual  Reason = "manual"
	ReasonConfirm Reason = "confirm"
	ReasonWatch   Reason = "watch"
)

// Event conveys one applied refresh result or a refresh failure. On Err the
// receiver keeps its previous snapshot.
type Event struct {
	Seq      uint64
	Reason   Reason
	Units    []inventory.Unit
	Warnings []inventory.Warning
	Err      error
}

// Lister is the slice of the systemctl client the coordinator needs.
type Lister interface {
	ListUnits(ctx context.Context) ([]byte, error)
}

// Coordinator owns refresh scheduling and the sequence gate.
type Coordinator struct {
	client   Lister
	interval time.Duration

	sctx     *stopper.Context
	events   chan Event
	triggers chan Reason
	results  chan Event

	throttle *throttle
}

// NewCoordinator starts the refresh loop, polling at interval. When watchDir
// is non-empty, filesystem changes under it also trigger refreshes.
func NewCoordinator(client Lister, interval time.Duration, watchDir string) *Coordinator {
	c := &Coordinator{
		client:   client,
		interval: interval,
		sctx:     stopper.WithContext(context.Background()),
		events:   make(chan Event, 16),
		triggers: make(chan Reason, 8),
		results:  make(chan Event, 8),
		throttle: newThrottle(250 * time.Millisecond),
	}
	c.sctx.Defer(func() { close(c.events) })
	c.sctx.Go(c.run)
	if watchDir != "" {
		watchUnitDir(c.sctx, watchDir, func() { c.trigger(ReasonWatch) })
	}
	return c
}

// Events returns the stream of applied refresh results.
func (c *Coordinator) Events() <-chan Event {
	return c.events
}

// Refresh requests a general, user-initiated refresh. Its result supersedes
// any still-outstanding older refresh by sequence ordering.
func (c *Coordinator) Refresh() {
	c.trigger(ReasonManual)
}

// Confirm requests a dedicated confirmation refresh on behalf of the
// controller.
func (c *Coordinator) Confirm() {
	c.trigger(ReasonConfirm)
}

// Stop shuts the coordinator down. In-flight fetches are abandoned; their
// results are discarded.
func (c *Coordinator) Stop() {
	c.sctx.Stop(100 * time.Millisecond)
}

// Wait blocks until all coordinator goroutines have exited and the events
// channel is closed.
func (c *Coordinator) Wait() error {
	return c.sctx.Wait()
}

func (c *Coordinator) trigger(reason Reason) {
	select {
	case c.triggers <- reason:
	default:
		// A queued refresh is already outstanding; its result covers this one.
	}
}

func (c *Coordinator) run(sctx *stopper.Context) error {
	var seq, applied uint64

	dispatch := func(reason Reason) {
		seq++
		s := seq
		events.Refresh.Dispatch(s, string(reason))
		sctx.Go(func(sctx *stopper.Context) error {
			c.fetch(sctx, s, reason)
			return nil
		})
	}

	dispatch(ReasonInitial)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-sctx.Stopping():
			return nil
		case <-ticker.C:
			dispatch(ReasonPoll)
		case reason := <-c.triggers:
			dispatch(reason)
		case res := <-c.results:
			if res.Seq <= applied {
				events.Refresh.Drop(res.Seq, applied)
				continue
			}
			applied = res.Seq
			select {
			case <-sctx.Stopping():
				return nil
			case c.events <- res:
			}
		}
	}
}

func (c *Coordinator) fetch(sctx *stopper.Context, seq uint64, reason Reason) {
	c.throttle.wait()
	res := Event{Seq: seq, Reason: reason}
	raw, err := c.client.ListUnits(sctx)
	if err != nil {
		res.Err = err
	} else {
		res.Units, res.Warnings, res.Err = inventory.Parse(raw)
	}
	select {
	case <-sctx.Stopping():
	case c.results <- res:
	}
}
