// Package controller tracks the lifecycle of start/stop/restart requests
// independently of the last fetched inventory snapshot. All methods must be
// called from the single UI update loop; the package holds no locks.
package controller

import (
	"errors"
	"fmt"
	"time"

	"github.com/unitdeck/unitdeck/internal/inventory"
)

// Action is a control verb issued against one unit.
type Action string

const (
	ActionStart   Action = "start"
	ActionStop    Action = "stop"
	ActionRestart Action = "restart"
)

// PendingLabel is the transient state shown while the action is in flight.
func (a Action) PendingLabel() string {
	switch a {
	case ActionStart:
		return "starting"
	case ActionStop:
		return "stopping"
	case ActionRestart:
		return "restarting"
	}
	return string(a)
}

// Expected is the active state a confirmation refresh must show before the
// request counts as confirmed.
func (a Action) Expected() inventory.ActiveState {
	if a == ActionStop {
		return inventory.StateInactive
	}
	return inventory.StateActive
}

// Phase describes where a request is in its lifecycle.
type Phase int

const (
	// PhasePending: the systemctl command has been dispatched, no result yet.
	PhasePending Phase = iota
	// PhaseConfirming: the command exited zero; awaiting a confirmation
	// refresh that shows the expected state.
	PhaseConfirming
	// PhaseConfirmed: a confirmation refresh showed the expected state.
	PhaseConfirmed
	// PhaseFailed: the command failed or the confirmation budget ran out.
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhasePending:
		return "pending"
	case PhaseConfirming:
		return "confirming"
	case PhaseConfirmed:
		return "confirmed"
	case PhaseFailed:
		return "failed"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// Terminal reports whether the phase awaits only a view acknowledgement.
func (p Phase) Terminal() bool {
	return p == PhaseConfirmed || p == PhaseFailed
}

// Request is one tracked control action.
type Request struct {
	Unit     string
	Action   Action
	Issued   time.Time
	Phase    Phase
	Attempts int
	Err      error
}

// ErrBusy rejects a second request for a unit whose previous request has not
// resolved. The original request is unaffected.
var ErrBusy = errors.New("control request already in flight")

// DefaultConfirmAttempts bounds how many confirmation refreshes may pass
// before a request fails. Tunable via configuration.
const DefaultConfirmAttempts = 5

// Controller owns the control request table.
type Controller struct {
	requests    map[string]*Request
	maxAttempts int
	now         func() time.Time
}

// New builds a controller with the given confirmation attempt budget.
// Non-positive budgets fall back to DefaultConfirmAttempts.
func New(maxAttempts int) *Controller {
	if maxAttempts <= 0 {
		maxAttempts = DefaultConfirmAttempts
	}
	return &Controller{
		requests:    make(map[string]*Request),
		maxAttempts: maxAttempts,
		now:         time.Now,
	}
}

// Begin registers a new request for the unit, rejecting with ErrBusy while an
// unresolved request exists. Requests for different units are independent.
func (c *Controller) Begin(unit string, action Action) (Request, error) {
	if existing, ok := c.requests[unit]; ok && !existing.Phase.Terminal() {
		return *existing, fmt.Errorf("%s %s: %w", action, unit, ErrBusy)
	}
	req := &Request{Unit: unit, Action: action, Issued: c.now(), Phase: PhasePending}
	c.requests[unit] = req
	return *req, nil
}

// HandleCommandResult resolves the dispatched command's exit. A nil error
// moves the request to PhaseConfirming; any error resolves it to PhaseFailed
// with the diagnostic preserved. Returns false if no pending request matches.
func (c *Controller) HandleCommandResult(unit string, err error) (Request, bool) {
	req, ok := c.requests[unit]
	if !ok || req.Phase != PhasePending {
		return Request{}, false
	}
	if err != nil {
		req.Phase = PhaseFailed
		req.Err = err
	} else {
		req.Phase = PhaseConfirming
	}
	return *req, true
}

// Observe applies one dedicated confirmation refresh to every confirming
// request and returns the requests it confirmed. General refreshes must not
// be passed here; only confirmation refreshes resolve request state.
func (c *Controller) Observe(snap inventory.Snapshot) []Request {
	var confirmed []Request
	for _, req := range c.requests {
		if req.Phase != PhaseConfirming {
			continue
		}
		unit, found := snap.Find(req.Unit)
		switch {
		case found && unit.Active == req.Action.Expected():
			req.Phase = PhaseConfirmed
			confirmed = append(confirmed, *req)
		case !found && req.Action == ActionStop:
			// A stopped unit may drop out of the listing entirely.
			req.Phase = PhaseConfirmed
			confirmed = append(confirmed, *req)
		}
	}
	return confirmed
}

// Tick consumes one confirmation attempt for every confirming request and
// fails those whose budget is exhausted. The caller drives ticks on a fixed
// cadence independent of refresh delivery, so a confirmation refresh that
// errors or is superseded by a later refresh cannot leave a request
// confirming forever; only the budget ends the cycle.
func (c *Controller) Tick() []Request {
	var failed []Request
	for _, req := range c.requests {
		if req.Phase != PhaseConfirming {
			continue
		}
		req.Attempts++
		if req.Attempts >= c.maxAttempts {
			req.Phase = PhaseFailed
			req.Err = fmt.Errorf("%s %s: no confirmation after %d attempts", req.Action, req.Unit, req.Attempts)
			failed = append(failed, *req)
		}
	}
	return failed
}

// Ack removes a terminal request once the view layer has observed it,
// returning the unit to the idle state.
func (c *Controller) Ack(unit string) {
	if req, ok := c.requests[unit]; ok && req.Phase.Terminal() {
		delete(c.requests, unit)
	}
}

// Confirming reports whether any request still awaits a confirmation refresh.
func (c *Controller) Confirming() bool {
	for _, req := range c.requests {
		if req.Phase == PhaseConfirming {
			return true
		}
	}
	return false
}

// Get returns the tracked request for a unit, if any.
func (c *Controller) Get(unit string) (Request, bool) {
	req, ok := c.requests[unit]
	if !ok {
		return Request{}, false
	}
	return *req, true
}

// Overlay maps unit names to their in-flight actions for view derivation.
// Terminal requests are not overlaid; they surface as one-shot events.
func (c *Controller) Overlay() map[string]Action {
	overlay := make(map[string]Action, len(c.requests))
	for name, req := range c.requests {
		if !req.Phase.Terminal() {
			overlay[name] = req.Action
		}
	}
	return overlay
}
