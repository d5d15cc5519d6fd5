package ui

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/unitdeck/unitdeck/internal/controller"
	"github.com/unitdeck/unitdeck/internal/logging/events"
	"github.com/unitdeck/unitdeck/internal/systemctl"
)

// commandTimeout bounds a single control command. systemd applies its own job
// timeout well before this.
const commandTimeout = 30 * time.Second

// actionDoneMsg reports completion of a dispatched control command.
type actionDoneMsg struct {
	unit   string
	action controller.Action
	err    error
}

// dispatchAction registers the control request and runs the systemctl verb
// off the update loop. A unit with an unresolved request is rejected as busy.
func (m *Model) dispatchAction(unit string, action controller.Action) tea.Cmd {
	_, err := m.ctrl.Begin(unit, action)
	if err != nil {
		if errors.Is(err, controller.ErrBusy) {
			events.Control.Busy(unit, string(action))
		}
		m.errMsg = err.Error()
		return nil
	}
	m.errMsg = ""
	events.Control.Dispatch(unit, string(action))
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		return actionDoneMsg{unit: unit, action: action, err: runVerb(ctx, client, action, unit)}
	}
}

func runVerb(ctx context.Context, client *systemctl.Client, action controller.Action, unit string) error {
	switch action {
	case controller.ActionStart:
		return client.Start(ctx, unit)
	case controller.ActionStop:
		return client.Stop(ctx, unit)
	case controller.ActionRestart:
		return client.Restart(ctx, unit)
	}
	return errors.New("unknown action " + string(action))
}

func (m *Model) handleActionDoneMsg(msg tea.Msg) tea.Cmd {
	done, ok := msg.(actionDoneMsg)
	if !ok {
		return nil
	}
	req, tracked := m.ctrl.HandleCommandResult(done.unit, done.err)
	if !tracked {
		return nil
	}
	if req.Phase == controller.PhaseFailed {
		events.Control.Fail(req.Unit, string(req.Action), req.Err)
		m.errMsg = req.Err.Error()
		m.ctrl.Ack(req.Unit)
		m.rederive()
		return nil
	}
	// Command accepted; request a confirmation refresh and arm the tick loop
	// that bounds the cycle.
	m.rederive()
	if m.coordinator != nil {
		m.coordinator.Confirm()
	}
	return m.scheduleConfirm()
}
