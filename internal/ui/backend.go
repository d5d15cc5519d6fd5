package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/unitdeck/unitdeck/internal/backend"
	"github.com/unitdeck/unitdeck/internal/inventory"
	"github.com/unitdeck/unitdeck/internal/logging/events"
)

func waitForBackendEvent(c *backend.Coordinator) tea.Cmd {
	return func() tea.Msg {
		evt, ok := <-c.Events()
		if !ok {
			return backendDoneMsg{}
		}
		return backendEventMsg{event: evt}
	}
}

type backendEventMsg struct {
	event backend.Event
}

type backendDoneMsg struct{}

// confirmTickMsg schedules the next confirmation refresh while control
// requests await resolution.
type confirmTickMsg struct{}

func (m *Model) handleBackendEventMsg(msg tea.Msg) tea.Cmd {
	eventMsg, ok := msg.(backendEventMsg)
	if !ok {
		return nil
	}
	m.applyBackendEvent(eventMsg.event)
	if m.coordinator != nil {
		return waitForBackendEvent(m.coordinator)
	}
	return nil
}

func (m *Model) handleBackendDoneMsg(tea.Msg) tea.Cmd {
	m.coordinator = nil
	return nil
}

// applyBackendEvent merges one refresh result. Failed refreshes keep the
// previous snapshot; confirmation refreshes additionally resolve control
// requests.
func (m *Model) applyBackendEvent(evt backend.Event) {
	m.loading = false
	m.clearExpiredInfo()
	if evt.Err != nil {
		events.Refresh.Error(evt.Seq, evt.Err)
		m.errMsg = evt.Err.Error()
		return
	}
	m.errMsg = ""
	m.snapshot = inventory.Snapshot{Seq: evt.Seq, Taken: time.Now(), Units: evt.Units}
	m.haveSnapshot = true
	m.warnings = len(evt.Warnings)
	events.Refresh.Apply(evt.Seq, len(evt.Units), len(evt.Warnings))

	if evt.Reason == backend.ReasonConfirm {
		m.resolveControlRequests()
	}
	m.rederive()
}

// resolveControlRequests feeds the dedicated confirmation snapshot to the
// controller and surfaces the confirmations. A confirmation refresh can only
// resolve a request successfully; failure belongs to the tick loop.
func (m *Model) resolveControlRequests() {
	for _, req := range m.ctrl.Observe(m.snapshot) {
		events.Control.Confirm(req.Unit, string(req.Action), req.Attempts)
		if m.verbose {
			m.setInfo(req.Action.PendingLabel() + " " + req.Unit + ": done")
		}
		m.ctrl.Ack(req.Unit)
	}
}

func (m *Model) scheduleConfirm() tea.Cmd {
	return tea.Tick(m.confirmDelay, func(time.Time) tea.Msg {
		return confirmTickMsg{}
	})
}

// handleConfirmTickMsg drives the confirmation cycle: consume one attempt,
// surface any request that ran out of budget, then re-request a confirmation
// refresh and re-arm the tick. The tick keeps firing whether or not the
// previous confirmation refresh arrived, errored, or was superseded by a
// later refresh, so the attempt budget is the only way the cycle ends.
func (m *Model) handleConfirmTickMsg(tea.Msg) tea.Cmd {
	if !m.ctrl.Confirming() {
		return nil
	}
	failed := m.ctrl.Tick()
	for _, req := range failed {
		events.Control.Fail(req.Unit, string(req.Action), req.Err)
		m.errMsg = req.Err.Error()
		m.ctrl.Ack(req.Unit)
	}
	if len(failed) > 0 {
		m.rederive()
	}
	if !m.ctrl.Confirming() {
		return nil
	}
	if m.coordinator != nil {
		m.coordinator.Confirm()
	}
	return m.scheduleConfirm()
}
