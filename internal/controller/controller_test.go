package controller

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unitdeck/unitdeck/internal/inventory"
)

func snapshotWith(units ...inventory.Unit) inventory.Snapshot {
	return inventory.Snapshot{Units: units}
}

func TestStopRequestConfirmsAgainstRefresh(t *testing.T) {
	c := New(3)

	req, err := c.Begin("foo.service", ActionStop)
	require.NoError(t, err)
	assert.Equal(t, PhasePending, req.Phase)

	req, tracked := c.HandleCommandResult("foo.service", nil)
	require.True(t, tracked)
	assert.Equal(t, PhaseConfirming, req.Phase)

	resolved := c.Observe(snapshotWith(inventory.Unit{Name: "foo.service", Active: inventory.StateInactive, Sub: "dead"}))
	require.Len(t, resolved, 1)
	assert.Equal(t, PhaseConfirmed, resolved[0].Phase)
	assert.NoError(t, resolved[0].Err)

	c.Ack("foo.service")
	_, ok := c.Get("foo.service")
	assert.False(t, ok, "unit returns to idle after acknowledgement")
}

func TestSecondRequestWhilePendingIsBusy(t *testing.T) {
	c := New(3)
	_, err := c.Begin("bar.service", ActionRestart)
	require.NoError(t, err)

	_, err = c.Begin("bar.service", ActionStop)
	require.ErrorIs(t, err, ErrBusy)

	// The original request is unaffected.
	req, ok := c.Get("bar.service")
	require.True(t, ok)
	assert.Equal(t, ActionRestart, req.Action)
	assert.Equal(t, PhasePending, req.Phase)
}

func TestDifferentUnitsAreIndependent(t *testing.T) {
	c := New(3)
	_, err := c.Begin("a.service", ActionStart)
	require.NoError(t, err)
	_, err = c.Begin("b.service", ActionStop)
	require.NoError(t, err)

	overlay := c.Overlay()
	assert.Equal(t, map[string]Action{"a.service": ActionStart, "b.service": ActionStop}, overlay)
}

func TestCommandFailureResolvesToFailed(t *testing.T) {
	c := New(3)
	_, err := c.Begin("foo.service", ActionStart)
	require.NoError(t, err)

	cause := errors.New("systemctl start foo.service: exit status 4: Access denied")
	req, tracked := c.HandleCommandResult("foo.service", cause)
	require.True(t, tracked)
	assert.Equal(t, PhaseFailed, req.Phase)
	assert.ErrorIs(t, req.Err, cause)
}

func TestConfirmationBudgetExhaustionFails(t *testing.T) {
	c := New(2)
	_, err := c.Begin("slow.service", ActionStart)
	require.NoError(t, err)
	_, tracked := c.HandleCommandResult("slow.service", nil)
	require.True(t, tracked)

	// A refresh without the expected state resolves nothing and consumes
	// nothing; the ticks carry the budget.
	still := snapshotWith(inventory.Unit{Name: "slow.service", Active: inventory.StateActivating, Sub: "start"})
	assert.Empty(t, c.Observe(still))

	failed := c.Tick()
	assert.Empty(t, failed, "first attempt just consumes budget")
	assert.True(t, c.Confirming())

	failed = c.Tick()
	require.Len(t, failed, 1)
	assert.Equal(t, PhaseFailed, failed[0].Phase)
	require.Error(t, failed[0].Err)
	assert.Contains(t, failed[0].Err.Error(), "no confirmation after 2 attempts")
	assert.False(t, c.Confirming())
}

func TestBudgetExhaustsWithoutAnyRefresh(t *testing.T) {
	// A confirmation refresh that errors or is superseded never reaches
	// Observe; ticks alone must still resolve the request.
	c := New(3)
	_, err := c.Begin("stuck.service", ActionStop)
	require.NoError(t, err)
	c.HandleCommandResult("stuck.service", nil)

	assert.Empty(t, c.Tick())
	assert.Empty(t, c.Tick())
	failed := c.Tick()
	require.Len(t, failed, 1)
	assert.Equal(t, PhaseFailed, failed[0].Phase)
	assert.Equal(t, 3, failed[0].Attempts)
}

func TestStartConfirmsOnlyOnActive(t *testing.T) {
	c := New(5)
	_, err := c.Begin("web.service", ActionStart)
	require.NoError(t, err)
	c.HandleCommandResult("web.service", nil)

	resolved := c.Observe(snapshotWith(inventory.Unit{Name: "web.service", Active: inventory.StateActivating}))
	assert.Empty(t, resolved)

	resolved = c.Observe(snapshotWith(inventory.Unit{Name: "web.service", Active: inventory.StateActive, Sub: "running"}))
	require.Len(t, resolved, 1)
	assert.Equal(t, PhaseConfirmed, resolved[0].Phase)
}

func TestStopConfirmedWhenUnitDisappears(t *testing.T) {
	c := New(5)
	_, err := c.Begin("gone.service", ActionStop)
	require.NoError(t, err)
	c.HandleCommandResult("gone.service", nil)

	resolved := c.Observe(snapshotWith(inventory.Unit{Name: "other.service", Active: inventory.StateActive}))
	require.Len(t, resolved, 1)
	assert.Equal(t, PhaseConfirmed, resolved[0].Phase)
}

func TestPendingRequestsUntouchedByRefreshOrTick(t *testing.T) {
	c := New(1)
	_, err := c.Begin("foo.service", ActionStart)
	require.NoError(t, err)

	// The command has not completed; neither refreshes nor ticks touch it.
	resolved := c.Observe(snapshotWith(inventory.Unit{Name: "foo.service", Active: inventory.StateInactive}))
	assert.Empty(t, resolved)
	assert.Empty(t, c.Tick())
	req, ok := c.Get("foo.service")
	require.True(t, ok)
	assert.Equal(t, PhasePending, req.Phase)
	assert.Zero(t, req.Attempts)
}

func TestHandleCommandResultUnknownUnit(t *testing.T) {
	c := New(3)
	_, tracked := c.HandleCommandResult("stray.service", nil)
	assert.False(t, tracked)
}

func TestOverlayExcludesTerminalRequests(t *testing.T) {
	c := New(3)
	_, err := c.Begin("done.service", ActionStart)
	require.NoError(t, err)
	c.HandleCommandResult("done.service", errors.New("boom"))
	assert.Empty(t, c.Overlay())

	// A terminal request no longer blocks a retry.
	_, err = c.Begin("done.service", ActionStart)
	assert.NoError(t, err)
}

func TestExpectedStates(t *testing.T) {
	assert.Equal(t, inventory.StateActive, ActionStart.Expected())
	assert.Equal(t, inventory.StateActive, ActionRestart.Expected())
	assert.Equal(t, inventory.StateInactive, ActionStop.Expected())
	assert.Equal(t, "starting", ActionStart.PendingLabel())
	assert.Equal(t, "stopping", ActionStop.PendingLabel())
	assert.Equal(t, "restarting", ActionRestart.PendingLabel())
}
