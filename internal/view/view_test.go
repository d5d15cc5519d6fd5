package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unitdeck/unitdeck/internal/controller"
	"github.com/unitdeck/unitdeck/internal/inventory"
)

func sampleUnits() []inventory.Unit {
	return []inventory.Unit{
		{Name: "sshd.service", Description: "OpenSSH server daemon", Active: inventory.StateActive, Sub: "running"},
		{Name: "sshd-keygen.service", Description: "SSH key generation", Active: inventory.StateInactive, Sub: "dead"},
		{Name: "cron.service", Description: "Scheduler", Active: inventory.StateActive, Sub: "running"},
		{Name: "cups.service", Description: "Printing", Active: inventory.StateActive, Sub: "exited"},
		{Name: "fail.service", Description: "Broken", Active: inventory.StateFailed, Sub: "failed"},
	}
}

func names(rows []Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Unit.Name
	}
	return out
}

func TestDeriveCombinesQueryAndStatuses(t *testing.T) {
	filter := Filter{}.WithQuery("ssh").Toggle(StatusActive)

	rows := Derive(sampleUnits(), nil, filter)
	assert.Equal(t, []string{"sshd.service"}, names(rows),
		"sshd-keygen matches the query but not the active category")
}

func TestDeriveQueryIsCaseInsensitiveSubstring(t *testing.T) {
	rows := Derive(sampleUnits(), nil, Filter{}.WithQuery("SSH"))
	assert.Equal(t, []string{"sshd.service", "sshd-keygen.service"}, names(rows))

	rows = Derive(sampleUnits(), nil, Filter{}.WithQuery("keygen"))
	assert.Equal(t, []string{"sshd-keygen.service"}, names(rows))
}

func TestDeriveEmptyStatusSetImposesNoRestriction(t *testing.T) {
	rows := Derive(sampleUnits(), nil, Filter{})
	assert.Len(t, rows, len(sampleUnits()))
}

func TestDeriveCategoriesORTogether(t *testing.T) {
	filter := Filter{}.Toggle(StatusExited).Toggle(StatusDead)
	rows := Derive(sampleUnits(), nil, filter)
	assert.Equal(t, []string{"sshd-keygen.service", "cups.service"}, names(rows))
}

func TestDerivePreservesInventoryOrder(t *testing.T) {
	units := sampleUnits()
	rows := Derive(units, nil, Filter{})
	assert.Equal(t, []string{
		"sshd.service", "sshd-keygen.service", "cron.service", "cups.service", "fail.service",
	}, names(rows))
}

func TestDeriveIsPure(t *testing.T) {
	units := sampleUnits()
	overlay := map[string]controller.Action{"cron.service": controller.ActionStop}
	filter := Filter{}.Toggle(StatusRunning)

	first := Derive(units, overlay, filter)
	second := Derive(units, overlay, filter)
	assert.Equal(t, first, second)
	assert.Equal(t, sampleUnits(), units, "derivation must not mutate its inputs")
}

func TestNarrowerCategorySetYieldsSubset(t *testing.T) {
	units := sampleUnits()
	broad := Filter{}.Toggle(StatusActive).Toggle(StatusDead)
	narrow := Filter{}.Toggle(StatusActive)

	broadNames := names(Derive(units, nil, broad))
	for _, name := range names(Derive(units, nil, narrow)) {
		assert.Contains(t, broadNames, name)
	}
}

func TestPendingOverlayDoesNotHideCategorizedUnit(t *testing.T) {
	// A stop in flight must not remove the unit from the running view; the
	// category reflects the underlying state until a refresh lands.
	overlay := map[string]controller.Action{"sshd.service": controller.ActionStop}
	rows := Derive(sampleUnits(), overlay, Filter{}.Toggle(StatusRunning))

	require.Equal(t, []string{"sshd.service", "cron.service"}, names(rows))
	assert.Equal(t, controller.ActionStop, rows[0].Pending)
	assert.Equal(t, "stopping", rows[0].Effective())
	assert.Equal(t, controller.Action(""), rows[1].Pending)
	assert.Equal(t, "active/running", rows[1].Effective())
}

func TestStatusMatches(t *testing.T) {
	running := inventory.Unit{Active: inventory.StateActive, Sub: "running"}
	exited := inventory.Unit{Active: inventory.StateActive, Sub: "exited"}
	dead := inventory.Unit{Active: inventory.StateInactive, Sub: "dead"}

	assert.True(t, StatusRunning.Matches(running))
	assert.False(t, StatusRunning.Matches(exited))
	assert.True(t, StatusExited.Matches(exited))
	assert.True(t, StatusDead.Matches(dead))
	assert.True(t, StatusActive.Matches(exited))
	assert.False(t, StatusActive.Matches(dead))
	assert.True(t, StatusInactive.Matches(dead))
	assert.False(t, StatusInactive.Matches(running))
}

func TestToggleReturnsCopy(t *testing.T) {
	base := Filter{}.Toggle(StatusRunning)
	toggled := base.Toggle(StatusDead)

	assert.True(t, base.Selected(StatusRunning))
	assert.False(t, base.Selected(StatusDead), "toggling must not mutate the original filter")
	assert.True(t, toggled.Selected(StatusDead))

	cleared := toggled.Toggle(StatusRunning).Toggle(StatusDead)
	assert.Empty(t, cleared.SelectedList())
}

func TestSelectedListIsOrdered(t *testing.T) {
	f := Filter{}.Toggle(StatusRunning).Toggle(StatusActive).Toggle(StatusDead)
	assert.Equal(t, []Status{StatusActive, StatusDead, StatusRunning}, f.SelectedList())
}

func TestBestMatchIndex(t *testing.T) {
	rows := Derive(sampleUnits(), nil, Filter{})

	assert.Equal(t, -1, BestMatchIndex(nil, "ssh"))
	assert.Equal(t, 0, BestMatchIndex(rows, ""))
	assert.Equal(t, 2, BestMatchIndex(rows, "cron.service"), "exact match wins")
	assert.Equal(t, 3, BestMatchIndex(rows, "cup"), "prefix match")
	assert.Equal(t, 1, BestMatchIndex(rows, "keygen"), "substring match")
	assert.Equal(t, 2, BestMatchIndex(rows, "cnsvc"), "fuzzy fallback")
}

func TestEffectiveWithoutSub(t *testing.T) {
	r := Row{Unit: inventory.Unit{Active: inventory.StateUnknown}}
	assert.Equal(t, string(inventory.StateUnknown), r.Effective())
}
