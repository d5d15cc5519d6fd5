// Package view derives the visible unit list from an inventory snapshot, the
// controller's pending-action overlay, and the operator's filter. Derivation
// is a pure function so re-renders are deterministic and testable.
package view

import (
	"sort"
	"strings"

	"github.com/unitdeck/unitdeck/internal/controller"
	"github.com/unitdeck/unitdeck/internal/inventory"
)

// Status is one selectable status filter category. Categories map onto the
// unit's own active/sub states; a pending action never hides a unit from the
// category it occupied when the action was issued.
type Status string

const (
	StatusRunning  Status = "running"
	StatusExited   Status = "exited"
	StatusDead     Status = "dead"
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Statuses lists the selectable categories in display order.
func Statuses() []Status {
	return []Status{StatusRunning, StatusExited, StatusDead, StatusActive, StatusInactive}
}

// Matches reports whether the unit falls into this category.
func (s Status) Matches(u inventory.Unit) bool {
	switch s {
	case StatusRunning:
		return u.Active == inventory.StateActive && strings.EqualFold(u.Sub, "running")
	case StatusExited:
		return strings.EqualFold(u.Sub, "exited")
	case StatusDead:
		return strings.EqualFold(u.Sub, "dead")
	case StatusActive:
		return u.Active == inventory.StateActive
	case StatusInactive:
		return u.Active == inventory.StateInactive
	}
	return false
}

// Filter is the operator's live filter state. It is a value: mutating
// operations return a copy, so previously derived views stay valid.
type Filter struct {
	Query    string
	Statuses map[Status]struct{}
}

// WithQuery returns the filter with a new text query.
func (f Filter) WithQuery(query string) Filter {
	f.Query = query
	return f
}

// Toggle flips one status category and returns the updated filter.
func (f Filter) Toggle(status Status) Filter {
	statuses := make(map[Status]struct{}, len(f.Statuses)+1)
	for s := range f.Statuses {
		statuses[s] = struct{}{}
	}
	if _, ok := statuses[status]; ok {
		delete(statuses, status)
	} else {
		statuses[status] = struct{}{}
	}
	f.Statuses = statuses
	return f
}

// Selected reports whether a category is enabled.
func (f Filter) Selected(status Status) bool {
	_, ok := f.Statuses[status]
	return ok
}

// SelectedList returns the enabled categories in display order.
func (f Filter) SelectedList() []Status {
	out := make([]Status, 0, len(f.Statuses))
	for s := range f.Statuses {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// matches applies both filter dimensions. Text matching is a case-insensitive
// substring test on the unit name; selected categories OR together; an empty
// category set imposes no status restriction.
func (f Filter) matches(u inventory.Unit) bool {
	query := strings.ToLower(strings.TrimSpace(f.Query))
	if query != "" && !strings.Contains(strings.ToLower(u.Name), query) {
		return false
	}
	if len(f.Statuses) == 0 {
		return true
	}
	for s := range f.Statuses {
		if s.Matches(u) {
			return true
		}
	}
	return false
}

// Row is one visible unit together with its overlay state.
type Row struct {
	Unit    inventory.Unit
	Pending controller.Action
}

// Effective returns the state the operator should see: the pending action
// while one is in flight, else the unit's own active/sub pair.
func (r Row) Effective() string {
	if r.Pending != "" {
		return r.Pending.PendingLabel()
	}
	if r.Unit.Sub == "" {
		return string(r.Unit.Active)
	}
	return string(r.Unit.Active) + "/" + r.Unit.Sub
}

// Derive computes the visible rows. Inventory order is preserved; identical
// inputs always produce identical output.
func Derive(units []inventory.Unit, overlay map[string]controller.Action, filter Filter) []Row {
	rows := make([]Row, 0, len(units))
	for _, u := range units {
		if !filter.matches(u) {
			continue
		}
		rows = append(rows, Row{Unit: u, Pending: overlay[u.Name]})
	}
	return rows
}
