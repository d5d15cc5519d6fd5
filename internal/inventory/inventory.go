package inventory

import "time"

// ActiveState is the coarse lifecycle state systemd reports for a unit.
type ActiveState string

const (
	StateActive       ActiveState = "active"
	StateInactive     ActiveState = "inactive"
	StateActivating   ActiveState = "activating"
	StateDeactivating ActiveState = "deactivating"
	StateFailed       ActiveState = "failed"
	StateUnknown      ActiveState = "unknown"
)

// NormalizeActiveState maps a raw token onto a known ActiveState. Tokens
// introduced by newer systemd versions fold into StateUnknown rather than
// failing the parse.
func NormalizeActiveState(raw string) ActiveState {
	switch ActiveState(raw) {
	case StateActive, StateInactive, StateActivating, StateDeactivating, StateFailed:
		return ActiveState(raw)
	default:
		return StateUnknown
	}
}

// Unit describes one service unit as reported by systemctl. Sub is kept as
// an opaque label because systemd owns that vocabulary.
type Unit struct {
	Name        string
	Description string
	LoadState   string
	Active      ActiveState
	Sub         string
}

// Snapshot is one complete inventory fetch. Only the most recent applied
// snapshot is authoritative; a unit absent from it is treated as removed.
type Snapshot struct {
	Seq   uint64
	Taken time.Time
	Units []Unit
}

// Find returns the unit with the given name, if present.
func (s Snapshot) Find(name string) (Unit, bool) {
	for _, u := range s.Units {
		if u.Name == name {
			return u, true
		}
	}
	return Unit{}, false
}

// Names returns the unit names in snapshot order.
func (s Snapshot) Names() []string {
	names := make([]string, 0, len(s.Units))
	for _, u := range s.Units {
		names = append(names, u.Name)
	}
	return names
}
