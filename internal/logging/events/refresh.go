package events

import "github.com/unitdeck/unitdeck/internal/logging"

type RefreshTracer struct{}

var Refresh = RefreshTracer{}

func (RefreshTracer) Dispatch(seq uint64, reason string) {
	logging.Trace("refresh.dispatch", map[string]interface{}{"seq": seq, "reason": reason})
}

func (RefreshTracer) Apply(seq uint64, units int, warnings int) {
	logging.Trace("refresh.apply", map[string]interface{}{"seq": seq, "units": units, "warnings": warnings})
}

func (RefreshTracer) Drop(seq, applied uint64) {
	logging.Trace("refresh.drop", map[string]interface{}{"seq": seq, "applied": applied})
}

func (RefreshTracer) Error(seq uint64, err error) {
	if err == nil {
		return
	}
	logging.Trace("refresh.error", map[string]interface{}{"seq": seq, "error": err.Error()})
}
