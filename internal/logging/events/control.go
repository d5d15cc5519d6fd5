package events

import "github.com/unitdeck/unitdeck/internal/logging"

type ControlTracer struct{}

var Control = ControlTracer{}

func (ControlTracer) Dispatch(unit, action string) {
	logging.Trace("control.dispatch", map[string]interface{}{"unit": unit, "action": action})
}

func (ControlTracer) Busy(unit, action string) {
	logging.Trace("control.busy", map[string]interface{}{"unit": unit, "action": action})
}

func (ControlTracer) Confirm(unit, action string, attempts int) {
	logging.Trace("control.confirm", map[string]interface{}{"unit": unit, "action": action, "attempts": attempts})
}

func (ControlTracer) Fail(unit, action string, err error) {
	payload := map[string]interface{}{"unit": unit, "action": action}
	if err != nil {
		payload["error"] = err.Error()
	}
	logging.Trace("control.fail", payload)
}
