package events

import "github.com/unitdeck/unitdeck/internal/logging"

type UITracer struct{}

var UI = UITracer{}

func (UITracer) Key(key string) {
	logging.Trace("ui.key", map[string]interface{}{"key": key})
}

func (UITracer) FilterQuery(query string) {
	logging.Trace("ui.filter.query", map[string]interface{}{"query": query})
}

func (UITracer) FilterStatus(status string, enabled bool) {
	logging.Trace("ui.filter.status", map[string]interface{}{"status": status, "enabled": enabled})
}
