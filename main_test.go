package main

import (
	"testing"
	"time"

	"github.com/unitdeck/unitdeck/internal/app"
	"github.com/unitdeck/unitdeck/internal/config"
)

func TestProbeTerminalReportsSizeOnlyWithTTY(t *testing.T) {
	info := probeTerminal()
	if !info.Stdin && !info.Stdout && !info.Stderr {
		if info.Width != 0 || info.Height != 0 {
			t.Fatalf("no terminal detected but a size was reported: %+v", info)
		}
	}
}

func TestStartupTracePayloadIncludesFlags(t *testing.T) {
	cfg := config.Config{
		App: app.Config{
			UnitType:        "service",
			Interval:        3 * time.Second,
			ConfirmAttempts: 5,
			ConfirmDelay:    500 * time.Millisecond,
			Watch:           true,
			ShowFooter:      true,
		},
		Logging: config.Logging{
			FilePath: "trace.log",
			Trace:    true,
		},
		Flags: map[string]string{
			"type":     "service",
			"interval": "3s",
			"watch":    "true",
		},
		Args: []string{"-type", "service"},
	}

	payload := startupTracePayload(cfg)

	flagsValue, ok := payload["flags"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected flags map in payload")
	}
	if flagsValue["type"] != "service" {
		t.Fatalf("expected type flag %q, got %v", "service", flagsValue["type"])
	}
	if flagsValue["interval"] != "3s" {
		t.Fatalf("expected interval 3s, got %v", flagsValue["interval"])
	}
	if flagsValue["trace"] != true {
		t.Fatalf("expected trace flag true, got %v", flagsValue["trace"])
	}
	if flagsValue["logFile"] != "trace.log" {
		t.Fatalf("expected log file trace.log, got %v", flagsValue["logFile"])
	}

	if _, ok := payload["tty"].(terminalInfo); !ok {
		t.Fatalf("expected terminal info in payload")
	}
	if cfgValue, ok := payload["config"].(config.Config); !ok {
		t.Fatalf("expected config in payload")
	} else if cfgValue.App != cfg.App {
		t.Fatalf("expected app config %#v, got %#v", cfg.App, cfgValue.App)
	}
}
