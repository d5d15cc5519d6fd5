package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadArgsDefaults(t *testing.T) {
	cfg, err := LoadArgs(nil, nil)
	if err != nil {
		t.Fatalf("LoadArgs: %v", err)
	}
	if cfg.App.Binary != "" {
		t.Errorf("Binary = %q, want empty (PATH lookup)", cfg.App.Binary)
	}
	if cfg.App.UserScope {
		t.Errorf("UserScope = true, want false")
	}
	if cfg.App.UnitType != "service" {
		t.Errorf("UnitType = %q, want service", cfg.App.UnitType)
	}
	if cfg.App.Interval != 3*time.Second {
		t.Errorf("Interval = %s, want 3s", cfg.App.Interval)
	}
	if cfg.App.ConfirmAttempts != 5 {
		t.Errorf("ConfirmAttempts = %d, want 5", cfg.App.ConfirmAttempts)
	}
	if cfg.App.ConfirmDelay != 500*time.Millisecond {
		t.Errorf("ConfirmDelay = %s, want 500ms", cfg.App.ConfirmDelay)
	}
	if !cfg.App.Watch {
		t.Errorf("Watch = false, want true")
	}
	if !cfg.App.ShowFooter {
		t.Errorf("ShowFooter = false, want true")
	}
	if cfg.Logging.Trace {
		t.Errorf("Trace = true, want false")
	}
}

func TestLoadArgsEnvOverride(t *testing.T) {
	env := []string{
		"UNITDECK_SYSTEMCTL=/opt/systemctl",
		"UNITDECK_USER=1",
		"UNITDECK_UNIT_TYPE=socket",
		"UNITDECK_INTERVAL=10s",
		"UNITDECK_CONFIRM_ATTEMPTS=8",
		"UNITDECK_TRACE=true",
	}
	cfg, err := LoadArgs(nil, env)
	if err != nil {
		t.Fatalf("LoadArgs: %v", err)
	}
	if cfg.App.Binary != "/opt/systemctl" {
		t.Errorf("Binary = %q", cfg.App.Binary)
	}
	if !cfg.App.UserScope {
		t.Errorf("UserScope = false, want true")
	}
	if cfg.App.UnitType != "socket" {
		t.Errorf("UnitType = %q, want socket", cfg.App.UnitType)
	}
	if cfg.App.Interval != 10*time.Second {
		t.Errorf("Interval = %s, want 10s", cfg.App.Interval)
	}
	if cfg.App.ConfirmAttempts != 8 {
		t.Errorf("ConfirmAttempts = %d, want 8", cfg.App.ConfirmAttempts)
	}
	if !cfg.Logging.Trace {
		t.Errorf("Trace = false, want true")
	}
}

func TestLoadArgsFlagsBeatEnv(t *testing.T) {
	env := []string{"UNITDECK_UNIT_TYPE=socket", "UNITDECK_INTERVAL=10s"}
	args := []string{"-type", "timer", "-interval", "1s"}
	cfg, err := LoadArgs(args, env)
	if err != nil {
		t.Fatalf("LoadArgs: %v", err)
	}
	if cfg.App.UnitType != "timer" {
		t.Errorf("UnitType = %q, want timer", cfg.App.UnitType)
	}
	if cfg.App.Interval != time.Second {
		t.Errorf("Interval = %s, want 1s", cfg.App.Interval)
	}
}

func TestLoadArgsRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name string
		args []string
		want string
	}{
		{"negative width", []string{"-width", "-1"}, "width"},
		{"zero interval", []string{"-interval", "0s"}, "interval"},
		{"zero attempts", []string{"-confirm-attempts", "0"}, "confirm-attempts"},
		{"zero delay", []string{"-confirm-delay", "0s"}, "confirm-delay"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadArgs(tc.args, nil)
			if err == nil {
				t.Fatalf("expected error for %v", tc.args)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestLoadArgsMalformedEnvFallsBack(t *testing.T) {
	env := []string{"UNITDECK_INTERVAL=soon", "UNITDECK_CONFIRM_ATTEMPTS=many", "UNITDECK_WATCH=maybe"}
	cfg, err := LoadArgs(nil, env)
	if err != nil {
		t.Fatalf("LoadArgs: %v", err)
	}
	if cfg.App.Interval != 3*time.Second {
		t.Errorf("Interval = %s, want default 3s", cfg.App.Interval)
	}
	if cfg.App.ConfirmAttempts != 5 {
		t.Errorf("ConfirmAttempts = %d, want default 5", cfg.App.ConfirmAttempts)
	}
	if !cfg.App.Watch {
		t.Errorf("Watch = false, want default true")
	}
}

func TestValidate(t *testing.T) {
	cfg, err := LoadArgs(nil, nil)
	if err != nil {
		t.Fatalf("LoadArgs: %v", err)
	}
	if err := Validate(cfg); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	cfg.App.UnitType = "  "
	if err := Validate(cfg); err == nil {
		t.Fatalf("expected error for blank unit type")
	}
}

func TestLoadArgsRecordsFlagsForLogging(t *testing.T) {
	cfg, err := LoadArgs([]string{"-type", "timer"}, nil)
	if err != nil {
		t.Fatalf("LoadArgs: %v", err)
	}
	if got := cfg.Flags["type"]; got != "timer" {
		t.Errorf("Flags[type] = %q, want timer", got)
	}
	if got := cfg.Flags["interval"]; got != "3s" {
		t.Errorf("Flags[interval] = %q, want 3s", got)
	}
}
