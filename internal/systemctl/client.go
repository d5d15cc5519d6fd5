package systemctl

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// DefaultBinary is the service manager command invoked when no override is
// configured.
const DefaultBinary = "systemctl"

// CommandError reports a command that started but exited non-zero. The
// manager's diagnostic text is preserved verbatim; privilege failures arrive
// through this path too.
type CommandError struct {
	Verb     string
	Unit     string
	ExitCode int
	Stderr   string
}

func (e *CommandError) Error() string {
	subject := e.Verb
	if e.Unit != "" {
		subject = fmt.Sprintf("%s %s", e.Verb, e.Unit)
	}
	detail := strings.TrimSpace(e.Stderr)
	if detail == "" {
		return fmt.Sprintf("systemctl %s: exit status %d", subject, e.ExitCode)
	}
	return fmt.Sprintf("systemctl %s: exit status %d: %s", subject, e.ExitCode, detail)
}

// Client issues systemctl commands through a Runner. The zero value is not
// usable; construct with New.
type Client struct {
	runner   Runner
	binary   string
	userMode bool
	unitType string
}

// Option adjusts client construction.
type Option func(*Client)

// WithBinary overrides the systemctl binary name or path.
func WithBinary(bin string) Option {
	return func(c *Client) {
		if strings.TrimSpace(bin) != "" {
			c.binary = bin
		}
	}
}

// WithUserScope targets the per-user service manager (systemctl --user).
func WithUserScope(user bool) Option {
	return func(c *Client) { c.userMode = user }
}

// WithUnitType restricts inventory queries to one unit type, e.g. "service".
func WithUnitType(unitType string) Option {
	return func(c *Client) { c.unitType = unitType }
}

// New builds a Client around the given runner.
func New(runner Runner, opts ...Option) *Client {
	c := &Client{runner: runner, binary: DefaultBinary, unitType: "service"}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) baseArgs() []string {
	args := make([]string, 0, 4)
	if c.userMode {
		args = append(args, "--user")
	}
	return args
}

// ListUnits fetches the raw unit inventory. It asks for JSON output first and
// falls back to plain column output for systemctl versions that predate
// --output=json. The returned bytes are uninterpreted; parsing is the
// inventory package's job.
func (c *Client) ListUnits(ctx context.Context) ([]byte, error) {
	listArgs := append(c.baseArgs(), "list-units", "--type="+c.unitType, "--all", "--no-pager")
	res, err := c.runner.Run(ctx, c.binary, append(listArgs, "--output=json")...)
	if err != nil {
		return nil, err
	}
	if res.Success() {
		return res.Stdout, nil
	}
	if unknownOutputFlag(res.Stderr) {
		res, err = c.runner.Run(ctx, c.binary, append(listArgs, "--no-legend", "--plain")...)
		if err != nil {
			return nil, err
		}
		if res.Success() {
			return res.Stdout, nil
		}
	}
	return nil, &CommandError{Verb: "list-units", ExitCode: res.ExitCode, Stderr: string(res.Stderr)}
}

// unknownOutputFlag detects the diagnostic older systemctl versions print
// when --output is not understood.
func unknownOutputFlag(stderr []byte) bool {
	text := strings.ToLower(string(stderr))
	return strings.Contains(text, "--output") || strings.Contains(text, "unknown option")
}

// Start requests activation of the unit.
func (c *Client) Start(ctx context.Context, unit string) error {
	return c.verb(ctx, "start", unit)
}

// Stop requests deactivation of the unit.
func (c *Client) Stop(ctx context.Context, unit string) error {
	return c.verb(ctx, "stop", unit)
}

// Restart requests a stop-then-start cycle for the unit.
func (c *Client) Restart(ctx context.Context, unit string) error {
	return c.verb(ctx, "restart", unit)
}

// Reload asks the unit to reload its configuration without a restart.
func (c *Client) Reload(ctx context.Context, unit string) error {
	return c.verb(ctx, "reload", unit)
}

func (c *Client) verb(ctx context.Context, verb, unit string) error {
	if strings.TrimSpace(unit) == "" {
		return fmt.Errorf("%s: unit name required", verb)
	}
	res, err := c.runner.Run(ctx, c.binary, append(c.baseArgs(), verb, unit)...)
	if err != nil {
		return err
	}
	if !res.Success() {
		return &CommandError{Verb: verb, Unit: unit, ExitCode: res.ExitCode, Stderr: string(res.Stderr)}
	}
	return nil
}

// UnitStatus is a point probe of one unit, read via systemctl show.
type UnitStatus struct {
	Name    string
	Active  bool
	Running bool
	MainPID int
}

// Status reads ActiveState, SubState and MainPID for a single unit.
func (c *Client) Status(ctx context.Context, unit string) (UnitStatus, error) {
	if strings.TrimSpace(unit) == "" {
		return UnitStatus{}, fmt.Errorf("status: unit name required")
	}
	args := append(c.baseArgs(), "show", unit, "--property=ActiveState,SubState,MainPID", "--no-pager")
	res, err := c.runner.Run(ctx, c.binary, args...)
	if err != nil {
		return UnitStatus{}, err
	}
	if !res.Success() {
		return UnitStatus{}, &CommandError{Verb: "show", Unit: unit, ExitCode: res.ExitCode, Stderr: string(res.Stderr)}
	}
	status := UnitStatus{Name: unit}
	for _, line := range strings.Split(string(res.Stdout), "\n") {
		key, value, ok := strings.Cut(strings.TrimSpace(line), "=")
		if !ok {
			continue
		}
		switch key {
		case "ActiveState":
			status.Active = value == "active"
		case "SubState":
			status.Running = value == "running"
		case "MainPID":
			if pid, err := strconv.Atoi(value); err == nil {
				status.MainPID = pid
			}
		}
	}
	return status, nil
}

// IsActive reports whether the unit is currently active.
func (c *Client) IsActive(ctx context.Context, unit string) bool {
	status, err := c.Status(ctx, unit)
	return err == nil && status.Active
}
