package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/unitdeck/unitdeck/internal/app"
)

// Config captures runtime configuration for the application.
type Config struct {
	App     app.Config
	Logging Logging
	Flags   map[string]string
	Args    []string
}

type Logging struct {
	FilePath string
	Trace    bool
}

const (
	envBinary          = "UNITDECK_SYSTEMCTL"
	envUserScope       = "UNITDECK_USER"
	envUnitType        = "UNITDECK_UNIT_TYPE"
	envInterval        = "UNITDECK_INTERVAL"
	envConfirmAttempts = "UNITDECK_CONFIRM_ATTEMPTS"
	envConfirmDelay    = "UNITDECK_CONFIRM_DELAY"
	envWatch           = "UNITDECK_WATCH"
	envWidth           = "UNITDECK_WIDTH"
	envHeight          = "UNITDECK_HEIGHT"
	envShowFooter      = "UNITDECK_FOOTER"
	envVerbose         = "UNITDECK_VERBOSE"
	envTrace           = "UNITDECK_TRACE"
	envLogFile         = "UNITDECK_LOG_FILE"
)

// Load parses configuration from CLI arguments and environment variables.
func Load() (Config, error) {
	return LoadArgs(os.Args[1:], os.Environ())
}

// LoadArgs allows tests to supply specific args/environment.
func LoadArgs(args []string, environ []string) (Config, error) {
	env := parseEnv(environ)

	fs := flag.NewFlagSet("unitdeck", flag.ContinueOnError)
	fs.SetOutput(new(strings.Builder))

	binary := fs.String("systemctl", envOrDefault(env, envBinary, ""), "systemctl binary name or path (defaults to systemctl on PATH)")
	user := fs.Bool("user", envOrBool(env, envUserScope, false), "talk to the per-user service manager (systemctl --user)")
	unitType := fs.String("type", envOrDefault(env, envUnitType, "service"), "unit type to list")
	interval := fs.Duration("interval", envOrDuration(env, envInterval, 3*time.Second), "inventory poll interval")
	confirmAttempts := fs.Int("confirm-attempts", envOrInt(env, envConfirmAttempts, 5), "confirmation refreshes before a control action is declared failed")
	confirmDelay := fs.Duration("confirm-delay", envOrDuration(env, envConfirmDelay, 500*time.Millisecond), "delay between confirmation refreshes")
	watch := fs.Bool("watch", envOrBool(env, envWatch, true), "refresh on systemd unit state directory changes")
	width := fs.Int("width", envOrInt(env, envWidth, 0), "desired viewport width in cells (0 uses terminal width)")
	height := fs.Int("height", envOrInt(env, envHeight, 0), "desired viewport height in rows (0 uses terminal height)")
	footer := fs.Bool("footer", envOrBool(env, envShowFooter, true), "show the footer hint row")
	verbose := fs.Bool("verbose", envOrBool(env, envVerbose, false), "show success messages for actions")
	trace := fs.Bool("trace", envOrBool(env, envTrace, false), "enable verbose JSON trace logging")
	logFile := fs.String("log-file", envOrDefault(env, envLogFile, ""), "path to the log file")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if *width < 0 {
		return Config{}, fmt.Errorf("width must be >= 0 (got %d)", *width)
	}
	if *height < 0 {
		return Config{}, fmt.Errorf("height must be >= 0 (got %d)", *height)
	}
	if *interval <= 0 {
		return Config{}, fmt.Errorf("interval must be positive (got %s)", *interval)
	}
	if *confirmAttempts <= 0 {
		return Config{}, fmt.Errorf("confirm-attempts must be positive (got %d)", *confirmAttempts)
	}
	if *confirmDelay <= 0 {
		return Config{}, fmt.Errorf("confirm-delay must be positive (got %s)", *confirmDelay)
	}

	cfg := Config{
		App: app.Config{
			Binary:          *binary,
			UserScope:       *user,
			UnitType:        *unitType,
			Interval:        *interval,
			ConfirmAttempts: *confirmAttempts,
			ConfirmDelay:    *confirmDelay,
			Watch:           *watch,
			Width:           *width,
			Height:          *height,
			ShowFooter:      *footer,
			Verbose:         *verbose,
		},
		Logging: Logging{
			FilePath: *logFile,
			Trace:    *trace,
		},
		Flags: map[string]string{
			"systemctl":        *binary,
			"user":             strconv.FormatBool(*user),
			"type":             *unitType,
			"interval":         interval.String(),
			"confirm-attempts": strconv.Itoa(*confirmAttempts),
			"confirm-delay":    confirmDelay.String(),
			"watch":            strconv.FormatBool(*watch),
			"width":            strconv.Itoa(*width),
			"height":           strconv.Itoa(*height),
			"footer":           strconv.FormatBool(*footer),
			"verbose":          strconv.FormatBool(*verbose),
			"trace":            strconv.FormatBool(*trace),
			"logFile":          *logFile,
		},
		Args: append([]string(nil), args...),
	}

	return cfg, nil
}

func parseEnv(environ []string) map[string]string {
	values := make(map[string]string, len(environ))
	for _, entry := range environ {
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, "=", 2)
		if len(parts) != 2 {
			continue
		}
		values[parts[0]] = parts[1]
	}
	return values
}

func envOrDefault(env map[string]string, key, fallback string) string {
	if v, ok := env[key]; ok {
		return v
	}
	return fallback
}

func envOrInt(env map[string]string, key string, fallback int) int {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrBool(env map[string]string, key string, fallback bool) bool {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrDuration(env map[string]string, key string, fallback time.Duration) time.Duration {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return parsed
}

// MustLoad returns configuration or exits.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(2)
	}
	return cfg
}

// Validate ensures required minimum configuration is present.
func Validate(cfg Config) error {
	if strings.TrimSpace(cfg.App.UnitType) == "" {
		return fmt.Errorf("unit type must not be empty")
	}
	return nil
}
