package main

import (
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/unitdeck/unitdeck/internal/app"
	"github.com/unitdeck/unitdeck/internal/config"
	"github.com/unitdeck/unitdeck/internal/logging"
	"github.com/unitdeck/unitdeck/internal/logging/events"
)

func main() {
	cfg := config.MustLoad()
	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(2)
	}
	logging.Configure(cfg.Logging.FilePath)
	logging.SetTraceEnabled(cfg.Logging.Trace)
	events.App.Start(startupTracePayload(cfg))

	if err := app.Run(cfg.App); err != nil {
		logging.Error(err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// startupTracePayload records the effective configuration and terminal
// environment so popup sizing problems can be diagnosed from the trace log.
func startupTracePayload(cfg config.Config) map[string]interface{} {
	flags := make(map[string]interface{}, len(cfg.Flags)+2)
	for k, v := range cfg.Flags {
		flags[k] = v
	}
	flags["trace"] = cfg.Logging.Trace
	flags["logFile"] = cfg.Logging.FilePath
	payload := map[string]interface{}{
		"argv":   cfg.Args,
		"flags":  flags,
		"config": cfg,
		"tty":    probeTerminal(),
	}
	if cwd, err := os.Getwd(); err == nil {
		payload["cwd"] = cwd
	}
	return payload
}

// terminalInfo notes which standard descriptors are attached to a terminal
// and the first window size found among them.
type terminalInfo struct {
	Stdin  bool `json:"stdin"`
	Stdout bool `json:"stdout"`
	Stderr bool `json:"stderr"`
	Width  int  `json:"width,omitempty"`
	Height int  `json:"height,omitempty"`
}

func probeTerminal() terminalInfo {
	stdin, stdout, stderr := int(os.Stdin.Fd()), int(os.Stdout.Fd()), int(os.Stderr.Fd())
	info := terminalInfo{
		Stdin:  term.IsTerminal(stdin),
		Stdout: term.IsTerminal(stdout),
		Stderr: term.IsTerminal(stderr),
	}
	for _, fd := range []int{stdout, stdin, stderr} {
		if !term.IsTerminal(fd) {
			continue
		}
		if w, h, err := term.GetSize(fd); err == nil {
			info.Width, info.Height = w, h
			break
		}
	}
	return info
}
