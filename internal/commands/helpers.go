package commands

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gerunddev/phasedocs/internal/config"
	"github.com/gerunddev/phasedocs/internal/logger"
	"github.com/gerunddev/phasedocs/internal/state"
	"github.com/gerunddev/phasedocs/internal/styles"
)

// options holds the flags shared by every command
type options struct {
	configPath string
	phases     []int
	plain      bool
	force      bool
	anchor     string
	balanced   bool
	escapeCode bool
	args       []string
}

// parseArgs reads flags in either "--flag value" or "--flag=value" form.
// --phase may repeat and takes comma separated numbers.
func parseArgs(args []string) (options, error) {
	var o options

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "--") {
			o.args = append(o.args, arg)
			continue
		}

		name, value, hasValue := strings.Cut(arg, "=")
		switch name {
		case "--plain":
			o.plain = true
		case "--force":
			o.force = true
		case "--balanced":
			o.balanced = true
		case "--escape-code":
			o.escapeCode = true
		case "--config", "--phase", "--anchor":
			if !hasValue {
				if i+1 >= len(args) {
					return o, fmt.Errorf("%s requires a value", name)
				}
				i++
				value = args[i]
			}
			if err := o.set(name, value); err != nil {
				return o, err
			}
		default:
			return o, fmt.Errorf("unknown flag: %s", name)
		}
	}

	return o, nil
}

func (o *options) set(name, value string) error {
	switch name {
	case "--config":
		o.configPath = value
	case "--anchor":
		o.anchor = value
	case "--phase":
		for _, field := range strings.Split(value, ",") {
			n, err := strconv.Atoi(strings.TrimSpace(field))
			if err != nil || n < 1 {
				return fmt.Errorf("invalid phase number: %q", field)
			}
			o.phases = append(o.phases, n)
		}
	}
	return nil
}

// osExit is replaced in tests
var osExit = os.Exit

// closers run before the process exits, newest first
var closers []func()

// onExit registers fn to run on exit or closeAll
func onExit(fn func()) {
	closers = append(closers, fn)
}

// closeAll runs the registered closers once
func closeAll() {
	for i := len(closers) - 1; i >= 0; i-- {
		closers[i]()
	}
	closers = nil
}

// exit closes open files and ends the process. Deferred calls do not run
// after os.Exit, so commands exit through here.
func exit(code int) {
	closeAll()
	osExit(code)
}

// fail prints a styled error and exits
func fail(msg string) {
	fmt.Println(styles.ErrorStyle.Render("✗ " + msg))
	exit(1)
}

// mustParse parses args or exits
func mustParse(args []string) options {
	o, err := parseArgs(args)
	if err != nil {
		fail(err.Error())
	}
	return o
}

// loadConfig loads the configuration at path (or the default path) or exits
func loadConfig(path string) (*config.Config, string) {
	if path == "" {
		path = config.ConfigPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		fail("Error loading config: " + err.Error())
	}
	return cfg, path
}

// setupLogger logs to the configured file and, when console is set, to console.
// The file is closed by closeAll or exit.
func setupLogger(cfg *config.Config, console io.Writer) *logger.Logger {
	level := logger.ParseLevel(cfg.LogLevel)

	if cfg.LogFile != "" {
		var also []io.Writer
		if console != nil {
			also = append(also, console)
		}
		l, cleanup, err := logger.NewFileLogger(cfg.LogFile, level, also...)
		if err == nil {
			onExit(cleanup)
			return l
		}
		fmt.Println(styles.WarningStyle.Render("! " + err.Error()))
	}

	if console == nil {
		return logger.Discard()
	}
	return logger.NewWithLevel(console, level)
}

// pageState describes an output page for the status table
func pageState(st *state.State, p config.Phase) string {
	page, exists := st.Pages[p.OutputName()]
	switch {
	case !exists:
		return "never generated"
	case page.Error != "":
		return "failed: " + page.Error
	}

	stale, err := st.IsStale(p.OutputName())
	switch {
	case err != nil:
		return "source missing"
	case stale:
		return "stale"
	default:
		return "up to date"
	}
}

// ParseLogFile reads the last N lines from the log file and extracts the
// time and page count of the most recent completed run
func ParseLogFile(logPath string, maxLines int) ([]string, time.Time, int) {
	content, err := os.ReadFile(logPath)
	if err != nil {
		return []string{"Unable to read log file"}, time.Time{}, 0
	}

	lines := strings.Split(string(content), "\n")

	// Get last N lines
	startIdx := 0
	if len(lines) > maxLines {
		startIdx = len(lines) - maxLines
	}
	recentLines := lines[startIdx:]

	var lastRun time.Time
	pages := 0

	// Look for most recent "generation completed" line
	for i := len(recentLines) - 1; i >= 0; i-- {
		line := recentLines[i]
		if strings.Contains(line, "generation completed") {
			// Format: 2026-10-19 14:11:57 INFO generation completed pages_generated=7 ...
			if len(line) > 19 {
				if t, err := time.Parse(time.DateTime, line[:19]); err == nil {
					lastRun = t
				}
			}

			if idx := strings.Index(line, "pages_generated="); idx != -1 {
				_, _ = fmt.Sscanf(line[idx:], "pages_generated=%d", &pages) //nolint:errcheck // best effort parsing
			}
			break
		}
	}

	return recentLines, lastRun, pages
}
