//go:build linux

// cmd/ecprobe/main.go

// ecprobe reads, writes, dumps and watches the registers of a laptop's
// embedded controller.
//
// Usage:
//
//	ecprobe [-e ec_sys|acpi_ec|dev_port] [--config file.yaml] <command> [flags]
//
// Commands: read, write, dump, monitor, watch, help.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/spf13/pflag"
	"golang.org/x/sys/unix"

	"github.com/tamzrod/ec-probe/internal/ec"
	"github.com/tamzrod/ec-probe/internal/ec/backend"
)

var version = "dev"

// quit is set from the signal goroutine and read by the polling loop
// before each capture. It is the only process-wide mutable state.
var quit atomic.Bool

// Seams for tests.
var (
	openController = backend.Open
	checkPrivilege = requireRoot
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "ecprobe: %v\n", err)
		os.Exit(exitCode(err))
	}
}

// globals are accepted before the command name.
type globals struct {
	controller string
	configPath string
	verbose    bool
	version    bool
	help       bool
}

func (g *globals) addFlags(fs *pflag.FlagSet) {
	// Current values become defaults so a command's flag set does not
	// reset what was parsed before the command name.
	fs.StringVarP(&g.controller, "embedded-controller", "e", g.controller, "backend: ec_sys, acpi_ec or dev_port (default: auto-detect)")
	fs.StringVar(&g.configPath, "config", g.configPath, "YAML session config")
	fs.BoolVarP(&g.verbose, "verbose", "v", g.verbose, "debug logging on stderr")
	fs.BoolVar(&g.version, "version", false, "print version")
	fs.BoolVarP(&g.help, "help", "h", false, "show help")
}

func run(args []string, stdout, stderr io.Writer) error {
	var g globals
	fs := pflag.NewFlagSet("ecprobe", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.SetInterspersed(false)
	g.addFlags(fs)

	if err := fs.Parse(args); err != nil {
		return cmdline("%v", err)
	}
	if g.version {
		fmt.Fprintf(stdout, "ecprobe %s\n", version)
		return nil
	}

	rest := fs.Args()
	if g.help || len(rest) == 0 {
		printHelp(stdout, "")
		return nil
	}

	cmd, ok := commands[rest[0]]
	if !ok {
		return cmdline("invalid command: %s", rest[0])
	}
	if rest[0] == "help" {
		topic := ""
		if len(rest) > 1 {
			topic = rest[1]
		}
		printHelp(stdout, topic)
		return nil
	}

	inv := &invocation{globals: g, stdout: stdout, stderr: stderr}
	cfs := pflag.NewFlagSet("ecprobe "+rest[0], pflag.ContinueOnError)
	cfs.SetOutput(io.Discard)
	inv.globals.addFlags(cfs)
	if cmd.flags != nil {
		cmd.flags(cfs, inv)
	}
	if err := cfs.Parse(rest[1:]); err != nil {
		return cmdline("%s: %v", rest[0], err)
	}
	if inv.globals.help {
		printHelp(stdout, rest[0])
		return nil
	}
	if n := cmd.positional; len(cfs.Args()) != n {
		return cmdline("%s: expected %d argument(s), got %d", rest[0], n, len(cfs.Args()))
	}
	inv.args = cfs.Args()
	inv.flags = cfs

	if err := cmd.parse(inv); err != nil {
		return err
	}

	inv.logger = newLogger(stderr, inv.globals.verbose)

	if err := checkPrivilege(); err != nil {
		return err
	}

	kind, err := backend.ParseKind(inv.cfg.Controller)
	if err != nil {
		return cmdline("-e|--embedded-controller: %v", err)
	}

	stopSignals := watchSignals()
	defer stopSignals()

	ctrl, err := openController(kind)
	if err != nil {
		return err
	}
	defer ctrl.Close()
	inv.logger.Debug("embedded controller selected", "backend", ctrl.Name())

	return cmd.run(inv, ctrl)
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// watchSignals raises quit on SIGINT/SIGTERM. The goroutine only sets
// the flag; the loop notices it before its next capture.
func watchSignals() func() {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ch:
				quit.Store(true)
			case <-done:
				return
			}
		}
	}()
	return func() {
		signal.Stop(ch)
		close(done)
	}
}

func requireRoot() error {
	if unix.Geteuid() != 0 {
		return fmt.Errorf("%w: this program must be run as root", ec.ErrAccessDenied)
	}
	return nil
}

// ---- exit codes ----

const (
	exitFailure      = 1
	exitCmdline      = 2
	exitNoController = 3
	exitAccessDenied = 4
)

type cmdlineError struct{ msg string }

func (e *cmdlineError) Error() string { return e.msg }

func cmdline(format string, args ...any) error {
	return &cmdlineError{msg: fmt.Sprintf(format, args...)}
}

// exitCode maps an error to the process exit status.
func exitCode(err error) int {
	var ce *cmdlineError
	switch {
	case err == nil:
		return 0
	case errors.As(err, &ce):
		return exitCmdline
	case errors.Is(err, ec.ErrNoWorkingController):
		return exitNoController
	case errors.Is(err, ec.ErrAccessDenied):
		return exitAccessDenied
	}
	return exitFailure
}
