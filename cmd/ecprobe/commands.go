//go:build linux

// cmd/ecprobe/commands.go
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/tamzrod/ec-probe/internal/classify"
	"github.com/tamzrod/ec-probe/internal/config"
	"github.com/tamzrod/ec-probe/internal/ec"
	"github.com/tamzrod/ec-probe/internal/poller"
	"github.com/tamzrod/ec-probe/internal/render"
	"github.com/tamzrod/ec-probe/internal/report"
	"github.com/tamzrod/ec-probe/internal/snapshot"
)

// invocation carries everything a command needs after flag parsing.
type invocation struct {
	globals globals
	args    []string
	flags   *pflag.FlagSet
	cfg     *config.Config
	logger  *slog.Logger
	stdout  io.Writer
	stderr  io.Writer

	word     bool
	timespan seconds
	interval seconds
	report   string
	compact  bool
	decimal  bool

	register int
	value    uint16
}

type command struct {
	usage      string
	positional int
	flags      func(*pflag.FlagSet, *invocation)
	parse      func(*invocation) error
	run        func(*invocation, ec.Controller) error
}

var commands = map[string]command{
	"read": {
		usage:      "read [-w|--word] <register>",
		positional: 1,
		flags:      wordFlag,
		parse:      parseRead,
		run:        runRead,
	},
	"write": {
		usage:      "write [-w|--word] <register> <value>",
		positional: 2,
		flags:      wordFlag,
		parse:      parseWrite,
		run:        runWrite,
	},
	"dump": {
		usage: "dump",
		parse: loadConfig,
		run:   runDump,
	},
	"monitor": {
		usage: "monitor [-r|--report FILE] [-c|--clearly] [-d|--decimal] [-t|--timespan T] [-i|--interval I]",
		flags: sessionFlags,
		parse: loadConfig,
		run: func(inv *invocation, ctrl ec.Controller) error {
			return runSession(inv, ctrl, poller.ModeMonitor)
		},
	},
	"watch": {
		usage: "watch [-r|--report FILE] [-c|--clearly] [-d|--decimal] [-t|--timespan T] [-i|--interval I]",
		flags: sessionFlags,
		parse: loadConfig,
		run: func(inv *invocation, ctrl ec.Controller) error {
			return runSession(inv, ctrl, poller.ModeWatch)
		},
	},
	"help": {
		usage: "help [command]",
	},
}

func wordFlag(fs *pflag.FlagSet, inv *invocation) {
	fs.BoolVarP(&inv.word, "word", "w", false, "access a 16-bit little-endian word")
}

func sessionFlags(fs *pflag.FlagSet, inv *invocation) {
	fs.StringVarP(&inv.report, "report", "r", "", "write a CSV-like report to FILE on exit")
	fs.BoolVarP(&inv.compact, "clearly", "c", false, "elide repeated values in the report (lossy)")
	fs.BoolVar(&inv.compact, "compact", false, "same as --clearly")
	fs.BoolVarP(&inv.decimal, "decimal", "d", false, "report values in decimal")
	fs.VarP(&inv.timespan, "timespan", "t", "stop after this long (e.g. 30, 90s, 2m)")
	fs.VarP(&inv.interval, "interval", "i", "sampling interval (e.g. 0.5, 250ms)")
}

// ---- config layering: file, then flags ----

func loadConfig(inv *invocation) error {
	c := &config.Config{}
	if p := inv.globals.configPath; p != "" {
		loaded, err := config.Load(p)
		if err != nil {
			return cmdline("--config: %v", err)
		}
		c = loaded
	}

	if inv.globals.controller != "" {
		c.Controller = inv.globals.controller
	}

	if inv.flags != nil {
		// A zero duration means unbounded, so an explicit -t must stay
		// at least 1ms.
		if inv.flags.Changed("timespan") {
			if inv.timespan <= 0 {
				return cmdline("-t|--timespan: must be positive")
			}
			c.Session.DurationMs = max(1, int(time.Duration(inv.timespan)/time.Millisecond))
		}
		if inv.flags.Changed("interval") {
			if inv.interval <= 0 {
				return cmdline("-i|--interval: must be positive")
			}
			c.Session.IntervalMs = max(1, int(time.Duration(inv.interval)/time.Millisecond))
		}
		if inv.flags.Changed("report") {
			c.Report.Path = inv.report
		}
		if inv.flags.Changed("clearly") || inv.flags.Changed("compact") {
			c.Report.Compact = inv.compact
		}
		if inv.flags.Changed("decimal") {
			c.Report.Decimal = inv.decimal
		}
		if inv.flags.Changed("word") {
			c.Session.Word = inv.word
		}
	}

	if err := config.Validate(c); err != nil {
		return cmdline("%v", err)
	}
	config.Normalize(c)
	inv.cfg = c
	return nil
}

// ---- read / write ----

func parseRead(inv *invocation) error {
	if err := loadConfig(inv); err != nil {
		return err
	}
	reg, err := parseRegister(inv.args[0], inv.cfg.Session.Word)
	if err != nil {
		return err
	}
	inv.register = reg
	return nil
}

func parseWrite(inv *invocation) error {
	if err := parseRead(inv); err != nil {
		return err
	}
	limit := uint64(0xFF)
	if inv.cfg.Session.Word {
		limit = 0xFFFF
	}
	v, err := parseNumber(inv.args[1], limit)
	if err != nil {
		return cmdline("value: %v", err)
	}
	inv.value = uint16(v)
	return nil
}

func parseRegister(s string, word bool) (int, error) {
	limit := uint64(ec.RegisterCount - 1)
	if word {
		limit--
	}
	v, err := parseNumber(s, limit)
	if err != nil {
		return 0, cmdline("register: %v", err)
	}
	return int(v), nil
}

// parseNumber accepts decimal, 0x-hex, 0o/0-octal and 0b-binary.
func parseNumber(s string, limit uint64) (uint64, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 0, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", s)
	}
	if v > limit {
		return 0, fmt.Errorf("%s exceeds %d", s, limit)
	}
	return v, nil
}

func runRead(inv *invocation, ctrl ec.Controller) error {
	var v int
	if inv.cfg.Session.Word {
		w, err := ctrl.ReadWord(inv.register)
		if err != nil {
			return err
		}
		v = int(w)
	} else {
		b, err := ctrl.ReadRegister(inv.register)
		if err != nil {
			return err
		}
		v = int(b)
	}
	_, err := fmt.Fprintf(inv.stdout, "%d (%02X)\n", v, v)
	return err
}

func runWrite(inv *invocation, ctrl ec.Controller) error {
	if inv.cfg.Session.Word {
		return ctrl.WriteWord(inv.register, inv.value)
	}
	return ctrl.WriteRegister(inv.register, byte(inv.value))
}

// ---- dump / monitor / watch ----

func runDump(inv *invocation, ctrl ec.Controller) error {
	s, err := snapshot.Capture(ctrl)
	if err != nil {
		return err
	}
	return render.New(inv.stdout).Dump(classify.Static(s))
}

func runSession(inv *invocation, ctrl ec.Controller, mode poller.Mode) error {
	var opts []render.Option
	if mode == poller.ModeMonitor {
		opts = append(opts, render.WithClear(isTerminal(inv.stdout)))
	}
	sink := render.New(inv.stdout, opts...)

	p, closeMirror, err := poller.Build(inv.cfg, mode, ctrl, sink, inv.logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeMirror(); err != nil {
			inv.logger.Warn("mirror close failed", "err", err)
		}
	}()

	res := p.Run(&quit)
	if res.Reason == poller.StopError {
		return res.Err
	}

	if path := inv.cfg.Report.Path; path != "" {
		f := report.Format{Decimal: inv.cfg.Report.Decimal, Compact: inv.cfg.Report.Compact}
		if err := p.WriteReport(path, f); err != nil {
			return err
		}
		inv.logger.Info("report written", "path", path, "snapshots", p.Store().Len())
	}
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// ---- help ----

func printHelp(w io.Writer, topic string) {
	if c, ok := commands[topic]; ok {
		fmt.Fprintf(w, "usage: ecprobe [global flags] %s\n", c.usage)
		return
	}
	fmt.Fprintln(w, "usage: ecprobe [-e ec_sys|acpi_ec|dev_port] [--config FILE] [-v] <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "commands:")
	for _, name := range []string{"read", "write", "dump", "monitor", "watch", "help"} {
		fmt.Fprintf(w, "  %s\n", commands[name].usage)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "durations accept Go syntax (250ms, 2m); a bare number means seconds.")
}
