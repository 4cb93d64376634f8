//go:build linux

// internal/ec/portio/controller.go

// Package portio talks to the embedded controller directly through the
// ACPI EC command interface on I/O ports 0x62 (data) and 0x66
// (command/status).
//
// Every step of the request/acknowledge handshake polls the status port
// with a bounded wait: IBF must clear before the host writes, OBF must
// set before the host reads. A step that exceeds Timeout fails with
// ec.ErrTimeout instead of spinning.
//
// Word access is two byte transactions: low byte at addr, then high byte
// at addr+1 (little-endian).
package portio

import (
	"fmt"
	"time"

	"github.com/tamzrod/ec-probe/internal/clock"
	"github.com/tamzrod/ec-probe/internal/ec"
)

// Name identifies this backend.
const Name = "dev_port"

// EC command interface.
const (
	DataPort    uint16 = 0x62
	CommandPort uint16 = 0x66

	StatusOBF byte = 0x01 // output buffer full: data ready for host
	StatusIBF byte = 0x02 // input buffer full: EC has not consumed host byte

	CmdRead  byte = 0x80
	CmdWrite byte = 0x81
)

const (
	DefaultTimeout = 100 * time.Millisecond
	DefaultPoll    = 100 * time.Microsecond
)

// Config tunes the handshake. Zero values select the defaults.
type Config struct {
	Path    string
	Timeout time.Duration
	Poll    time.Duration

	// OpenBus replaces OpenDevPort. Tests use it to inject a fake bus.
	OpenBus func(path string) (Bus, error)
	Clock   clock.Clock
}

// Controller implements ec.Controller over an I/O port Bus.
type Controller struct {
	cfg Config
	bus Bus
}

// New returns a closed Controller.
func New(cfg Config) *Controller {
	if cfg.Path == "" {
		cfg.Path = DevPortPath
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Poll <= 0 {
		cfg.Poll = DefaultPoll
	}
	if cfg.OpenBus == nil {
		cfg.OpenBus = OpenDevPort
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.Real()
	}
	return &Controller{cfg: cfg}
}

func (c *Controller) Name() string { return Name }

func (c *Controller) Open() error {
	if c.bus != nil {
		return nil
	}
	bus, err := c.cfg.OpenBus(c.cfg.Path)
	if err != nil {
		return err
	}
	c.bus = bus
	return nil
}

func (c *Controller) Close() error {
	if c.bus == nil {
		return nil
	}
	err := c.bus.Close()
	c.bus = nil
	return err
}

func (c *Controller) ReadRegister(addr int) (byte, error) {
	if err := ec.CheckAddress(addr); err != nil {
		return 0, err
	}
	v, err := c.read(byte(addr))
	if err != nil {
		return 0, ec.ReadError(Name, addr, err)
	}
	return v, nil
}

func (c *Controller) WriteRegister(addr int, value byte) error {
	if err := ec.CheckAddress(addr); err != nil {
		return err
	}
	if err := c.write(byte(addr), value); err != nil {
		return ec.WriteError(Name, addr, err)
	}
	return nil
}

func (c *Controller) ReadWord(addr int) (uint16, error) {
	if err := ec.CheckWordAddress(addr); err != nil {
		return 0, err
	}
	lo, err := c.ReadRegister(addr)
	if err != nil {
		return 0, err
	}
	hi, err := c.ReadRegister(addr + 1)
	if err != nil {
		return 0, err
	}
	return uint16(lo) | uint16(hi)<<8, nil
}

func (c *Controller) WriteWord(addr int, value uint16) error {
	if err := ec.CheckWordAddress(addr); err != nil {
		return err
	}
	if err := c.WriteRegister(addr, byte(value)); err != nil {
		return err
	}
	return c.WriteRegister(addr+1, byte(value>>8))
}

// read runs: wait IBF, cmd 0x80, wait IBF, addr, wait OBF, data.
func (c *Controller) read(addr byte) (byte, error) {
	if c.bus == nil {
		return 0, ec.ErrClosed
	}
	if err := c.waitInputEmpty(); err != nil {
		return 0, err
	}
	if err := c.bus.Out(CommandPort, CmdRead); err != nil {
		return 0, err
	}
	if err := c.waitInputEmpty(); err != nil {
		return 0, err
	}
	if err := c.bus.Out(DataPort, addr); err != nil {
		return 0, err
	}
	if err := c.waitOutputFull(); err != nil {
		return 0, err
	}
	return c.bus.In(DataPort)
}

// write runs: wait IBF, cmd 0x81, wait IBF, addr, wait IBF, value, wait IBF.
func (c *Controller) write(addr, value byte) error {
	if c.bus == nil {
		return ec.ErrClosed
	}
	steps := []struct {
		port uint16
		b    byte
	}{
		{CommandPort, CmdWrite},
		{DataPort, addr},
		{DataPort, value},
	}
	for _, s := range steps {
		if err := c.waitInputEmpty(); err != nil {
			return err
		}
		if err := c.bus.Out(s.port, s.b); err != nil {
			return err
		}
	}
	return c.waitInputEmpty()
}

func (c *Controller) waitInputEmpty() error {
	return c.wait("input buffer empty", func(st byte) bool { return st&StatusIBF == 0 })
}

func (c *Controller) waitOutputFull() error {
	return c.wait("output buffer full", func(st byte) bool { return st&StatusOBF != 0 })
}

func (c *Controller) wait(what string, ready func(status byte) bool) error {
	start := c.cfg.Clock.Now()
	for {
		st, err := c.bus.In(CommandPort)
		if err != nil {
			return err
		}
		if ready(st) {
			return nil
		}
		if c.cfg.Clock.Now().Sub(start) >= c.cfg.Timeout {
			return fmt.Errorf("%w: waiting for %s (status 0x%02X)", ec.ErrTimeout, what, st)
		}
		c.cfg.Clock.Sleep(c.cfg.Poll)
	}
}

var _ ec.Controller = (*Controller)(nil)
