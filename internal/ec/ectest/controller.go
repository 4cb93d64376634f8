// internal/ec/ectest/controller.go

// Package ectest provides an in-memory ec.Controller for tests.
package ectest

import (
	"fmt"

	"github.com/tamzrod/ec-probe/internal/ec"
)

// Controller is a fake register file. Word access is little-endian:
// low byte at addr, high byte at addr+1.
type Controller struct {
	ID string

	// OpenErr is returned by Open when set.
	OpenErr error

	// ReadErr maps an address to the error its next read returns.
	ReadErr map[int]error

	// OnRead runs before every register read.
	OnRead func(addr int)

	Regs [ec.RegisterCount]byte

	Opened bool
	Closed bool
	Opens  int
	Reads  int
	Writes int
}

// New returns a fake with the given name and initial register values.
func New(name string, regs [ec.RegisterCount]byte) *Controller {
	return &Controller{ID: name, Regs: regs}
}

func (c *Controller) Name() string {
	if c.ID == "" {
		return "fake"
	}
	return c.ID
}

func (c *Controller) Open() error {
	c.Opens++
	if c.OpenErr != nil {
		return c.OpenErr
	}
	c.Opened = true
	c.Closed = false
	return nil
}

func (c *Controller) Close() error {
	c.Opened = false
	c.Closed = true
	return nil
}

func (c *Controller) ReadRegister(addr int) (byte, error) {
	if err := ec.CheckAddress(addr); err != nil {
		return 0, err
	}
	if !c.Opened {
		return 0, ec.ReadError(c.Name(), addr, ec.ErrClosed)
	}
	if c.OnRead != nil {
		c.OnRead(addr)
	}
	c.Reads++
	if err, ok := c.ReadErr[addr]; ok && err != nil {
		return 0, ec.ReadError(c.Name(), addr, err)
	}
	return c.Regs[addr], nil
}

func (c *Controller) WriteRegister(addr int, value byte) error {
	if err := ec.CheckAddress(addr); err != nil {
		return err
	}
	if !c.Opened {
		return ec.WriteError(c.Name(), addr, ec.ErrClosed)
	}
	c.Writes++
	c.Regs[addr] = value
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

// Set assigns one register without going through the access contract.
func (c *Controller) Set(addr int, value byte) {
	if addr < 0 || addr >= ec.RegisterCount {
		panic(fmt.Sprintf("ectest: address %d out of range", addr))
	}
	c.Regs[addr] = value
}

var _ ec.Controller = (*Controller)(nil)
