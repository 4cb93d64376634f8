//go:build linux

// internal/ec/sysfs/device.go

// Package sysfs implements ec.Controller on top of kernel interfaces that
// expose the register space as a 256-byte file: the ec_sys debugfs node
// and the acpi_ec character device. Register N lives at file offset N.
//
// Word access reads or writes two bytes at offset addr in one call and
// interprets them little-endian (low byte at addr, high byte at addr+1).
package sysfs

import (
	"encoding/binary"
	"io"
	"os"

	"golang.org/x/sys/unix"

	"github.com/tamzrod/ec-probe/internal/ec"
)

const (
	// ECSysPath is provided by `modprobe ec_sys write_support=1`.
	ECSysPath = "/sys/kernel/debug/ec/ec0/io"

	// ACPIPath is provided by the acpi_ec module.
	ACPIPath = "/dev/ec"

	NameECSys = "ec_sys"
	NameACPI  = "acpi_ec"
)

// Device is a file-offset register backend.
type Device struct {
	name string
	path string
	file *os.File
	fd   int
}

// New returns a closed Device for an arbitrary path.
func New(name, path string) *Device {
	return &Device{name: name, path: path, fd: -1}
}

// NewECSys returns the ec_sys debugfs backend.
func NewECSys() *Device { return New(NameECSys, ECSysPath) }

// NewACPI returns the acpi_ec backend.
func NewACPI() *Device { return New(NameACPI, ACPIPath) }

func (d *Device) Name() string { return d.name }

// Path returns the device node the backend opens.
func (d *Device) Path() string { return d.path }

// Open opens the device node read-write. Reopening an open Device is a
// no-op.
func (d *Device) Open() error {
	if d.file != nil {
		return nil
	}
	f, err := os.OpenFile(d.path, os.O_RDWR, 0)
	if err != nil {
		return ec.OpenError(d.name, d.path, err)
	}
	d.file = f
	d.fd = int(f.Fd())
	return nil
}

func (d *Device) Close() error {
	if d.file == nil {
		return nil
	}
	err := d.file.Close()
	d.file = nil
	d.fd = -1
	return err
}

func (d *Device) ReadRegister(addr int) (byte, error) {
	if err := ec.CheckAddress(addr); err != nil {
		return 0, err
	}
	var b [1]byte
	if err := d.pread(b[:], addr); err != nil {
		return 0, ec.ReadError(d.name, addr, err)
	}
	return b[0], nil
}

func (d *Device) WriteRegister(addr int, value byte) error {
	if err := ec.CheckAddress(addr); err != nil {
		return err
	}
	if err := d.pwrite([]byte{value}, addr); err != nil {
		return ec.WriteError(d.name, addr, err)
	}
	return nil
}

func (d *Device) ReadWord(addr int) (uint16, error) {
	if err := ec.CheckWordAddress(addr); err != nil {
		return 0, err
	}
	var b [2]byte
	if err := d.pread(b[:], addr); err != nil {
		return 0, ec.ReadError(d.name, addr, err)
	}
	return binary.LittleEndian.Uint16(b[:]), nil
}

func (d *Device) WriteWord(addr int, value uint16) error {
	if err := ec.CheckWordAddress(addr); err != nil {
		return err
	}
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], value)
	if err := d.pwrite(b[:], addr); err != nil {
		return ec.WriteError(d.name, addr, err)
	}
	return nil
}

func (d *Device) pread(b []byte, off int) error {
	if d.fd < 0 {
		return ec.ErrClosed
	}
	n, err := unix.Pread(d.fd, b, int64(off))
	if err != nil {
		return err
	}
	if n != len(b) {
		return io.ErrUnexpectedEOF
	}
	return nil
}

func (d *Device) pwrite(b []byte, off int) error {
	if d.fd < 0 {
		return ec.ErrClosed
	}
	n, err := unix.Pwrite(d.fd, b, int64(off))
	if err != nil {
		return err
	}
	if n != len(b) {
		return io.ErrShortWrite
	}
	return nil
}

var _ ec.Controller = (*Device)(nil)
