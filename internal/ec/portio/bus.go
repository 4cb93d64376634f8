//go:build linux

// internal/ec/portio/bus.go

package portio

import (
	"io"
	"os"

	"golang.org/x/sys/unix"

	"github.com/tamzrod/ec-probe/internal/ec"
)

// DevPortPath is the kernel's byte-wide I/O port window. Offset N is port N.
const DevPortPath = "/dev/port"

// Bus moves single bytes to and from I/O ports.
type Bus interface {
	In(port uint16) (byte, error)
	Out(port uint16, value byte) error
	Close() error
}

// devPort is a Bus over /dev/port.
type devPort struct {
	file *os.File
	fd   int
}

// OpenDevPort opens a /dev/port style node read-write.
func OpenDevPort(path string) (Bus, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, ec.OpenError(Name, path, err)
	}
	return &devPort{file: f, fd: int(f.Fd())}, nil
}

func (p *devPort) In(port uint16) (byte, error) {
	var b [1]byte
	n, err := unix.Pread(p.fd, b[:], int64(port))
	if err != nil {
		return 0, err
	}
	if n != 1 {
		return 0, io.ErrUnexpectedEOF
	}
	return b[0], nil
}

func (p *devPort) Out(port uint16, value byte) error {
	n, err := unix.Pwrite(p.fd, []byte{value}, int64(port))
	if err != nil {
		return err
	}
	if n != 1 {
		return io.ErrShortWrite
	}
	return nil
}

func (p *devPort) Close() error { return p.file.Close() }
