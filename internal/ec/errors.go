// internal/ec/errors.go
package ec

import (
	"errors"
	"fmt"
	"io/fs"

	"golang.org/x/sys/unix"
)

var (
	// ErrNoWorkingController is terminal: every candidate backend failed
	// to open. Retrying with the same candidates will not help.
	ErrNoWorkingController = errors.New("ec: no working embedded controller found")

	// ErrAccessDenied means the process lacks privilege for the device.
	ErrAccessDenied = errors.New("ec: access denied")

	// ErrNotPresent means the device node or kernel interface is missing.
	ErrNotPresent = errors.New("ec: device not present")

	// ErrTimeout means the controller did not acknowledge a handshake step.
	ErrTimeout = errors.New("ec: handshake timeout")

	ErrRegisterRead  = errors.New("ec: register read failed")
	ErrRegisterWrite = errors.New("ec: register write failed")

	// ErrInvalidAddress is a precondition violation, raised before any
	// hardware access happens.
	ErrInvalidAddress = errors.New("ec: invalid register address")

	ErrClosed = errors.New("ec: controller not open")
)

// AddressError reports an out-of-range register address.
type AddressError struct {
	Addr int
	Word bool
}

func (e *AddressError) Error() string {
	if e.Word {
		return fmt.Sprintf("ec: invalid word address %d (want 0..%d)", e.Addr, RegisterCount-2)
	}
	return fmt.Sprintf("ec: invalid register address %d (want 0..%d)", e.Addr, RegisterCount-1)
}

func (e *AddressError) Is(target error) bool { return target == ErrInvalidAddress }

// OpenError classifies an error returned while opening a device node.
// Permission failures become ErrAccessDenied and missing nodes become
// ErrNotPresent so callers can tell the two apart.
func OpenError(backend, path string, err error) error {
	switch {
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%w: %s: %s: %w", ErrAccessDenied, backend, path, err)
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, unix.ENODEV), errors.Is(err, unix.ENXIO):
		return fmt.Errorf("%w: %s: %s: %w", ErrNotPresent, backend, path, err)
	default:
		return fmt.Errorf("ec: %s: open %s: %w", backend, path, err)
	}
}

// ReadError wraps a failed register read.
func ReadError(backend string, addr int, err error) error {
	return fmt.Errorf("%w: %s: register 0x%02X: %w", ErrRegisterRead, backend, addr, err)
}

// WriteError wraps a failed register write.
func WriteError(backend string, addr int, err error) error {
	return fmt.Errorf("%w: %s: register 0x%02X: %w", ErrRegisterWrite, backend, addr, err)
}
