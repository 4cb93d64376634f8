// internal/snapshot/snapshot.go

// Package snapshot holds full sweeps of the register space and the
// bounded store they accumulate in.
package snapshot

import (
	"fmt"

	"github.com/tamzrod/ec-probe/internal/ec"
)

// Size is the number of registers in one snapshot.
const Size = ec.RegisterCount

// DefaultCapacity bounds a session's history.
const DefaultCapacity = 32768

// Snapshot is one sweep of registers 0x00..0xFF. It is a value type;
// copies are independent.
type Snapshot [Size]byte

// Reader is the part of ec.Controller a capture needs.
type Reader interface {
	ReadRegister(addr int) (byte, error)
}

// Capture reads all registers in address order. All-or-nothing: the
// first failed read aborts the capture and no partial snapshot is
// returned.
func Capture(r Reader) (Snapshot, error) {
	var s Snapshot
	for addr := 0; addr < Size; addr++ {
		v, err := r.ReadRegister(addr)
		if err != nil {
			return Snapshot{}, fmt.Errorf("snapshot: capture aborted at 0x%02X: %w", addr, err)
		}
		s[addr] = v
	}
	return s, nil
}
