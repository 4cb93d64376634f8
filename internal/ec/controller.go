// internal/ec/controller.go
package ec

// RegisterCount is the size of the embedded controller register space.
const RegisterCount = 256

// Controller is the register access contract every backend implements.
// Exactly one Controller is active per process; it is opened once and
// closed on exit.
//
// Word access pairs addr with addr+1. Byte order is backend-defined and
// documented on each implementation.
type Controller interface {
	// Name identifies the access mechanism (ec_sys, acpi_ec, dev_port).
	Name() string

	Open() error
	Close() error

	ReadRegister(addr int) (byte, error)
	WriteRegister(addr int, value byte) error

	ReadWord(addr int) (uint16, error)
	WriteWord(addr int, value uint16) error
}

// CheckAddress rejects byte addresses outside [0,255].
func CheckAddress(addr int) error {
	if addr < 0 || addr >= RegisterCount {
		return &AddressError{Addr: addr, Word: false}
	}
	return nil
}

// CheckWordAddress rejects word addresses whose pair would leave the
// register space. Valid range is [0,254].
func CheckWordAddress(addr int) error {
	if addr < 0 || addr >= RegisterCount-1 {
		return &AddressError{Addr: addr, Word: true}
	}
	return nil
}
