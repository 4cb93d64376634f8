// internal/config/validate.go
package config

import (
	"fmt"
)

// MaxCapacity bounds how many snapshots a session may keep in memory.
const MaxCapacity = 1 << 20

// mirror block sizes, in holding registers
const (
	mirrorDataRegs   = 128
	mirrorStatusRegs = 3
)

// Controllers lists the accepted controller names; "" means auto-detect.
// It mirrors backend.Priority without importing the linux-only backend
// packages. backend tests keep the two in step.
var Controllers = []string{"", "ec_sys", "acpi_ec", "dev_port"}

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config: nil config")
	}

	known := false
	for _, c := range Controllers {
		if cfg.Controller == c {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("controller %q: want one of ec_sys, acpi_ec, dev_port", cfg.Controller)
	}

	// ------------------------------------------------------------
	// SESSION
	// ------------------------------------------------------------

	s := cfg.Session
	if s.IntervalMs < 0 {
		return fmt.Errorf("session.interval_ms must be >= 0, got %d", s.IntervalMs)
	}
	if s.DurationMs < 0 {
		return fmt.Errorf("session.duration_ms must be >= 0, got %d", s.DurationMs)
	}
	if s.Capacity < 0 || s.Capacity > MaxCapacity {
		return fmt.Errorf("session.capacity must be in 0..%d, got %d", MaxCapacity, s.Capacity)
	}
	if s.Trail < 0 {
		return fmt.Errorf("session.trail must be >= 0, got %d", s.Trail)
	}

	// ------------------------------------------------------------
	// MIRROR GEOMETRY (OPT-IN)
	// ------------------------------------------------------------

	m := cfg.Mirror
	if m == nil {
		return nil
	}
	if m.Endpoint == "" {
		return fmt.Errorf("mirror.endpoint is required when mirror is set")
	}
	if m.TimeoutMs < 0 {
		return fmt.Errorf("mirror.timeout_ms must be >= 0, got %d", m.TimeoutMs)
	}

	start := int(m.Address)
	end := start + mirrorDataRegs - 1
	if end > 0xFFFF {
		return fmt.Errorf("mirror.address %d: data block %d-%d overflows the register space", m.Address, start, end)
	}

	if m.StatusAddress == nil {
		return nil
	}

	sStart := int(*m.StatusAddress)
	sEnd := sStart + mirrorStatusRegs - 1
	if sEnd > 0xFFFF {
		return fmt.Errorf("mirror.status_address %d: status block overflows the register space", sStart)
	}

	// overlap check (inclusive)
	if !(sEnd < start || sStart > end) {
		return fmt.Errorf(
			"mirror overlap: status block %d-%d overlaps data block %d-%d",
			sStart,
			sEnd,
			start,
			end,
		)
	}

	return nil
}
