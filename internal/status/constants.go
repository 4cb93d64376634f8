// internal/status/constants.go
package status

// Session status block layout. These values define what a mirror
// consumer reads and MUST NOT be configurable.

// SlotsPerBlock is the fixed size of the status block in registers.
const SlotsPerBlock = 3

// SlotHealthCode holds the session health.
const SlotHealthCode = 0

// SlotLastErrorCode holds the last error code (see ErrorCode).
const SlotLastErrorCode = 1

// SlotTicks holds the low 16 bits of the number of captured snapshots.
const SlotTicks = 2

// ---- HEALTH CODES ----

// HealthUnknown is the state before the first capture.
const HealthUnknown uint16 = 0

// HealthOK means the last capture succeeded.
const HealthOK uint16 = 1

// HealthError means the last capture failed and the session is ending.
const HealthError uint16 = 2

// HealthStopped means the session ended cleanly.
const HealthStopped uint16 = 3
