// internal/status/snapshot.go
package status

// Snapshot is the session state published to a mirror.
// It carries no history beyond the current values.
type Snapshot struct {
	Health        uint16
	LastErrorCode uint16
	Ticks         uint32
}
