// internal/classify/monitor.go
package classify

import "github.com/tamzrod/ec-probe/internal/snapshot"

// DefaultTrail is the number of trailing samples shown per register.
const DefaultTrail = 24

// Trend is the trailing history of one register that moved.
type Trend struct {
	Addr    int
	Samples []Cell
}

// Changed reports whether addr differs anywhere in window from the
// window's first snapshot.
func Changed(window []snapshot.Snapshot, addr int) bool {
	if len(window) == 0 {
		return false
	}
	return differs(window[1:], addr, window[0][addr])
}

// ChangedAddrs lists, in address order, every register that moved
// within window.
func ChangedAddrs(window []snapshot.Snapshot) []int {
	var out []int
	for addr := 0; addr < snapshot.Size; addr++ {
		if Changed(window, addr) {
			out = append(out, addr)
		}
	}
	return out
}

// Monitor returns a trend for each register that moved in window.
// Registers stable for the whole window are suppressed.
//
// Each trend covers the last trail samples. A sample is ChangedNow when
// it differs from its predecessor inside that sub-window, otherwise
// Unchanged; the first sample has no predecessor and is Unchanged.
func Monitor(window []snapshot.Snapshot, trail int) []Trend {
	if trail <= 0 {
		trail = DefaultTrail
	}
	start := len(window) - trail
	if start < 0 {
		start = 0
	}
	sub := window[start:]

	var out []Trend
	for _, addr := range ChangedAddrs(window) {
		samples := make([]Cell, len(sub))
		for i := range sub {
			v := sub[i][addr]
			tag := Unchanged
			if i > 0 && v != sub[i-1][addr] {
				tag = ChangedNow
			}
			samples[i] = Cell{Addr: addr, Value: v, Tag: tag}
		}
		out = append(out, Trend{Addr: addr, Samples: samples})
	}
	return out
}
