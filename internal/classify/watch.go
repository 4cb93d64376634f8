// internal/classify/watch.go
package classify

import "github.com/tamzrod/ec-probe/internal/snapshot"

// Watch tags every register of current. history is the accumulated
// window up to and including previous.
//
// Exactly one tag applies, by fixed priority:
//
//	current != previous            ChangedNow
//	value differs within history   ChangedInWindow
//	value == 0xFF                  AllOnes
//	value != 0                     Nonzero
//	otherwise                      AllZeros
func Watch(current, previous snapshot.Snapshot, history []snapshot.Snapshot) Grid {
	var g Grid
	for addr := 0; addr < snapshot.Size; addr++ {
		v := current[addr]
		tag := valueTag(v)
		switch {
		case v != previous[addr]:
			tag = ChangedNow
		case differs(history, addr, v):
			tag = ChangedInWindow
		}
		g[addr] = Cell{Addr: addr, Value: v, Tag: tag}
	}
	return g
}

// Static tags a single snapshot by value only. Used for dumps.
func Static(s snapshot.Snapshot) Grid {
	var g Grid
	for addr, v := range s {
		g[addr] = Cell{Addr: addr, Value: v, Tag: valueTag(v)}
	}
	return g
}

func differs(window []snapshot.Snapshot, addr int, v byte) bool {
	for i := range window {
		if window[i][addr] != v {
			return true
		}
	}
	return false
}
