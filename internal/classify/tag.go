// internal/classify/tag.go

// Package classify tags registers by how their values move across a
// window of snapshots. It never interprets what a register means.
//
// Classification only ever compares against snapshots inside the window
// it is given: either the immediately preceding snapshot or the first
// snapshot of the window (the baseline).
package classify

import "github.com/tamzrod/ec-probe/internal/snapshot"

// Tag is the closed set of per-register classifications.
type Tag uint8

const (
	// Unchanged marks a monitor sample equal to its predecessor.
	Unchanged Tag = iota
	// ChangedNow differs from the immediately preceding snapshot.
	ChangedNow
	// ChangedInWindow is equal to the previous value but differed
	// somewhere earlier in the window.
	ChangedInWindow
	// AllOnes is a stable 0xFF.
	AllOnes
	// AllZeros is a stable 0x00. It is also the watch-mode default.
	AllZeros
	// Nonzero is a stable value other than 0x00 and 0xFF.
	Nonzero
)

var tagNames = [...]string{
	Unchanged:       "unchanged",
	ChangedNow:      "changed-now",
	ChangedInWindow: "changed-in-window",
	AllOnes:         "all-ones",
	AllZeros:        "all-zeros",
	Nonzero:         "nonzero",
}

func (t Tag) String() string {
	if int(t) < len(tagNames) {
		return tagNames[t]
	}
	return "unknown"
}

// Cell is one (address, value, tag) tuple handed to a renderer.
type Cell struct {
	Addr  int
	Value byte
	Tag   Tag
}

// Grid is a fully tagged register space.
type Grid [snapshot.Size]Cell

// valueTag classifies a value that did not move.
func valueTag(v byte) Tag {
	switch {
	case v == 0xFF:
		return AllOnes
	case v != 0:
		return Nonzero
	default:
		return AllZeros
	}
}
