//go:build linux

// cmd/ecprobe/duration.go
package main

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// seconds is a pflag.Value for durations. A bare number is taken as
// seconds; anything else goes through time.ParseDuration.
type seconds time.Duration

// maxSeconds is the longest bare number that still fits a time.Duration.
const maxSeconds = float64(math.MaxInt64) / float64(time.Second)

func (s *seconds) Set(v string) error {
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		switch {
		case math.IsNaN(f) || math.IsInf(f, 0):
			return fmt.Errorf("invalid duration %q", v)
		case f < 0:
			return fmt.Errorf("negative duration %q", v)
		case f >= maxSeconds:
			return fmt.Errorf("duration %q out of range", v)
		}
		*s = seconds(f * float64(time.Second))
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid duration %q", v)
	}
	if d < 0 {
		return fmt.Errorf("negative duration %q", v)
	}
	*s = seconds(d)
	return nil
}

func (s *seconds) String() string { return time.Duration(*s).String() }

func (s *seconds) Type() string { return "duration" }
