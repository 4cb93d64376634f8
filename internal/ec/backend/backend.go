//go:build linux

// internal/ec/backend/backend.go

// Package backend names the available register access mechanisms and
// wires them to the selector.
package backend

import (
	"fmt"
	"strings"

	"github.com/tamzrod/ec-probe/internal/ec"
	"github.com/tamzrod/ec-probe/internal/ec/portio"
	"github.com/tamzrod/ec-probe/internal/ec/sysfs"
)

// Kind names one access mechanism.
type Kind string

const (
	KindAuto    Kind = ""
	KindECSys   Kind = sysfs.NameECSys
	KindACPI    Kind = sysfs.NameACPI
	KindDevPort Kind = portio.Name
)

// Priority is the auto-detection order: kernel-mediated interfaces
// first, raw port I/O last.
var Priority = []Kind{KindECSys, KindACPI, KindDevPort}

// ParseKind accepts a backend name; the empty string means auto-detect.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.TrimSpace(s))
	if k == KindAuto {
		return k, nil
	}
	for _, p := range Priority {
		if k == p {
			return k, nil
		}
	}
	return "", fmt.Errorf("backend: unknown embedded controller %q (want one of %s)", s, names())
}

// New returns a closed controller for kind.
func New(kind Kind) (ec.Controller, error) {
	switch kind {
	case KindECSys:
		return sysfs.NewECSys(), nil
	case KindACPI:
		return sysfs.NewACPI(), nil
	case KindDevPort:
		return portio.New(portio.Config{}), nil
	}
	return nil, fmt.Errorf("backend: unknown embedded controller %q", string(kind))
}

// Candidates builds closed controllers in Priority order.
func Candidates() []ec.Controller {
	out := make([]ec.Controller, 0, len(Priority))
	for _, k := range Priority {
		c, _ := New(k)
		out = append(out, c)
	}
	return out
}

// Open returns an opened controller. A forced kind returns that
// backend's own Open error unchanged; KindAuto runs the selector and
// fails with ec.ErrNoWorkingController.
func Open(kind Kind) (ec.Controller, error) {
	return open(kind, New, Candidates)
}

func open(kind Kind, build func(Kind) (ec.Controller, error), all func() []ec.Controller) (ec.Controller, error) {
	if kind == KindAuto {
		return ec.FindWorking(all())
	}
	c, err := build(kind)
	if err != nil {
		return nil, err
	}
	if err := c.Open(); err != nil {
		return nil, err
	}
	return c, nil
}

func names() string {
	s := make([]string, len(Priority))
	for i, k := range Priority {
		s[i] = string(k)
	}
	return strings.Join(s, ", ")
}
