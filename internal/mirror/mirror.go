// internal/mirror/mirror.go

// Package mirror republishes captured register snapshots to a Modbus TCP
// endpoint so other tools can watch the EC without touching hardware.
//
// The 256 EC registers map to 128 holding registers starting at Address,
// two EC registers per holding register, big-endian: holding register k
// carries EC register 2k in its high byte and 2k+1 in its low byte.
package mirror

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/goburrow/modbus"

	"github.com/tamzrod/ec-probe/internal/snapshot"
	"github.com/tamzrod/ec-probe/internal/status"
)

// HoldingRegisters is the size of the mirrored data block.
const HoldingRegisters = snapshot.Size / 2

// chunkRegisters stays under the Modbus limit of 123 registers per write.
const chunkRegisters = 64

// registerWriter is the exact contract the mirror uses.
// modbus.Client satisfies it.
type registerWriter interface {
	WriteMultipleRegisters(address, quantity uint16, value []byte) ([]byte, error)
}

// Config is minimal mirror config.
type Config struct {
	Endpoint string
	UnitID   uint8
	Timeout  time.Duration

	Address       uint16
	StatusAddress *uint16
}

// Mirror is a single TCP connection to one Modbus endpoint.
// Requests are serialized.
type Mirror struct {
	mu      sync.Mutex
	handler *modbus.TCPClientHandler
	cli     registerWriter

	address       uint16
	statusAddress *uint16

	needFull bool
	last     status.Snapshot
}

// New connects to cfg.Endpoint.
func New(cfg Config) (*Mirror, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("mirror: endpoint required")
	}

	h := modbus.NewTCPClientHandler(cfg.Endpoint)
	h.Timeout = cfg.Timeout
	h.SlaveId = cfg.UnitID

	if err := h.Connect(); err != nil {
		return nil, fmt.Errorf("mirror: connect %s: %w", cfg.Endpoint, err)
	}

	m := newMirror(modbus.NewClient(h), cfg)
	m.handler = h
	return m, nil
}

func newMirror(cli registerWriter, cfg Config) *Mirror {
	return &Mirror{
		cli:           cli,
		address:       cfg.Address,
		statusAddress: cfg.StatusAddress,
		needFull:      true,
		last:          status.Snapshot{Health: status.HealthUnknown},
	}
}

// Close closes the TCP connection.
func (m *Mirror) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.handler == nil {
		return nil
	}
	return m.handler.Close()
}

// Publish writes one snapshot as the data block.
func (m *Mirror) Publish(s snapshot.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for reg := 0; reg < HoldingRegisters; reg += chunkRegisters {
		n := chunkRegisters
		if reg+n > HoldingRegisters {
			n = HoldingRegisters - reg
		}
		payload := s[reg*2 : (reg+n)*2]
		addr := m.address + uint16(reg)
		if _, err := m.cli.WriteMultipleRegisters(addr, uint16(n), payload); err != nil {
			return fmt.Errorf("mirror: data write at %d: %w", addr, err)
		}
	}
	return nil
}

// PublishStatus writes the session status block. The first write, and
// the first write after any failure, re-asserts the whole block; later
// writes only touch slots that changed. Without a status address it is
// a no-op.
func (m *Mirror) PublishStatus(s status.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.statusAddress == nil {
		return nil
	}
	base := *m.statusAddress

	if m.needFull {
		if err := m.writeRegs(base, status.Encode(s)); err != nil {
			m.needFull = true
			return fmt.Errorf("mirror: status full block write failed: %w", err)
		}
		m.needFull = false
		m.last = s
		return nil
	}

	prev := status.Encode(m.last)
	next := status.Encode(s)

	var errs []string
	for slot := range next {
		if prev[slot] == next[slot] {
			continue
		}
		if err := m.writeRegs(base+uint16(slot), next[slot:slot+1]); err != nil {
			errs = append(errs, fmt.Sprintf("slot%d write failed: %v", slot, err))
		}
	}

	if len(errs) > 0 {
		// Partial failure leaves the block in doubt; re-assert next time.
		m.needFull = true
		return errors.New("mirror: status " + strings.Join(errs, " | "))
	}
	m.last = s
	return nil
}

func (m *Mirror) writeRegs(addr uint16, regs []uint16) error {
	_, err := m.cli.WriteMultipleRegisters(addr, uint16(len(regs)), packRegisters(regs))
	return err
}

// Modbus register memory order (BIG-ENDIAN)
func packRegisters(regs []uint16) []byte {
	out := make([]byte, len(regs)*2)
	for i, r := range regs {
		out[2*i] = byte(r >> 8)
		out[2*i+1] = byte(r)
	}
	return out
}
