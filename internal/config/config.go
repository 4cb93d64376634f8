// internal/config/config.go
package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Controller string        `yaml:"controller"`
	Session    SessionConfig `yaml:"session"`
	Report     ReportConfig  `yaml:"report"`
	Mirror     *MirrorConfig `yaml:"mirror"`
}

// ---- SESSION ----

type SessionConfig struct {
	IntervalMs int  `yaml:"interval_ms"`
	DurationMs int  `yaml:"duration_ms"` // 0 = until capacity or signal
	Capacity   int  `yaml:"capacity"`
	Trail      int  `yaml:"trail"`
	Word       bool `yaml:"word"`
}

// ---- REPORT ----

type ReportConfig struct {
	Path    string `yaml:"path"`
	Decimal bool   `yaml:"decimal"`
	Compact bool   `yaml:"compact"` // lossy: repeated values elided
}

// ---- MIRROR (optional, opt-in) ----

type MirrorConfig struct {
	Endpoint      string  `yaml:"endpoint"`
	UnitID        uint8   `yaml:"unit_id"`
	TimeoutMs     int     `yaml:"timeout_ms"`
	Address       uint16  `yaml:"address"`
	StatusAddress *uint16 `yaml:"status_address"`
}

// Load reads a YAML config file. Unknown keys are rejected.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return &cfg, nil
}
