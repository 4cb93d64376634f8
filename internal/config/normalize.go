// internal/config/normalize.go
package config

// Defaults applied by Normalize.
const (
	DefaultIntervalMs      = 500
	DefaultCapacity        = 32768
	DefaultTrail           = 24
	DefaultMirrorTimeoutMs = 1000
)

// Normalize applies post-validation defaults.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	s := &cfg.Session
	if s.IntervalMs == 0 {
		s.IntervalMs = DefaultIntervalMs
	}
	if s.Capacity == 0 {
		s.Capacity = DefaultCapacity
	}
	if s.Trail == 0 {
		s.Trail = DefaultTrail
	}

	if cfg.Mirror != nil && cfg.Mirror.TimeoutMs == 0 {
		cfg.Mirror.TimeoutMs = DefaultMirrorTimeoutMs
	}
}
