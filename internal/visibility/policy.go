package visibility

import (
	"errors"
	"log"
	"time"

	"github.com/chess10kp/tuck/internal/store"
)

const (
	KeyCollapsed        = "isCollapsed"
	KeyAutoHideEnabled  = "autoHide.enabled"
	KeyAutoHideDelay    = "autoHide.delaySeconds"
	DefaultAutoHide     = true
	DefaultDelaySeconds = 5.0
)

// AutoHidePolicy decides whether expanding schedules an automatic collapse
// and after how long.
type AutoHidePolicy struct {
	Enabled      bool
	DelaySeconds float64
}

// Delay returns DelaySeconds as a duration.
func (p AutoHidePolicy) Delay() time.Duration {
	return time.Duration(p.DelaySeconds * float64(time.Second))
}

// LoadPolicy reads the policy from st. Absent or non-positive values resolve
// to the defaults.
func LoadPolicy(st store.Store) AutoHidePolicy {
	enabled, err := store.Bool(st, KeyAutoHideEnabled, DefaultAutoHide)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		log.Printf("[VISIBILITY] Failed to read %s: %v", KeyAutoHideEnabled, err)
	}

	delay, err := store.Float(st, KeyAutoHideDelay, DefaultDelaySeconds)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		log.Printf("[VISIBILITY] Failed to read %s: %v", KeyAutoHideDelay, err)
	}
	if delay <= 0 {
		delay = DefaultDelaySeconds
	}

	return AutoHidePolicy{Enabled: enabled, DelaySeconds: delay}
}

// SeedDefaults writes each policy key that has not been stored yet. Keys
// already present are left alone. It reports whether anything was written.
func SeedDefaults(st store.Store) (bool, error) {
	seeded := false
	if !st.Has(KeyAutoHideEnabled) {
		if err := store.SetBool(st, KeyAutoHideEnabled, DefaultAutoHide); err != nil {
			return seeded, err
		}
		seeded = true
	}
	if !st.Has(KeyAutoHideDelay) {
		if err := store.SetFloat(st, KeyAutoHideDelay, DefaultDelaySeconds); err != nil {
			return seeded, err
		}
		seeded = true
	}
	return seeded, nil
}
