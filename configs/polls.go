package configs

import (
	"fmt"
	"time"
)

// Polls holds the lifecycle policy of both poll purposes.
type Polls struct {
	ShiftDeadline      time.Duration `env:"SHIFT_POLL_DEADLINE" envDefault:"30m"`
	ShiftExtension     time.Duration `env:"SHIFT_POLL_EXTENSION" envDefault:"15m"`
	ShiftMaxExtensions int           `env:"SHIFT_POLL_MAX_EXTENSIONS" envDefault:"1"`

	SyncDeadline      time.Duration `env:"SYNC_POLL_DEADLINE" envDefault:"10m"`
	SyncExtension     time.Duration `env:"SYNC_POLL_EXTENSION" envDefault:"10m"`
	SyncMaxExtensions int           `env:"SYNC_POLL_MAX_EXTENSIONS" envDefault:"0"`

	ResyncInterval time.Duration `env:"POLL_STORE_RESYNC_INTERVAL" envDefault:"1m"`
}

func (c Polls) Validate() error {
	for name, value := range map[string]time.Duration{
		"SHIFT_POLL_DEADLINE":        c.ShiftDeadline,
		"SHIFT_POLL_EXTENSION":       c.ShiftExtension,
		"SYNC_POLL_DEADLINE":         c.SyncDeadline,
		"SYNC_POLL_EXTENSION":        c.SyncExtension,
		"POLL_STORE_RESYNC_INTERVAL": c.ResyncInterval,
	} {
		if value <= 0 {
			return fmt.Errorf("invalid %s %s: must be positive", name, value)
		}
	}

	for name, value := range map[string]int{
		"SHIFT_POLL_MAX_EXTENSIONS": c.ShiftMaxExtensions,
		"SYNC_POLL_MAX_EXTENSIONS":  c.SyncMaxExtensions,
	} {
		if value < 0 {
			return fmt.Errorf("invalid %s %d: must not be negative", name, value)
		}
	}

	return nil
}
