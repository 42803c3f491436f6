package config

import (
	"fmt"
	"strings"

	"dashplatform/fees"
)

// Validate checks that the configuration can actually run a node.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendMemory, BackendLevelDB, BackendBolt:
	default:
		return fmt.Errorf("storage: unknown backend %q", c.Backend)
	}
	if c.ProposerPayoutDelay == 0 {
		return fmt.Errorf("payout: ProposerPayoutDelay must be at least 1")
	}
	if !fees.ValidMultiplierByte(c.DefaultFeeMultiplier) {
		return fmt.Errorf("fees: DefaultFeeMultiplier %d is not a known multiplier byte", c.DefaultFeeMultiplier)
	}
	if c.Log.MaxSizeMB < 0 || c.Log.MaxBackups < 0 || c.Log.MaxAgeDays < 0 {
		return fmt.Errorf("log: rotation limits must not be negative")
	}
	if c.Telemetry.Enabled && strings.TrimSpace(c.Telemetry.Endpoint) == "" {
		return fmt.Errorf("telemetry: enabled without an endpoint")
	}
	return nil
}
