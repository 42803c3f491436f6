package config

import (
	"fmt"
	"path/filepath"

	"dashplatform/storage"
)

// OpenDatabase opens the storage backend the configuration names. The
// caller owns the returned database and must Close it.
func (c *Config) OpenDatabase() (storage.Database, error) {
	switch c.Backend {
	case BackendMemory:
		return storage.NewMemDB(), nil
	case BackendLevelDB:
		return storage.NewLevelDB(filepath.Join(c.DataDir, "state"))
	case BackendBolt:
		return storage.NewBoltDB(filepath.Join(c.DataDir, "state.db"))
	default:
		return nil, fmt.Errorf("storage: unknown backend %q", c.Backend)
	}
}
