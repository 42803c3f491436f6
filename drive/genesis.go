package drive

import (
	"errors"
	"fmt"

	"dashplatform/store"
)

// AddGenesisTimeOp queues the one-time write of the genesis time. The op
// is a strict insert, so a second write fails instead of overwriting the
// record.
func AddGenesisTimeOp(batch *store.Batch, timeMs uint64) {
	batch.Insert(PoolsPath, keyGenesisTime, store.NewItem(encodeUint64(timeMs)))
}

// GenesisTime returns the platform's genesis time in milliseconds and
// whether it has been set yet. The value is cached after the first
// successful read; the record never changes once committed.
func (d *Drive) GenesisTime(tx *store.Transaction) (uint64, bool, error) {
	d.mu.Lock()
	if d.genesisSet {
		t := d.genesisTime
		d.mu.Unlock()
		return t, true, nil
	}
	d.mu.Unlock()

	raw, err := d.readPoolsItem(keyGenesisTime, tx)
	if errors.Is(err, store.ErrPathKeyNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("drive: genesis time: %w", err)
	}
	t, err := decodeUint64(raw, "genesis time")
	if err != nil {
		return 0, false, err
	}
	d.mu.Lock()
	d.genesisTime = t
	d.genesisSet = true
	d.mu.Unlock()
	return t, true, nil
}
