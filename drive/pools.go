package drive

import (
	"fmt"

	"dashplatform/store"
)

// AddStoragePoolOp queues a write of the aggregate storage-fee
// distribution pool.
func AddStoragePoolOp(batch *store.Batch, value uint64) {
	batch.Replace(PoolsPath, keyStoragePool, store.NewItem(encodeUint64(value)))
}

// AddInitStoragePoolOp queues the initial, strict insert of the pool.
func AddInitStoragePoolOp(batch *store.Batch) {
	batch.Insert(PoolsPath, keyStoragePool, store.NewItem(encodeUint64(0)))
}

// StorageDistributionPool returns the aggregate storage credits not yet
// apportioned to any epoch.
func (d *Drive) StorageDistributionPool(tx *store.Transaction) (uint64, error) {
	raw, err := d.readPoolsItem(keyStoragePool, tx)
	if err != nil {
		return 0, fmt.Errorf("drive: storage pool: %w", err)
	}
	return decodeUint64(raw, "storage pool")
}

// AddPayoutCursorOp queues a write of the epoch-to-pay cursor.
func AddPayoutCursorOp(batch *store.Batch, epoch uint16) {
	batch.Replace(PoolsPath, keyPayoutCursor, store.NewItem(encodeUint16(epoch)))
}

// AddInitPayoutCursorOp queues the initial, strict insert of the cursor.
func AddInitPayoutCursorOp(batch *store.Batch) {
	batch.Insert(PoolsPath, keyPayoutCursor, store.NewItem(encodeUint16(0)))
}

// PayoutCursor returns the oldest epoch index whose payout has not
// completed yet.
func (d *Drive) PayoutCursor(tx *store.Transaction) (uint16, error) {
	raw, err := d.readPoolsItem(keyPayoutCursor, tx)
	if err != nil {
		return 0, fmt.Errorf("drive: payout cursor: %w", err)
	}
	return decodeUint16(raw, "payout cursor")
}
