package drive

import (
	"dashplatform/fees"
	"dashplatform/store"
)

// AddInitialStructureOps queues the creation of the platform's root
// trees, the zeroed storage pool and payout cursor, and the first
// thousand epoch pools. Genesis time is not part of the structure; it is
// written when the first block arrives.
func AddInitialStructureOps(batch *store.Batch) {
	for _, root := range rootTrees {
		batch.Insert(nil, root.Key(), store.NewTree())
	}
	AddInitStoragePoolOp(batch)
	AddInitPayoutCursorOp(batch)
	for i := 0; i < fees.StorageDistributionEpochs; i++ {
		NewEpoch(uint16(i)).AddInitEmptyOps(batch)
	}
}

// CreateInitialStructure builds and applies the initial structure in one
// batch. Every op is a strict insert, so running it on a non-empty
// store fails.
func (d *Drive) CreateInitialStructure(tx *store.Transaction) error {
	batch := store.NewBatch()
	AddInitialStructureOps(batch)
	return d.ApplyBatch(batch, tx)
}
