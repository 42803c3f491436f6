// Package drive is the platform state layer: it lays out the root trees
// and the fee pools inside the hierarchical store and exposes typed
// accessors and operation builders over them.
package drive

import (
	"sync"

	"dashplatform/store"
)

// Keys inside the Pools tree. Root-level scalars use single letters; the
// per-epoch keys live inside each epoch's subtree.
var (
	keyGenesisTime  = []byte("g")
	keyStoragePool  = []byte("s")
	keyPayoutCursor = []byte("p")

	keyStartTime         = []byte("t")
	keyStartBlockHeight  = []byte("h")
	keyFeeMultiplier     = []byte("m")
	keyStorageCredits    = []byte("ps")
	keyProcessingCredits = []byte("pp")
	keyProposers         = []byte("P")
)

// PoolsPath is the path of the Pools tree.
var PoolsPath = RootPools.Path()

// Drive wraps the store with the platform state layout. A genesis-time
// cache avoids re-reading the immutable record on every block.
type Drive struct {
	store *store.Store

	mu          sync.Mutex
	genesisTime uint64
	genesisSet  bool
}

// New returns a Drive over the given store.
func New(st *store.Store) *Drive {
	return &Drive{store: st}
}

// StartTransaction opens a transaction on the underlying store.
func (d *Drive) StartTransaction() *store.Transaction {
	return d.store.StartTransaction()
}

// ApplyBatch applies a batch through the underlying store.
func (d *Drive) ApplyBatch(batch *store.Batch, tx *store.Transaction) error {
	return d.store.ApplyBatch(batch, tx)
}

// RootHash returns the store's root digest as seen through tx.
func (d *Drive) RootHash(tx *store.Transaction) ([]byte, error) {
	return d.store.RootHash(tx)
}

// Store exposes the underlying store for read-only inspection.
func (d *Drive) Store() *store.Store {
	return d.store
}

func (d *Drive) readPoolsItem(key []byte, tx *store.Transaction) ([]byte, error) {
	el, err := d.store.Get(PoolsPath, key, tx)
	if err != nil {
		return nil, err
	}
	return el.Item()
}
