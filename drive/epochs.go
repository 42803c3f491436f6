package drive

import (
	"encoding/binary"
	"errors"
	"fmt"

	"dashplatform/fees"
	"dashplatform/rewards"
	"dashplatform/store"
)

// Epoch addresses one fee epoch's subtree inside the Pools tree. Epochs
// are identified by a 16-bit index; the subtree key is its big-endian
// encoding.
type Epoch struct {
	Index uint16
}

// NewEpoch returns the epoch with the given index.
func NewEpoch(index uint16) Epoch {
	return Epoch{Index: index}
}

// Key returns the epoch's two-byte subtree key.
func (e Epoch) Key() []byte {
	var key [2]byte
	binary.BigEndian.PutUint16(key[:], e.Index)
	return key[:]
}

// Path returns the epoch subtree's path.
func (e Epoch) Path() store.Path {
	return PoolsPath.Child(e.Key())
}

// ProposersPath returns the path of the epoch's proposers subtree.
func (e Epoch) ProposersPath() store.Path {
	return e.Path().Child(keyProposers)
}

// AddInitEmptyOps queues the creation of the epoch as a horizon pool:
// the subtree itself plus zeroed storage credits ready to receive
// distributions.
func (e Epoch) AddInitEmptyOps(batch *store.Batch) {
	batch.Insert(PoolsPath, e.Key(), store.NewTree())
	batch.Insert(e.Path(), keyStorageCredits, store.NewItem(encodeUint64(0)))
}

// AddInitCurrentOps queues the writes that turn a horizon pool into the
// current epoch: start height, fee multiplier, start time, the empty
// proposers subtree and zeroed processing credits. The multiplier byte
// is validated before anything is queued.
func (e Epoch) AddInitCurrentOps(batch *store.Batch, multiplier byte, startBlockHeight, startTimeMs uint64) error {
	if _, err := fees.MultiplierTenths(multiplier); err != nil {
		return err
	}
	batch.Insert(e.Path(), keyStartBlockHeight, store.NewItem(encodeUint64(startBlockHeight)))
	batch.Insert(e.Path(), keyFeeMultiplier, store.NewItem([]byte{multiplier}))
	batch.Insert(e.Path(), keyStartTime, store.NewItem(encodeUint64(startTimeMs)))
	batch.Insert(e.Path(), keyProposers, store.NewTree())
	batch.Insert(e.Path(), keyProcessingCredits, store.NewItem(encodeUint64(0)))
	return nil
}

// AddMarkPaidOps queues the deletions that mark the epoch as fully paid:
// processing credits, storage credits and the proposers subtree go away,
// start time and multiplier stay for audit.
func (e Epoch) AddMarkPaidOps(batch *store.Batch) {
	batch.Delete(e.Path(), keyProcessingCredits)
	batch.Delete(e.Path(), keyStorageCredits)
	batch.Delete(e.Path(), keyProposers)
}

// AddProposerCountOp queues a write of the proposer's block count.
func (e Epoch) AddProposerCountOp(batch *store.Batch, proTxHash [32]byte, count uint64) {
	batch.Replace(e.ProposersPath(), proTxHash[:], store.NewItem(encodeUint64(count)))
}

// AddStorageCreditsOp queues a write of the epoch's storage credits.
func (e Epoch) AddStorageCreditsOp(batch *store.Batch, value uint64) {
	batch.Replace(e.Path(), keyStorageCredits, store.NewItem(encodeUint64(value)))
}

// AddProcessingCreditsOp queues a write of the epoch's processing
// credits.
func (e Epoch) AddProcessingCreditsOp(batch *store.Batch, value uint64) {
	batch.Replace(e.Path(), keyProcessingCredits, store.NewItem(encodeUint64(value)))
}

// --- accessors ---

func (d *Drive) epochItem(e Epoch, key []byte, what string, tx *store.Transaction) ([]byte, error) {
	el, err := d.store.Get(e.Path(), key, tx)
	if err != nil {
		return nil, fmt.Errorf("drive: epoch %d %s: %w", e.Index, what, err)
	}
	raw, err := el.Item()
	if err != nil {
		return nil, fmt.Errorf("drive: epoch %d %s: %w", e.Index, what, err)
	}
	return raw, nil
}

// EpochStartTime returns the epoch's start time in milliseconds.
func (d *Drive) EpochStartTime(e Epoch, tx *store.Transaction) (uint64, error) {
	raw, err := d.epochItem(e, keyStartTime, "start time", tx)
	if err != nil {
		return 0, err
	}
	return decodeUint64(raw, "epoch start time")
}

// EpochStartBlockHeight returns the height of the first block of the
// epoch.
func (d *Drive) EpochStartBlockHeight(e Epoch, tx *store.Transaction) (uint64, error) {
	raw, err := d.epochItem(e, keyStartBlockHeight, "start height", tx)
	if err != nil {
		return 0, err
	}
	return decodeUint64(raw, "epoch start height")
}

// EpochFeeMultiplier returns the epoch's fee multiplier byte.
func (d *Drive) EpochFeeMultiplier(e Epoch, tx *store.Transaction) (byte, error) {
	raw, err := d.epochItem(e, keyFeeMultiplier, "fee multiplier", tx)
	if err != nil {
		return 0, err
	}
	return decodeByte(raw, "epoch fee multiplier")
}

// EpochStorageCredits returns the storage credits accumulated for the
// epoch.
func (d *Drive) EpochStorageCredits(e Epoch, tx *store.Transaction) (uint64, error) {
	raw, err := d.epochItem(e, keyStorageCredits, "storage credits", tx)
	if err != nil {
		return 0, err
	}
	return decodeUint64(raw, "epoch storage credits")
}

// EpochProcessingCredits returns the processing credits accumulated for
// the epoch.
func (d *Drive) EpochProcessingCredits(e Epoch, tx *store.Transaction) (uint64, error) {
	raw, err := d.epochItem(e, keyProcessingCredits, "processing credits", tx)
	if err != nil {
		return 0, err
	}
	return decodeUint64(raw, "epoch processing credits")
}

// EpochTotalCredits returns the epoch's storage and processing credits
// combined.
func (d *Drive) EpochTotalCredits(e Epoch, tx *store.Transaction) (uint64, error) {
	storage, err := d.EpochStorageCredits(e, tx)
	if err != nil {
		return 0, err
	}
	processing, err := d.EpochProcessingCredits(e, tx)
	if err != nil {
		return 0, err
	}
	return fees.CheckedAdd(storage, processing)
}

// EpochProposerBlockCount returns the number of blocks the proposer
// produced in the epoch, zero when the proposer has no entry yet.
func (d *Drive) EpochProposerBlockCount(e Epoch, proTxHash [32]byte, tx *store.Transaction) (uint64, error) {
	el, err := d.store.Get(e.ProposersPath(), proTxHash[:], tx)
	if errors.Is(err, store.ErrPathKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("drive: epoch %d proposer %x: %w", e.Index, proTxHash[:4], err)
	}
	raw, err := el.Item()
	if err != nil {
		return 0, fmt.Errorf("drive: epoch %d proposer %x: %w", e.Index, proTxHash[:4], err)
	}
	return decodeUint64(raw, "proposer block count")
}

// EpochProposers returns up to limit proposer entries of the epoch in
// ascending hash order. A limit of zero or less returns every entry.
func (d *Drive) EpochProposers(e Epoch, limit int, tx *store.Transaction) ([]rewards.ProposerEntry, error) {
	entries, err := d.store.Range(e.ProposersPath(), limit, tx)
	if err != nil {
		return nil, fmt.Errorf("drive: epoch %d proposers: %w", e.Index, err)
	}
	proposers := make([]rewards.ProposerEntry, 0, len(entries))
	for _, entry := range entries {
		if len(entry.Key) != 32 {
			return nil, fmt.Errorf("drive: epoch %d proposer key holds %d bytes, want 32: %w",
				e.Index, len(entry.Key), ErrUnexpectedWidth)
		}
		raw, err := entry.Element.Item()
		if err != nil {
			return nil, fmt.Errorf("drive: epoch %d proposer %x: %w", e.Index, entry.Key[:4], err)
		}
		count, err := decodeUint64(raw, "proposer block count")
		if err != nil {
			return nil, err
		}
		var hash [32]byte
		copy(hash[:], entry.Key)
		proposers = append(proposers, rewards.ProposerEntry{ProTxHash: hash, BlockCount: count})
	}
	return proposers, nil
}

// EpochProposersEmpty reports whether the epoch has no proposer entries.
// An epoch whose proposers subtree was never created, or was deleted by
// a completed payout, counts as empty.
func (d *Drive) EpochProposersEmpty(e Epoch, tx *store.Transaction) (bool, error) {
	entries, err := d.store.Range(e.ProposersPath(), 1, tx)
	if errors.Is(err, store.ErrPathNotFound) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("drive: epoch %d proposers: %w", e.Index, err)
	}
	return len(entries) == 0, nil
}
