package store

// txWrite is a pending overlay entry. A deleted entry shadows the backing
// value as a tombstone.
type txWrite struct {
	value   []byte
	deleted bool
}

// Transaction is a read-your-writes overlay over the store. Reads see the
// overlay first and fall through to the backing database; Commit flushes
// every pending write in a single backing batch, Abort discards them.
// The engine runs one transaction at a time.
type Transaction struct {
	store  *Store
	parent *Transaction
	writes map[string]txWrite
	done   bool
}

// StartTransaction opens a new top-level transaction.
func (s *Store) StartTransaction() *Transaction {
	return &Transaction{store: s, writes: make(map[string]txWrite)}
}

// newChild opens a nested overlay used for atomic batch application.
func (t *Transaction) newChild() *Transaction {
	return &Transaction{store: t.store, parent: t, writes: make(map[string]txWrite)}
}

func (t *Transaction) put(key []byte, value []byte) {
	t.writes[string(key)] = txWrite{value: value}
}

func (t *Transaction) delete(key []byte) {
	t.writes[string(key)] = txWrite{deleted: true}
}

// lookup reports the overlay entry for key, walking parent overlays.
func (t *Transaction) lookup(key []byte) (txWrite, bool) {
	for tx := t; tx != nil; tx = tx.parent {
		if w, ok := tx.writes[string(key)]; ok {
			return w, true
		}
	}
	return txWrite{}, false
}

// mergeInto folds the overlay into its parent.
func (t *Transaction) mergeInto(parent *Transaction) {
	for key, w := range t.writes {
		parent.writes[key] = w
	}
}

// Commit flushes the transaction to the backing database atomically.
func (t *Transaction) Commit() error {
	if t.done {
		return ErrTransactionDone
	}
	t.done = true
	batch := t.store.db.NewBatch()
	for key, w := range t.writes {
		if w.deleted {
			batch.Delete([]byte(key))
			continue
		}
		batch.Put([]byte(key), w.value)
	}
	return batch.Write()
}

// Abort discards the transaction's pending writes.
func (t *Transaction) Abort() error {
	if t.done {
		return ErrTransactionDone
	}
	t.done = true
	t.writes = nil
	return nil
}
