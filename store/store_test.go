package store

import (
	"encoding/binary"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"dashplatform/storage"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(storage.NewMemDB())
	require.NoError(t, err)
	return s
}

func applyAll(t *testing.T, s *Store, batch *Batch) {
	t.Helper()
	require.NoError(t, s.ApplyBatch(batch, nil))
}

func TestInsertGetNested(t *testing.T) {
	s := newTestStore(t)

	batch := NewBatch()
	batch.Insert(nil, []byte("pools"), NewTree())
	batch.Insert(NewPath([]byte("pools")), []byte("epoch"), NewTree())
	batch.Insert(NewPath([]byte("pools"), []byte("epoch")), []byte("fees"), NewItem([]byte{0, 42}))
	applyAll(t, s, batch)

	el, err := s.Get(NewPath([]byte("pools"), []byte("epoch")), []byte("fees"), nil)
	require.NoError(t, err)
	require.Equal(t, KindItem, el.Kind)
	require.Equal(t, []byte{0, 42}, el.Value)

	el, err = s.Get(nil, []byte("pools"), nil)
	require.NoError(t, err)
	require.Equal(t, KindTree, el.Kind)
}

func TestGetErrorsDistinguishPathFromKey(t *testing.T) {
	s := newTestStore(t)

	batch := NewBatch()
	batch.Insert(nil, []byte("pools"), NewTree())
	applyAll(t, s, batch)

	_, err := s.Get(NewPath([]byte("pools")), []byte("missing"), nil)
	require.ErrorIs(t, err, ErrPathKeyNotFound)

	_, err = s.Get(NewPath([]byte("nothing")), []byte("missing"), nil)
	require.ErrorIs(t, err, ErrPathNotFound)

	ok, err := s.Has(NewPath([]byte("pools")), []byte("missing"), nil)
	require.NoError(t, err)
	require.False(t, ok)

	_, err = s.Has(NewPath([]byte("nothing")), []byte("missing"), nil)
	require.ErrorIs(t, err, ErrPathNotFound)
}

func TestInsertIsStrict(t *testing.T) {
	s := newTestStore(t)

	batch := NewBatch()
	batch.Insert(nil, []byte("g"), NewItem([]byte{1}))
	applyAll(t, s, batch)

	dup := NewBatch()
	dup.Insert(nil, []byte("g"), NewItem([]byte{2}))
	err := s.ApplyBatch(dup, nil)
	require.ErrorIs(t, err, ErrAlreadyExists)

	el, err := s.Get(nil, []byte("g"), nil)
	require.NoError(t, err)
	require.Equal(t, []byte{1}, el.Value)
}

func TestReplaceUpserts(t *testing.T) {
	s := newTestStore(t)

	batch := NewBatch()
	batch.Replace(nil, []byte("p"), NewItem([]byte{0}))
	applyAll(t, s, batch)

	batch = NewBatch()
	batch.Replace(nil, []byte("p"), NewItem([]byte{7}))
	applyAll(t, s, batch)

	el, err := s.Get(nil, []byte("p"), nil)
	require.NoError(t, err)
	require.Equal(t, []byte{7}, el.Value)
}

func TestDeleteIsStrictAndClearsSubtrees(t *testing.T) {
	s := newTestStore(t)

	batch := NewBatch()
	batch.Insert(nil, []byte("tree"), NewTree())
	batch.Insert(NewPath([]byte("tree")), []byte("inner"), NewTree())
	batch.Insert(NewPath([]byte("tree"), []byte("inner")), []byte("leaf"), NewItem([]byte{1}))
	applyAll(t, s, batch)

	del := NewBatch()
	del.Delete(nil, []byte("tree"))
	applyAll(t, s, del)

	_, err := s.Get(nil, []byte("tree"), nil)
	require.ErrorIs(t, err, ErrPathKeyNotFound)
	_, err = s.Get(NewPath([]byte("tree"), []byte("inner")), []byte("leaf"), nil)
	require.ErrorIs(t, err, ErrPathNotFound)

	again := NewBatch()
	again.Delete(nil, []byte("tree"))
	err = s.ApplyBatch(again, nil)
	require.ErrorIs(t, err, ErrPathKeyNotFound)
}

func TestApplyBatchRejectsEmpty(t *testing.T) {
	s := newTestStore(t)
	require.ErrorIs(t, s.ApplyBatch(NewBatch(), nil), ErrEmptyBatch)
	require.ErrorIs(t, s.ApplyBatch(nil, nil), ErrEmptyBatch)
}

func TestApplyBatchIsAtomic(t *testing.T) {
	s := newTestStore(t)

	batch := NewBatch()
	batch.Insert(nil, []byte("a"), NewItem([]byte{1}))
	batch.Insert(nil, []byte("b"), NewItem([]byte{2}))
	// Last op fails: the tree "missing" was never created.
	batch.Insert(NewPath([]byte("missing")), []byte("c"), NewItem([]byte{3}))
	err := s.ApplyBatch(batch, nil)
	require.ErrorIs(t, err, ErrPathNotFound)

	_, err = s.Get(nil, []byte("a"), nil)
	require.ErrorIs(t, err, ErrPathKeyNotFound)
	_, err = s.Get(nil, []byte("b"), nil)
	require.ErrorIs(t, err, ErrPathKeyNotFound)
}

func TestRangeOrderAndLimit(t *testing.T) {
	s := newTestStore(t)

	batch := NewBatch()
	batch.Insert(nil, []byte("set"), NewTree())
	// Inserted out of order on purpose.
	for _, k := range []byte{9, 3, 200, 0, 17} {
		batch.Insert(NewPath([]byte("set")), []byte{k}, NewItem([]byte{k}))
	}
	applyAll(t, s, batch)

	entries, err := s.Range(NewPath([]byte("set")), 0, nil)
	require.NoError(t, err)
	require.Len(t, entries, 5)
	want := []byte{0, 3, 9, 17, 200}
	for i, e := range entries {
		require.Equal(t, []byte{want[i]}, e.Key)
		require.Equal(t, []byte{want[i]}, e.Element.Value)
	}

	limited, err := s.Range(NewPath([]byte("set")), 2, nil)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	require.Equal(t, []byte{0}, limited[0].Key)
	require.Equal(t, []byte{3}, limited[1].Key)

	_, err = s.Range(NewPath([]byte("absent")), 0, nil)
	require.ErrorIs(t, err, ErrPathNotFound)
}

func TestReferencesResolve(t *testing.T) {
	s := newTestStore(t)

	batch := NewBatch()
	batch.Insert(nil, []byte("data"), NewTree())
	batch.Insert(NewPath([]byte("data")), []byte("target"), NewItem([]byte("payload")))
	batch.Insert(nil, []byte("link"), NewReference(NewPath([]byte("data")), []byte("target")))
	applyAll(t, s, batch)

	el, err := s.Get(nil, []byte("link"), nil)
	require.NoError(t, err)
	require.Equal(t, KindItem, el.Kind)
	require.Equal(t, []byte("payload"), el.Value)
}

func TestReferenceCycleIsBounded(t *testing.T) {
	s := newTestStore(t)

	batch := NewBatch()
	batch.Insert(nil, []byte("a"), NewReference(nil, []byte("b")))
	batch.Insert(nil, []byte("b"), NewReference(nil, []byte("a")))
	applyAll(t, s, batch)

	_, err := s.Get(nil, []byte("a"), nil)
	require.ErrorIs(t, err, ErrReferenceLimit)
}

func TestTransactionCommitAndAbort(t *testing.T) {
	db := storage.NewMemDB()
	s, err := New(db)
	require.NoError(t, err)

	tx := s.StartTransaction()
	batch := NewBatch()
	batch.Insert(nil, []byte("k"), NewItem([]byte{5}))
	require.NoError(t, s.ApplyBatch(batch, tx))

	// Visible through the transaction, invisible outside it.
	el, err := s.Get(nil, []byte("k"), tx)
	require.NoError(t, err)
	require.Equal(t, []byte{5}, el.Value)
	_, err = s.Get(nil, []byte("k"), nil)
	require.ErrorIs(t, err, ErrPathKeyNotFound)

	require.NoError(t, tx.Commit())
	el, err = s.Get(nil, []byte("k"), nil)
	require.NoError(t, err)
	require.Equal(t, []byte{5}, el.Value)

	abort := s.StartTransaction()
	batch = NewBatch()
	batch.Replace(nil, []byte("k"), NewItem([]byte{6}))
	require.NoError(t, s.ApplyBatch(batch, abort))
	require.NoError(t, abort.Abort())

	el, err = s.Get(nil, []byte("k"), nil)
	require.NoError(t, err)
	require.Equal(t, []byte{5}, el.Value)

	require.ErrorIs(t, abort.Commit(), ErrTransactionDone)
	require.ErrorIs(t, s.ApplyBatch(batch, abort), ErrTransactionDone)
}

func TestRootHashTracksContent(t *testing.T) {
	s := newTestStore(t)
	empty, err := s.RootHash(nil)
	require.NoError(t, err)
	require.Len(t, empty, 32)

	batch := NewBatch()
	batch.Insert(nil, []byte("k"), NewItem([]byte{1}))
	applyAll(t, s, batch)

	one, err := s.RootHash(nil)
	require.NoError(t, err)
	require.NotEqual(t, empty, one)

	// A second store with identical content arrives at the same digest.
	other := newTestStore(t)
	batch = NewBatch()
	batch.Insert(nil, []byte("k"), NewItem([]byte{1}))
	applyAll(t, other, batch)
	same, err := other.RootHash(nil)
	require.NoError(t, err)
	require.Equal(t, one, same)

	// Deleting restores the empty digest.
	del := NewBatch()
	del.Delete(nil, []byte("k"))
	applyAll(t, s, del)
	back, err := s.RootHash(nil)
	require.NoError(t, err)
	require.Equal(t, empty, back)
}

func TestRootHashSeesTransactionOverlay(t *testing.T) {
	s := newTestStore(t)
	base, err := s.RootHash(nil)
	require.NoError(t, err)

	tx := s.StartTransaction()
	batch := NewBatch()
	batch.Insert(nil, []byte("k"), NewItem([]byte{1}))
	require.NoError(t, s.ApplyBatch(batch, tx))

	inTx, err := s.RootHash(tx)
	require.NoError(t, err)
	require.NotEqual(t, base, inTx)

	outside, err := s.RootHash(nil)
	require.NoError(t, err)
	require.Equal(t, base, outside)

	require.NoError(t, tx.Commit())
	committed, err := s.RootHash(nil)
	require.NoError(t, err)
	require.Equal(t, inTx, committed)
}

func TestDeepHierarchyDigestsPropagate(t *testing.T) {
	s := newTestStore(t)

	batch := NewBatch()
	batch.Insert(nil, []byte("l1"), NewTree())
	batch.Insert(NewPath([]byte("l1")), []byte("l2"), NewTree())
	batch.Insert(NewPath([]byte("l1"), []byte("l2")), []byte("leaf"), NewItem([]byte{1}))
	applyAll(t, s, batch)

	before, err := s.RootHash(nil)
	require.NoError(t, err)

	// Changing a deep leaf must change the root digest.
	change := NewBatch()
	change.Replace(NewPath([]byte("l1"), []byte("l2")), []byte("leaf"), NewItem([]byte{2}))
	applyAll(t, s, change)

	after, err := s.RootHash(nil)
	require.NoError(t, err)
	require.NotEqual(t, before, after)
}

func TestManyFixedWidthKeys(t *testing.T) {
	s := newTestStore(t)

	batch := NewBatch()
	batch.Insert(nil, []byte("epochs"), NewTree())
	for i := 0; i < 1000; i++ {
		var key [2]byte
		binary.BigEndian.PutUint16(key[:], uint16(i))
		batch.Insert(NewPath([]byte("epochs")), key[:], NewTree())
	}
	applyAll(t, s, batch)

	entries, err := s.Range(NewPath([]byte("epochs")), 0, nil)
	require.NoError(t, err)
	require.Len(t, entries, 1000)
	for i, e := range entries {
		require.Equal(t, uint16(i), binary.BigEndian.Uint16(e.Key), fmt.Sprintf("entry %d", i))
		require.Equal(t, KindTree, e.Element.Kind)
	}
}
