// Package store implements a hierarchical key-value store of nested
// trees with a Keccak-256 digest maintained per subtree. Mutations go
// through ordered batches applied atomically inside a transaction; the
// root digest commits to the full hierarchy.
package store

import (
	"bytes"
	"errors"
	"fmt"
	"sort"

	"github.com/ethereum/go-ethereum/rlp"

	"dashplatform/storage"
)

// maxReferenceDepth bounds how many reference hops a read will follow.
const maxReferenceDepth = 8

// Store keeps the tree hierarchy in a flat backing database. It expects
// a single writer; concurrent readers through separate transactions are
// fine.
type Store struct {
	db storage.Database
}

// storedNode is the persisted record of one tree: its sorted child keys
// and its subtree digest.
type storedNode struct {
	Children [][]byte
	Hash     []byte
}

// Entry pairs a key with its element, as returned by Range.
type Entry struct {
	Key     []byte
	Element Element
}

// New opens a store over db, creating the empty root tree on first use.
func New(db storage.Database) (*Store, error) {
	s := &Store{db: db}
	_, err := db.Get(nodeKey(nil))
	if errors.Is(err, storage.ErrNotFound) {
		raw, err := encodeNode(storedNode{Hash: emptyTreeHash()})
		if err != nil {
			return nil, err
		}
		if err := db.Put(nodeKey(nil), raw); err != nil {
			return nil, err
		}
		return s, nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Get returns the element under key in the tree at path, resolving
// references.
func (s *Store) Get(path Path, key []byte, tx *Transaction) (Element, error) {
	el, err := s.getRaw(path, key, tx)
	if err != nil {
		return Element{}, err
	}
	for depth := 0; el.Kind == KindReference; depth++ {
		if depth >= maxReferenceDepth {
			return Element{}, ErrReferenceLimit
		}
		el, err = s.getRaw(el.RefPath, el.RefKey, tx)
		if err != nil {
			return Element{}, err
		}
	}
	return el, nil
}

// Has reports whether an element exists under key in the tree at path.
// It fails with ErrPathNotFound when the tree itself is absent.
func (s *Store) Has(path Path, key []byte, tx *Transaction) (bool, error) {
	_, err := s.readRaw(elementKey(path, key), tx)
	if errors.Is(err, storage.ErrNotFound) {
		if _, nerr := s.loadNode(path, tx); nerr != nil {
			if errors.Is(nerr, storage.ErrNotFound) {
				return false, fmt.Errorf("store: tree %x: %w", path, ErrPathNotFound)
			}
			return false, nerr
		}
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Range returns up to limit direct entries of the tree at path in
// ascending byte order of their keys. A limit of zero or less returns
// every entry.
func (s *Store) Range(path Path, limit int, tx *Transaction) ([]Entry, error) {
	node, err := s.loadNode(path, tx)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("store: tree %x: %w", path, ErrPathNotFound)
	}
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(node.Children))
	for _, key := range node.Children {
		if limit > 0 && len(entries) >= limit {
			break
		}
		el, err := s.getRaw(path, key, tx)
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{Key: append([]byte(nil), key...), Element: el})
	}
	return entries, nil
}

// ApplyBatch validates and applies every op of the batch in order. The
// ops land in the given transaction; a nil transaction applies and
// commits immediately. A failing op leaves no partial state behind, and
// an empty batch is an error.
func (s *Store) ApplyBatch(batch *Batch, tx *Transaction) error {
	if batch == nil || batch.Empty() {
		return ErrEmptyBatch
	}
	ephemeral := tx == nil
	if ephemeral {
		tx = s.StartTransaction()
	}
	if tx.done {
		return ErrTransactionDone
	}
	scratch := tx.newChild()
	dirty := make(map[string]Path)
	for _, op := range batch.ops {
		if err := s.applyOp(scratch, op, dirty); err != nil {
			return err
		}
	}
	if err := s.rehash(scratch, dirty); err != nil {
		return err
	}
	scratch.mergeInto(tx)
	if ephemeral {
		return tx.Commit()
	}
	return nil
}

// RootHash returns the digest of the root tree as seen through tx.
func (s *Store) RootHash(tx *Transaction) ([]byte, error) {
	node, err := s.loadNode(nil, tx)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("store: missing root node: %w", ErrCorrupted)
		}
		return nil, err
	}
	return append([]byte(nil), node.Hash...), nil
}

// --- reads ---

func (s *Store) readRaw(flat []byte, tx *Transaction) ([]byte, error) {
	if tx != nil {
		if tx.done {
			return nil, ErrTransactionDone
		}
		if w, ok := tx.lookup(flat); ok {
			if w.deleted {
				return nil, storage.ErrNotFound
			}
			return w.value, nil
		}
	}
	return s.db.Get(flat)
}

func (s *Store) getRaw(path Path, key []byte, tx *Transaction) (Element, error) {
	raw, err := s.readRaw(elementKey(path, key), tx)
	if errors.Is(err, storage.ErrNotFound) {
		return Element{}, s.missingError(path, key, tx)
	}
	if err != nil {
		return Element{}, err
	}
	return decodeElement(raw)
}

// missingError distinguishes an absent tree from an absent key.
func (s *Store) missingError(path Path, key []byte, tx *Transaction) error {
	if _, err := s.loadNode(path, tx); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("store: tree %x: %w", path, ErrPathNotFound)
		}
		return err
	}
	return fmt.Errorf("store: key %x at %x: %w", key, path, ErrPathKeyNotFound)
}

func (s *Store) loadNode(path Path, tx *Transaction) (storedNode, error) {
	raw, err := s.readRaw(nodeKey(path), tx)
	if err != nil {
		return storedNode{}, err
	}
	var node storedNode
	if err := rlp.DecodeBytes(raw, &node); err != nil {
		return storedNode{}, fmt.Errorf("store: decode node %x: %w", path, ErrCorrupted)
	}
	return node, nil
}

// --- writes ---

func (s *Store) applyOp(view *Transaction, op Op, dirty map[string]Path) error {
	if _, err := s.loadNode(op.Path, view); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("store: tree %x: %w", op.Path, ErrPathNotFound)
		}
		return err
	}
	switch op.Type {
	case OpInsert:
		return s.insertElement(view, op, dirty)
	case OpReplace:
		return s.replaceElement(view, op, dirty)
	case OpDelete:
		return s.deleteElement(view, op, dirty)
	default:
		return fmt.Errorf("store: unknown op type %d", op.Type)
	}
}

func (s *Store) insertElement(view *Transaction, op Op, dirty map[string]Path) error {
	flat := elementKey(op.Path, op.Key)
	if _, err := s.readRaw(flat, view); err == nil {
		return fmt.Errorf("store: insert %x at %x: %w", op.Key, op.Path, ErrAlreadyExists)
	} else if !errors.Is(err, storage.ErrNotFound) {
		return err
	}
	raw, err := encodeElement(op.Element)
	if err != nil {
		return err
	}
	view.put(flat, raw)
	if op.Element.Kind == KindTree {
		childPath := op.Path.Child(op.Key)
		if err := s.saveNode(view, childPath, storedNode{Hash: emptyTreeHash()}); err != nil {
			return err
		}
		markDirty(dirty, childPath)
	}
	if err := s.addChild(view, op.Path, op.Key); err != nil {
		return err
	}
	markDirty(dirty, op.Path)
	return nil
}

func (s *Store) replaceElement(view *Transaction, op Op, dirty map[string]Path) error {
	flat := elementKey(op.Path, op.Key)
	var old Element
	oldFound := false
	if raw, err := s.readRaw(flat, view); err == nil {
		old, err = decodeElement(raw)
		if err != nil {
			return err
		}
		oldFound = true
	} else if !errors.Is(err, storage.ErrNotFound) {
		return err
	}
	childPath := op.Path.Child(op.Key)
	if oldFound && old.Kind == KindTree && op.Element.Kind != KindTree {
		if err := s.deleteSubtree(view, childPath, dirty); err != nil {
			return err
		}
	}
	if op.Element.Kind == KindTree && (!oldFound || old.Kind != KindTree) {
		if err := s.saveNode(view, childPath, storedNode{Hash: emptyTreeHash()}); err != nil {
			return err
		}
		markDirty(dirty, childPath)
	}
	raw, err := encodeElement(op.Element)
	if err != nil {
		return err
	}
	view.put(flat, raw)
	if !oldFound {
		if err := s.addChild(view, op.Path, op.Key); err != nil {
			return err
		}
	}
	markDirty(dirty, op.Path)
	return nil
}

func (s *Store) deleteElement(view *Transaction, op Op, dirty map[string]Path) error {
	flat := elementKey(op.Path, op.Key)
	raw, err := s.readRaw(flat, view)
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("store: delete %x at %x: %w", op.Key, op.Path, ErrPathKeyNotFound)
	}
	if err != nil {
		return err
	}
	el, err := decodeElement(raw)
	if err != nil {
		return err
	}
	if el.Kind == KindTree {
		if err := s.deleteSubtree(view, op.Path.Child(op.Key), dirty); err != nil {
			return err
		}
	}
	view.delete(flat)
	if err := s.removeChild(view, op.Path, op.Key); err != nil {
		return err
	}
	markDirty(dirty, op.Path)
	return nil
}

func (s *Store) deleteSubtree(view *Transaction, path Path, dirty map[string]Path) error {
	node, err := s.loadNode(path, view)
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("store: tree %x without node record: %w", path, ErrCorrupted)
	}
	if err != nil {
		return err
	}
	for _, key := range node.Children {
		el, err := s.getRaw(path, key, view)
		if err != nil {
			return err
		}
		if el.Kind == KindTree {
			if err := s.deleteSubtree(view, path.Child(key), dirty); err != nil {
				return err
			}
		}
		view.delete(elementKey(path, key))
	}
	view.delete(nodeKey(path))
	delete(dirty, string(nodeKey(path)))
	return nil
}

func (s *Store) addChild(view *Transaction, path Path, key []byte) error {
	node, err := s.loadNode(path, view)
	if err != nil {
		return err
	}
	i := sort.Search(len(node.Children), func(i int) bool {
		return bytes.Compare(node.Children[i], key) >= 0
	})
	if i < len(node.Children) && bytes.Equal(node.Children[i], key) {
		return s.saveNode(view, path, node)
	}
	node.Children = append(node.Children, nil)
	copy(node.Children[i+1:], node.Children[i:])
	node.Children[i] = append([]byte(nil), key...)
	return s.saveNode(view, path, node)
}

func (s *Store) removeChild(view *Transaction, path Path, key []byte) error {
	node, err := s.loadNode(path, view)
	if err != nil {
		return err
	}
	i := sort.Search(len(node.Children), func(i int) bool {
		return bytes.Compare(node.Children[i], key) >= 0
	})
	if i < len(node.Children) && bytes.Equal(node.Children[i], key) {
		node.Children = append(node.Children[:i], node.Children[i+1:]...)
	}
	return s.saveNode(view, path, node)
}

func (s *Store) saveNode(view *Transaction, path Path, node storedNode) error {
	raw, err := encodeNode(node)
	if err != nil {
		return err
	}
	view.put(nodeKey(path), raw)
	return nil
}

func encodeNode(node storedNode) ([]byte, error) {
	return rlp.EncodeToBytes(&node)
}

// --- hashing ---

func markDirty(dirty map[string]Path, path Path) {
	dirty[string(nodeKey(path))] = NewPath(path...)
}

// rehash recomputes the digest of every dirtied tree and its ancestors,
// deepest first, so parent digests fold in fresh child digests.
func (s *Store) rehash(view *Transaction, dirty map[string]Path) error {
	if len(dirty) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(dirty)*2)
	paths := make([]Path, 0, len(dirty)*2)
	for _, p := range dirty {
		for anc := p; ; anc, _ = anc.Parent() {
			k := string(nodeKey(anc))
			if !seen[k] {
				seen[k] = true
				paths = append(paths, NewPath(anc...))
			}
			if len(anc) == 0 {
				break
			}
		}
	}
	sort.Slice(paths, func(i, j int) bool {
		return len(paths[i]) > len(paths[j])
	})
	for _, p := range paths {
		if err := s.recomputeNodeHash(view, p); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) recomputeNodeHash(view *Transaction, path Path) error {
	node, err := s.loadNode(path, view)
	if errors.Is(err, storage.ErrNotFound) {
		// The subtree was deleted within the same batch.
		return nil
	}
	if err != nil {
		return err
	}
	var folded []byte
	for _, key := range node.Children {
		el, err := s.getRaw(path, key, view)
		if err != nil {
			return err
		}
		var digest []byte
		switch el.Kind {
		case KindItem:
			digest = itemDigest(el.Value)
		case KindReference:
			digest = referenceDigest(el)
		case KindTree:
			child, err := s.loadNode(path.Child(key), view)
			if err != nil {
				if errors.Is(err, storage.ErrNotFound) {
					return fmt.Errorf("store: tree %x without node record: %w", path.Child(key), ErrCorrupted)
				}
				return err
			}
			digest = child.Hash
		}
		folded = foldEntry(folded, key, el.Kind, digest)
	}
	node.Hash = treeHash(folded)
	return s.saveNode(view, path, node)
}
