package store

import (
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"
)

// Kind discriminates the element variants a tree entry can hold.
type Kind uint8

const (
	// KindItem is an opaque byte payload.
	KindItem Kind = iota
	// KindReference points at an element somewhere else in the store and
	// resolves to it on reads.
	KindReference
	// KindTree is a nested subtree.
	KindTree
)

func (k Kind) String() string {
	switch k {
	case KindItem:
		return "item"
	case KindReference:
		return "reference"
	case KindTree:
		return "tree"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Element is a single tree entry: an item, a reference or a subtree.
type Element struct {
	Kind    Kind
	Value   []byte
	RefPath Path
	RefKey  []byte
}

// NewItem returns an item element holding value.
func NewItem(value []byte) Element {
	return Element{Kind: KindItem, Value: append([]byte(nil), value...)}
}

// NewTree returns an empty subtree element.
func NewTree() Element {
	return Element{Kind: KindTree}
}

// NewReference returns a reference to the element under key at path.
func NewReference(path Path, key []byte) Element {
	return Element{
		Kind:    KindReference,
		RefPath: NewPath(path...),
		RefKey:  append([]byte(nil), key...),
	}
}

// Item returns the element's payload, or ErrTypeMismatch when the element
// is not an item.
func (e Element) Item() ([]byte, error) {
	if e.Kind != KindItem {
		return nil, fmt.Errorf("store: want item, have %s: %w", e.Kind, ErrTypeMismatch)
	}
	return e.Value, nil
}

type storedElement struct {
	Kind    uint8
	Value   []byte
	RefPath [][]byte
	RefKey  []byte
}

func encodeElement(e Element) ([]byte, error) {
	return rlp.EncodeToBytes(&storedElement{
		Kind:    uint8(e.Kind),
		Value:   e.Value,
		RefPath: e.RefPath,
		RefKey:  e.RefKey,
	})
}

func decodeElement(raw []byte) (Element, error) {
	var stored storedElement
	if err := rlp.DecodeBytes(raw, &stored); err != nil {
		return Element{}, fmt.Errorf("store: decode element: %w", ErrCorrupted)
	}
	if Kind(stored.Kind) > KindTree {
		return Element{}, fmt.Errorf("store: element kind %d: %w", stored.Kind, ErrCorrupted)
	}
	return Element{
		Kind:    Kind(stored.Kind),
		Value:   stored.Value,
		RefPath: stored.RefPath,
		RefKey:  stored.RefKey,
	}, nil
}
