package store

// OpType names the mutation an Op performs.
type OpType uint8

const (
	// OpInsert writes a new element and fails when the key is occupied.
	OpInsert OpType = iota
	// OpReplace writes an element unconditionally.
	OpReplace
	// OpDelete removes an element and fails when the key is absent.
	OpDelete
)

func (t OpType) String() string {
	switch t {
	case OpInsert:
		return "insert"
	case OpReplace:
		return "replace"
	case OpDelete:
		return "delete"
	default:
		return "op(?)"
	}
}

// Op is a single mutation against the element under Key in the tree at
// Path.
type Op struct {
	Type    OpType
	Path    Path
	Key     []byte
	Element Element
}

// Batch accumulates ops for one atomic application. Ops are applied in
// the order they were added, so a subtree may be created and filled
// within the same batch.
type Batch struct {
	ops []Op
}

// NewBatch returns an empty batch.
func NewBatch() *Batch {
	return &Batch{}
}

// Insert queues a strict insert of element under key at path.
func (b *Batch) Insert(path Path, key []byte, element Element) {
	b.ops = append(b.ops, Op{Type: OpInsert, Path: path, Key: append([]byte(nil), key...), Element: element})
}

// Replace queues an unconditional write of element under key at path.
func (b *Batch) Replace(path Path, key []byte, element Element) {
	b.ops = append(b.ops, Op{Type: OpReplace, Path: path, Key: append([]byte(nil), key...), Element: element})
}

// Delete queues a strict delete of the element under key at path.
func (b *Batch) Delete(path Path, key []byte) {
	b.ops = append(b.ops, Op{Type: OpDelete, Path: path, Key: append([]byte(nil), key...)})
}

// Append moves every op of other onto b, preserving order.
func (b *Batch) Append(other *Batch) {
	if other == nil {
		return
	}
	b.ops = append(b.ops, other.ops...)
}

// Len reports the number of queued ops.
func (b *Batch) Len() int {
	return len(b.ops)
}

// Empty reports whether the batch holds no ops.
func (b *Batch) Empty() bool {
	return len(b.ops) == 0
}

// Ops returns the queued ops in application order.
func (b *Batch) Ops() []Op {
	return b.ops
}
