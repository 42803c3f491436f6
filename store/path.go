package store

import "encoding/binary"

// Path addresses a subtree as the sequence of keys walked down from the
// root tree. The empty path is the root itself.
type Path [][]byte

// NewPath builds a path from the given segments.
func NewPath(segments ...[]byte) Path {
	p := make(Path, 0, len(segments))
	for _, seg := range segments {
		p = append(p, append([]byte(nil), seg...))
	}
	return p
}

// Child returns a new path descending into the subtree stored under key.
func (p Path) Child(key []byte) Path {
	child := make(Path, 0, len(p)+1)
	child = append(child, p...)
	return append(child, append([]byte(nil), key...))
}

// Parent returns the path with its last segment removed and that segment.
// Calling Parent on the root path returns the root path and a nil key.
func (p Path) Parent() (Path, []byte) {
	if len(p) == 0 {
		return p, nil
	}
	return p[:len(p)-1], p[len(p)-1]
}

// elementKey is the flat backing-store key of the element stored under
// key inside the tree at path. Segments are length-prefixed so distinct
// paths can never collide.
func elementKey(path Path, key []byte) []byte {
	buf := make([]byte, 0, 2+pathSize(path)+len(key))
	buf = append(buf, 'e')
	for _, seg := range path {
		buf = binary.AppendUvarint(buf, uint64(len(seg)))
		buf = append(buf, seg...)
	}
	buf = binary.AppendUvarint(buf, uint64(len(key)))
	return append(buf, key...)
}

// nodeKey is the flat backing-store key of the tree node record at path.
func nodeKey(path Path) []byte {
	buf := make([]byte, 0, 1+pathSize(path))
	buf = append(buf, 'n')
	for _, seg := range path {
		buf = binary.AppendUvarint(buf, uint64(len(seg)))
		buf = append(buf, seg...)
	}
	return buf
}

func pathSize(path Path) int {
	n := 0
	for _, seg := range path {
		n += len(seg) + binary.MaxVarintLen64
	}
	return n
}
