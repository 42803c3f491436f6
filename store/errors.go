package store

import "errors"

var (
	// ErrPathNotFound is returned when an intermediate tree on the
	// requested path does not exist.
	ErrPathNotFound = errors.New("store: path not found")
	// ErrPathKeyNotFound is returned when the path exists but the final
	// key holds no element.
	ErrPathKeyNotFound = errors.New("store: path key not found")
	// ErrAlreadyExists is returned by insert operations targeting an
	// occupied key.
	ErrAlreadyExists = errors.New("store: key already exists")
	// ErrTypeMismatch is returned when an element is not of the kind the
	// caller asked for.
	ErrTypeMismatch = errors.New("store: element type mismatch")
	// ErrCorrupted is returned when a stored record cannot be decoded.
	ErrCorrupted = errors.New("store: corrupted record")
	// ErrEmptyBatch is returned when an empty batch is applied.
	ErrEmptyBatch = errors.New("store: batch is empty")
	// ErrTransactionDone is returned when a finished transaction is used.
	ErrTransactionDone = errors.New("store: transaction already finished")
	// ErrReferenceLimit is returned when reference resolution exceeds the
	// hop limit.
	ErrReferenceLimit = errors.New("store: reference chain too deep")
)
