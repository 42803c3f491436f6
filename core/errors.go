package core

import "errors"

var (
	// ErrMissingRequiredKey marks state the block execution needs but
	// could not find, such as the genesis time past the first block.
	ErrMissingRequiredKey = errors.New("core: missing required key")
	// ErrNoBlockContext is returned when fees arrive without a block in
	// progress.
	ErrNoBlockContext = errors.New("core: no block in progress")
	// ErrInvalidBlock marks block info that fails header validation.
	ErrInvalidBlock = errors.New("core: invalid block info")
)
