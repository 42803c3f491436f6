package drive

import "errors"

// ErrUnexpectedWidth is returned when a persisted scalar does not decode
// to its fixed width. It indicates corruption, never a recoverable
// condition.
var ErrUnexpectedWidth = errors.New("drive: unexpected value width")
