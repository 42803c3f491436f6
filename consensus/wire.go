package consensus

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// Wire encoding is canonical CBOR: deterministic on the way out, strict
// on the way in.
var encMode = func() cbor.EncMode {
	mode, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	return mode
}()

var decMode = func() cbor.DecMode {
	mode, err := cbor.DecOptions{
		DupMapKey:   cbor.DupMapKeyEnforcedAPF,
		IndefLength: cbor.IndefLengthForbidden,
	}.DecMode()
	if err != nil {
		panic(err)
	}
	return mode
}()

// Marshal encodes a wire message with the canonical deterministic
// encoding.
func Marshal(v any) ([]byte, error) {
	raw, err := encMode.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("consensus: encode %T: %w", v, err)
	}
	return raw, nil
}

// Unmarshal decodes a wire message, rejecting duplicate map keys and
// indefinite-length items.
func Unmarshal(data []byte, v any) error {
	if err := decMode.Unmarshal(data, v); err != nil {
		return fmt.Errorf("consensus: decode %T: %w", v, err)
	}
	return nil
}
