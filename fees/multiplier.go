package fees

import "fmt"

// A fee multiplier is persisted as one unsigned byte in [0, 125] and
// decodes through a piecewise-linear table with a minimum step of 0.2
// and a maximum value of 20000. Multiplier values are carried in tenths
// so the table stays in integers.

// DefaultMultiplierByte encodes a multiplier of 1.0.
const DefaultMultiplierByte byte = 4

// maxMultiplierByte is the last byte the table encodes; 126 and 127 are
// reserved and the high bit is never valid.
const maxMultiplierByte = 125

var multiplierTenths = buildMultiplierTable()

func buildMultiplierTable() [maxMultiplierByte + 1]uint64 {
	var table [maxMultiplierByte + 1]uint64
	for b := 0; b <= maxMultiplierByte; b++ {
		switch {
		case b <= 9: // 0.2 .. 2.0, step 0.2
			table[b] = uint64(2 + 2*b)
		case b <= 29: // 2.0 .. 9.6, step 0.4
			table[b] = uint64(20 + 4*(b-10))
		case b <= 59: // 10 .. 39, step 1
			table[b] = uint64(100 + 10*(b-30))
		case b <= 79: // 40 .. 192, step 8
			table[b] = uint64(400 + 80*(b-60))
		case b <= 99: // 200 .. 960, step 40
			table[b] = uint64(2000 + 400*(b-80))
		case b <= 114: // 1000 .. 3800, step 200
			table[b] = uint64(10000 + 2000*(b-100))
		case b <= 120: // 4000 .. 9000, step 1000
			table[b] = uint64(40000 + 10000*(b-115))
		default: // 12000 .. 20000, step 2000
			table[b] = uint64(100000 + 20000*(b-120))
		}
	}
	return table
}

// MultiplierTenths decodes the multiplier byte b into tenths, so a
// result of 10 means a 1.0 multiplier.
func MultiplierTenths(b byte) (uint64, error) {
	if b&0x80 != 0 {
		return 0, fmt.Errorf("fees: multiplier byte 0x%02x has the high bit set: %w", b, ErrMultiplierNotSupported)
	}
	if b > maxMultiplierByte {
		return 0, fmt.Errorf("fees: multiplier byte 0x%02x is reserved: %w", b, ErrMultiplierNotSupported)
	}
	return multiplierTenths[b], nil
}

// ValidMultiplierByte reports whether b decodes to a multiplier.
func ValidMultiplierByte(b byte) bool {
	_, err := MultiplierTenths(b)
	return err == nil
}

// ByteForPrice picks the byte encoding the largest multiplier not above
// the target implied by a block cost of price whole dollars, at fifty
// dollars per 1.0 of multiplier. Prices outside the table clamp to its
// first and last byte.
func ByteForPrice(price uint64) byte {
	targetTenths := price / 5
	for b := maxMultiplierByte; b > 0; b-- {
		if multiplierTenths[b] <= targetTenths {
			return byte(b)
		}
	}
	return 0
}
