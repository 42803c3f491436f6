package fees

import (
	"fmt"
	"math"
)

// CheckedAdd returns a+b, or ErrOverflow when the sum would wrap.
func CheckedAdd(a, b uint64) (uint64, error) {
	if a > math.MaxUint64-b {
		return 0, fmt.Errorf("fees: add %d and %d: %w", a, b, ErrOverflow)
	}
	return a + b, nil
}
