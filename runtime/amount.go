package runtime

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// ParseAmount validates a decimal string of the smallest asset unit
// and returns it as a big integer. Fractions and negative values are
// rejected at the boundary so nothing downstream ever sees them.
func ParseAmount(s string) (*big.Int, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %v", s, err)
	}
	if !d.IsInteger() || d.IsNegative() {
		return nil, fmt.Errorf("invalid amount %q", s)
	}
	return d.BigInt(), nil
}
