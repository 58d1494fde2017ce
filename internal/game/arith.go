package game

import "math"

func addAmount(a, b int64) (int64, error) {
	if b < 0 || a < 0 {
		return 0, ErrAmountOverflow
	}
	if a > math.MaxInt64-b {
		return 0, ErrAmountOverflow
	}
	return a + b, nil
}

func mulAmount(a, b int64) (int64, error) {
	if a < 0 || b < 0 {
		return 0, ErrAmountOverflow
	}
	if a != 0 && b > math.MaxInt64/a {
		return 0, ErrAmountOverflow
	}
	return a * b, nil
}

// bps returns amount*bps/10000 without overflowing the intermediate product.
func bps(amount, basisPoints int64) (int64, error) {
	if basisPoints < 0 || basisPoints > 10000 {
		return 0, ErrAmountOverflow
	}
	whole := amount / 10000
	rem := amount % 10000
	a, err := mulAmount(whole, basisPoints)
	if err != nil {
		return 0, err
	}
	return addAmount(a, rem*basisPoints/10000)
}
