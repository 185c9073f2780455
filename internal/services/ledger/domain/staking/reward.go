package staking

import (
	"math"

	"github.com/holiman/uint256"
)

const (
	bpsDenominator = 10_000
	// rateScale divides the per-day basis point rate once more so a rate of
	// 500 bps accrues 0.05% of principal per day.
	rateScale = 100
)

// Reward computes floor(amount*rateBps*elapsedDays/10000/100). The product is
// formed in 256 bits; ok is false when the result does not fit in uint64.
func Reward(amount, rateBps, elapsedDays uint64) (reward uint64, ok bool) {
	product := new(uint256.Int).Mul(uint256.NewInt(amount), uint256.NewInt(rateBps))
	product.Mul(product, uint256.NewInt(elapsedDays))
	product.Div(product, uint256.NewInt(bpsDenominator))
	product.Div(product, uint256.NewInt(rateScale))
	if !product.IsUint64() {
		return math.MaxUint64, false
	}
	return product.Uint64(), true
}
