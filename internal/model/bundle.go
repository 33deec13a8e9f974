package model

import "math/big"

// Bundle is a purchasable ticket block with an exact price. Larger bundles
// carry volume discounts; the attached value must match the price exactly.
type Bundle struct {
	Tickets uint64
	Price   *big.Int
}

func milliEther(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(1e15))
}

// DefaultBundles is the published bundle table: 1, 5, 10 and 25 tickets.
func DefaultBundles() []Bundle {
	return []Bundle{
		{Tickets: 1, Price: milliEther(10)},   // 0.010 ether
		{Tickets: 5, Price: milliEther(45)},   // 0.045 ether
		{Tickets: 10, Price: milliEther(80)},  // 0.080 ether
		{Tickets: 25, Price: milliEther(175)}, // 0.175 ether
	}
}

// FindBundle returns the bundle with the given ticket count, if published.
func FindBundle(bundles []Bundle, tickets uint64) (Bundle, bool) {
	for _, b := range bundles {
		if b.Tickets == tickets {
			return b, true
		}
	}
	return Bundle{}, false
}
