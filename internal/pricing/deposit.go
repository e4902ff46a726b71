package pricing

import "fmt"

// Down-payment policy window. The calculator itself accepts any percentage
// in [0, 100]; checkout enforces the business minimum so the pure function
// stays decoupled from policy.
const (
	DepositMinPercent = 30
	DepositMaxPercent = 90
)

// DepositSplit is the down-payment / remaining-payment split of an order total.
type DepositSplit struct {
	Amount    Money `json:"amount"`
	Remaining Money `json:"remaining"`
}

// SplitDeposit splits a total into a down payment and the remainder.
// Amount is rounded to the nearest Rupiah; Amount + Remaining always
// equals the total. A zero total yields a zero split.
func SplitDeposit(total Money, percentage float64) (DepositSplit, error) {
	if total < 0 {
		return DepositSplit{}, fmt.Errorf("total must not be negative: %w", ErrInvalidInput)
	}
	if percentage < 0 || percentage > 100 {
		return DepositSplit{}, fmt.Errorf("percentage must be within [0, 100]: %w", ErrInvalidInput)
	}
	amount := roundPercent(total, percentage)
	return DepositSplit{Amount: amount, Remaining: total - amount}, nil
}
