package vesting

import (
	"math/big"
	"time"

	"github.com/shopspring/decimal"

	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/base"
)

// ComputeAllowance returns the cumulative amount which may have been
// withdrawn at now. Vesting is linear; the allowance is 0 until delivery and
// reaches locked exactly at delivery+duration. The division is floored and
// done once, after the full precision product.
func ComputeAllowance(locked base.Amount, delivery time.Time, duration time.Duration, now time.Time) (base.Amount, error) {
	elapsed, err := elapsedOf(delivery, duration, now)
	if err != nil {
		return base.Amount{}, err
	}

	switch {
	case locked.IsZero(), elapsed <= 0:
		return base.ZeroAmount, nil
	case elapsed >= duration:
		return locked, nil
	default:
		return locked.MulDiv(big.NewInt(int64(elapsed)), big.NewInt(int64(duration)))
	}
}

// ComputeAllowanceUnbounded is ComputeAllowance, but once fully vested it
// returns base.MaxAmount, which releases whatever the holder has.
func ComputeAllowanceUnbounded(locked base.Amount, delivery time.Time, duration time.Duration, now time.Time) (base.Amount, error) {
	elapsed, err := elapsedOf(delivery, duration, now)
	if err != nil {
		return base.Amount{}, err
	}

	if !locked.IsZero() && elapsed >= duration {
		return base.MaxAmount, nil
	}

	return ComputeAllowance(locked, delivery, duration, now)
}

// AllowanceRatio returns the vested fraction in [0, 1].
func AllowanceRatio(delivery time.Time, duration time.Duration, now time.Time) (decimal.Decimal, error) {
	elapsed, err := elapsedOf(delivery, duration, now)
	if err != nil {
		return decimal.Zero, err
	}

	switch {
	case elapsed <= 0:
		return decimal.Zero, nil
	case elapsed >= duration:
		return decimal.NewFromInt(1), nil
	default:
		return decimal.NewFromInt(int64(elapsed)).DivRound(decimal.NewFromInt(int64(duration)), 18), nil
	}
}

func elapsedOf(delivery time.Time, duration time.Duration, now time.Time) (time.Duration, error) {
	if err := checkDuration(duration); err != nil {
		return 0, err
	}

	if !now.After(delivery) {
		return 0, nil
	}

	return now.Sub(delivery), nil
}

func checkDuration(d time.Duration) error {
	if d <= 0 {
		return base.ArithmeticError.Wrap(InvalidLockDurationError.Errorf("lock duration should be positive, %v", d))
	}

	return nil
}
