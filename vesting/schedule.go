package vesting

import (
	"time"

	"github.com/pkg/errors"

	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/base"
	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/util/isvalid"
)

// FundingMode decides how tokens get locked. Pull lockups are funded first
// and then locked once by Lock; push lockups lock every incoming transfer.
type FundingMode string

const (
	PullFunding FundingMode = "pull"
	PushFunding FundingMode = "push"
)

func (m FundingMode) IsValid([]byte) error {
	switch m {
	case PullFunding, PushFunding:
		return nil
	default:
		return isvalid.InvalidError.Errorf("unknown funding mode, %q", m)
	}
}

func (m FundingMode) String() string {
	return string(m)
}

// Schedule is the state of one lockup.
type Schedule struct {
	ID           string        `json:"id"`
	Beneficiary  base.Address  `json:"beneficiary"`
	Operator     base.Address  `json:"operator,omitempty"`
	Deployer     base.Address  `json:"deployer"`
	Token        string        `json:"token"`
	Holder       base.Address  `json:"holder"`
	DeliveryTime time.Time     `json:"delivery_time"`
	LockDuration time.Duration `json:"lock_duration"`
	Mode         FundingMode   `json:"mode"`
	Locked       base.Amount   `json:"locked"`
	Withdrawn    base.Amount   `json:"withdrawn"`
}

func (s Schedule) IsValid([]byte) error {
	if len(s.ID) < 1 {
		return isvalid.InvalidError.Errorf("empty lockup id")
	}

	if err := isvalid.Check(nil, false,
		s.Beneficiary,
		s.Deployer,
		s.Holder,
		s.Mode,
		s.Locked,
		s.Withdrawn,
	); err != nil {
		return errors.Wrap(err, "invalid schedule")
	}

	if !s.Operator.IsEmpty() {
		if err := s.Operator.IsValid(nil); err != nil {
			return errors.Wrap(err, "invalid operator")
		}
	}

	if s.Holder.Equal(s.Beneficiary) {
		return isvalid.InvalidError.Errorf("holder is same with beneficiary, %q", s.Holder)
	}

	if err := checkDuration(s.LockDuration); err != nil {
		return err
	}

	if s.Withdrawn.Cmp(s.Locked) > 0 {
		return isvalid.InvalidError.Errorf("withdrawn, %s over locked, %s", s.Withdrawn, s.Locked)
	}

	return nil
}

// IsInert is true when everything locked was withdrawn.
func (s Schedule) IsInert() bool {
	return !s.Locked.IsZero() && s.Withdrawn.Equal(s.Locked)
}

// Allowance returns ComputeAllowance of the schedule at now.
func (s Schedule) Allowance(now time.Time) (base.Amount, error) {
	return ComputeAllowance(s.Locked, s.DeliveryTime, s.LockDuration, now)
}

func (s Schedule) isBeneficiaryOrOperator(a base.Address) bool {
	if a.Equal(s.Beneficiary) {
		return true
	}

	return !s.Operator.IsEmpty() && a.Equal(s.Operator)
}

// ScheduleStore persists schedules.
type ScheduleStore interface {
	SaveSchedule(Schedule) error
}
