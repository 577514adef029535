package vesting

import "github.com/GeoDB-Limited/geodb-federation-fabric-prototype/util"

var (
	InvalidLockDurationError = util.NewError("invalid lock duration")
	UseUnlockError           = util.NewError("use unlock")
	AlreadyLockedError       = util.NewError("already locked")
	NothingLockedError       = util.NewError("nothing locked")
	ZeroBalanceError         = util.NewError("zero balance")
	ZeroAmountError          = util.NewError("zero amount")
	FundingModeError         = util.NewError("wrong funding mode")
	ReclaimError             = util.NewError("reclaim not allowed")
)
