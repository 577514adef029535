package ballot

import "github.com/GeoDB-Limited/geodb-federation-fabric-prototype/util"

var (
	DeadlinePassedError        = util.NewError("deadline passed")
	AlreadyResolvedError       = util.NewError("already resolved")
	AlreadyVotedError          = util.NewError("already voted")
	InsufficientApprovalsError = util.NewError("insufficient approvals")
	BallotNotFoundError        = util.NewError("ballot not found")
	BallotOpenedError          = util.NewError("ballot already opened")
	InvalidResultError         = util.NewError("invalid result")
)
