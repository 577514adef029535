package federation

import "github.com/GeoDB-Limited/geodb-federation-fabric-prototype/util"

var (
	AlreadyMemberError     = util.NewError("already member")
	NotMemberError         = util.NewError("not member")
	InsufficientStakeError = util.NewError("insufficient stake")
	LastMemberError        = util.NewError("last member")
	ZeroValueError         = util.NewError("zero value")
	EscrowedError          = util.NewError("stake is escrowed")
)
