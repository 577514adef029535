package base

import "github.com/GeoDB-Limited/geodb-federation-fabric-prototype/util"

// Error categories. Operation errors are wrapped by one of them, so both
// errors.Is(err, PreconditionError) and errors.Is(err, <exact error>) hold.
var (
	PreconditionError      = util.NewError("precondition violation")
	AuthorizationError     = util.NewError("authorization violation")
	AllowanceExceededError = util.NewError("allowance exceeded")
	BallotStateError       = util.NewError("ballot state violation")
	ArithmeticError        = util.NewError("arithmetic violation")
)

var (
	UnderflowError      = util.NewError("underflow")
	DivisionByZeroError = util.NewError("division by zero")
)
