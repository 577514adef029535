package token

import (
	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/base"
	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/util"
)

var (
	InsufficientBalanceError = util.NewError("insufficient balance")
	InvalidAmountError       = util.NewError("invalid amount")
	ReceiverExistsError      = util.NewError("receiver already registered")
	GuardExistsError         = util.NewError("guard already registered")
)

// Ledger is the fungible token ledger the lockups and the federation hold
// their tokens on. A Transfer either fully applies or not at all.
type Ledger interface {
	BalanceOf(base.Address) (base.Amount, error)
	// Transfer moves amount from one account to another. The Guard of the
	// sender is asked first and its error rejects the transfer. When the
	// recipient has registered Receiver, it is notified before and after the
	// transfer is written.
	Transfer(operator, from, to base.Address, amount base.Amount, data []byte) error
	Mint(operator, to base.Address, amount base.Amount) error
	RegisterReceiver(base.Address, Receiver) error
	RegisterGuard(base.Address, Guard) error
}

// Receiver gets notified of incoming transfers. Receiving is called before
// the transfer is written and its error rejects the transfer. Received is
// called after Receiving succeeded, with the error of writing the transfer;
// nil means the tokens arrived.
//
// Both are called while the ledger applies the transfer, so they must not
// call back into the ledger.
type Receiver interface {
	Receiving(operator, from, to base.Address, amount base.Amount, data []byte) error
	Received(operator, from, to base.Address, amount base.Amount, data []byte, err error)
}

// ReceiverFuncs is Receiver from functions; nil function is skipped.
type ReceiverFuncs struct {
	ReceivingFunc func(operator, from, to base.Address, amount base.Amount, data []byte) error
	ReceivedFunc  func(operator, from, to base.Address, amount base.Amount, data []byte, err error)
}

func (r ReceiverFuncs) Receiving(operator, from, to base.Address, amount base.Amount, data []byte) error {
	if r.ReceivingFunc == nil {
		return nil
	}

	return r.ReceivingFunc(operator, from, to, amount, data)
}

func (r ReceiverFuncs) Received(operator, from, to base.Address, amount base.Amount, data []byte, err error) {
	if r.ReceivedFunc != nil {
		r.ReceivedFunc(operator, from, to, amount, data, err)
	}
}

// Guard is asked before tokens leave the guarded account. Like Receiver, it
// must not call back into the ledger.
type Guard interface {
	Sending(operator, from, to base.Address, amount base.Amount, data []byte) error
}

type GuardFunc func(operator, from, to base.Address, amount base.Amount, data []byte) error

func (f GuardFunc) Sending(operator, from, to base.Address, amount base.Amount, data []byte) error {
	return f(operator, from, to, amount, data)
}

// CheckTransfer validates the arguments every Ledger checks before moving
// tokens.
func CheckTransfer(from, to base.Address, amount base.Amount) error {
	if err := from.IsValid(nil); err != nil {
		return base.PreconditionError.Wrap(err)
	}

	if err := to.IsValid(nil); err != nil {
		return base.PreconditionError.Wrap(err)
	}

	if from.Equal(to) {
		return base.PreconditionError.Wrap(InvalidAmountError.Errorf("same sender and recipient, %q", from))
	}

	if amount.IsZero() {
		return base.PreconditionError.Wrap(InvalidAmountError.Errorf("zero amount"))
	}

	return nil
}
