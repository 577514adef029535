package token

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/base"
	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/util/logging"
)

// MemLedger keeps balances in memory.
type MemLedger struct {
	sync.RWMutex
	*logging.Logging
	balances  map[base.Address]base.Amount
	receivers map[base.Address]Receiver
	guards    map[base.Address]Guard
	supply    base.Amount
}

func NewMemLedger() *MemLedger {
	return &MemLedger{
		Logging: logging.NewLogging(func(c zerolog.Context) zerolog.Context {
			return c.Str("module", "memory-ledger")
		}),
		balances:  map[base.Address]base.Amount{},
		receivers: map[base.Address]Receiver{},
		guards:    map[base.Address]Guard{},
		supply:    base.ZeroAmount,
	}
}

func (ml *MemLedger) BalanceOf(a base.Address) (base.Amount, error) {
	ml.RLock()
	defer ml.RUnlock()

	return ml.balance(a), nil
}

func (ml *MemLedger) TotalSupply() base.Amount {
	ml.RLock()
	defer ml.RUnlock()

	return ml.supply
}

func (ml *MemLedger) RegisterReceiver(a base.Address, r Receiver) error {
	ml.Lock()
	defer ml.Unlock()

	if _, found := ml.receivers[a]; found {
		return ReceiverExistsError.Errorf("address=%q", a)
	}

	ml.receivers[a] = r

	return nil
}

func (ml *MemLedger) RegisterGuard(a base.Address, g Guard) error {
	ml.Lock()
	defer ml.Unlock()

	if _, found := ml.guards[a]; found {
		return GuardExistsError.Errorf("address=%q", a)
	}

	ml.guards[a] = g

	return nil
}

func (ml *MemLedger) Transfer(operator, from, to base.Address, amount base.Amount, data []byte) error {
	if err := CheckTransfer(from, to, amount); err != nil {
		return err
	}

	ml.Lock()
	defer ml.Unlock()

	fb := ml.balance(from)

	nfb, err := fb.Sub(amount)
	if err != nil {
		return base.PreconditionError.Wrap(
			InsufficientBalanceError.Errorf("address=%q balance=%s amount=%s", from, fb, amount))
	}

	if g, found := ml.guards[from]; found {
		if err := g.Sending(operator, from, to, amount, data); err != nil {
			return err
		}
	}

	r, found := ml.receivers[to]
	if found {
		if err := r.Receiving(operator, from, to, amount, data); err != nil {
			return err
		}
	}

	ml.balances[from] = nfb
	ml.balances[to] = ml.balance(to).Add(amount)

	if found {
		r.Received(operator, from, to, amount, data, nil)
	}

	ml.Log().Trace().
		Str("from", from.String()).Str("to", to.String()).Str("amount", amount.String()).
		Msg("transferred")

	return nil
}

func (ml *MemLedger) Mint(operator, to base.Address, amount base.Amount) error {
	if err := to.IsValid(nil); err != nil {
		return base.PreconditionError.Wrap(err)
	}

	if amount.IsZero() {
		return base.PreconditionError.Wrap(InvalidAmountError.Errorf("zero amount"))
	}

	ml.Lock()
	defer ml.Unlock()

	r, found := ml.receivers[to]
	if found {
		if err := r.Receiving(operator, "", to, amount, nil); err != nil {
			return err
		}
	}

	ml.balances[to] = ml.balance(to).Add(amount)
	ml.supply = ml.supply.Add(amount)

	if found {
		r.Received(operator, "", to, amount, nil, nil)
	}

	return nil
}

func (ml *MemLedger) balance(a base.Address) base.Amount {
	if b, found := ml.balances[a]; found {
		return b
	}

	return base.ZeroAmount
}
