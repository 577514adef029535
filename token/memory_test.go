package token

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/suite"

	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/base"
)

type testMemLedger struct {
	suite.Suite
	ledger *MemLedger
}

func (t *testMemLedger) SetupTest() {
	t.ledger = NewMemLedger()
}

func (t *testMemLedger) balance(a base.Address) base.Amount {
	b, err := t.ledger.BalanceOf(a)
	t.NoError(err)

	return b
}

func (t *testMemLedger) TestMintAndTransfer() {
	t.NoError(t.ledger.Mint("minter", "showme", base.NewAmount(100)))
	t.NoError(t.ledger.Transfer("showme", "showme", "findme", base.NewAmount(40), nil))

	t.True(t.balance("showme").Equal(base.NewAmount(60)))
	t.True(t.balance("findme").Equal(base.NewAmount(40)))
	t.True(t.ledger.TotalSupply().Equal(base.NewAmount(100)))
}

func (t *testMemLedger) TestInsufficientBalance() {
	t.NoError(t.ledger.Mint("minter", "showme", base.NewAmount(10)))

	err := t.ledger.Transfer("showme", "showme", "findme", base.NewAmount(11), nil)
	t.True(errors.Is(err, base.PreconditionError))
	t.True(errors.Is(err, InsufficientBalanceError))

	t.True(t.balance("showme").Equal(base.NewAmount(10)))
	t.True(t.balance("findme").IsZero())
}

func (t *testMemLedger) TestInvalidTransfer() {
	err := t.ledger.Transfer("showme", "showme", "showme", base.NewAmount(1), nil)
	t.True(errors.Is(err, InvalidAmountError))

	err = t.ledger.Transfer("showme", "showme", "findme", base.ZeroAmount, nil)
	t.True(errors.Is(err, InvalidAmountError))
}

func (t *testMemLedger) TestReceiver() {
	t.NoError(t.ledger.Mint("minter", "showme", base.NewAmount(10)))

	var receiving, received []base.Amount
	t.NoError(t.ledger.RegisterReceiver("findme", ReceiverFuncs{
		ReceivingFunc: func(_, _, _ base.Address, amount base.Amount, data []byte) error {
			if string(data) == "reject" {
				return errors.Errorf("rejected")
			}

			receiving = append(receiving, amount)

			return nil
		},
		ReceivedFunc: func(_, _, _ base.Address, amount base.Amount, _ []byte, err error) {
			t.NoError(err)

			received = append(received, amount)
		},
	}))

	t.NoError(t.ledger.Transfer("showme", "showme", "findme", base.NewAmount(3), nil))
	t.Equal(1, len(receiving))
	t.Equal(1, len(received))

	err := t.ledger.Transfer("showme", "showme", "findme", base.NewAmount(3), []byte("reject"))
	t.Contains(err.Error(), "rejected")
	t.Equal(1, len(receiving))
	t.Equal(1, len(received))

	// rejected transfer is reverted
	t.True(t.balance("showme").Equal(base.NewAmount(7)))
	t.True(t.balance("findme").Equal(base.NewAmount(3)))

	t.NoError(t.ledger.Mint("minter", "findme", base.NewAmount(5)))
	t.Equal(2, len(received))
	t.True(received[1].Equal(base.NewAmount(5)))

	err = t.ledger.RegisterReceiver("findme", ReceiverFuncs{})
	t.True(errors.Is(err, ReceiverExistsError))
}

func (t *testMemLedger) TestGuard() {
	t.NoError(t.ledger.Mint("minter", "showme", base.NewAmount(10)))

	vault := NewVault()
	t.NoError(t.ledger.RegisterGuard("showme", GuardFunc(
		func(operator, _, _ base.Address, _ base.Amount, data []byte) error {
			if vault.Admit(data) {
				return nil
			}

			return errors.Errorf("%q can not send", operator)
		},
	)))

	err := t.ledger.Transfer("killme", "showme", "killme", base.NewAmount(10), nil)
	t.Contains(err.Error(), "can not send")
	t.True(t.balance("showme").Equal(base.NewAmount(10)))
	t.True(t.balance("killme").IsZero())

	err = t.ledger.Transfer("killme", "showme", "killme", base.NewAmount(10), []byte("forged"))
	t.Contains(err.Error(), "can not send")

	key := vault.Key()
	t.NoError(t.ledger.Transfer("showme", "showme", "findme", base.NewAmount(4), key))
	t.True(t.balance("showme").Equal(base.NewAmount(6)))
	t.True(t.balance("findme").Equal(base.NewAmount(4)))

	// key is used once
	err = t.ledger.Transfer("killme", "showme", "killme", base.NewAmount(1), key)
	t.Contains(err.Error(), "can not send")
	t.Equal(0, vault.Len())

	// incoming transfers are not guarded
	t.NoError(t.ledger.Transfer("findme", "findme", "showme", base.NewAmount(4), nil))
	t.True(t.balance("showme").Equal(base.NewAmount(10)))

	err = t.ledger.RegisterGuard("showme", GuardFunc(nil))
	t.True(errors.Is(err, GuardExistsError))
}

func (t *testMemLedger) TestVault() {
	vault := NewVault()

	a := vault.Key()
	b := vault.Key()
	t.NotEqual(a, b)
	t.Equal(2, vault.Len())

	t.False(vault.Admit(nil))
	t.False(vault.Admit([]byte("findme")))

	vault.Revoke(a)
	t.False(vault.Admit(a))

	t.True(vault.Admit(b))
	t.False(vault.Admit(b))
	t.Equal(0, vault.Len())
}

func TestMemLedger(t *testing.T) {
	suite.Run(t, new(testMemLedger))
}
