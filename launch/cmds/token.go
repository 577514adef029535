package cmds

import (
	"github.com/pkg/errors"

	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/base"
)

type TokenCommand struct {
	Balance  TokenBalanceCommand  `cmd:"" help:"show balance"`
	Mint     TokenMintCommand     `cmd:"" help:"mint tokens"`
	Transfer TokenTransferCommand `cmd:"" help:"transfer tokens"`
}

type TokenBalanceCommand struct {
	Address AddressFlag `arg:"" name:"address" help:"account address"`
}

func (cmd *TokenBalanceCommand) Run(rt *Runtime) error {
	nd, err := rt.Node()
	if err != nil {
		return err
	}

	balance, err := nd.Ledger().BalanceOf(cmd.Address.Address())
	if err != nil {
		return err
	}

	supply, err := nd.Ledger().TotalSupply()
	if err != nil {
		return err
	}

	return rt.Print(struct {
		Address base.Address `json:"address"`
		Balance base.Amount  `json:"balance"`
		Supply  base.Amount  `json:"total_supply"`
	}{
		Address: cmd.Address.Address(),
		Balance: balance,
		Supply:  supply,
	})
}

type TokenMintCommand struct {
	To       AddressFlag `arg:"" name:"to" help:"receiver address"`
	Amount   AmountFlag  `arg:"" name:"amount" help:"amount to mint"`
	Operator AddressFlag `name:"operator" help:"operator address" required:""`
}

func (cmd *TokenMintCommand) Run(rt *Runtime) error {
	nd, err := rt.Node()
	if err != nil {
		return err
	}

	if err := nd.Ledger().Mint(cmd.Operator.Address(), cmd.To.Address(), cmd.Amount.Amount()); err != nil {
		return errors.Wrap(err, "failed to mint")
	}

	return (&TokenBalanceCommand{Address: cmd.To}).Run(rt)
}

type TokenTransferCommand struct {
	From   AddressFlag `arg:"" name:"from" help:"sender address"`
	To     AddressFlag `arg:"" name:"to" help:"receiver address"`
	Amount AmountFlag  `arg:"" name:"amount" help:"amount to transfer"`
}

func (cmd *TokenTransferCommand) Run(rt *Runtime) error {
	nd, err := rt.Node()
	if err != nil {
		return err
	}

	if err := nd.Ledger().Transfer(
		cmd.From.Address(), cmd.From.Address(), cmd.To.Address(), cmd.Amount.Amount(), nil,
	); err != nil {
		return errors.Wrap(err, "failed to transfer")
	}

	return (&TokenBalanceCommand{Address: cmd.To}).Run(rt)
}
