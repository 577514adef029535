package cmds

import (
	"time"

	"github.com/pkg/errors"

	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/base"
	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/vesting"
)

type LockupCommand struct {
	Status  LockupStatusCommand  `cmd:"" help:"show lockup"`
	Lock    LockupLockCommand    `cmd:"" help:"lock the balance of holder"`
	Unlock  LockupUnlockCommand  `cmd:"" help:"withdraw vested tokens"`
	Reclaim LockupReclaimCommand `cmd:"" help:"reclaim the tokens of unlocked lockup"`
}

type lockupStatus struct {
	vesting.Schedule
	Allowance base.Amount `json:"allowance"`
	Ratio     string      `json:"ratio"`
	Balance   base.Amount `json:"balance"`
	Now       time.Time   `json:"now"`
}

func loadLockup(rt *Runtime, id string) (*vesting.Lockup, error) {
	nd, err := rt.Node()
	if err != nil {
		return nil, err
	}

	return nd.Lockup(id)
}

func printLockup(rt *Runtime, l *vesting.Lockup) error {
	nd, err := rt.Node()
	if err != nil {
		return err
	}

	now := nd.Clock().Now()
	s := l.Schedule()

	allowance, err := s.Allowance(now)
	if err != nil {
		return err
	}

	ratio, err := vesting.AllowanceRatio(s.DeliveryTime, s.LockDuration, now)
	if err != nil {
		return err
	}

	balance, err := nd.Ledger().BalanceOf(s.Holder)
	if err != nil {
		return err
	}

	return rt.Print(lockupStatus{
		Schedule:  s,
		Allowance: allowance,
		Ratio:     ratio.String(),
		Balance:   balance,
		Now:       now,
	})
}

type LockupStatusCommand struct {
	ID string `arg:"" name:"lockup" help:"lockup id"`
}

func (cmd *LockupStatusCommand) Run(rt *Runtime) error {
	l, err := loadLockup(rt, cmd.ID)
	if err != nil {
		return err
	}

	return printLockup(rt, l)
}

type LockupLockCommand struct {
	ID     string      `arg:"" name:"lockup" help:"lockup id"`
	Caller AddressFlag `name:"caller" help:"caller address" required:""`
}

func (cmd *LockupLockCommand) Run(rt *Runtime) error {
	l, err := loadLockup(rt, cmd.ID)
	if err != nil {
		return err
	}

	if err := l.Lock(cmd.Caller.Address()); err != nil {
		return errors.Wrap(err, "failed to lock")
	}

	rt.Log().Info().Str("lockup", cmd.ID).Str("locked", l.Locked().String()).Msg("locked")

	return printLockup(rt, l)
}

type LockupUnlockCommand struct {
	ID     string      `arg:"" name:"lockup" help:"lockup id"`
	Amount AmountFlag  `arg:"" name:"amount" help:"amount to withdraw"`
	Caller AddressFlag `name:"caller" help:"caller address" required:""`
}

func (cmd *LockupUnlockCommand) Run(rt *Runtime) error {
	l, err := loadLockup(rt, cmd.ID)
	if err != nil {
		return err
	}

	if err := l.Unlock(cmd.Caller.Address(), cmd.Amount.Amount()); err != nil {
		return errors.Wrap(err, "failed to unlock")
	}

	rt.Log().Info().Str("lockup", cmd.ID).Str("amount", cmd.Amount.String()).Msg("unlocked")

	return printLockup(rt, l)
}

type LockupReclaimCommand struct {
	ID     string      `arg:"" name:"lockup" help:"lockup id"`
	Caller AddressFlag `name:"caller" help:"caller address" required:""`
	To     AddressFlag `name:"to" help:"receiver of the reclaimed tokens" required:""`
}

func (cmd *LockupReclaimCommand) Run(rt *Runtime) error {
	l, err := loadLockup(rt, cmd.ID)
	if err != nil {
		return err
	}

	amount, err := l.Reclaim(cmd.Caller.Address(), cmd.To.Address())
	if err != nil {
		return errors.Wrap(err, "failed to reclaim")
	}

	return rt.Print(struct {
		Lockup    string       `json:"lockup"`
		To        base.Address `json:"to"`
		Reclaimed base.Amount  `json:"reclaimed"`
	}{
		Lockup:    cmd.ID,
		To:        cmd.To.Address(),
		Reclaimed: amount,
	})
}
