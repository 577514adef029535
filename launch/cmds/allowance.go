package cmds

import (
	"time"

	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/base"
	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/util/localtime"
	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/vesting"
)

type AllowanceCommand struct {
	Locked    AmountFlag    `arg:"" name:"locked" help:"locked amount"`
	Delivery  TimeFlag      `name:"delivery" help:"delivery time, RFC3339" required:""`
	Duration  time.Duration `name:"duration" help:"lock duration" required:""`
	Now       TimeFlag      `name:"now" help:"time to calculate at, RFC3339 (default: now)" default:"now"`
	Unbounded bool          `name:"unbounded" help:"no limit once fully vested"`
}

func (cmd *AllowanceCommand) Run(rt *Runtime) error {
	now := cmd.Now.Time(localtime.UTCNow())
	delivery := cmd.Delivery.Time(now)

	f := vesting.ComputeAllowance
	if cmd.Unbounded {
		f = vesting.ComputeAllowanceUnbounded
	}

	allowance, err := f(cmd.Locked.Amount(), delivery, cmd.Duration, now)
	if err != nil {
		return err
	}

	ratio, err := vesting.AllowanceRatio(delivery, cmd.Duration, now)
	if err != nil {
		return err
	}

	return rt.Print(struct {
		Locked    base.Amount `json:"locked"`
		Allowance base.Amount `json:"allowance"`
		Ratio     string      `json:"ratio"`
		Delivery  time.Time   `json:"delivery"`
		Now       time.Time   `json:"now"`
	}{
		Locked:    cmd.Locked.Amount(),
		Allowance: allowance,
		Ratio:     ratio.String(),
		Delivery:  delivery,
		Now:       now,
	})
}
