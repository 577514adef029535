package cmds

import (
	"github.com/pkg/errors"

	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/ballot"
	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/base"
	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/federation"
)

type FederationCommand struct {
	Status   FederationStatusCommand   `cmd:"" help:"show members and ballots"`
	Propose  FederationProposeCommand  `cmd:"" help:"open ballot"`
	Vote     FederationVoteCommand     `cmd:"" help:"approve ballot"`
	Resolve  FederationResolveCommand  `cmd:"" help:"resolve ballot"`
	AddStake FederationAddStakeCommand `cmd:"" name:"add-stake" help:"add stake of member"`
	Reward   FederationRewardCommand   `cmd:"" help:"release reward"`
}

type FederationProposeCommand struct {
	Join  FederationProposeJoinCommand  `cmd:"" help:"propose new member"`
	Exit  FederationProposeExitCommand  `cmd:"" help:"propose exit of member"`
	Stake FederationProposeStakeCommand `cmd:"" help:"propose new minimum stake"`
}

func loadFederation(rt *Runtime) (*federation.Federation, error) {
	nd, err := rt.Node()
	if err != nil {
		return nil, err
	}

	fd := nd.Federation()
	if fd == nil {
		return nil, errors.Errorf("federation not configured")
	}

	return fd, nil
}

func printBallot(rt *Runtime, fd *federation.Federation, ref string) error {
	b, err := fd.Ballot(ref)
	if err != nil {
		return err
	}

	return rt.Print(struct {
		Ref    string         `json:"ref"`
		Ballot *ballot.Ballot `json:"ballot"`
		Quorum string         `json:"quorum"`
	}{
		Ref:    ref,
		Ballot: b,
		Quorum: ballot.MajorityOf(fd.TotalStake()).String(),
	})
}

type FederationStatusCommand struct{}

func (*FederationStatusCommand) Run(rt *Runtime) error {
	fd, err := loadFederation(rt)
	if err != nil {
		return err
	}

	st := fd.State()

	return rt.Print(struct {
		federation.State
		Escrow     base.Address `json:"escrow"`
		TotalStake base.Amount  `json:"total_stake"`
	}{
		State:      st,
		Escrow:     fd.Escrow(),
		TotalStake: fd.TotalStake(),
	})
}

type FederationProposeJoinCommand struct {
	Candidate AddressFlag `arg:"" name:"candidate" help:"candidate address"`
	Stake     AmountFlag  `arg:"" name:"stake" help:"stake of candidate"`
}

func (cmd *FederationProposeJoinCommand) Run(rt *Runtime) error {
	fd, err := loadFederation(rt)
	if err != nil {
		return err
	}

	ref, err := fd.ProposeJoin(cmd.Candidate.Address(), cmd.Stake.Amount())
	if err != nil {
		return errors.Wrap(err, "failed to propose join")
	}

	return printBallot(rt, fd, ref)
}

type FederationProposeExitCommand struct {
	Member AddressFlag `arg:"" name:"member" help:"member address"`
}

func (cmd *FederationProposeExitCommand) Run(rt *Runtime) error {
	fd, err := loadFederation(rt)
	if err != nil {
		return err
	}

	ref, err := fd.ProposeExit(cmd.Member.Address())
	if err != nil {
		return errors.Wrap(err, "failed to propose exit")
	}

	return printBallot(rt, fd, ref)
}

type FederationProposeStakeCommand struct {
	Value  AmountFlag  `arg:"" name:"value" help:"new minimum stake"`
	Member AddressFlag `name:"member" help:"proposer address" required:""`
}

func (cmd *FederationProposeStakeCommand) Run(rt *Runtime) error {
	fd, err := loadFederation(rt)
	if err != nil {
		return err
	}

	index, err := fd.ProposeMinimumStake(cmd.Member.Address(), cmd.Value.Amount())
	if err != nil {
		return errors.Wrap(err, "failed to propose minimum stake")
	}

	return printBallot(rt, fd, ballot.IndexedRef(index))
}

type FederationVoteCommand struct {
	Ref   string      `arg:"" name:"ballot" help:"ballot reference, join:<address>, exit:<address> or stake:<index>"`
	Voter AddressFlag `name:"voter" help:"voter address" required:""`
}

func (cmd *FederationVoteCommand) Run(rt *Runtime) error {
	fd, err := loadFederation(rt)
	if err != nil {
		return err
	}

	if err := fd.Vote(cmd.Voter.Address(), cmd.Ref); err != nil {
		return errors.Wrap(err, "failed to vote")
	}

	return printBallot(rt, fd, cmd.Ref)
}

type FederationResolveCommand struct {
	Ref string `arg:"" name:"ballot" help:"ballot reference"`
}

func (cmd *FederationResolveCommand) Run(rt *Runtime) error {
	fd, err := loadFederation(rt)
	if err != nil {
		return err
	}

	r, err := fd.Resolve(cmd.Ref)
	if err != nil {
		return errors.Wrap(err, "failed to resolve")
	}

	rt.Log().Info().Str("ballot", cmd.Ref).Stringer("result", r).Msg("resolved")

	return printBallot(rt, fd, cmd.Ref)
}

type FederationAddStakeCommand struct {
	Member AddressFlag `arg:"" name:"member" help:"member address"`
	Amount AmountFlag  `arg:"" name:"amount" help:"amount to add"`
}

func (cmd *FederationAddStakeCommand) Run(rt *Runtime) error {
	fd, err := loadFederation(rt)
	if err != nil {
		return err
	}

	stake, err := fd.AddStake(cmd.Member.Address(), cmd.Amount.Amount())
	if err != nil {
		return errors.Wrap(err, "failed to add stake")
	}

	return rt.Print(map[string]string{
		"member": cmd.Member.String(),
		"stake":  stake.String(),
	})
}

type FederationRewardCommand struct {
	To     AddressFlag `arg:"" name:"to" help:"receiver address"`
	Amount AmountFlag  `arg:"" name:"amount" help:"reward amount"`
	Caller AddressFlag `name:"caller" help:"caller address" required:""`
}

func (cmd *FederationRewardCommand) Run(rt *Runtime) error {
	fd, err := loadFederation(rt)
	if err != nil {
		return err
	}

	if err := fd.ReleaseReward(cmd.Caller.Address(), cmd.To.Address(), cmd.Amount.Amount()); err != nil {
		return errors.Wrap(err, "failed to release reward")
	}

	return rt.Print(map[string]string{
		"caller": cmd.Caller.String(),
		"to":     cmd.To.String(),
		"amount": cmd.Amount.String(),
	})
}
