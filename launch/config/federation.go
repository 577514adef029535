package config

import (
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/base"
	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/federation"
	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/util/isvalid"
)

var DefaultFederationID = "federation"

type Federation struct {
	id           string
	escrow       base.Address
	minimumStake base.Amount
	votingWindow time.Duration
	genesis      []federation.Member
}

func (no Federation) ID() string {
	return no.id
}

func (no *Federation) SetID(s string) error {
	no.id = strings.TrimSpace(s)

	return nil
}

func (no Federation) Escrow() base.Address {
	return no.escrow
}

func (no *Federation) SetEscrow(s string) error {
	a, err := base.NewAddress(s)
	if err != nil {
		return errors.Wrap(err, "invalid escrow")
	}

	no.escrow = a

	return nil
}

func (no Federation) MinimumStake() base.Amount {
	return no.minimumStake
}

func (no *Federation) SetMinimumStake(s string) error {
	a, err := base.ParseAmount(s)
	if err != nil {
		return errors.Wrap(err, "invalid minimum stake")
	}

	no.minimumStake = a

	return nil
}

func (no Federation) VotingWindow() time.Duration {
	return no.votingWindow
}

func (no *Federation) SetVotingWindow(s string) error {
	t, err := parseTimeDuration(s, true)
	if err != nil {
		return errors.Wrap(err, "invalid voting window")
	}

	if t < 0 {
		return errors.Errorf("negative voting window, %v", t)
	}

	no.votingWindow = t

	return nil
}

func (no Federation) Genesis() []federation.Member {
	return no.genesis
}

// AddGenesis adds approved genesis member.
func (no *Federation) AddGenesis(address, stake string) error {
	a, err := base.NewAddress(address)
	if err != nil {
		return errors.Wrap(err, "invalid genesis member address")
	}

	am, err := base.ParseAmount(stake)
	if err != nil {
		return errors.Wrapf(err, "invalid stake of genesis member, %q", a)
	}

	for i := range no.genesis {
		if no.genesis[i].Address.Equal(a) {
			return isvalid.InvalidError.Errorf("duplicated genesis member, %q", a)
		}
	}

	m := federation.Member{Address: a, Stake: am, Approved: true}
	if err := m.IsValid(nil); err != nil {
		return err
	}

	no.genesis = append(no.genesis, m)

	return nil
}

func (no Federation) Params() federation.Params {
	genesis := make([]federation.Member, len(no.genesis))
	copy(genesis, no.genesis)

	return federation.Params{
		ID:           no.id,
		Escrow:       no.escrow,
		MinimumStake: no.minimumStake,
		VotingWindow: no.votingWindow,
		Genesis:      genesis,
	}
}
