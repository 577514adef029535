package yamlconfig

import (
	"github.com/pkg/errors"

	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/launch/config"
)

type Member struct {
	Address *string
	Stake   *string
}

type Federation struct {
	ID           *string  `yaml:",omitempty"`
	Escrow       *string  `yaml:",omitempty"`
	MinimumStake *string  `yaml:"minimum-stake,omitempty"`
	VotingWindow *string  `yaml:"voting-window,omitempty"`
	Genesis      []Member `yaml:",omitempty"`
}

func (no Federation) Set(conf *config.Federation) error {
	if no.ID != nil {
		if err := conf.SetID(*no.ID); err != nil {
			return err
		}
	}

	if no.Escrow != nil {
		if err := conf.SetEscrow(*no.Escrow); err != nil {
			return err
		}
	}

	if no.MinimumStake != nil {
		if err := conf.SetMinimumStake(*no.MinimumStake); err != nil {
			return err
		}
	}

	if no.VotingWindow != nil {
		if err := conf.SetVotingWindow(*no.VotingWindow); err != nil {
			return err
		}
	}

	for i := range no.Genesis {
		m := no.Genesis[i]
		if m.Address == nil || m.Stake == nil {
			return errors.Errorf("genesis member needs address and stake")
		}

		if err := conf.AddGenesis(*m.Address, *m.Stake); err != nil {
			return err
		}
	}

	return nil
}
