package federation

import (
	"github.com/pkg/errors"

	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/base"
	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/util/isvalid"
)

// Member is the federation member. Stake is held by the escrow account of
// federation while the member is approved.
type Member struct {
	Address  base.Address `json:"address" yaml:"address"`
	Stake    base.Amount  `json:"stake" yaml:"stake"`
	Approved bool         `json:"approved" yaml:"approved"`
}

func (m Member) IsValid([]byte) error {
	if err := isvalid.Check(nil, false, m.Address, m.Stake); err != nil {
		return errors.Wrap(err, "invalid member")
	}

	if m.Approved && m.Stake.IsZero() {
		return isvalid.InvalidError.Errorf("approved member with zero stake, %q", m.Address)
	}

	return nil
}
