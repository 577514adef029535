package federation

import (
	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/ballot"
	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/base"
)

// State is the snapshot of federation.
type State struct {
	ID           string           `json:"id"`
	Members      []Member         `json:"members"`
	MinimumStake base.Amount      `json:"minimum_stake"`
	Ballots      []*ballot.Ballot `json:"ballots"`
}
