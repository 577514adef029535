package ballot

import (
	"time"

	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/base"
	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/util"
)

type ballotJSONPacker struct {
	RF string         `json:"ref"`
	KD Kind           `json:"kind"`
	PR base.Address   `json:"proposer"`
	SB base.Address   `json:"subject"`
	VL base.Amount    `json:"value"`
	AP base.Amount    `json:"approvals"`
	CA time.Time      `json:"created_at"`
	DL time.Time      `json:"deadline"`
	RS Result         `json:"result"`
	RA time.Time      `json:"resolved_at,omitempty"`
	AS []base.Address `json:"approvers"`
}

func (b *Ballot) MarshalJSON() ([]byte, error) {
	return util.JSONMarshal(ballotJSONPacker{
		RF: b.ref,
		KD: b.kind,
		PR: b.proposer,
		SB: b.subject,
		VL: b.value,
		AP: b.approvals,
		CA: b.createdAt,
		DL: b.deadline,
		RS: b.result,
		RA: b.resolvedAt,
		AS: b.approvers,
	})
}

func (b *Ballot) UnmarshalJSON(bt []byte) error {
	var ub ballotJSONPacker
	if err := util.JSONUnmarshal(bt, &ub); err != nil {
		return err
	}

	voted := make(map[base.Address]struct{}, len(ub.AS))
	for i := range ub.AS {
		voted[ub.AS[i]] = struct{}{}
	}

	*b = Ballot{
		ref:        ub.RF,
		kind:       ub.KD,
		proposer:   ub.PR,
		subject:    ub.SB,
		value:      ub.VL,
		approvals:  ub.AP,
		createdAt:  ub.CA,
		deadline:   ub.DL,
		result:     ub.RS,
		resolvedAt: ub.RA,
		approvers:  ub.AS,
		voted:      voted,
	}

	return b.IsValid(nil)
}

// Clone returns the deep copy.
func (b *Ballot) Clone() *Ballot {
	n := *b
	n.approvers = b.Approvers()
	n.voted = make(map[base.Address]struct{}, len(b.voted))

	for k := range b.voted {
		n.voted[k] = struct{}{}
	}

	return &n
}
