package ballot

import (
	"math/big"

	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/base"
	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/util"
)

// Quorum is met when approvals are strictly over the half of total; the
// comparison is done as approvals*2 > total, so nothing is truncated.
type Quorum struct {
	Total base.Amount `json:"total"`
}

func MajorityOf(total base.Amount) Quorum {
	return Quorum{Total: total}
}

func (q Quorum) IsMet(approvals base.Amount) bool {
	return approvals.Mul(base.NewAmount(2)).Cmp(q.Total) > 0
}

// Threshold is the largest approvals which does not meet the quorum.
func (q Quorum) Threshold() base.Amount {
	t, _ := q.Total.MulDiv(big.NewInt(1), big.NewInt(2))

	return t
}

func (q Quorum) String() string {
	return util.ToString(q)
}
