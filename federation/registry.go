package federation

import (
	"sort"

	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/base"
	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/util/isvalid"
)

// Registry keeps the members and the minimum stake. It is mutated only by
// the effects of resolved ballots and by adding stake; the caller
// serializes the access.
type Registry struct {
	members      map[base.Address]Member
	minimumStake base.Amount
}

func NewRegistry(members []Member, minimumStake base.Amount) (*Registry, error) {
	if minimumStake.IsZero() {
		return nil, isvalid.InvalidError.Wrap(ZeroValueError.Errorf("minimum stake"))
	}

	r := &Registry{
		members:      map[base.Address]Member{},
		minimumStake: minimumStake,
	}

	for i := range members {
		m := members[i]
		if err := m.IsValid(nil); err != nil {
			return nil, err
		}

		if _, found := r.members[m.Address]; found {
			return nil, isvalid.InvalidError.Errorf("duplicated member, %q", m.Address)
		}

		r.members[m.Address] = m
	}

	if len(r.Approved()) < 1 {
		return nil, isvalid.InvalidError.Errorf("empty approved members")
	}

	return r, nil
}

func (r *Registry) Member(a base.Address) (Member, bool) {
	m, found := r.members[a]

	return m, found
}

func (r *Registry) IsApproved(a base.Address) bool {
	m, found := r.members[a]

	return found && m.Approved
}

// Stake is the vote weight of member; non approved member has no weight.
func (r *Registry) Stake(a base.Address) base.Amount {
	if m, found := r.members[a]; found && m.Approved {
		return m.Stake
	}

	return base.ZeroAmount
}

// Members returns every member sorted by address.
func (r *Registry) Members() []Member {
	ms := make([]Member, 0, len(r.members))
	for _, m := range r.members {
		ms = append(ms, m)
	}

	sort.Slice(ms, func(i, j int) bool {
		return ms[i].Address < ms[j].Address
	})

	return ms
}

func (r *Registry) Approved() []Member {
	var ms []Member

	for _, m := range r.Members() {
		if m.Approved {
			ms = append(ms, m)
		}
	}

	return ms
}

// TotalStake is the sum of the stake of approved members.
func (r *Registry) TotalStake() base.Amount {
	t := base.ZeroAmount
	for _, m := range r.members {
		if m.Approved {
			t = t.Add(m.Stake)
		}
	}

	return t
}

// TotalStakeOf sums the stake of approved members.
func TotalStakeOf(members []Member) base.Amount {
	t := base.ZeroAmount
	for i := range members {
		if members[i].Approved {
			t = t.Add(members[i].Stake)
		}
	}

	return t
}

func (r *Registry) MinimumStake() base.Amount {
	return r.minimumStake
}

func (r *Registry) join(a base.Address, stake base.Amount) {
	r.members[a] = Member{Address: a, Stake: stake, Approved: true}
}

// exit disapproves member and clears its stake; the stake is returned by the
// caller before.
func (r *Registry) exit(a base.Address) {
	if _, found := r.members[a]; !found {
		return
	}

	r.members[a] = Member{Address: a, Stake: base.ZeroAmount, Approved: false}
}

func (r *Registry) adjustMinimumStake(v base.Amount) {
	r.minimumStake = v
}

func (r *Registry) addStake(a base.Address, amount base.Amount) base.Amount {
	m := r.members[a]
	m.Stake = m.Stake.Add(amount)
	r.members[a] = m

	return m.Stake
}
