package ballot

import (
	"time"

	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/base"
	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/util/isvalid"
	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/util/localtime"
)

// Ballot is a stake weighted proposal. It is open until it is resolved once
// as approved or rejected. Ballot is not safe for concurrent use; the owner
// serializes the access.
type Ballot struct {
	ref        string
	kind       Kind
	proposer   base.Address
	subject    base.Address
	value      base.Amount
	approvals  base.Amount
	createdAt  time.Time
	deadline   time.Time
	result     Result
	resolvedAt time.Time
	approvers  []base.Address
	voted      map[base.Address]struct{}
}

// New opens ballot. The proposer is counted as voted with weight.
func New(
	kind Kind,
	proposer, subject base.Address,
	value, weight base.Amount,
	now time.Time,
	window time.Duration,
) (*Ballot, error) {
	if err := isvalid.Check(nil, false, kind, proposer, subject, value, weight); err != nil {
		return nil, base.PreconditionError.Wrap(err)
	}

	if window <= 0 {
		return nil, base.PreconditionError.Errorf("voting window should be positive, %v", window)
	}

	return &Ballot{
		kind:      kind,
		proposer:  proposer,
		subject:   subject,
		value:     value,
		approvals: weight,
		createdAt: now,
		deadline:  now.Add(window),
		result:    ResultOpen,
		approvers: []base.Address{proposer},
		voted:     map[base.Address]struct{}{proposer: {}},
	}, nil
}

func (b *Ballot) Ref() string {
	return b.ref
}

func (b *Ballot) Kind() Kind {
	return b.kind
}

func (b *Ballot) Proposer() base.Address {
	return b.proposer
}

func (b *Ballot) Subject() base.Address {
	return b.subject
}

// Value is the proposed value; for stake ballots it is the new minimum stake.
func (b *Ballot) Value() base.Amount {
	return b.value
}

func (b *Ballot) Approvals() base.Amount {
	return b.approvals
}

func (b *Ballot) CreatedAt() time.Time {
	return b.createdAt
}

func (b *Ballot) Deadline() time.Time {
	return b.deadline
}

func (b *Ballot) Result() Result {
	return b.result
}

func (b *Ballot) IsResolved() bool {
	return b.result.IsResolved()
}

func (b *Ballot) ResolvedAt() time.Time {
	return b.resolvedAt
}

func (b *Ballot) Approvers() []base.Address {
	as := make([]base.Address, len(b.approvers))
	copy(as, b.approvers)

	return as
}

func (b *Ballot) HasVoted(a base.Address) bool {
	_, found := b.voted[a]

	return found
}

// IsExpired is true after deadline; at deadline the ballot still can be
// voted.
func (b *Ballot) IsExpired(now time.Time) bool {
	return now.After(b.deadline)
}

func (b *Ballot) CanVote(voter base.Address, now time.Time) error {
	switch {
	case b.IsResolved():
		return base.BallotStateError.Wrap(AlreadyResolvedError.Errorf("ballot=%q result=%s", b.ref, b.result))
	case b.IsExpired(now):
		return base.BallotStateError.Wrap(DeadlinePassedError.Errorf("ballot=%q deadline=%s", b.ref, localtime.RFC3339(b.deadline)))
	case b.HasVoted(voter):
		return base.BallotStateError.Wrap(AlreadyVotedError.Errorf("ballot=%q voter=%q", b.ref, voter))
	default:
		return nil
	}
}

// Vote adds weight to the approvals. weight is the current stake of voter.
func (b *Ballot) Vote(voter base.Address, weight base.Amount, now time.Time) error {
	if err := b.CanVote(voter, now); err != nil {
		return err
	}

	b.approvals = b.approvals.Add(weight)
	b.approvers = append(b.approvers, voter)
	b.voted[voter] = struct{}{}

	return nil
}

// Outcome decides the result without resolving. When quorum is met, it is
// approved. When quorum is not met, it fails with InsufficientApprovalsError
// until the deadline passes, and after that it is rejected.
func (b *Ballot) Outcome(q Quorum, now time.Time) (Result, error) {
	switch {
	case b.IsResolved():
		return ResultOpen, base.BallotStateError.Wrap(AlreadyResolvedError.Errorf("ballot=%q result=%s", b.ref, b.result))
	case q.IsMet(b.approvals):
		return ResultApproved, nil
	case !b.IsExpired(now):
		return ResultOpen, base.BallotStateError.Wrap(InsufficientApprovalsError.Errorf(
			"ballot=%q approvals=%s threshold=%s", b.ref, b.approvals, q.Threshold()))
	default:
		return ResultRejected, nil
	}
}

// Close marks the ballot resolved. It can be called only once.
func (b *Ballot) Close(r Result, now time.Time) error {
	if b.IsResolved() {
		return base.BallotStateError.Wrap(AlreadyResolvedError.Errorf("ballot=%q result=%s", b.ref, b.result))
	}

	if !r.IsResolved() {
		return InvalidResultError.Errorf("ballot can not be closed with %s", r)
	}

	b.result = r
	b.resolvedAt = now

	return nil
}

// Resolve decides the outcome and closes the ballot.
func (b *Ballot) Resolve(q Quorum, now time.Time) (Result, error) {
	r, err := b.Outcome(q, now)
	if err != nil {
		return r, err
	}

	return r, b.Close(r, now)
}

func (b *Ballot) IsValid([]byte) error {
	if err := isvalid.Check(nil, false, b.kind, b.proposer, b.subject, b.value, b.approvals, b.result); err != nil {
		return err
	}

	if b.deadline.Before(b.createdAt) {
		return isvalid.InvalidError.Errorf("deadline before created")
	}

	if len(b.approvers) < 1 || !b.approvers[0].Equal(b.proposer) {
		return isvalid.InvalidError.Errorf("first approver should be proposer")
	}

	return nil
}
