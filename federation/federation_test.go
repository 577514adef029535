package federation

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/suite"

	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/ballot"
	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/base"
	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/event"
	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/token"
	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/util/localtime"
)

const (
	escrow    base.Address = "escrow"
	minter    base.Address = "minter"
	memberA   base.Address = "member-a"
	memberB   base.Address = "member-b"
	candidate base.Address = "candidate"
	stranger  base.Address = "stranger"
)

var window = time.Hour * 24 * 2

type memStateStore struct {
	states []State
}

func (ms *memStateStore) SaveFederationState(st State) error {
	ms.states = append(ms.states, st)

	return nil
}

type testFederation struct {
	suite.Suite
	ledger *token.MemLedger
	clock  *localtime.ManualClock
	sink   *event.MemSink
	t0     time.Time
}

func (t *testFederation) SetupTest() {
	t.t0 = time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC)
	t.ledger = token.NewMemLedger()
	t.clock = localtime.NewManualClock(t.t0)
	t.sink = event.NewMemSink()
}

func (t *testFederation) params() Params {
	return Params{
		ID:           "geodb",
		Escrow:       escrow,
		MinimumStake: base.NewAmount(50),
		VotingWindow: window,
		Genesis: []Member{
			{Address: memberA, Stake: base.NewAmount(100)},
			{Address: memberB, Stake: base.NewAmount(100)},
		},
	}
}

// newFederation returns federation of 2 members with 100 stake each.
func (t *testFederation) newFederation() *Federation {
	t.NoError(t.ledger.Mint(minter, escrow, base.NewAmount(200)))
	t.NoError(t.ledger.Mint(minter, candidate, base.NewAmount(1000)))
	t.NoError(t.ledger.Mint(minter, memberA, base.NewAmount(1000)))

	fd, err := New(t.params(), t.ledger, t.clock, t.sink)
	t.NoError(err)

	return fd
}

func (t *testFederation) balance(a base.Address) string {
	b, err := t.ledger.BalanceOf(a)
	t.NoError(err)

	return b.String()
}

func (t *testFederation) TestNew() {
	fd := t.newFederation()

	t.Equal("200", fd.TotalStake().String())
	t.Equal("50", fd.MinimumStake().String())
	t.True(fd.IsApproved(memberA))
	t.True(fd.IsApproved(memberB))
	t.False(fd.IsApproved(candidate))
	t.Equal(2, len(fd.Members()))
}

func (t *testFederation) TestNewEmptyGenesis() {
	p := t.params()
	p.Genesis = nil

	_, err := New(p, t.ledger, t.clock, t.sink)
	t.True(errors.Is(err, base.PreconditionError))
}

func (t *testFederation) TestNewUnfundedEscrow() {
	t.NoError(t.ledger.Mint(minter, escrow, base.NewAmount(199)))

	_, err := New(t.params(), t.ledger, t.clock, t.sink)
	t.True(errors.Is(err, base.PreconditionError))
	t.True(errors.Is(err, token.InsufficientBalanceError))
}

func (t *testFederation) TestJoinQuorum() {
	fd := t.newFederation()

	ref, err := fd.ProposeJoin(candidate, base.NewAmount(100))
	t.NoError(err)
	t.Equal("join:candidate", ref)
	t.Equal("900", t.balance(candidate))
	t.Equal("300", t.balance(escrow))

	b, err := fd.Ballot(ref)
	t.NoError(err)
	t.True(b.Approvals().IsZero())

	t.NoError(fd.VoteJoin(memberA, candidate))

	_, err = fd.ResolveJoin(candidate)
	t.True(errors.Is(err, base.BallotStateError))
	t.True(errors.Is(err, ballot.InsufficientApprovalsError))
	t.False(fd.IsApproved(candidate))

	t.NoError(fd.VoteJoin(memberB, candidate))

	r, err := fd.ResolveJoin(candidate)
	t.NoError(err)
	t.Equal(ballot.ResultApproved, r)

	m, found := fd.Member(candidate)
	t.True(found)
	t.True(m.Approved)
	t.Equal("100", m.Stake.String())
	t.Equal("300", fd.TotalStake().String())
	t.Equal("300", t.balance(escrow))

	t.Equal(1, len(t.sink.Filter(event.KindJoined)))
	t.Equal(2, len(t.sink.Filter(event.KindVote)))
}

func (t *testFederation) TestJoinRejectedReturnsEscrow() {
	fd := t.newFederation()

	_, err := fd.ProposeJoin(candidate, base.NewAmount(100))
	t.NoError(err)
	t.NoError(fd.VoteJoin(memberA, candidate))

	t.clock.Add(window + time.Second)

	r, err := fd.ResolveJoin(candidate)
	t.NoError(err)
	t.Equal(ballot.ResultRejected, r)
	t.False(fd.IsApproved(candidate))
	t.Equal("1000", t.balance(candidate))
	t.Equal("200", t.balance(escrow))

	ref, err := fd.ProposeJoin(candidate, base.NewAmount(60))
	t.NoError(err)
	t.Equal("join:candidate", ref)
}

func (t *testFederation) TestJoinChecks() {
	fd := t.newFederation()

	_, err := fd.ProposeJoin(candidate, base.NewAmount(49))
	t.True(errors.Is(err, base.PreconditionError))
	t.True(errors.Is(err, InsufficientStakeError))

	_, err = fd.ProposeJoin(memberA, base.NewAmount(100))
	t.True(errors.Is(err, AlreadyMemberError))

	_, err = fd.ProposeJoin(stranger, base.NewAmount(100))
	t.True(errors.Is(err, token.InsufficientBalanceError))

	_, err = fd.Ballot(ballot.KeyedRef(ballot.KindJoin, stranger))
	t.True(errors.Is(err, ballot.BallotNotFoundError))

	_, err = fd.ProposeJoin(candidate, base.NewAmount(100))
	t.NoError(err)

	_, err = fd.ProposeJoin(candidate, base.NewAmount(100))
	t.True(errors.Is(err, base.BallotStateError))
	t.True(errors.Is(err, ballot.BallotOpenedError))
	t.Equal("900", t.balance(candidate))
}

func (t *testFederation) TestVoteByNonMember() {
	fd := t.newFederation()

	_, err := fd.ProposeJoin(candidate, base.NewAmount(100))
	t.NoError(err)

	err = fd.VoteJoin(stranger, candidate)
	t.True(errors.Is(err, base.AuthorizationError))

	err = fd.VoteJoin(candidate, candidate)
	t.True(errors.Is(err, base.AuthorizationError))
}

func (t *testFederation) TestDoubleVote() {
	fd := t.newFederation()

	_, err := fd.ProposeJoin(candidate, base.NewAmount(100))
	t.NoError(err)

	t.NoError(fd.VoteJoin(memberA, candidate))

	err = fd.VoteJoin(memberA, candidate)
	t.True(errors.Is(err, base.BallotStateError))
	t.True(errors.Is(err, ballot.AlreadyVotedError))

	t.clock.Add(window * 10)

	err = fd.VoteJoin(memberA, candidate)
	t.True(errors.Is(err, base.BallotStateError))
}

func (t *testFederation) TestDeadline() {
	fd := t.newFederation()

	_, err := fd.ProposeJoin(candidate, base.NewAmount(100))
	t.NoError(err)

	t.NoError(fd.VoteJoin(memberA, candidate))

	t.clock.Set(t.t0.Add(window + time.Second))

	err = fd.VoteJoin(memberB, candidate)
	t.True(errors.Is(err, base.BallotStateError))
	t.True(errors.Is(err, ballot.DeadlinePassedError))
}

func (t *testFederation) TestResolveTwice() {
	fd := t.newFederation()

	_, err := fd.ProposeJoin(candidate, base.NewAmount(100))
	t.NoError(err)
	t.NoError(fd.VoteJoin(memberA, candidate))
	t.NoError(fd.VoteJoin(memberB, candidate))

	_, err = fd.ResolveJoin(candidate)
	t.NoError(err)

	_, err = fd.ResolveJoin(candidate)
	t.True(errors.Is(err, base.BallotStateError))
	t.True(errors.Is(err, ballot.AlreadyResolvedError))
	t.Equal("100", func() string { m, _ := fd.Member(candidate); return m.Stake.String() }())
	t.Equal(1, len(t.sink.Filter(event.KindJoined)))
}

func (t *testFederation) TestExit() {
	fd := t.newFederation()

	ref, err := fd.ProposeExit(memberA)
	t.NoError(err)
	t.Equal("exit:member-a", ref)

	_, err = fd.ResolveExit(memberA)
	t.True(errors.Is(err, ballot.InsufficientApprovalsError))

	t.NoError(fd.VoteExit(memberB, memberA))

	r, err := fd.ResolveExit(memberA)
	t.NoError(err)
	t.Equal(ballot.ResultApproved, r)

	t.False(fd.IsApproved(memberA))
	t.Equal("1100", t.balance(memberA))
	t.Equal("100", t.balance(escrow))
	t.Equal("100", fd.TotalStake().String())

	_, err = fd.ProposeExit(memberB)
	t.True(errors.Is(err, base.PreconditionError))
	t.True(errors.Is(err, LastMemberError))

	t.Equal(1, len(t.sink.Filter(event.KindExited)))
}

func (t *testFederation) TestExitRejected() {
	fd := t.newFederation()

	_, err := fd.ProposeExit(memberA)
	t.NoError(err)

	t.clock.Add(window + time.Second)

	r, err := fd.ResolveExit(memberA)
	t.NoError(err)
	t.Equal(ballot.ResultRejected, r)

	t.True(fd.IsApproved(memberA))
	t.Equal("200", t.balance(escrow))
	t.Equal("1000", t.balance(memberA))
}

func (t *testFederation) TestExitByNonMember() {
	fd := t.newFederation()

	_, err := fd.ProposeExit(stranger)
	t.True(errors.Is(err, base.AuthorizationError))
}

func (t *testFederation) TestMinimumStake() {
	fd := t.newFederation()

	index, err := fd.ProposeMinimumStake(memberA, base.NewAmount(150))
	t.NoError(err)
	t.Equal(0, index)

	index, err = fd.ProposeMinimumStake(memberB, base.NewAmount(70))
	t.NoError(err)
	t.Equal(1, index)

	t.Equal(2, len(fd.OpenBallots(ballot.KindStake)))

	t.NoError(fd.VoteMinimumStake(memberB, 0))

	r, err := fd.ResolveMinimumStake(0)
	t.NoError(err)
	t.Equal(ballot.ResultApproved, r)
	t.Equal("150", fd.MinimumStake().String())

	_, err = fd.ProposeMinimumStake(memberA, base.NewAmount(10))
	t.True(errors.Is(err, base.PreconditionError))
	t.True(errors.Is(err, InsufficientStakeError))

	_, err = fd.ProposeJoin(candidate, base.NewAmount(100))
	t.True(errors.Is(err, InsufficientStakeError))

	t.Equal(1, len(t.sink.Filter(event.KindMinimumStakeChanged)))
}

func (t *testFederation) TestMinimumStakeInvalid() {
	fd := t.newFederation()

	_, err := fd.ProposeMinimumStake(memberA, base.ZeroAmount)
	t.True(errors.Is(err, ZeroValueError))

	_, err = fd.ProposeMinimumStake(stranger, base.NewAmount(10))
	t.True(errors.Is(err, base.AuthorizationError))

	for _, i := range []int{-1, 0, 1} {
		err = fd.VoteMinimumStake(memberB, i)
		t.True(errors.Is(err, base.BallotStateError))
		t.True(errors.Is(err, ballot.BallotNotFoundError))

		_, err = fd.ResolveMinimumStake(i)
		t.True(errors.Is(err, base.BallotStateError))
	}
}

func (t *testFederation) TestMinimumStakeRejected() {
	fd := t.newFederation()

	_, err := fd.ProposeMinimumStake(memberA, base.NewAmount(150))
	t.NoError(err)

	t.clock.Add(window + time.Second)

	r, err := fd.ResolveMinimumStake(0)
	t.NoError(err)
	t.Equal(ballot.ResultRejected, r)
	t.Equal("50", fd.MinimumStake().String())
}

func (t *testFederation) TestAddStake() {
	fd := t.newFederation()

	stake, err := fd.AddStake(memberA, base.NewAmount(200))
	t.NoError(err)
	t.Equal("300", stake.String())
	t.Equal("400", fd.TotalStake().String())
	t.Equal("800", t.balance(memberA))

	_, err = fd.ProposeJoin(candidate, base.NewAmount(100))
	t.NoError(err)

	t.NoError(fd.VoteJoin(memberA, candidate))

	b, err := fd.Ballot(ballot.KeyedRef(ballot.KindJoin, candidate))
	t.NoError(err)
	t.Equal("300", b.Approvals().String())

	r, err := fd.ResolveJoin(candidate)
	t.NoError(err)
	t.Equal(ballot.ResultApproved, r)

	_, err = fd.AddStake(stranger, base.NewAmount(1))
	t.True(errors.Is(err, base.AuthorizationError))

	_, err = fd.AddStake(memberB, base.ZeroAmount)
	t.True(errors.Is(err, ZeroValueError))
}

func (t *testFederation) TestReleaseReward() {
	fd := t.newFederation()

	t.NoError(fd.ReleaseReward(memberA, stranger, base.NewAmount(33)))
	t.Equal("33", t.balance(stranger))

	err := fd.ReleaseReward(stranger, stranger, base.NewAmount(33))
	t.True(errors.Is(err, base.AuthorizationError))
	t.Equal("33", t.balance(stranger))

	err = fd.ReleaseReward(memberA, stranger, base.ZeroAmount)
	t.True(errors.Is(err, base.PreconditionError))

	es := t.sink.Filter(event.KindReward)
	t.Equal(1, len(es))
	t.Equal(memberA, es[0].Actor)
	t.Equal(stranger, es[0].Subject)
}

func (t *testFederation) TestStateAndRestore() {
	fd := t.newFederation()

	st := &memStateStore{}
	_ = fd.SetStore(st)

	_, err := fd.ProposeJoin(candidate, base.NewAmount(100))
	t.NoError(err)
	t.NoError(fd.VoteJoin(memberA, candidate))

	t.Equal(2, len(st.states))

	saved := st.states[len(st.states)-1]
	t.Equal(1, len(saved.Ballots))

	// NOTE restored on another ledger; the escrow of ledger is guarded by fd
	_, err = Restore(t.params(), saved, t.ledger, t.clock, t.sink)
	t.True(errors.Is(err, token.GuardExistsError))

	nfd, err := Restore(t.params(), saved, token.NewMemLedger(), t.clock, t.sink)
	t.NoError(err)

	err = nfd.VoteJoin(memberA, candidate)
	t.True(errors.Is(err, ballot.AlreadyVotedError))

	t.NoError(nfd.VoteJoin(memberB, candidate))

	r, err := nfd.ResolveJoin(candidate)
	t.NoError(err)
	t.Equal(ballot.ResultApproved, r)
	t.True(nfd.IsApproved(candidate))

	// NOTE the original federation is not affected
	t.False(fd.IsApproved(candidate))
}

func (t *testFederation) TestEscrowGuarded() {
	fd := t.newFederation()

	_, err := fd.ProposeJoin(candidate, base.NewAmount(100))
	t.NoError(err)
	t.Equal("300", t.balance(escrow))

	for _, operator := range []base.Address{stranger, memberA, candidate, escrow} {
		err := t.ledger.Transfer(operator, escrow, stranger, base.NewAmount(100), nil)
		t.True(errors.Is(err, base.PreconditionError))
		t.True(errors.Is(err, EscrowedError))
	}

	err = t.ledger.Transfer(stranger, escrow, stranger, base.NewAmount(1), []byte("join:candidate"))
	t.True(errors.Is(err, EscrowedError))

	t.Equal("300", t.balance(escrow))
	t.Equal("0", t.balance(stranger))
	t.Equal("200", fd.TotalStake().String())

	// stake is returned by resolution
	t.clock.Add(window + time.Second)

	r, err := fd.ResolveJoin(candidate)
	t.NoError(err)
	t.Equal(ballot.ResultRejected, r)
	t.Equal("200", t.balance(escrow))
	t.Equal("1000", t.balance(candidate))
	t.Equal(0, fd.vault.Len())
}

func (t *testFederation) TestEventsAfterCommit() {
	fd := t.newFederation()

	_, err := fd.ProposeJoin(candidate, base.NewAmount(49))
	t.Error(err)
	t.Empty(t.sink.Events())

	_, err = fd.ProposeJoin(candidate, base.NewAmount(100))
	t.NoError(err)

	es := t.sink.Filter(event.KindBallotCreated)
	t.Equal(1, len(es))
	t.Equal("join:candidate", es[0].Ballot)
	t.Equal("100", es[0].Amount.String())
}

func TestFederation(t *testing.T) {
	suite.Run(t, new(testFederation))
}
