package federation

import (
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/ballot"
	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/base"
	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/event"
	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/token"
	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/util/isvalid"
	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/util/localtime"
	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/util/logging"
)

var DefaultVotingWindow = time.Hour * 24 * 2

type Params struct {
	ID           string
	Escrow       base.Address
	MinimumStake base.Amount
	VotingWindow time.Duration
	Genesis      []Member
}

func (p Params) IsValid([]byte) error {
	if len(p.ID) < 1 {
		return isvalid.InvalidError.Errorf("empty federation id")
	}

	if err := p.Escrow.IsValid(nil); err != nil {
		return errors.Wrap(err, "invalid escrow")
	}

	if p.MinimumStake.IsZero() {
		return isvalid.InvalidError.Wrap(ZeroValueError.Errorf("minimum stake"))
	}

	if p.VotingWindow <= 0 {
		return isvalid.InvalidError.Errorf("voting window should be positive, %v", p.VotingWindow)
	}

	for i := range p.Genesis {
		if p.Genesis[i].Address.Equal(p.Escrow) {
			return isvalid.InvalidError.Errorf("escrow can not be member")
		}
	}

	return nil
}

// StateStore persists the state of federation.
type StateStore interface {
	SaveFederationState(State) error
}

// Federation runs the governance of members. Every operation is serialized
// and the current time is taken once per operation. Federation guards the
// escrow account; the escrowed stake is returned only by ballot resolution.
type Federation struct {
	sync.RWMutex
	*logging.Logging
	id       string
	escrow   base.Address
	window   time.Duration
	registry *Registry
	box      *ballot.Box
	vault    *token.Vault
	ledger   token.Ledger
	clock    localtime.Clock
	sink     event.Sink
	store    StateStore
}

// New creates federation from genesis members. The escrow account should
// already hold the stake of genesis members.
func New(params Params, ledger token.Ledger, clock localtime.Clock, sink event.Sink) (*Federation, error) {
	genesis := make([]Member, len(params.Genesis))
	for i := range params.Genesis {
		genesis[i] = params.Genesis[i]
		genesis[i].Approved = true
	}

	fd, err := newFederation(params, ledger, clock, sink, genesis, params.MinimumStake)
	if err != nil {
		return nil, err
	}

	escrowed, err := ledger.BalanceOf(params.Escrow)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get balance of escrow")
	}

	if total := fd.registry.TotalStake(); escrowed.Cmp(total) < 0 {
		return nil, base.PreconditionError.Wrap(token.InsufficientBalanceError.Errorf(
			"escrow holds %s less than genesis stake, %s", escrowed, total))
	}

	if err := fd.guardEscrow(); err != nil {
		return nil, err
	}

	return fd, nil
}

// Restore loads federation from the saved state.
func Restore(params Params, st State, ledger token.Ledger, clock localtime.Clock, sink event.Sink) (*Federation, error) {
	fd, err := newFederation(params, ledger, clock, sink, st.Members, st.MinimumStake)
	if err != nil {
		return nil, err
	}

	if err := fd.box.Restore(st.Ballots); err != nil {
		return nil, base.PreconditionError.Wrap(err)
	}

	if err := fd.guardEscrow(); err != nil {
		return nil, err
	}

	return fd, nil
}

func newFederation(
	params Params,
	ledger token.Ledger,
	clock localtime.Clock,
	sink event.Sink,
	members []Member,
	minimumStake base.Amount,
) (*Federation, error) {
	if err := params.IsValid(nil); err != nil {
		return nil, base.PreconditionError.Wrap(err)
	}

	if ledger == nil {
		return nil, base.PreconditionError.Errorf("empty ledger")
	}

	registry, err := NewRegistry(members, minimumStake)
	if err != nil {
		return nil, base.PreconditionError.Wrap(err)
	}

	if clock == nil {
		clock = localtime.SystemClock
	}

	if sink == nil {
		sink = event.NilSink{}
	}

	return &Federation{
		Logging: logging.NewLogging(func(c zerolog.Context) zerolog.Context {
			return c.Str("module", "federation").Str("federation", params.ID)
		}),
		id:       params.ID,
		escrow:   params.Escrow,
		window:   params.VotingWindow,
		registry: registry,
		box:      ballot.NewBox(),
		vault:    token.NewVault(),
		ledger:   ledger,
		clock:    clock,
		sink:     sink,
	}, nil
}

func (fd *Federation) guardEscrow() error {
	if err := fd.ledger.RegisterGuard(fd.escrow, fd); err != nil {
		return errors.Wrap(err, "failed to register federation as guard of escrow")
	}

	return nil
}

// Sending is called by ledger before tokens leave escrow. Only the returns
// of stake by ballot resolution are admitted.
func (fd *Federation) Sending(operator, _, _ base.Address, _ base.Amount, data []byte) error {
	if fd.vault.Admit(data) {
		return nil
	}

	return base.PreconditionError.Wrap(EscrowedError.Errorf("transfer by %q is not allowed", operator))
}

func (fd *Federation) SetStore(st StateStore) *Federation {
	fd.Lock()
	defer fd.Unlock()

	fd.store = st

	return fd
}

// ProposeJoin opens join ballot for candidate. The stake of candidate is
// moved to escrow until the ballot is resolved.
func (fd *Federation) ProposeJoin(candidate base.Address, stake base.Amount) (string, error) {
	fd.Lock()
	defer fd.Unlock()

	now := fd.clock.Now()

	if err := candidate.IsValid(nil); err != nil {
		return "", base.PreconditionError.Wrap(err)
	}

	switch {
	case candidate.Equal(fd.escrow):
		return "", base.PreconditionError.Errorf("escrow can not join")
	case fd.registry.IsApproved(candidate):
		return "", base.PreconditionError.Wrap(AlreadyMemberError.Errorf("member=%q", candidate))
	case stake.Cmp(fd.registry.MinimumStake()) < 0:
		return "", base.PreconditionError.Wrap(InsufficientStakeError.Errorf(
			"stake=%s minimum=%s", stake, fd.registry.MinimumStake()))
	}

	if err := fd.checkNotOpened(ballot.KindJoin, candidate); err != nil {
		return "", err
	}

	b, err := ballot.New(ballot.KindJoin, candidate, candidate, stake, fd.registry.Stake(candidate), now, fd.window)
	if err != nil {
		return "", err
	}

	ref := ballot.KeyedRef(ballot.KindJoin, candidate)
	if err := fd.ledger.Transfer(candidate, candidate, fd.escrow, stake, []byte(ref)); err != nil {
		return "", errors.Wrap(err, "failed to escrow stake")
	}

	if _, err := fd.box.Open(b); err != nil {
		return "", err
	}

	fd.committed(fd.ballotCreated(b, now))

	return ref, nil
}

// ProposeExit opens exit ballot of member. The last member can not exit.
func (fd *Federation) ProposeExit(member base.Address) (string, error) {
	fd.Lock()
	defer fd.Unlock()

	now := fd.clock.Now()

	if err := fd.checkApproved(member); err != nil {
		return "", err
	}

	if len(fd.registry.Approved()) < 2 {
		return "", base.PreconditionError.Wrap(LastMemberError.Errorf("member=%q", member))
	}

	if err := fd.checkNotOpened(ballot.KindExit, member); err != nil {
		return "", err
	}

	stake := fd.registry.Stake(member)

	b, err := ballot.New(ballot.KindExit, member, member, stake, stake, now, fd.window)
	if err != nil {
		return "", err
	}

	ref, err := fd.box.Open(b)
	if err != nil {
		return "", err
	}

	fd.committed(fd.ballotCreated(b, now))

	return ref, nil
}

// ProposeMinimumStake opens stake ballot, which changes the minimum stake to
// value. The proposer should have stake not less than the current minimum.
func (fd *Federation) ProposeMinimumStake(member base.Address, value base.Amount) (int, error) {
	fd.Lock()
	defer fd.Unlock()

	now := fd.clock.Now()

	if err := fd.checkApproved(member); err != nil {
		return -1, err
	}

	stake := fd.registry.Stake(member)

	switch {
	case stake.Cmp(fd.registry.MinimumStake()) < 0:
		return -1, base.PreconditionError.Wrap(InsufficientStakeError.Errorf(
			"stake=%s minimum=%s", stake, fd.registry.MinimumStake()))
	case value.IsZero():
		return -1, base.PreconditionError.Wrap(ZeroValueError.Errorf("minimum stake"))
	}

	b, err := ballot.New(ballot.KindStake, member, member, value, stake, now, fd.window)
	if err != nil {
		return -1, err
	}

	ref, err := fd.box.Open(b)
	if err != nil {
		return -1, err
	}

	_, _, index, err := ballot.ParseRef(ref)
	if err != nil {
		return -1, err
	}

	fd.committed(fd.ballotCreated(b, now))

	return index, nil
}

func (fd *Federation) VoteJoin(voter, candidate base.Address) error {
	return fd.Vote(voter, ballot.KeyedRef(ballot.KindJoin, candidate))
}

func (fd *Federation) VoteExit(voter, member base.Address) error {
	return fd.Vote(voter, ballot.KeyedRef(ballot.KindExit, member))
}

func (fd *Federation) VoteMinimumStake(voter base.Address, index int) error {
	return fd.Vote(voter, ballot.IndexedRef(index))
}

// Vote approves the ballot with the current stake of voter.
func (fd *Federation) Vote(voter base.Address, ref string) error {
	fd.Lock()
	defer fd.Unlock()

	now := fd.clock.Now()

	b, err := fd.box.Ballot(ref)
	if err != nil {
		return err
	}

	if err := fd.checkApproved(voter); err != nil {
		return err
	}

	weight := fd.registry.Stake(voter)
	if err := b.Vote(voter, weight, now); err != nil {
		return err
	}

	fd.Log().Debug().Str("ballot", ref).Str("voter", voter.String()).Str("weight", weight.String()).Msg("voted")

	fd.committed(event.New(event.KindVote, fd.source(), voter, weight, now).
		WithSubject(b.Subject()).WithBallot(ref).
		With("approvals", b.Approvals().String()))

	return nil
}

func (fd *Federation) ResolveJoin(candidate base.Address) (ballot.Result, error) {
	return fd.Resolve(ballot.KeyedRef(ballot.KindJoin, candidate))
}

func (fd *Federation) ResolveExit(member base.Address) (ballot.Result, error) {
	return fd.Resolve(ballot.KeyedRef(ballot.KindExit, member))
}

func (fd *Federation) ResolveMinimumStake(index int) (ballot.Result, error) {
	return fd.Resolve(ballot.IndexedRef(index))
}

// Resolve resolves the ballot by the majority of the total stake of approved
// members. Anyone can resolve. The effect of the result is applied once,
// with the resolution.
func (fd *Federation) Resolve(ref string) (ballot.Result, error) {
	fd.Lock()
	defer fd.Unlock()

	now := fd.clock.Now()

	b, err := fd.box.Ballot(ref)
	if err != nil {
		return ballot.ResultOpen, err
	}

	total := fd.registry.TotalStake()

	r, err := b.Outcome(ballot.MajorityOf(total), now)
	if err != nil {
		return r, err
	}

	var es []event.Event

	switch b.Kind() {
	case ballot.KindJoin:
		es, err = fd.resolveJoin(b, r, now)
	case ballot.KindExit:
		r, es, err = fd.resolveExit(b, r, now)
	case ballot.KindStake:
		es = fd.resolveStake(b, r, now)
	}

	if err != nil {
		return ballot.ResultOpen, err
	}

	if err := b.Close(r, now); err != nil {
		return ballot.ResultOpen, err
	}

	fd.Log().Debug().Str("ballot", ref).Str("result", r.String()).
		Str("approvals", b.Approvals().String()).Str("total", total.String()).Msg("resolved")

	resolved := event.New(event.KindBallotResolved, fd.source(), b.Proposer(), b.Approvals(), now).
		WithSubject(b.Subject()).WithBallot(ref).
		With("result", r.String()).
		With("total", total.String())

	fd.committed(append([]event.Event{resolved}, es...)...)

	return r, nil
}

func (fd *Federation) resolveJoin(b *ballot.Ballot, r ballot.Result, now time.Time) ([]event.Event, error) {
	candidate := b.Subject()

	if r == ballot.ResultRejected {
		if err := fd.returnStake(candidate, b.Value()); err != nil {
			return nil, errors.Wrap(err, "failed to return escrowed stake")
		}

		return nil, nil
	}

	fd.registry.join(candidate, b.Value())

	return []event.Event{
		event.New(event.KindJoined, fd.source(), candidate, b.Value(), now).WithBallot(b.Ref()),
	}, nil
}

func (fd *Federation) resolveExit(
	b *ballot.Ballot, r ballot.Result, now time.Time,
) (ballot.Result, []event.Event, error) {
	member := b.Subject()

	if r == ballot.ResultRejected {
		return r, nil, nil
	}

	if !fd.registry.IsApproved(member) {
		return ballot.ResultRejected, nil, nil
	}

	if len(fd.registry.Approved()) < 2 {
		fd.Log().Debug().Str("ballot", b.Ref()).Msg("last member can not exit; ballot rejected")

		return ballot.ResultRejected, nil, nil
	}

	stake := fd.registry.Stake(member)
	if err := fd.returnStake(member, stake); err != nil {
		return r, nil, errors.Wrap(err, "failed to return stake")
	}

	fd.registry.exit(member)

	return r, []event.Event{
		event.New(event.KindExited, fd.source(), member, stake, now).WithBallot(b.Ref()),
	}, nil
}

func (fd *Federation) resolveStake(b *ballot.Ballot, r ballot.Result, now time.Time) []event.Event {
	if r == ballot.ResultRejected {
		return nil
	}

	previous := fd.registry.MinimumStake()
	fd.registry.adjustMinimumStake(b.Value())

	return []event.Event{
		event.New(event.KindMinimumStakeChanged, fd.source(), b.Proposer(), b.Value(), now).
			WithBallot(b.Ref()).
			With("previous", previous.String()),
	}
}

// AddStake moves more stake of member to escrow. The vote weight of member
// grows from the next vote.
func (fd *Federation) AddStake(member base.Address, amount base.Amount) (base.Amount, error) {
	fd.Lock()
	defer fd.Unlock()

	now := fd.clock.Now()

	if err := fd.checkApproved(member); err != nil {
		return base.Amount{}, err
	}

	if amount.IsZero() {
		return base.Amount{}, base.PreconditionError.Wrap(ZeroValueError.Errorf("stake"))
	}

	if err := fd.ledger.Transfer(member, member, fd.escrow, amount, nil); err != nil {
		return base.Amount{}, errors.Wrap(err, "failed to escrow stake")
	}

	stake := fd.registry.addStake(member, amount)

	fd.committed(event.New(event.KindStakeAdded, fd.source(), member, amount, now).
		With("stake", stake.String()))

	return stake, nil
}

// ReleaseReward mints new tokens to the given account. Only approved members
// can release.
func (fd *Federation) ReleaseReward(caller, to base.Address, amount base.Amount) error {
	fd.Lock()
	defer fd.Unlock()

	now := fd.clock.Now()

	if err := fd.checkApproved(caller); err != nil {
		return err
	}

	if err := to.IsValid(nil); err != nil {
		return base.PreconditionError.Wrap(err)
	}

	if amount.IsZero() {
		return base.PreconditionError.Wrap(ZeroValueError.Errorf("reward"))
	}

	if err := fd.ledger.Mint(caller, to, amount); err != nil {
		return errors.Wrap(err, "failed to mint reward")
	}

	fd.committed(event.New(event.KindReward, fd.source(), caller, amount, now).WithSubject(to))

	return nil
}

// returnStake moves stake from escrow with the key which Sending admits.
func (fd *Federation) returnStake(to base.Address, amount base.Amount) error {
	key := fd.vault.Key()
	defer fd.vault.Revoke(key)

	return fd.ledger.Transfer(fd.escrow, fd.escrow, to, amount, key)
}

func (fd *Federation) ID() string {
	return fd.id
}

func (fd *Federation) Escrow() base.Address {
	return fd.escrow
}

func (fd *Federation) VotingWindow() time.Duration {
	return fd.window
}

func (fd *Federation) Member(a base.Address) (Member, bool) {
	fd.RLock()
	defer fd.RUnlock()

	return fd.registry.Member(a)
}

func (fd *Federation) IsApproved(a base.Address) bool {
	fd.RLock()
	defer fd.RUnlock()

	return fd.registry.IsApproved(a)
}

func (fd *Federation) Members() []Member {
	fd.RLock()
	defer fd.RUnlock()

	return fd.registry.Members()
}

func (fd *Federation) MinimumStake() base.Amount {
	fd.RLock()
	defer fd.RUnlock()

	return fd.registry.MinimumStake()
}

func (fd *Federation) TotalStake() base.Amount {
	fd.RLock()
	defer fd.RUnlock()

	return fd.registry.TotalStake()
}

// Ballot returns the copy of ballot.
func (fd *Federation) Ballot(ref string) (*ballot.Ballot, error) {
	fd.RLock()
	defer fd.RUnlock()

	b, err := fd.box.Ballot(ref)
	if err != nil {
		return nil, err
	}

	return b.Clone(), nil
}

func (fd *Federation) OpenBallots(kind ballot.Kind) []*ballot.Ballot {
	fd.RLock()
	defer fd.RUnlock()

	bs := fd.box.OpenBallots(kind)
	for i := range bs {
		bs[i] = bs[i].Clone()
	}

	return bs
}

func (fd *Federation) State() State {
	fd.RLock()
	defer fd.RUnlock()

	return fd.state()
}

func (fd *Federation) state() State {
	return State{
		ID:           fd.id,
		Members:      fd.registry.Members(),
		MinimumStake: fd.registry.MinimumStake(),
		Ballots:      fd.box.Ballots(),
	}
}

func (fd *Federation) checkApproved(a base.Address) error {
	if !fd.registry.IsApproved(a) {
		return base.AuthorizationError.Wrap(NotMemberError.Errorf("%q is not approved member", a))
	}

	return nil
}

func (fd *Federation) checkNotOpened(kind ballot.Kind, subject base.Address) error {
	b, err := fd.box.Keyed(kind, subject)

	switch {
	case err == nil:
		if !b.IsResolved() {
			return base.BallotStateError.Wrap(ballot.BallotOpenedError.Errorf("ref=%q", b.Ref()))
		}

		return nil
	case errors.Is(err, ballot.BallotNotFoundError):
		return nil
	default:
		return err
	}
}

func (fd *Federation) ballotCreated(b *ballot.Ballot, now time.Time) event.Event {
	fd.Log().Debug().Str("ballot", b.Ref()).Str("proposer", b.Proposer().String()).Msg("ballot created")

	return event.New(event.KindBallotCreated, fd.source(), b.Proposer(), b.Value(), now).
		WithSubject(b.Subject()).WithBallot(b.Ref()).
		With("kind", b.Kind().String()).
		With("approvals", b.Approvals().String()).
		With("deadline", localtime.RFC3339(b.Deadline()))
}

// committed saves the state and emits the events of the committed operation.
// The failures are only logged; the operation is already applied.
func (fd *Federation) committed(es ...event.Event) {
	if fd.store != nil {
		if err := fd.store.SaveFederationState(fd.state()); err != nil {
			fd.Log().Error().Err(err).Msg("failed to save federation state")
		}
	}

	if err := fd.sink.Emit(es...); err != nil {
		fd.Log().Error().Err(err).Msg("failed to emit events")
	}
}

func (fd *Federation) source() string {
	return "federation:" + fd.id
}
