package vesting

import (
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/base"
	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/event"
	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/token"
	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/util/isvalid"
	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/util/localtime"
	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/util/logging"
)

type LockupParams struct {
	ID           string
	Beneficiary  base.Address
	Operator     base.Address
	Deployer     base.Address
	Token        string
	Holder       base.Address
	LockDuration time.Duration
	Mode         FundingMode
}

// Lockup holds the tokens of one beneficiary on the holder account and
// releases them by the vesting schedule.
//
// Lockup guards the holder account on the ledger; tokens leave the holder
// only by Unlock and Reclaim.
//
// opLock serializes the operations. stateLock guards the schedule and is
// never held while calling the ledger; the ledger calls back the lockup
// through Sending, Receiving and Received, which take at most stateLock.
type Lockup struct {
	*logging.Logging
	opLock     sync.Mutex
	stateLock  sync.RWMutex
	id         string
	s          Schedule
	reclaiming bool
	receiving  int
	vault      *token.Vault
	ledger     token.Ledger
	clock      localtime.Clock
	sink       event.Sink
	store      ScheduleStore
}

// IsValid checks params as the schedule delivered at the zero time.
func (p LockupParams) IsValid([]byte) error {
	return p.schedule(time.Time{}).IsValid(nil)
}

func (p LockupParams) schedule(delivery time.Time) Schedule {
	return Schedule{
		ID:           p.ID,
		Beneficiary:  p.Beneficiary,
		Operator:     p.Operator,
		Deployer:     p.Deployer,
		Token:        p.Token,
		Holder:       p.Holder,
		DeliveryTime: delivery,
		LockDuration: p.LockDuration,
		Mode:         p.Mode,
		Locked:       base.ZeroAmount,
		Withdrawn:    base.ZeroAmount,
	}
}

// NewLockup creates new lockup; the delivery time is the current time of
// clock.
func NewLockup(
	params LockupParams,
	ledger token.Ledger,
	clock localtime.Clock,
	sink event.Sink,
) (*Lockup, error) {
	if clock == nil {
		clock = localtime.SystemClock
	}

	return RestoreLockup(params.schedule(localtime.Normalize(clock.Now())), ledger, clock, sink)
}

// RestoreLockup loads the lockup from the saved schedule.
func RestoreLockup(s Schedule, ledger token.Ledger, clock localtime.Clock, sink event.Sink) (*Lockup, error) {
	if err := s.IsValid(nil); err != nil {
		if errors.Is(err, InvalidLockDurationError) {
			return nil, err
		}

		return nil, base.PreconditionError.Wrap(err)
	}

	if ledger == nil {
		return nil, base.PreconditionError.Errorf("empty ledger")
	}

	if clock == nil {
		clock = localtime.SystemClock
	}

	if sink == nil {
		sink = event.NilSink{}
	}

	l := &Lockup{
		Logging: logging.NewLogging(func(c zerolog.Context) zerolog.Context {
			return c.Str("module", "lockup").Str("lockup", s.ID)
		}),
		id:     s.ID,
		s:      s,
		vault:  token.NewVault(),
		ledger: ledger,
		clock:  clock,
		sink:   sink,
	}

	if err := ledger.RegisterGuard(s.Holder, l); err != nil {
		return nil, errors.Wrap(err, "failed to register lockup as guard")
	}

	if s.Mode == PushFunding {
		if err := ledger.RegisterReceiver(s.Holder, l); err != nil {
			return nil, errors.Wrap(err, "failed to register lockup as receiver")
		}
	}

	return l, nil
}

// SetStore sets the store which every committed schedule is saved to.
func (l *Lockup) SetStore(st ScheduleStore) *Lockup {
	l.stateLock.Lock()
	defer l.stateLock.Unlock()

	l.store = st

	return l
}

// Lock records the current balance of holder as locked. It is the funding
// path of pull mode and succeeds only once.
func (l *Lockup) Lock(caller base.Address) error {
	l.opLock.Lock()
	defer l.opLock.Unlock()

	now := l.clock.Now()
	s := l.Schedule()

	if s.Mode != PullFunding {
		return base.PreconditionError.Wrap(FundingModeError.Errorf("lock is not allowed in %s mode", s.Mode))
	}

	if !s.isBeneficiaryOrOperator(caller) && !caller.Equal(s.Deployer) {
		return base.AuthorizationError.Errorf("%q can not lock", caller)
	}

	if !s.Locked.IsZero() {
		return base.PreconditionError.Wrap(AlreadyLockedError.Errorf("locked=%s", s.Locked))
	}

	balance, err := l.ledger.BalanceOf(s.Holder)
	if err != nil {
		return errors.Wrap(err, "failed to get balance of holder")
	}

	if balance.IsZero() {
		return base.PreconditionError.Wrap(ZeroBalanceError.Errorf("nothing to lock"))
	}

	if err := l.commit(func(s *Schedule) {
		s.Locked = balance
	}, false); err != nil {
		return err
	}

	l.Log().Debug().Str("caller", caller.String()).Str("locked", balance.String()).Msg("locked")

	l.emit(event.New(event.KindLock, l.source(), caller, balance, now).WithSubject(s.Holder))

	return nil
}

// Unlock transfers amount to the beneficiary. The withdrawn amount after
// transfer can not exceed the allowance at the current time.
func (l *Lockup) Unlock(caller base.Address, amount base.Amount) error {
	l.opLock.Lock()
	defer l.opLock.Unlock()

	now := l.clock.Now()
	s := l.Schedule()

	if !s.isBeneficiaryOrOperator(caller) {
		return base.AuthorizationError.Errorf("%q can not unlock", caller)
	}

	if amount.IsZero() {
		return base.PreconditionError.Wrap(ZeroAmountError.Call())
	}

	balance, err := l.ledger.BalanceOf(s.Holder)
	if err != nil {
		return errors.Wrap(err, "failed to get balance of holder")
	}

	switch {
	case balance.IsZero():
		return base.PreconditionError.Wrap(ZeroBalanceError.Errorf("nothing to unlock"))
	case amount.Cmp(balance) > 0:
		return base.PreconditionError.Wrap(
			token.InsufficientBalanceError.Errorf("amount=%s balance=%s", amount, balance))
	case s.Locked.IsZero():
		return base.PreconditionError.Wrap(NothingLockedError.Call())
	}

	allowance, err := s.Allowance(now)
	if err != nil {
		return err
	}

	withdrawn := s.Withdrawn.Add(amount)
	if withdrawn.Cmp(allowance) > 0 {
		return base.AllowanceExceededError.Errorf(
			"withdrawn=%s amount=%s allowance=%s", s.Withdrawn, amount, allowance)
	}

	if err := l.transfer(caller, s.Holder, s.Beneficiary, amount); err != nil {
		return errors.Wrap(err, "failed to transfer to beneficiary")
	}

	// NOTE the transfer is done, so the failure of store is not returned.
	if err := l.commit(func(s *Schedule) {
		s.Withdrawn = s.Withdrawn.Add(amount)
	}, true); err != nil {
		l.Log().Error().Err(err).Str("amount", amount.String()).Msg("failed to save unlocked schedule")
	}

	l.Log().Debug().
		Str("caller", caller.String()).
		Str("amount", amount.String()).
		Str("allowance", allowance.String()).
		Msg("unlocked")

	l.emit(event.New(event.KindUnlock, l.source(), caller, amount, now).WithSubject(s.Beneficiary).
		With("withdrawn", withdrawn.String()))

	return nil
}

// Receiving is called by ledger before tokens are written to holder. Only
// push mode lockup accepts tokens.
func (l *Lockup) Receiving(_, _, to base.Address, _ base.Amount, _ []byte) error {
	l.stateLock.Lock()
	defer l.stateLock.Unlock()

	switch {
	case !to.Equal(l.s.Holder):
		return base.PreconditionError.Errorf("unknown recipient, %q", to)
	case l.s.Mode != PushFunding:
		return base.PreconditionError.Wrap(FundingModeError.Errorf("receiving is not allowed in %s mode", l.s.Mode))
	case l.reclaiming:
		return base.PreconditionError.Wrap(ReclaimError.Errorf("reclaiming"))
	}

	l.receiving++

	return nil
}

// Received is called by ledger after the tokens accepted by Receiving are
// written. The received amount is locked only when err is nil.
func (l *Lockup) Received(operator, from, _ base.Address, amount base.Amount, _ []byte, err error) {
	now := l.clock.Now()

	l.stateLock.Lock()

	l.receiving--

	if err != nil {
		l.stateLock.Unlock()

		l.Log().Debug().Err(err).Str("from", from.String()).Str("amount", amount.String()).Msg("not received")

		return
	}

	n := l.s
	n.Locked = n.Locked.Add(amount)
	l.s = n

	// NOTE the tokens already arrived, so the failure of store is not returned.
	if l.store != nil {
		if err := l.store.SaveSchedule(n); err != nil {
			l.Log().Error().Err(err).Str("amount", amount.String()).Msg("failed to save received schedule")
		}
	}

	l.stateLock.Unlock()

	l.Log().Debug().Str("from", from.String()).Str("amount", amount.String()).Msg("received")

	l.emit(event.New(event.KindLock, l.source(), operator, amount, now).WithSubject(from).
		With("locked", n.Locked.String()))
}

// Sending is called by ledger before tokens leave holder. Only the transfers
// of Unlock and Reclaim are admitted.
func (l *Lockup) Sending(operator, _, _ base.Address, _ base.Amount, data []byte) error {
	if l.vault.Admit(data) {
		return nil
	}

	return l.useUnlock("transfer", operator)
}

// Transfer is not allowed; tokens leave the lockup only by Unlock.
func (l *Lockup) Transfer(caller, _ base.Address, _ base.Amount) error {
	return l.useUnlock("transfer", caller)
}

func (l *Lockup) Approve(caller, _ base.Address, _ base.Amount) error {
	return l.useUnlock("approve", caller)
}

func (l *Lockup) TransferFrom(caller, _, _ base.Address, _ base.Amount) error {
	return l.useUnlock("transfer from", caller)
}

func (l *Lockup) useUnlock(op string, caller base.Address) error {
	return base.PreconditionError.Wrap(UseUnlockError.Errorf("%s by %q is not allowed", op, caller))
}

// transfer moves tokens from holder with the key which Sending admits.
func (l *Lockup) transfer(caller, from, to base.Address, amount base.Amount) error {
	key := l.vault.Key()
	defer l.vault.Revoke(key)

	return l.ledger.Transfer(caller, from, to, amount, key)
}

// Reclaim moves the whole balance of holder to the given account. Only the
// deployer can reclaim and only before anything is locked.
func (l *Lockup) Reclaim(caller, to base.Address) (base.Amount, error) {
	l.opLock.Lock()
	defer l.opLock.Unlock()

	now := l.clock.Now()

	if err := to.IsValid(nil); err != nil {
		return base.Amount{}, base.PreconditionError.Wrap(err)
	}

	l.stateLock.Lock()
	s := l.s

	switch {
	case !caller.Equal(s.Deployer):
		l.stateLock.Unlock()

		return base.Amount{}, base.AuthorizationError.Errorf("%q can not reclaim", caller)
	case !s.Locked.IsZero():
		l.stateLock.Unlock()

		return base.Amount{}, base.PreconditionError.Wrap(ReclaimError.Errorf("already locked, %s", s.Locked))
	case l.receiving > 0:
		l.stateLock.Unlock()

		return base.Amount{}, base.PreconditionError.Wrap(ReclaimError.Errorf("receiving"))
	}

	l.reclaiming = true
	l.stateLock.Unlock()

	defer func() {
		l.stateLock.Lock()
		l.reclaiming = false
		l.stateLock.Unlock()
	}()

	balance, err := l.ledger.BalanceOf(s.Holder)
	if err != nil {
		return base.Amount{}, errors.Wrap(err, "failed to get balance of holder")
	}

	if balance.IsZero() {
		return base.Amount{}, base.PreconditionError.Wrap(ZeroBalanceError.Errorf("nothing to reclaim"))
	}

	if err := l.transfer(caller, s.Holder, to, balance); err != nil {
		return base.Amount{}, errors.Wrap(err, "failed to reclaim")
	}

	l.Log().Debug().Str("to", to.String()).Str("amount", balance.String()).Msg("reclaimed")

	l.emit(event.New(event.KindReclaim, l.source(), caller, balance, now).WithSubject(to))

	return balance, nil
}

func (l *Lockup) Schedule() Schedule {
	l.stateLock.RLock()
	defer l.stateLock.RUnlock()

	return l.s
}

func (l *Lockup) ID() string {
	return l.id
}

func (l *Lockup) Token() string {
	return l.Schedule().Token
}

func (l *Lockup) Beneficiary() base.Address {
	return l.Schedule().Beneficiary
}

func (l *Lockup) Holder() base.Address {
	return l.Schedule().Holder
}

func (l *Lockup) DeliveryTime() time.Time {
	return l.Schedule().DeliveryTime
}

func (l *Lockup) LockDuration() time.Duration {
	return l.Schedule().LockDuration
}

func (l *Lockup) Locked() base.Amount {
	return l.Schedule().Locked
}

func (l *Lockup) Withdrawn() base.Amount {
	return l.Schedule().Withdrawn
}

// Allowance returns the allowance at the current time of clock.
func (l *Lockup) Allowance() (base.Amount, error) {
	return l.Schedule().Allowance(l.clock.Now())
}

// commit applies f to the schedule and saves it. When force, the schedule
// is applied even if the store fails.
func (l *Lockup) commit(f func(*Schedule), force bool) error {
	l.stateLock.Lock()
	defer l.stateLock.Unlock()

	n := l.s
	f(&n)

	if err := n.IsValid(nil); err != nil && !force {
		return isvalid.InvalidError.Wrap(err)
	}

	if l.store != nil {
		if err := l.store.SaveSchedule(n); err != nil {
			if force {
				l.s = n
			}

			return errors.Wrap(err, "failed to save schedule")
		}
	}

	l.s = n

	return nil
}

func (l *Lockup) emit(e event.Event) {
	if err := l.sink.Emit(e); err != nil {
		l.Log().Error().Err(err).Str("event", e.ID).Msg("failed to emit event")
	}
}

func (l *Lockup) source() string {
	return "lockup:" + l.id
}
