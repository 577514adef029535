package leveldbstorage

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/syndtr/goleveldb/leveldb"

	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/base"
	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/token"
	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/util"
	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/util/cache"
	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/util/logging"
)

var _ token.Ledger = (*Ledger)(nil)

// Ledger is token.Ledger on leveldb. Both balances of transfer are written in
// one batch. Balances are cached and the cache is updated only after the
// batch is written.
type Ledger struct {
	sync.RWMutex
	*logging.Logging
	st        *Database
	cache     cache.Cache
	receivers map[base.Address]token.Receiver
	guards    map[base.Address]token.Guard
}

func NewLedger(st *Database, ca cache.Cache) *Ledger {
	if ca == nil {
		ca = cache.Dummy{}
	}

	return &Ledger{
		Logging: logging.NewLogging(func(c zerolog.Context) zerolog.Context {
			return c.Str("module", "leveldb-ledger")
		}),
		st:        st,
		cache:     ca,
		receivers: map[base.Address]token.Receiver{},
		guards:    map[base.Address]token.Guard{},
	}
}

func (lg *Ledger) BalanceOf(a base.Address) (base.Amount, error) {
	lg.RLock()
	defer lg.RUnlock()

	return lg.balance(a)
}

func (lg *Ledger) TotalSupply() (base.Amount, error) {
	lg.RLock()
	defer lg.RUnlock()

	return lg.supply()
}

func (lg *Ledger) RegisterReceiver(a base.Address, r token.Receiver) error {
	lg.Lock()
	defer lg.Unlock()

	if _, found := lg.receivers[a]; found {
		return token.ReceiverExistsError.Errorf("address=%q", a)
	}

	lg.receivers[a] = r

	return nil
}

func (lg *Ledger) RegisterGuard(a base.Address, g token.Guard) error {
	lg.Lock()
	defer lg.Unlock()

	if _, found := lg.guards[a]; found {
		return token.GuardExistsError.Errorf("address=%q", a)
	}

	lg.guards[a] = g

	return nil
}

func (lg *Ledger) Transfer(operator, from, to base.Address, amount base.Amount, data []byte) error {
	if err := token.CheckTransfer(from, to, amount); err != nil {
		return err
	}

	lg.Lock()
	defer lg.Unlock()

	fb, err := lg.balance(from)
	if err != nil {
		return err
	}

	nfb, err := fb.Sub(amount)
	if err != nil {
		return base.PreconditionError.Wrap(
			token.InsufficientBalanceError.Errorf("address=%q balance=%s amount=%s", from, fb, amount))
	}

	tb, err := lg.balance(to)
	if err != nil {
		return err
	}

	if g, found := lg.guards[from]; found {
		if err := g.Sending(operator, from, to, amount, data); err != nil {
			return err
		}
	}

	ntb := tb.Add(amount)

	batch := &leveldb.Batch{}
	batch.Put(leveldbBalanceKey(from.String()), []byte(nfb.String()))
	batch.Put(leveldbBalanceKey(to.String()), []byte(ntb.String()))

	if err := lg.write(batch, operator, from, to, amount, data); err != nil {
		return errors.Wrap(err, "failed to write transfer")
	}

	lg.cached(from, nfb)
	lg.cached(to, ntb)

	lg.Log().Trace().
		Str("from", from.String()).Str("to", to.String()).Str("amount", amount.String()).
		Msg("transferred")

	return nil
}

func (lg *Ledger) Mint(operator, to base.Address, amount base.Amount) error {
	if err := to.IsValid(nil); err != nil {
		return base.PreconditionError.Wrap(err)
	}

	if amount.IsZero() {
		return base.PreconditionError.Wrap(token.InvalidAmountError.Errorf("zero amount"))
	}

	lg.Lock()
	defer lg.Unlock()

	tb, err := lg.balance(to)
	if err != nil {
		return err
	}

	supply, err := lg.supply()
	if err != nil {
		return err
	}

	ntb := tb.Add(amount)

	batch := &leveldb.Batch{}
	batch.Put(leveldbBalanceKey(to.String()), []byte(ntb.String()))
	batch.Put(keyPrefixSupply, []byte(supply.Add(amount).String()))

	if err := lg.write(batch, operator, "", to, amount, nil); err != nil {
		return errors.Wrap(err, "failed to write mint")
	}

	lg.cached(to, ntb)

	return nil
}

// write writes batch between Receiving and Received of the receiver of to.
func (lg *Ledger) write(
	batch *leveldb.Batch,
	operator, from, to base.Address,
	amount base.Amount,
	data []byte,
) error {
	r, found := lg.receivers[to]
	if found {
		if err := r.Receiving(operator, from, to, amount, data); err != nil {
			return err
		}
	}

	err := mergeError(lg.st.db.Write(batch, nil))

	if found {
		r.Received(operator, from, to, amount, data, err)
	}

	return err
}

func (lg *Ledger) balance(a base.Address) (base.Amount, error) {
	if i, err := lg.cache.Get(a); err == nil {
		if b, ok := i.(base.Amount); ok {
			return b, nil
		}
	}

	b, err := lg.loadAmount(leveldbBalanceKey(a.String()))
	if err != nil {
		return base.Amount{}, err
	}

	lg.cached(a, b)

	return b, nil
}

func (lg *Ledger) supply() (base.Amount, error) {
	return lg.loadAmount(keyPrefixSupply)
}

func (lg *Ledger) loadAmount(key []byte) (base.Amount, error) {
	b, err := lg.st.get(key)

	switch {
	case err == nil:
		return base.ParseAmount(string(b))
	case errors.Is(err, util.NotFoundError):
		return base.ZeroAmount, nil
	default:
		return base.Amount{}, err
	}
}

func (lg *Ledger) cached(a base.Address, b base.Amount) {
	if err := lg.cache.Set(a, b, 0); err != nil {
		lg.Log().Error().Err(err).Str("address", a.String()).Msg("failed to cache balance")
	}
}
