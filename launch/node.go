package launch

import (
	"context"
	"sort"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/event"
	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/federation"
	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/launch/config"
	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/storage"
	leveldbstorage "github.com/GeoDB-Limited/geodb-federation-fabric-prototype/storage/leveldb"
	mongodbstorage "github.com/GeoDB-Limited/geodb-federation-fabric-prototype/storage/mongodb"
	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/util"
	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/util/cache"
	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/util/localtime"
	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/util/logging"
	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/vesting"
)

var (
	DefaultMongodbConnectTimeout = time.Second * 2
	DefaultMongodbExecTimeout    = time.Second * 2
	DefaultPrepareLockupsLimit   = int64(10)
)

// Node holds the components built from the config.
type Node struct {
	*logging.Logging
	conf       *config.Local
	clock      localtime.Clock
	syncer     *localtime.TimeSyncer
	db         *leveldbstorage.Database
	ledger     *leveldbstorage.Ledger
	archive    *mongodbstorage.EventArchive
	client     *mongodbstorage.Client
	sink       event.Sink
	federation *federation.Federation
	lockups    map[string]*vesting.Lockup
}

func NewNode(conf *config.Local) *Node {
	return &Node{
		Logging: logging.NewLogging(func(c zerolog.Context) zerolog.Context {
			return c.Str("module", "node")
		}),
		conf:    conf,
		clock:   localtime.NewMonotonicClock(localtime.SystemClock),
		lockups: map[string]*vesting.Lockup{},
	}
}

// SetClock replaces the clock; it should be called before Start.
func (nd *Node) SetClock(clock localtime.Clock) *Node {
	nd.clock = clock

	return nd
}

// Start prepares the components in order; on error, already prepared ones
// are closed.
func (nd *Node) Start() error {
	for _, f := range []func() error{
		nd.prepareTimeSyncer,
		nd.prepareDatabase,
		nd.prepareSinks,
		nd.prepareFederation,
		nd.prepareLockups,
	} {
		if err := f(); err != nil {
			_ = nd.Close()

			return err
		}
	}

	nd.Log().Debug().Int("lockups", len(nd.lockups)).Bool("federation", nd.federation != nil).Msg("node started")

	return nil
}

func (nd *Node) Close() error {
	if nd.syncer != nil {
		localtime.SetTimeSyncer(nil)

		if err := nd.syncer.Stop(); err != nil {
			nd.Log().Error().Err(err).Msg("failed to stop time syncer")
		}
	}

	if nd.client != nil {
		if err := nd.client.Close(); err != nil {
			nd.Log().Error().Err(err).Msg("failed to close mongodb client")
		}
	}

	if nd.db != nil {
		if err := nd.db.Close(); err != nil {
			return errors.Wrap(err, "failed to close database")
		}
	}

	return nil
}

func (nd *Node) Clock() localtime.Clock {
	return nd.clock
}

func (nd *Node) Database() storage.Database {
	return nd.db
}

func (nd *Node) Ledger() *leveldbstorage.Ledger {
	return nd.ledger
}

// EventArchive returns nil when the event archive is not configured.
func (nd *Node) EventArchive() *mongodbstorage.EventArchive {
	return nd.archive
}

// Federation returns nil when the federation is not configured.
func (nd *Node) Federation() *federation.Federation {
	return nd.federation
}

func (nd *Node) Lockup(id string) (*vesting.Lockup, error) {
	l, found := nd.lockups[id]
	if !found {
		return nil, errors.Errorf("unknown lockup, %q", id)
	}

	return l, nil
}

func (nd *Node) Lockups() []*vesting.Lockup {
	ls := make([]*vesting.Lockup, 0, len(nd.lockups))
	for i := range nd.lockups {
		ls = append(ls, nd.lockups[i])
	}

	sort.Slice(ls, func(i, j int) bool {
		return ls[i].ID() < ls[j].ID()
	})

	return ls
}

func (nd *Node) prepareTimeSyncer() error {
	conf := nd.conf.TimeServer()
	if len(conf.Server()) < 1 {
		nd.Log().Debug().Msg("time server not set")

		return nil
	}

	ts, err := localtime.NewTimeSyncer(conf.Server(), conf.SyncInterval())
	if err != nil {
		return err
	}

	_ = ts.SetLogging(nd.Logging)

	if err := ts.Start(); err != nil {
		return errors.Wrap(err, "failed to start time syncer")
	}

	localtime.SetTimeSyncer(ts)
	nd.syncer = ts

	return nil
}

func (nd *Node) prepareDatabase() error {
	conf := nd.conf.Storage()

	var db *leveldbstorage.Database
	if conf.InMemory() {
		db = leveldbstorage.NewMemDatabase()
	} else {
		i, err := leveldbstorage.Open(conf.Path())
		if err != nil {
			return err
		}

		db = i
	}

	_ = db.SetLogging(nd.Logging)

	if err := db.Initialize(); err != nil {
		_ = db.Close()

		return err
	}

	ca := cache.Cache(cache.Dummy{})
	if u := conf.Cache(); u != nil {
		i, err := cache.NewCacheFromURI(u.String())
		if err != nil {
			_ = db.Close()

			return err
		}

		ca = i
	}

	nd.db = db
	nd.ledger = leveldbstorage.NewLedger(db, ca)
	_ = nd.ledger.SetLogging(nd.Logging)

	return nil
}

func (nd *Node) prepareSinks() error {
	ls := event.NewLogSink()
	_ = ls.SetLogging(nd.Logging)

	u := nd.conf.Storage().EventArchive()
	if u == nil {
		nd.sink = ls

		return nil
	}

	connectTimeout, execTimeout, err := mongodbstorage.ParseTimeouts(
		u.String(), DefaultMongodbConnectTimeout, DefaultMongodbExecTimeout)
	if err != nil {
		return err
	}

	uri, err := mongodbstorage.CleanURI(u.String())
	if err != nil {
		return err
	}

	client, err := mongodbstorage.NewClient(uri, connectTimeout, execTimeout)
	if err != nil {
		return err
	}

	archive, err := mongodbstorage.NewEventArchive(client)
	if err != nil {
		_ = client.Close()

		return err
	}

	_ = archive.SetLogging(nd.Logging)

	nd.client = client
	nd.archive = archive
	nd.sink = event.Sinks{ls, archive}

	return nil
}

func (nd *Node) prepareFederation() error {
	conf := nd.conf.Federation()
	if len(conf.Genesis()) < 1 {
		return nil
	}

	params := conf.Params()

	st, found, err := nd.db.FederationState(params.ID)
	if err != nil {
		return err
	}

	var fd *federation.Federation
	if found {
		fd, err = federation.Restore(params, st, nd.ledger, nd.clock, nd.sink)
	} else {
		if err = nd.fundGenesis(params); err != nil {
			return err
		}

		fd, err = federation.New(params, nd.ledger, nd.clock, nd.sink)
	}

	if err != nil {
		return errors.Wrap(err, "failed to prepare federation")
	}

	_ = fd.SetLogging(nd.Logging)
	_ = fd.SetStore(nd.db)

	if !found {
		if err := nd.db.SaveFederationState(fd.State()); err != nil {
			return err
		}
	}

	nd.federation = fd

	return nil
}

// fundGenesis mints the missing genesis stake to the escrow of new
// federation.
func (nd *Node) fundGenesis(params federation.Params) error {
	total := federation.TotalStakeOf(params.Genesis)

	escrowed, err := nd.ledger.BalanceOf(params.Escrow)
	if err != nil {
		return err
	}

	if escrowed.Cmp(total) >= 0 {
		return nil
	}

	missing, err := total.Sub(escrowed)
	if err != nil {
		return err
	}

	nd.Log().Info().Str("escrow", params.Escrow.String()).Str("amount", missing.String()).Msg("genesis stake minted")

	return nd.ledger.Mint(params.Escrow, params.Escrow, missing)
}

func (nd *Node) prepareLockups() error {
	confs := nd.conf.Lockups()
	ls := make([]*vesting.Lockup, len(confs))

	if err := util.RunLimited(context.Background(), DefaultPrepareLockupsLimit, len(confs),
		func(_ context.Context, i int) error {
			l, err := nd.prepareLockup(confs[i])
			if err != nil {
				return errors.Wrapf(err, "failed to prepare lockup, %q", confs[i].ID())
			}

			ls[i] = l

			return nil
		},
	); err != nil {
		return err
	}

	for i := range ls {
		nd.lockups[ls[i].ID()] = ls[i]
	}

	return nil
}

func (nd *Node) prepareLockup(conf *config.Lockup) (*vesting.Lockup, error) {
	s, found, err := nd.db.Schedule(conf.ID())
	if err != nil {
		return nil, err
	}

	var l *vesting.Lockup
	if found {
		l, err = vesting.RestoreLockup(s, nd.ledger, nd.clock, nd.sink)
	} else {
		l, err = vesting.NewLockup(conf.Params(), nd.ledger, nd.clock, nd.sink)
	}

	if err != nil {
		return nil, err
	}

	_ = l.SetLogging(nd.Logging)
	_ = l.SetStore(nd.db)

	if !found {
		if err := nd.db.SaveSchedule(l.Schedule()); err != nil {
			return nil, err
		}
	}

	return l, nil
}
