package leveldbstorage

import (
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/syndtr/goleveldb/leveldb"
	leveldbErrors "github.com/syndtr/goleveldb/leveldb/errors"
	leveldbStorage "github.com/syndtr/goleveldb/leveldb/storage"
	leveldbutil "github.com/syndtr/goleveldb/leveldb/util"

	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/federation"
	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/storage"
	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/util"
	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/util/logging"
	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/vesting"
)

var (
	keyPrefixSchedule   = []byte{0x00, 0x01}
	keyPrefixFederation = []byte{0x00, 0x02}
	keyPrefixBalance    = []byte{0x00, 0x03}
	keyPrefixSupply     = []byte{0x00, 0x04}
)

var _ storage.Database = (*Database)(nil)

type Database struct {
	*logging.Logging
	db *leveldb.DB
}

func NewDatabase(db *leveldb.DB) *Database {
	return &Database{
		Logging: logging.NewLogging(func(c zerolog.Context) zerolog.Context {
			return c.Str("module", "leveldb-database")
		}),
		db: db,
	}
}

func NewMemDatabase() *Database {
	db, _ := leveldb.Open(leveldbStorage.NewMemStorage(), nil)

	return NewDatabase(db)
}

// Open opens the database files under path.
func Open(path string) (*Database, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, storage.WrapStorageError(errors.Wrapf(err, "failed to open leveldb, %q", path))
	}

	return NewDatabase(db), nil
}

func (st *Database) Initialize() error {
	return nil
}

func (st *Database) Close() error {
	return mergeError(st.db.Close())
}

func (st *Database) Clean() error {
	batch := &leveldb.Batch{}

	if err := st.iter(
		nil,
		func(key, _ []byte) (bool, error) {
			batch.Delete(key)

			return true, nil
		},
		true,
	); err != nil {
		return err
	}

	return mergeError(st.db.Write(batch, nil))
}

func (st *Database) SaveSchedule(s vesting.Schedule) error {
	b, err := util.JSONMarshal(s)
	if err != nil {
		return err
	}

	return mergeError(st.db.Put(leveldbScheduleKey(s.ID), b, nil))
}

func (st *Database) Schedule(id string) (vesting.Schedule, bool, error) {
	b, err := st.get(leveldbScheduleKey(id))
	if err != nil {
		if errors.Is(err, util.NotFoundError) {
			return vesting.Schedule{}, false, nil
		}

		return vesting.Schedule{}, false, err
	}

	s, err := loadSchedule(b)
	if err != nil {
		return vesting.Schedule{}, false, err
	}

	return s, true, nil
}

// Schedules iterates every schedule by id.
func (st *Database) Schedules(callback func(vesting.Schedule) (bool, error)) error {
	return st.iter(
		keyPrefixSchedule,
		func(_, value []byte) (bool, error) {
			s, err := loadSchedule(value)
			if err != nil {
				return false, err
			}

			return callback(s)
		},
		true,
	)
}

func (st *Database) SaveFederationState(s federation.State) error {
	b, err := util.JSONMarshal(s)
	if err != nil {
		return err
	}

	return mergeError(st.db.Put(leveldbFederationKey(s.ID), b, nil))
}

func (st *Database) FederationState(id string) (federation.State, bool, error) {
	b, err := st.get(leveldbFederationKey(id))
	if err != nil {
		if errors.Is(err, util.NotFoundError) {
			return federation.State{}, false, nil
		}

		return federation.State{}, false, err
	}

	var s federation.State
	if err := util.JSONUnmarshal(b, &s); err != nil {
		return federation.State{}, false, storage.WrapStorageError(err)
	}

	return s, true, nil
}

func (st *Database) get(key []byte) ([]byte, error) {
	b, err := st.db.Get(key, nil)

	return b, mergeError(err)
}

func (st *Database) iter(
	prefix []byte,
	callback func([]byte /* key */, []byte /* value */) (bool, error),
	sort bool,
) error {
	iter := st.db.NewIterator(leveldbutil.BytesPrefix(prefix), nil)
	defer iter.Release()

	var seek func() bool
	var next func() bool
	if sort {
		seek = iter.First
		next = iter.Next
	} else {
		seek = iter.Last
		next = iter.Prev
	}

	if !seek() {
		return nil
	}

	for {
		if keep, err := callback(util.CopyBytes(iter.Key()), util.CopyBytes(iter.Value())); err != nil {
			return err
		} else if !keep {
			break
		}

		if !next() {
			break
		}
	}

	return mergeError(iter.Error())
}

func loadSchedule(b []byte) (vesting.Schedule, error) {
	var s vesting.Schedule
	if err := util.JSONUnmarshal(b, &s); err != nil {
		return vesting.Schedule{}, storage.WrapStorageError(err)
	}

	return s, nil
}

func leveldbScheduleKey(id string) []byte {
	return util.ConcatBytesSlice(keyPrefixSchedule, []byte(id))
}

func leveldbFederationKey(id string) []byte {
	return util.ConcatBytesSlice(keyPrefixFederation, []byte(id))
}

func leveldbBalanceKey(a string) []byte {
	return util.ConcatBytesSlice(keyPrefixBalance, []byte(a))
}

func mergeError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, leveldbErrors.ErrNotFound) {
		return util.NotFoundError.Wrap(err)
	}

	return storage.WrapStorageError(err)
}
