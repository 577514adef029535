package leveldbstorage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/ballot"
	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/base"
	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/federation"
	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/vesting"
)

type testDatabase struct {
	suite.Suite
	database *Database
}

func (t *testDatabase) SetupTest() {
	t.database = NewMemDatabase()
}

func (t *testDatabase) TearDownTest() {
	_ = t.database.Close()
}

func (t *testDatabase) newSchedule(id string) vesting.Schedule {
	return vesting.Schedule{
		ID:           id,
		Beneficiary:  "beneficiary",
		Deployer:     "deployer",
		Token:        "gdb",
		Holder:       base.Address("holder-" + id),
		DeliveryTime: time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC),
		LockDuration: time.Hour * 24 * 180,
		Mode:         vesting.PullFunding,
		Locked:       base.NewAmount(1000),
		Withdrawn:    base.NewAmount(33),
	}
}

func (t *testDatabase) TestSchedule() {
	s := t.newSchedule("findme")
	t.NoError(t.database.SaveSchedule(s))

	us, found, err := t.database.Schedule("findme")
	t.NoError(err)
	t.True(found)

	t.Equal(s.ID, us.ID)
	t.Equal(s.Holder, us.Holder)
	t.True(s.DeliveryTime.Equal(us.DeliveryTime))
	t.Equal(s.LockDuration, us.LockDuration)
	t.Equal(s.Mode, us.Mode)
	t.True(s.Locked.Equal(us.Locked))
	t.True(s.Withdrawn.Equal(us.Withdrawn))

	_, found, err = t.database.Schedule("showme")
	t.NoError(err)
	t.False(found)
}

func (t *testDatabase) TestSchedules() {
	for _, id := range []string{"c", "a", "b"} {
		t.NoError(t.database.SaveSchedule(t.newSchedule(id)))
	}

	var ids []string
	t.NoError(t.database.Schedules(func(s vesting.Schedule) (bool, error) {
		ids = append(ids, s.ID)

		return true, nil
	}))

	t.Equal([]string{"a", "b", "c"}, ids)
}

func (t *testDatabase) TestFederationState() {
	b, err := ballot.New(ballot.KindStake, "member-a", "member-a", base.NewAmount(70), base.NewAmount(100),
		time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC), time.Hour)
	t.NoError(err)

	box := ballot.NewBox()
	_, err = box.Open(b)
	t.NoError(err)

	st := federation.State{
		ID: "geodb",
		Members: []federation.Member{
			{Address: "member-a", Stake: base.NewAmount(100), Approved: true},
		},
		MinimumStake: base.NewAmount(50),
		Ballots:      box.Ballots(),
	}

	t.NoError(t.database.SaveFederationState(st))

	ust, found, err := t.database.FederationState("geodb")
	t.NoError(err)
	t.True(found)

	t.Equal(st.ID, ust.ID)
	t.Equal(1, len(ust.Members))
	t.True(ust.MinimumStake.Equal(st.MinimumStake))
	t.Equal(1, len(ust.Ballots))
	t.Equal("stake:0", ust.Ballots[0].Ref())
	t.True(ust.Ballots[0].HasVoted("member-a"))

	_, found, err = t.database.FederationState("showme")
	t.NoError(err)
	t.False(found)
}

func (t *testDatabase) TestClean() {
	t.NoError(t.database.SaveSchedule(t.newSchedule("findme")))
	t.NoError(t.database.Clean())

	_, found, err := t.database.Schedule("findme")
	t.NoError(err)
	t.False(found)
}

func TestDatabase(t *testing.T) {
	suite.Run(t, new(testDatabase))
}
