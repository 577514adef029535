package cmds

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/util"
	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/util/localtime"
)

var testConfig = `
log:
  level: error
  format: json
storage:
  in-memory: true
federation:
  id: fd0
  escrow: escrow
  minimum-stake: "50"
  voting-window: 1h
  genesis:
    - address: member-a
      stake: "100"
    - address: member-b
      stake: "100"
lockups:
  - id: lk0
    beneficiary: showme
    deployer: deployer
    holder: lockup-holder
    lock-duration: 100s
`

type testCommands struct {
	suite.Suite
	clock      *localtime.ManualClock
	configFile string
	out        *bytes.Buffer
	rt         *Runtime
}

func (t *testCommands) SetupTest() {
	t.clock = localtime.NewManualClock(time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC))

	t.configFile = filepath.Join(t.T().TempDir(), "config.yml")
	t.NoError(os.WriteFile(t.configFile, []byte(testConfig), 0o600))

	t.out = &bytes.Buffer{}
	t.rt = nil
}

func (t *testCommands) TearDownTest() {
	if t.rt != nil {
		t.rt.Done()
	}
}

func (t *testCommands) run(args ...string) map[string]interface{} {
	var flags Flags

	kctx, err := Context(append([]string{"--config", t.configFile}, args...), &flags)
	t.NoError(err)

	if t.rt == nil {
		t.rt = NewRuntime(flags.CommonFlags, t.out, &bytes.Buffer{}).SetClock(t.clock)
		t.NoError(t.rt.Initialize())
	}

	t.out.Reset()

	if err := kctx.Run(t.rt); err != nil {
		t.T().Logf("failed: %+v", err)

		return map[string]interface{}{"error": err.Error()}
	}

	var m map[string]interface{}
	t.NoError(util.JSONUnmarshal(t.out.Bytes(), &m))

	return m
}

func (t *testCommands) TestAllowance() {
	m := t.run("allowance", "1000",
		"--delivery", "2021-01-01T00:00:00Z",
		"--duration", "100s",
		"--now", "2021-01-01T00:00:25Z",
	)

	t.Equal("1000", m["locked"])
	t.Equal("250", m["allowance"])
	t.Equal("0.25", m["ratio"])
}

func (t *testCommands) TestAllowanceUnbounded() {
	m := t.run("allowance", "1000",
		"--delivery", "2021-01-01T00:00:00Z",
		"--duration", "100s",
		"--now", "2021-01-01T00:10:00Z",
		"--unbounded",
	)

	t.NotEqual("1000", m["allowance"])
	t.Equal("1", m["ratio"])
}

func (t *testCommands) TestAllowanceInvalidDuration() {
	m := t.run("allowance", "1000",
		"--delivery", "2021-01-01T00:00:00Z",
		"--duration", "0s",
	)

	t.Contains(m["error"], "lock duration")
}

func (t *testCommands) TestLockup() {
	m := t.run("token", "mint", "lockup-holder", "1000", "--operator", "deployer")
	t.Equal("1000", m["balance"])

	m = t.run("lockup", "lock", "lk0", "--caller", "deployer")
	t.Equal("1000", m["locked"])
	t.Equal("0", m["allowance"])

	t.clock.Add(time.Second * 50)

	m = t.run("lockup", "unlock", "lk0", "300", "--caller", "showme")
	t.Equal("300", m["withdrawn"])
	t.Equal("500", m["allowance"])
	t.Equal("700", m["balance"])

	m = t.run("lockup", "unlock", "lk0", "300", "--caller", "showme")
	t.Contains(m["error"], "allowance exceeded")

	m = t.run("token", "balance", "showme")
	t.Equal("300", m["balance"])
	t.Equal("1200", m["total_supply"]) // with the genesis stake of escrow

	m = t.run("lockup", "status", "lk0")
	t.Equal("lk0", m["id"])
	t.Equal("0.5", m["ratio"])

	m = t.run("lockup", "status", "unknown")
	t.Contains(m["error"], "unknown lockup")
}

func (t *testCommands) TestTokenTransfer() {
	m := t.run("token", "mint", "showme", "100", "--operator", "showme")
	t.Equal("100", m["balance"])

	m = t.run("token", "transfer", "showme", "findme", "40")
	t.Equal("40", m["balance"])

	m = t.run("token", "balance", "showme")
	t.Equal("60", m["balance"])
}

func (t *testCommands) TestTokenTransferFromGuarded() {
	m := t.run("token", "mint", "lockup-holder", "1000", "--operator", "deployer")
	t.Equal("1000", m["balance"])

	m = t.run("lockup", "lock", "lk0", "--caller", "deployer")
	t.Equal("1000", m["locked"])

	m = t.run("token", "transfer", "lockup-holder", "findme", "1000")
	t.Contains(m["error"], "use unlock")

	m = t.run("token", "transfer", "escrow", "findme", "200")
	t.Contains(m["error"], "stake is escrowed")

	m = t.run("token", "balance", "findme")
	t.Equal("0", m["balance"])

	m = t.run("token", "balance", "lockup-holder")
	t.Equal("1000", m["balance"])

	m = t.run("token", "balance", "escrow")
	t.Equal("200", m["balance"])

	t.clock.Add(time.Second * 100)

	m = t.run("lockup", "unlock", "lk0", "1000", "--caller", "showme")
	t.Equal("1000", m["withdrawn"])
}

func (t *testCommands) TestFederationJoin() {
	m := t.run("token", "mint", "candidate", "100", "--operator", "candidate")
	t.Equal("100", m["balance"])

	m = t.run("federation", "propose", "join", "candidate", "100")
	t.Equal("join:candidate", m["ref"])

	m = t.run("federation", "resolve", "join:candidate")
	t.Contains(m["error"], "insufficient approvals")

	m = t.run("federation", "vote", "join:candidate", "--voter", "member-a")
	t.Equal("join:candidate", m["ref"])

	m = t.run("federation", "vote", "join:candidate", "--voter", "member-b")
	t.Equal("join:candidate", m["ref"])

	m = t.run("federation", "resolve", "join:candidate")
	t.Equal("APPROVED", m["ballot"].(map[string]interface{})["result"])

	m = t.run("federation", "status")
	t.Equal("300", m["total_stake"])
	t.Equal(3, len(m["members"].([]interface{})))
}

func (t *testCommands) TestFederationReward() {
	m := t.run("federation", "reward", "findme", "33", "--caller", "member-a")
	t.Equal("33", m["amount"])

	m = t.run("federation", "reward", "findme", "33", "--caller", "findme")
	t.Contains(m["error"], "authorization")

	m = t.run("token", "balance", "findme")
	t.Equal("33", m["balance"])
}

func (t *testCommands) TestEventsWithoutArchive() {
	m := t.run("events")
	t.Contains(m["error"], "event archive not configured")
}

func TestCommands(t *testing.T) {
	suite.Run(t, new(testCommands))
}
