package event

import (
	"bytes"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/suite"

	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/base"
	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/util/logging"
)

type failSink struct{}

func (failSink) Emit(...Event) error {
	return errors.Errorf("killme")
}

type testSink struct {
	suite.Suite
}

func (t *testSink) newEvent(kind Kind) Event {
	return New(kind, "lockup-a", "showme", base.NewAmount(33), time.Now())
}

func (t *testSink) TestEventIDsAreUnique() {
	at := time.Now()
	a := New(KindLock, "lockup-a", "showme", base.ZeroAmount, at)
	b := New(KindLock, "lockup-a", "showme", base.ZeroAmount, at)

	t.NotEqual(a.ID, b.ID)
	t.True(a.ID < b.ID)
}

func (t *testSink) TestWith() {
	a := t.newEvent(KindBallotResolved).With("approved", "true")
	b := a.With("kind", "join")

	t.Equal(1, len(a.Extra))
	t.Equal(2, len(b.Extra))
}

func (t *testSink) TestMemSink() {
	ms := NewMemSink()
	t.NoError(ms.Emit(t.newEvent(KindLock), t.newEvent(KindUnlock), t.newEvent(KindUnlock)))

	t.Equal(3, len(ms.Events()))
	t.Equal(2, len(ms.Filter(KindUnlock)))
	t.Empty(ms.Filter(KindReward))
}

func (t *testSink) TestLogSink() {
	var buf bytes.Buffer

	ls := NewLogSink()
	_ = ls.SetLogging(logging.Setup(&buf, zerolog.InfoLevel, "json", false))

	t.NoError(ls.Emit(t.newEvent(KindLock).WithSubject("findme")))

	t.Contains(buf.String(), `"kind":"lock"`)
	t.Contains(buf.String(), `"subject":"findme"`)
	t.Contains(buf.String(), `"amount":"33"`)
}

func (t *testSink) TestSinksTryEvery() {
	ms := NewMemSink()

	err := Sinks{failSink{}, ms}.Emit(t.newEvent(KindLock))
	t.Contains(err.Error(), "killme")
	t.Equal(1, len(ms.Events()))
}

func TestSink(t *testing.T) {
	suite.Run(t, new(testSink))
}
