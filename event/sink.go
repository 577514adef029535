package event

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/util/logging"
)

// Sink receives the events of committed operations. An error of Sink does
// not revert the operation.
type Sink interface {
	Emit(...Event) error
}

type NilSink struct{}

func (NilSink) Emit(...Event) error {
	return nil
}

// LogSink writes events to the log.
type LogSink struct {
	*logging.Logging
}

func NewLogSink() *LogSink {
	return &LogSink{
		Logging: logging.NewLogging(func(c zerolog.Context) zerolog.Context {
			return c.Str("module", "event")
		}),
	}
}

func (ls *LogSink) Emit(es ...Event) error {
	for i := range es {
		e := es[i]

		l := ls.Log().Info().
			Str("id", e.ID).
			Str("kind", string(e.Kind)).
			Str("source", e.Source).
			Str("actor", e.Actor.String()).
			Str("amount", e.Amount.String()).
			Time("at", e.At)

		if !e.Subject.IsEmpty() {
			l = l.Str("subject", e.Subject.String())
		}

		if len(e.Ballot) > 0 {
			l = l.Str("ballot", e.Ballot)
		}

		if len(e.Extra) > 0 {
			l = l.Interface("extra", e.Extra)
		}

		l.Msg("event")
	}

	return nil
}

// MemSink keeps events in memory.
type MemSink struct {
	sync.RWMutex
	events []Event
}

func NewMemSink() *MemSink {
	return &MemSink{}
}

func (ms *MemSink) Emit(es ...Event) error {
	ms.Lock()
	defer ms.Unlock()

	ms.events = append(ms.events, es...)

	return nil
}

func (ms *MemSink) Events() []Event {
	ms.RLock()
	defer ms.RUnlock()

	es := make([]Event, len(ms.events))
	copy(es, ms.events)

	return es
}

// Filter returns the events of the given kind.
func (ms *MemSink) Filter(kind Kind) []Event {
	ms.RLock()
	defer ms.RUnlock()

	var es []Event
	for i := range ms.events {
		if ms.events[i].Kind == kind {
			es = append(es, ms.events[i])
		}
	}

	return es
}

// Sinks emits to every sink; every sink is tried even when one fails.
type Sinks []Sink

func (ss Sinks) Emit(es ...Event) error {
	var err error

	for i := range ss {
		if e := ss[i].Emit(es...); e != nil && err == nil {
			err = errors.Wrapf(e, "failed to emit to %T", ss[i])
		}
	}

	return err
}
