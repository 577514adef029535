package config

import (
	"github.com/pkg/errors"

	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/util/isvalid"
)

// Local is the config of one lockctl instance.
type Local struct {
	log        *Log
	storage    *Storage
	timeServer *TimeServer
	federation *Federation
	lockups    []*Lockup
}

func NewLocal() *Local {
	return &Local{
		log:        &Log{level: DefaultLogLevel},
		storage:    &Storage{},
		timeServer: &TimeServer{},
		federation: &Federation{},
	}
}

func (no *Local) Log() *Log {
	return no.log
}

func (no *Local) Storage() *Storage {
	return no.storage
}

func (no *Local) TimeServer() *TimeServer {
	return no.timeServer
}

func (no *Local) Federation() *Federation {
	return no.federation
}

func (no *Local) Lockups() []*Lockup {
	return no.lockups
}

func (no *Local) AddLockup(l *Lockup) error {
	for i := range no.lockups {
		if no.lockups[i].ID() == l.ID() {
			return isvalid.InvalidError.Errorf("duplicated lockup id, %q", l.ID())
		}
	}

	no.lockups = append(no.lockups, l)

	return nil
}

func (no *Local) Lockup(id string) (*Lockup, error) {
	for i := range no.lockups {
		if no.lockups[i].ID() == id {
			return no.lockups[i], nil
		}
	}

	return nil, errors.Errorf("unknown lockup, %q", id)
}
