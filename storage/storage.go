package storage

import (
	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/federation"
	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/vesting"
)

// Database keeps the state of lockups and federations.
type Database interface {
	vesting.ScheduleStore
	federation.StateStore
	Initialize() error
	Close() error
	Clean() error
	Schedule(id string) (vesting.Schedule, bool, error)
	Schedules(callback func(vesting.Schedule) (bool, error)) error
	FederationState(id string) (federation.State, bool, error)
}
