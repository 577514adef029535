package cache

import (
	"time"

	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/util"
)

// Dummy caches nothing.
type Dummy struct{}

func (Dummy) Has(interface{}) bool {
	return false
}

func (Dummy) Get(interface{}) (interface{}, error) {
	return nil, util.NotFoundError.Call()
}

func (Dummy) Set(interface{}, interface{}, time.Duration) error {
	return nil
}

func (Dummy) Remove(interface{}) bool {
	return false
}

func (Dummy) Purge() error {
	return nil
}
