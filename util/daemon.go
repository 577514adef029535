package util

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/util/logging"
)

var (
	DaemonAlreadyStartedError = NewError("daemon already started")
	DaemonAlreadyStoppedError = NewError("daemon already stopped")
)

type Daemon interface {
	Start() error
	Stop() error
}

// ContextDaemon runs fn in background until Stop cancels its context.
type ContextDaemon struct {
	sync.RWMutex
	*logging.Logging
	fn     func(context.Context) error
	cancel context.CancelFunc
	done   chan struct{}
}

func NewContextDaemon(name string, fn func(context.Context) error) *ContextDaemon {
	return &ContextDaemon{
		Logging: logging.NewLogging(func(c zerolog.Context) zerolog.Context {
			return c.Str("daemon", name)
		}),
		fn: fn,
	}
}

func (dm *ContextDaemon) IsStarted() bool {
	dm.RLock()
	defer dm.RUnlock()

	return dm.cancel != nil
}

func (dm *ContextDaemon) Start() error {
	dm.Lock()
	defer dm.Unlock()

	if dm.cancel != nil {
		return DaemonAlreadyStartedError.Call()
	}

	ctx, cancel := context.WithCancel(context.Background())
	dm.cancel = cancel
	dm.done = make(chan struct{})

	go func(done chan struct{}) {
		defer close(done)

		if err := dm.fn(ctx); err != nil && !errors.Is(err, context.Canceled) {
			dm.Log().Error().Err(err).Msg("daemon function failed")
		}
	}(dm.done)

	return nil
}

func (dm *ContextDaemon) Stop() error {
	dm.Lock()
	defer dm.Unlock()

	if dm.cancel == nil {
		return DaemonAlreadyStoppedError.Call()
	}

	dm.cancel()
	<-dm.done

	dm.cancel = nil
	dm.done = nil

	return nil
}
