package localtime

import (
	"context"
	"sync"
	"time"

	"github.com/beevik/ntp"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/util"
	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/util/logging"
)

var (
	allowedTimeSyncOffset    = time.Millisecond * 500
	minTimeSyncCheckInterval = time.Second * 5
	timeSyncRetryInterval    = time.Second * 2
	timeSyncer               *TimeSyncer
	timeSyncerLock           sync.RWMutex
)

type ntpQuery func(string) (*ntp.Response, error)

// TimeSyncer keeps the offset against the time server.
type TimeSyncer struct {
	sync.RWMutex
	*logging.Logging
	*util.ContextDaemon
	server   string
	offset   time.Duration
	interval time.Duration
	query    ntpQuery
}

func NewTimeSyncer(server string, checkInterval time.Duration) (*TimeSyncer, error) {
	return newTimeSyncer(server, checkInterval, ntp.Query)
}

func newTimeSyncer(server string, checkInterval time.Duration, query ntpQuery) (*TimeSyncer, error) {
	if err := util.Retry(3, timeSyncRetryInterval, func(int) error {
		_, err := query(server)

		return err
	}); err != nil {
		return nil, errors.Wrapf(err, "failed to query ntp server, %q", server)
	}

	ts := &TimeSyncer{
		Logging: logging.NewLogging(func(c zerolog.Context) zerolog.Context {
			return c.Str("module", "time-syncer").
				Str("server", server).
				Dur("interval", checkInterval)
		}),
		server:   server,
		interval: checkInterval,
		query:    query,
	}

	ts.ContextDaemon = util.NewContextDaemon("time-syncer", ts.schedule)

	ts.check()

	return ts, nil
}

func (ts *TimeSyncer) Start() error {
	if ts.interval < minTimeSyncCheckInterval {
		ts.Log().Warn().
			Dur("check_interval", ts.interval).
			Dur("min_check_interval", minTimeSyncCheckInterval).
			Msg("interval too short")
	}

	return ts.ContextDaemon.Start()
}

func (ts *TimeSyncer) schedule(ctx context.Context) error {
	ticker := time.NewTicker(ts.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			ts.check()
		}
	}
}

// Offset returns the latest time offset.
func (ts *TimeSyncer) Offset() time.Duration {
	ts.RLock()
	defer ts.RUnlock()

	return ts.offset
}

func (ts *TimeSyncer) check() {
	ts.Lock()
	defer ts.Unlock()

	response, err := ts.query(ts.server)
	if err != nil {
		ts.Log().Error().Err(err).Msg("failed to query")

		return
	}

	if err := response.Validate(); err != nil {
		ts.Log().Error().Err(err).Msg("invalid response")

		return
	}

	switch diff := ts.offset - response.ClockOffset; {
	case ts.offset == 0:
	case diff > -allowedTimeSyncOffset && diff < allowedTimeSyncOffset:
		return
	}

	ts.offset = response.ClockOffset

	ts.Log().Debug().Dur("offset", ts.offset).Msg("time offset updated")
}

// SetTimeSyncer sets the global TimeSyncer; nil unsets.
func SetTimeSyncer(syncer *TimeSyncer) {
	timeSyncerLock.Lock()
	defer timeSyncerLock.Unlock()

	timeSyncer = syncer
}

// Now returns the tuned time with TimeSyncer.Offset().
func Now() time.Time {
	timeSyncerLock.RLock()
	defer timeSyncerLock.RUnlock()

	if timeSyncer == nil {
		return time.Now()
	}

	return time.Now().Add(timeSyncer.Offset())
}

func UTCNow() time.Time {
	return Now().UTC()
}
