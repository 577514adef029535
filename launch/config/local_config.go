package config

import (
	"strings"
	"time"

	"github.com/pkg/errors"
)

var DefaultTimeSyncInterval = time.Second * 10

type TimeServer struct {
	server       string
	syncInterval time.Duration
}

// Server is the ntp server; empty means the system clock is used as it is.
func (no TimeServer) Server() string {
	return no.server
}

func (no *TimeServer) SetServer(s string) error {
	no.server = strings.TrimSpace(s)

	return nil
}

func (no TimeServer) SyncInterval() time.Duration {
	return no.syncInterval
}

func (no *TimeServer) SetSyncInterval(s string) error {
	t, err := parseTimeDuration(s, true)
	if err != nil {
		return errors.Wrap(err, "invalid sync interval")
	}

	if t < 0 {
		return errors.Errorf("negative sync interval, %v", t)
	}

	no.syncInterval = t

	return nil
}
