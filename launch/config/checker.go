package config

import (
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/federation"
	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/util/logging"
)

// Checker fills the default values and validates the config.
type Checker struct {
	*logging.Logging
	config *Local
}

func NewChecker(conf *Local) *Checker {
	return &Checker{
		Logging: logging.NewLogging(func(c zerolog.Context) zerolog.Context {
			return c.Str("module", "config-checker")
		}),
		config: conf,
	}
}

func (cc *Checker) Check() error {
	for _, f := range []func() (bool, error){
		cc.CheckLog,
		cc.CheckStorage,
		cc.CheckTimeServer,
		cc.CheckFederation,
		cc.CheckLockups,
	} {
		if keep, err := f(); err != nil {
			return err
		} else if !keep {
			break
		}
	}

	return nil
}

func (cc *Checker) CheckLog() (bool, error) {
	conf := cc.config.Log()

	if len(conf.Format()) < 1 {
		if err := conf.SetFormat(DefaultLogFormat); err != nil {
			return false, err
		}
	}

	return true, nil
}

func (cc *Checker) CheckStorage() (bool, error) {
	conf := cc.config.Storage()

	if !conf.InMemory() && len(conf.Path()) < 1 {
		if err := conf.SetPath(DefaultStoragePath); err != nil {
			return false, err
		}
	}

	if conf.Cache() == nil {
		if err := conf.SetCache(DefaultStorageCache); err != nil {
			return false, err
		}
	}

	return true, nil
}

func (cc *Checker) CheckTimeServer() (bool, error) {
	conf := cc.config.TimeServer()

	if len(conf.Server()) > 0 && conf.SyncInterval() == 0 {
		if err := conf.SetSyncInterval(DefaultTimeSyncInterval.String()); err != nil {
			return false, err
		}
	}

	return true, nil
}

func (cc *Checker) CheckFederation() (bool, error) {
	conf := cc.config.Federation()

	if len(conf.Genesis()) < 1 {
		cc.Log().Debug().Msg("empty genesis members; federation disabled")

		return true, nil
	}

	if len(conf.ID()) < 1 {
		if err := conf.SetID(DefaultFederationID); err != nil {
			return false, err
		}
	}

	if conf.VotingWindow() == 0 {
		if err := conf.SetVotingWindow(federation.DefaultVotingWindow.String()); err != nil {
			return false, err
		}
	}

	if err := conf.Params().IsValid(nil); err != nil {
		return false, errors.Wrap(err, "invalid federation config")
	}

	return true, nil
}

func (cc *Checker) CheckLockups() (bool, error) {
	// NOTE holder can be guarded by only one owner
	holders := map[string]string{}
	if fc := cc.config.Federation(); len(fc.Genesis()) > 0 {
		holders[fc.Escrow().String()] = "federation escrow"
	}

	for _, conf := range cc.config.Lockups() {
		if len(conf.Token()) < 1 {
			if err := conf.SetToken(DefaultLockupToken); err != nil {
				return false, err
			}
		}

		if len(conf.Mode()) < 1 {
			if err := conf.SetMode(DefaultLockupMode.String()); err != nil {
				return false, err
			}
		}

		if len(conf.ID()) < 1 {
			return false, errors.Errorf("empty lockup id")
		}

		if err := conf.Params().IsValid(nil); err != nil {
			return false, errors.Wrapf(err, "invalid lockup config, %q", conf.ID())
		}

		if owner, found := holders[conf.Holder().String()]; found {
			return false, errors.Errorf("holder of lockup, %q already used by %s", conf.ID(), owner)
		}

		holders[conf.Holder().String()] = "lockup " + conf.ID()
	}

	return true, nil
}
