package yamlconfig

import (
	"sort"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/launch/config"
)

type Local struct {
	Log        *Log                   `yaml:",omitempty"`
	Storage    *Storage               `yaml:",omitempty"`
	TimeServer *TimeServer            `yaml:"time-server,omitempty"`
	Federation *Federation            `yaml:",omitempty"`
	Lockups    []Lockup               `yaml:",omitempty"`
	Extras     map[string]interface{} `yaml:",inline"`
}

func (no Local) Set(conf *config.Local) error {
	if no.Log != nil {
		if err := no.Log.Set(conf.Log()); err != nil {
			return errors.Wrap(err, "invalid log config")
		}
	}

	if no.Storage != nil {
		if err := no.Storage.Set(conf.Storage()); err != nil {
			return errors.Wrap(err, "invalid storage config")
		}
	}

	if no.TimeServer != nil {
		if err := no.TimeServer.Set(conf.TimeServer()); err != nil {
			return errors.Wrap(err, "invalid time server config")
		}
	}

	if no.Federation != nil {
		if err := no.Federation.Set(conf.Federation()); err != nil {
			return errors.Wrap(err, "invalid federation config")
		}
	}

	for i := range no.Lockups {
		l := &config.Lockup{}
		if err := no.Lockups[i].Set(l); err != nil {
			return errors.Wrapf(err, "invalid lockup config, %d", i)
		}

		if err := conf.AddLockup(l); err != nil {
			return err
		}
	}

	return nil
}

// Load decodes the yaml config and fills the default values.
func Load(b []byte) (*config.Local, error) {
	var no Local
	if err := yaml.Unmarshal(b, &no); err != nil {
		return nil, errors.Wrap(err, "failed to decode yaml config")
	}

	if len(no.Extras) > 0 {
		keys := make([]string, 0, len(no.Extras))
		for k := range no.Extras {
			keys = append(keys, k)
		}

		sort.Strings(keys)

		return nil, errors.Errorf("unknown config keys, %q", keys)
	}

	conf := config.NewLocal()
	if err := no.Set(conf); err != nil {
		return nil, err
	}

	if err := config.NewChecker(conf).Check(); err != nil {
		return nil, err
	}

	return conf, nil
}
