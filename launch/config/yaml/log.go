package yamlconfig

import (
	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/launch/config"
)

type Log struct {
	Level      *string  `yaml:",omitempty"`
	Format     *string  `yaml:",omitempty"`
	Outputs    []string `yaml:",omitempty"`
	ForceColor *bool    `yaml:"force-color,omitempty"`
}

func (no Log) Set(conf *config.Log) error {
	if no.Level != nil {
		if err := conf.SetLevel(*no.Level); err != nil {
			return err
		}
	}

	if no.Format != nil {
		if err := conf.SetFormat(*no.Format); err != nil {
			return err
		}
	}

	if len(no.Outputs) > 0 {
		if err := conf.SetOutputs(no.Outputs); err != nil {
			return err
		}
	}

	if no.ForceColor != nil {
		if err := conf.SetForceColor(*no.ForceColor); err != nil {
			return err
		}
	}

	return nil
}
