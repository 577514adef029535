package yamlconfig

import (
	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/launch/config"
)

type Storage struct {
	Path         *string `yaml:",omitempty"`
	Cache        *string `yaml:",omitempty"`
	EventArchive *string `yaml:"event-archive,omitempty"`
	InMemory     *bool   `yaml:"in-memory,omitempty"`
}

func (no Storage) Set(conf *config.Storage) error {
	if no.Path != nil {
		if err := conf.SetPath(*no.Path); err != nil {
			return err
		}
	}

	if no.Cache != nil {
		if err := conf.SetCache(*no.Cache); err != nil {
			return err
		}
	}

	if no.EventArchive != nil {
		if err := conf.SetEventArchive(*no.EventArchive); err != nil {
			return err
		}
	}

	if no.InMemory != nil {
		if err := conf.SetInMemory(*no.InMemory); err != nil {
			return err
		}
	}

	return nil
}

type TimeServer struct {
	Server       *string `yaml:",omitempty"`
	SyncInterval *string `yaml:"sync-interval,omitempty"`
}

func (no TimeServer) Set(conf *config.TimeServer) error {
	if no.Server != nil {
		if err := conf.SetServer(*no.Server); err != nil {
			return err
		}
	}

	if no.SyncInterval != nil {
		if err := conf.SetSyncInterval(*no.SyncInterval); err != nil {
			return err
		}
	}

	return nil
}
