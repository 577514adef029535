package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/pkg/errors"

	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/util/cache"
)

var (
	DefaultStoragePath  = "./lockup-data"
	DefaultStorageCache = fmt.Sprintf(
		"gcache:?type=%s&size=%d&expire=%s",
		cache.DefaultGCacheType,
		cache.DefaultGCacheSize,
		cache.DefaultCacheExpire.String(),
	)
)

type Storage struct {
	path     string
	cache    *url.URL
	archive  *url.URL
	inMemory bool
}

// Path is the directory of leveldb files.
func (no Storage) Path() string {
	return no.path
}

func (no *Storage) SetPath(s string) error {
	no.path = strings.TrimSpace(s)

	return nil
}

func (no Storage) Cache() *url.URL {
	return no.cache
}

func (no *Storage) SetCache(s string) error {
	u, err := ParseURLString(s, true)
	if err != nil {
		return err
	}

	if u != nil {
		if _, err := cache.NewCacheFromURI(u.String()); err != nil {
			return err
		}
	}

	no.cache = u

	return nil
}

// EventArchive is the mongodb uri of the event archive; nil means events are
// only logged.
func (no Storage) EventArchive() *url.URL {
	return no.archive
}

func (no *Storage) SetEventArchive(s string) error {
	u, err := ParseURLString(s, true)
	if err != nil {
		return err
	}

	if u != nil && u.Scheme != "mongodb" && u.Scheme != "mongodb+srv" {
		return errors.Errorf("event archive should be mongodb uri, %q", s)
	}

	no.archive = u

	return nil
}

func (no Storage) InMemory() bool {
	return no.inMemory
}

func (no *Storage) SetInMemory(b bool) error {
	no.inMemory = b

	return nil
}
