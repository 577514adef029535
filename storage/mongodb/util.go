package mongodbstorage

import (
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"

	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/storage"
)

func checkURI(uri string) (connstring.ConnString, error) {
	cs, err := connstring.ParseAndValidate(uri)
	if err != nil {
		return connstring.ConnString{}, storage.WrapStorageError(err)
	}

	if len(cs.Database) < 1 {
		return connstring.ConnString{}, storage.WrapStorageError(errors.Errorf("empty database name in mongodb uri, %q", uri))
	}

	return cs, nil
}

// ParseTimeouts reads connectTimeout and execTimeout from the uri query.
func ParseTimeouts(uri string, connectTimeout, execTimeout time.Duration) (time.Duration, time.Duration, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return 0, 0, errors.Wrap(err, "invalid mongodb uri")
	}

	query := u.Query()

	ct, err := parseDurationFromQuery(query, "connectTimeout", connectTimeout)
	if err != nil {
		return 0, 0, err
	}

	et, err := parseDurationFromQuery(query, "execTimeout", execTimeout)
	if err != nil {
		return 0, 0, err
	}

	return ct, et, nil
}

func parseDurationFromQuery(query url.Values, key string, v time.Duration) (time.Duration, error) {
	sl, found := query[key]
	if !found || len(sl) < 1 {
		return v, nil
	}

	s := strings.TrimSpace(sl[len(sl)-1]) // last one wins
	if len(s) < 1 {
		return v, nil
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid %s value for mongodb", key)
	}

	return d, nil
}

// CleanURI removes the custom query keys, which the mongodb driver does not
// know.
func CleanURI(uri string) (string, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", errors.Wrap(err, "invalid mongodb uri")
	}

	query := u.Query()
	query.Del("connectTimeout")
	query.Del("execTimeout")
	u.RawQuery = query.Encode()

	return u.String(), nil
}
