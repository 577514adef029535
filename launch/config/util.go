package config

import (
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
)

func parseTimeDuration(s string, allowEmpty bool) (time.Duration, error) {
	if s = strings.TrimSpace(s); len(s) < 1 {
		if !allowEmpty {
			return 0, errors.Errorf("empty string")
		}

		return 0, nil
	}

	return time.ParseDuration(s)
}

func ParseURLString(s string, allowEmpty bool) (*url.URL, error) {
	if s = strings.TrimSpace(s); len(s) < 1 {
		if !allowEmpty {
			return nil, errors.Errorf("empty url string")
		}

		return nil, nil
	}

	u, err := url.Parse(s)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid url, %q", s)
	}

	return u, nil
}
