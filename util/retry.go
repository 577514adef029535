package util

import (
	"time"

	"github.com/pkg/errors"
)

var StopRetryingError = NewError("stop retrying")

// Retry calls callback until it succeeds; max 0 retries forever.
func Retry(max uint, interval time.Duration, callback func(int) error) error {
	var err error
	var tried int

	for {
		if max > 0 && uint(tried) == max {
			break
		}

		if err = callback(tried); err == nil {
			return nil
		} else if errors.Is(err, StopRetryingError) {
			return err
		}

		tried++

		if interval > 0 {
			<-time.After(interval)
		}
	}

	return err
}
