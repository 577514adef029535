package storage

import (
	"github.com/pkg/errors"

	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/util"
)

var (
	StorageError = util.NewError("storage error")
	TimeoutError = util.NewError("timeout")
)

// WrapStorageError wraps err by StorageError unless it is already known
// error.
func WrapStorageError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, util.NotFoundError),
		errors.Is(err, util.DuplicatedError),
		errors.Is(err, TimeoutError),
		errors.Is(err, StorageError):
		return err
	default:
		return StorageError.Wrap(err)
	}
}
