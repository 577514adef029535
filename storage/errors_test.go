package storage

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/suite"

	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/util"
)

type testErrors struct {
	suite.Suite
}

func (t *testErrors) TestWrapStorageError() {
	t.NoError(WrapStorageError(nil))

	err := WrapStorageError(errors.Errorf("showme"))
	t.True(errors.Is(err, StorageError))

	nf := util.NotFoundError.Errorf("findme")
	err = WrapStorageError(nf)
	t.True(errors.Is(err, util.NotFoundError))
	t.False(errors.Is(err, StorageError))

	err = WrapStorageError(StorageError.Errorf("killme"))
	t.Equal("storage error; killme", err.Error())
}

func TestErrors(t *testing.T) {
	suite.Run(t, new(testErrors))
}
