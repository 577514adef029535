package cache

import (
	"net/url"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/suite"

	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/util"
)

type testGCache struct {
	suite.Suite
}

func (t *testGCache) TestNew() {
	ca, err := NewGCacheWithQuery(nil)
	t.NoError(err)

	t.Implements((*Cache)(nil), ca)

	t.Equal(DefaultGCacheSize, ca.size)
	t.Equal(DefaultCacheExpire, ca.expire)
	t.Equal(DefaultGCacheType, ca.tp)
}

func (t *testGCache) TestWithSize() {
	query := url.Values{}
	query.Set("size", "a3333")
	_, err := NewGCacheWithQuery(query)
	t.Contains(err.Error(), "invalid size")

	query.Set("size", "3333")
	ca, err := NewGCacheWithQuery(query)
	t.NoError(err)
	t.Equal(3333, ca.size)
}

func (t *testGCache) TestWithExpire() {
	query := url.Values{}
	query.Set("expire", "showme")
	_, err := NewGCacheWithQuery(query)
	t.Contains(err.Error(), "invalid expire")

	query.Set("expire", "33s")
	ca, err := NewGCacheWithQuery(query)
	t.NoError(err)
	t.Equal(time.Second*33, ca.expire)
}

func (t *testGCache) TestWrongType() {
	query := url.Values{}
	query.Set("type", "fifo")
	_, err := NewGCacheWithQuery(query)
	t.Contains(err.Error(), "not supported type")
}

func (t *testGCache) TestSetGet() {
	ca, err := NewGCache("lru", 10, time.Minute)
	t.NoError(err)

	_, err = ca.Get("showme")
	t.True(errors.Is(err, util.NotFoundError))

	t.NoError(ca.Set("showme", 3, 0))
	t.True(ca.Has("showme"))

	i, err := ca.Get("showme")
	t.NoError(err)
	t.Equal(3, i)

	t.True(ca.Remove("showme"))
	t.False(ca.Has("showme"))
}

func (t *testGCache) TestFromURI() {
	ca, err := NewCacheFromURI("gcache:?type=arc&size=33&expire=3s")
	t.NoError(err)

	gc, ok := ca.(*GCache)
	t.True(ok)
	t.Equal("arc", gc.tp)
	t.Equal(33, gc.size)

	ca, err = NewCacheFromURI("dummy:")
	t.NoError(err)
	t.IsType(Dummy{}, ca)

	_, err = NewCacheFromURI("redis://")
	t.Contains(err.Error(), "not supported uri")
}

func TestGCache(t *testing.T) {
	suite.Run(t, new(testGCache))
}
