package base

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/suite"

	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/util/isvalid"
)

type testAddress struct {
	suite.Suite
}

func (t *testAddress) TestValid() {
	for _, s := range []string{"ab", "beneficiary", "0xabcdef0123", "geo:member-1", "a.b_c"} {
		_, err := NewAddress(s)
		t.NoError(err, s)
	}
}

func (t *testAddress) TestInvalid() {
	for _, s := range []string{"", "a", "show me", "-ab", "ab-", "a\tb"} {
		_, err := NewAddress(s)
		t.True(errors.Is(err, isvalid.InvalidError), s)
	}
}

func (t *testAddress) TestSort() {
	as := []Address{"cc", "aa", "bb"}
	SortAddresses(as)

	t.Equal([]Address{"aa", "bb", "cc"}, as)
}

func TestAddress(t *testing.T) {
	suite.Run(t, new(testAddress))
}
