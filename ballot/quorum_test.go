package ballot

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/base"
)

type testQuorum struct {
	suite.Suite
}

func (t *testQuorum) TestMajority() {
	cases := []struct {
		name      string
		total     int64
		approvals int64
		expected  bool
	}{
		{name: "half of even", total: 20, approvals: 10, expected: false},
		{name: "over half of even", total: 20, approvals: 11, expected: true},
		{name: "floor half of odd", total: 21, approvals: 10, expected: false},
		{name: "ceil half of odd", total: 21, approvals: 11, expected: true},
		{name: "all", total: 21, approvals: 21, expected: true},
		{name: "zero approvals", total: 1, approvals: 0, expected: false},
		{name: "zero total", total: 0, approvals: 0, expected: false},
	}

	for i, c := range cases {
		i := i
		c := c
		t.Run(c.name, func() {
			q := MajorityOf(base.NewAmount(c.total))
			t.Equal(c.expected, q.IsMet(base.NewAmount(c.approvals)), "%d: %v", i, c.name)
		})
	}
}

func (t *testQuorum) TestThreshold() {
	t.Equal("10", MajorityOf(base.NewAmount(20)).Threshold().String())
	t.Equal("10", MajorityOf(base.NewAmount(21)).Threshold().String())
}

func TestQuorum(t *testing.T) {
	suite.Run(t, new(testQuorum))
}
