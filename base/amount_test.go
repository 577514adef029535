package base

import (
	"math/big"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/suite"

	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/util"
	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/util/isvalid"
)

type testAmount struct {
	suite.Suite
}

func (t *testAmount) TestParse() {
	a, err := ParseAmount("1000")
	t.NoError(err)
	t.Equal("1000", a.String())

	_, err = ParseAmount("-1")
	t.True(errors.Is(err, isvalid.InvalidError))

	_, err = ParseAmount("1.5")
	t.True(errors.Is(err, isvalid.InvalidError))
}

func (t *testAmount) TestSub() {
	a := NewAmount(10)

	b, err := a.Sub(NewAmount(3))
	t.NoError(err)
	t.True(b.Equal(NewAmount(7)))
	t.True(a.Equal(NewAmount(10)))

	_, err = a.Sub(NewAmount(11))
	t.True(errors.Is(err, ArithmeticError))
	t.True(errors.Is(err, UnderflowError))
}

func (t *testAmount) TestMulDivDoesNotOverflow() {
	// product exceeds 2^256 but the quotient does not
	a := MaxAmount

	n := new(big.Int).Lsh(big.NewInt(1), 62)
	d := new(big.Int).Lsh(big.NewInt(1), 63)

	r, err := a.MulDiv(n, d)
	t.NoError(err)
	t.Equal(0, r.Cmp(NewAmountFromBigInt(new(big.Int).Rsh(MaxAmount.BigInt(), 1))))
}

func (t *testAmount) TestMulDivZeroDivisor() {
	_, err := NewAmount(3).MulDiv(big.NewInt(1), big.NewInt(0))
	t.True(errors.Is(err, ArithmeticError))
	t.True(errors.Is(err, DivisionByZeroError))
}

func (t *testAmount) TestJSON() {
	type holder struct {
		A Amount `json:"a"`
	}

	b, err := util.JSONMarshal(holder{A: MustParseAmount("123456789012345678901234567890")})
	t.NoError(err)
	t.Equal(`{"a":"123456789012345678901234567890"}`, string(b))

	var h holder
	t.NoError(util.JSONUnmarshal(b, &h))
	t.Equal("123456789012345678901234567890", h.A.String())

	t.Error(util.JSONUnmarshal([]byte(`{"a":"-3"}`), &h))
}

func TestAmount(t *testing.T) {
	suite.Run(t, new(testAmount))
}
