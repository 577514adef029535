package base

import (
	"math/big"
	"strings"

	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/util"
	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/util/isvalid"
)

var (
	ZeroAmount = NewAmount(0)
	// MaxAmount is the largest value of 256 bit unsigned token ledgers; it is
	// used as sentinel for "no limit".
	MaxAmount = Amount{i: *new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))}
)

// Amount is a non-negative token quantity of arbitrary precision. Amount
// never mutates in place; every operation returns new Amount.
type Amount struct {
	i big.Int
}

func NewAmount(i int64) Amount {
	var a big.Int
	a.SetInt64(i)

	return Amount{i: a}
}

func NewAmountFromBigInt(b *big.Int) Amount {
	var a big.Int
	a.Set(b)

	return Amount{i: a}
}

func ParseAmount(s string) (Amount, error) {
	var a big.Int
	if _, ok := a.SetString(strings.TrimSpace(s), 10); !ok {
		return Amount{}, isvalid.InvalidError.Errorf("invalid amount string, %q", s)
	}

	am := Amount{i: a}

	return am, am.IsValid(nil)
}

func MustParseAmount(s string) Amount {
	a, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}

	return a
}

func (a Amount) IsValid([]byte) error {
	if a.i.Sign() < 0 {
		return isvalid.InvalidError.Errorf("negative amount, %s", a.String())
	}

	return nil
}

func (a Amount) BigInt() *big.Int {
	return new(big.Int).Set(&a.i)
}

func (a Amount) String() string {
	return a.i.String()
}

func (a Amount) IsZero() bool {
	return a.i.Sign() == 0
}

func (a Amount) Cmp(b Amount) int {
	return a.i.Cmp(&b.i)
}

func (a Amount) Equal(b Amount) bool {
	return a.Cmp(b) == 0
}

func (a Amount) Add(b Amount) Amount {
	var n big.Int
	n.Add(&a.i, &b.i)

	return Amount{i: n}
}

// Sub fails with ArithmeticError when b is greater than a.
func (a Amount) Sub(b Amount) (Amount, error) {
	if a.Cmp(b) < 0 {
		return Amount{}, ArithmeticError.Wrap(UnderflowError.Errorf("%s - %s", a, b))
	}

	var n big.Int
	n.Sub(&a.i, &b.i)

	return Amount{i: n}, nil
}

func (a Amount) Mul(b Amount) Amount {
	var n big.Int
	n.Mul(&a.i, &b.i)

	return Amount{i: n}
}

// MulDiv returns floor(a * n / d); the product is kept in full precision
// before the single division.
func (a Amount) MulDiv(n, d *big.Int) (Amount, error) {
	if d.Sign() == 0 {
		return Amount{}, ArithmeticError.Wrap(DivisionByZeroError.Call())
	}

	if n.Sign() < 0 || d.Sign() < 0 {
		return Amount{}, ArithmeticError.Errorf("negative ratio, %s/%s", n, d)
	}

	var p big.Int
	p.Mul(&a.i, n)
	p.Quo(&p, d)

	return Amount{i: p}, nil
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return util.JSONMarshal(a.String())
}

func (a *Amount) UnmarshalJSON(b []byte) error {
	var s string
	if err := util.JSONUnmarshal(b, &s); err != nil {
		return isvalid.InvalidError.Wrap(err)
	}

	return a.UnmarshalText([]byte(s))
}

func (a Amount) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Amount) UnmarshalText(b []byte) error {
	am, err := ParseAmount(string(b))
	if err != nil {
		return err
	}

	*a = am

	return nil
}
