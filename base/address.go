package base

import (
	"regexp"
	"sort"
	"strings"

	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/util/isvalid"
)

var (
	reBlankAddressString = regexp.MustCompile(`[\s][\s]*`)
	reAddressString      = regexp.MustCompile(`^[a-zA-Z0-9][\w\-:.]*[a-zA-Z0-9]$`)
	MaxAddressSize       = 100
)

var EmptyAddress = Address("")

// Address identifies a party on the token ledger: beneficiary, operator,
// federation member or the holding account of a lockup.
type Address string

func NewAddress(s string) (Address, error) {
	a := Address(strings.TrimSpace(s))

	return a, a.IsValid(nil)
}

func (a Address) String() string {
	return string(a)
}

func (a Address) IsEmpty() bool {
	return len(a) < 1
}

func (a Address) Equal(b Address) bool {
	return a == b
}

func (a Address) IsValid([]byte) error {
	switch {
	case a.IsEmpty():
		return isvalid.InvalidError.Errorf("empty address")
	case len(a) > MaxAddressSize:
		return isvalid.InvalidError.Errorf("too long address, %d > %d", len(a), MaxAddressSize)
	case reBlankAddressString.MatchString(string(a)):
		return isvalid.InvalidError.Errorf("address string, %q has blank", a)
	case len(a) < 2, !reAddressString.MatchString(string(a)):
		return isvalid.InvalidError.Errorf("invalid address string, %q", a)
	}

	return nil
}

func SortAddresses(as []Address) {
	sort.Slice(as, func(i, j int) bool {
		return strings.Compare(as[i].String(), as[j].String()) < 0
	})
}
