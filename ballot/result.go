package ballot

import (
	"strings"

	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/util/isvalid"
)

type Result uint8

const (
	ResultOpen Result = iota
	ResultApproved
	ResultRejected
)

func (r Result) String() string {
	switch r {
	case ResultOpen:
		return "OPEN"
	case ResultApproved:
		return "APPROVED"
	case ResultRejected:
		return "REJECTED"
	default:
		return "<unknown Result>"
	}
}

func (r Result) IsValid([]byte) error {
	switch r {
	case ResultOpen, ResultApproved, ResultRejected:
		return nil
	}

	return InvalidResultError.Errorf("Result=%d", r)
}

func (r Result) IsResolved() bool {
	return r == ResultApproved || r == ResultRejected
}

func (r Result) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *Result) UnmarshalText(b []byte) error {
	switch s := strings.ToUpper(string(b)); s {
	case "OPEN":
		*r = ResultOpen
	case "APPROVED":
		*r = ResultApproved
	case "REJECTED":
		*r = ResultRejected
	default:
		return InvalidResultError.Errorf("unknown result, %q", s)
	}

	return nil
}

// Kind is the governance process of ballot. Join and exit ballots are keyed
// by subject; stake ballots are indexed.
type Kind string

const (
	KindJoin  Kind = "join"
	KindExit  Kind = "exit"
	KindStake Kind = "stake"
)

func (k Kind) IsValid([]byte) error {
	switch k {
	case KindJoin, KindExit, KindStake:
		return nil
	default:
		return isvalid.InvalidError.Errorf("unknown ballot kind, %q", k)
	}
}

func (k Kind) IsKeyed() bool {
	return k == KindJoin || k == KindExit
}

func (k Kind) String() string {
	return string(k)
}
