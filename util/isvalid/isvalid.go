package isvalid

import "github.com/GeoDB-Limited/geodb-federation-fabric-prototype/util"

var InvalidError = util.NewError("invalid")

type IsValider interface {
	IsValid([]byte) error
}
