//go:build mongodb
// +build mongodb

package mongodbstorage

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/util"
)

func TestMongodbURI() string {
	uri := "localhost:27017"
	if s := os.Getenv("LOCKUP_TEST_MONGODB_URI"); len(s) > 0 {
		uri = s
	}

	return fmt.Sprintf("mongodb://%s/t_%s", uri, strings.ToLower(util.ULID(time.Now()).String()))
}
