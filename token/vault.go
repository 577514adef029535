package token

import (
	"sync"

	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/util"
	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/util/localtime"
)

// Vault issues one time keys for the outgoing transfers of a guarded
// account. The owner of the account passes the key as the data of its own
// transfer and the Guard of the account admits only the transfers which
// carry an issued key.
type Vault struct {
	sync.Mutex
	keys map[string]struct{}
}

func NewVault() *Vault {
	return &Vault{keys: map[string]struct{}{}}
}

// Key issues new key. It should be revoked after the transfer whether the
// transfer is admitted or not.
func (v *Vault) Key() []byte {
	v.Lock()
	defer v.Unlock()

	k := util.ULID(localtime.UTCNow()).String()
	v.keys[k] = struct{}{}

	return []byte(k)
}

// Admit consumes the key in data; it is false for unknown key.
func (v *Vault) Admit(data []byte) bool {
	if len(data) < 1 {
		return false
	}

	v.Lock()
	defer v.Unlock()

	if _, found := v.keys[string(data)]; !found {
		return false
	}

	delete(v.keys, string(data))

	return true
}

func (v *Vault) Revoke(key []byte) {
	v.Lock()
	defer v.Unlock()

	delete(v.keys, string(key))
}

// Len is the number of keys not yet admitted or revoked.
func (v *Vault) Len() int {
	v.Lock()
	defer v.Unlock()

	return len(v.keys)
}
