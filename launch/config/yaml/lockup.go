package yamlconfig

import (
	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/launch/config"
)

type Lockup struct {
	ID           *string
	Beneficiary  *string
	Operator     *string `yaml:",omitempty"`
	Deployer     *string
	Token        *string `yaml:",omitempty"`
	Holder       *string
	LockDuration *string `yaml:"lock-duration"`
	Mode         *string `yaml:",omitempty"`
}

func (no Lockup) Set(conf *config.Lockup) error {
	for _, f := range []struct {
		v   *string
		set func(string) error
	}{
		{no.ID, conf.SetID},
		{no.Beneficiary, conf.SetBeneficiary},
		{no.Operator, conf.SetOperator},
		{no.Deployer, conf.SetDeployer},
		{no.Token, conf.SetToken},
		{no.Holder, conf.SetHolder},
		{no.LockDuration, conf.SetLockDuration},
		{no.Mode, conf.SetMode},
	} {
		if f.v == nil {
			continue
		}

		if err := f.set(*f.v); err != nil {
			return err
		}
	}

	return nil
}
