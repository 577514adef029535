package config

import (
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/base"
	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/vesting"
)

var (
	DefaultLockupToken = "token"
	DefaultLockupMode  = vesting.PullFunding
)

type Lockup struct {
	id          string
	beneficiary base.Address
	operator    base.Address
	deployer    base.Address
	token       string
	holder      base.Address
	duration    time.Duration
	mode        vesting.FundingMode
}

func (no Lockup) ID() string {
	return no.id
}

func (no *Lockup) SetID(s string) error {
	no.id = strings.TrimSpace(s)

	return nil
}

func (no Lockup) Beneficiary() base.Address {
	return no.beneficiary
}

func (no *Lockup) SetBeneficiary(s string) error {
	return setAddress(s, &no.beneficiary, false)
}

func (no Lockup) Operator() base.Address {
	return no.operator
}

func (no *Lockup) SetOperator(s string) error {
	return setAddress(s, &no.operator, true)
}

func (no Lockup) Deployer() base.Address {
	return no.deployer
}

func (no *Lockup) SetDeployer(s string) error {
	return setAddress(s, &no.deployer, false)
}

func (no Lockup) Token() string {
	return no.token
}

func (no *Lockup) SetToken(s string) error {
	no.token = strings.TrimSpace(s)

	return nil
}

func (no Lockup) Holder() base.Address {
	return no.holder
}

func (no *Lockup) SetHolder(s string) error {
	return setAddress(s, &no.holder, false)
}

func (no Lockup) LockDuration() time.Duration {
	return no.duration
}

func (no *Lockup) SetLockDuration(s string) error {
	t, err := parseTimeDuration(s, false)
	if err != nil {
		return errors.Wrap(err, "invalid lock duration")
	}

	if t <= 0 {
		return errors.Errorf("lock duration should be positive, %v", t)
	}

	no.duration = t

	return nil
}

func (no Lockup) Mode() vesting.FundingMode {
	return no.mode
}

func (no *Lockup) SetMode(s string) error {
	m := vesting.FundingMode(strings.ToLower(strings.TrimSpace(s)))
	if err := m.IsValid(nil); err != nil {
		return err
	}

	no.mode = m

	return nil
}

func (no Lockup) Params() vesting.LockupParams {
	return vesting.LockupParams{
		ID:           no.id,
		Beneficiary:  no.beneficiary,
		Operator:     no.operator,
		Deployer:     no.deployer,
		Token:        no.token,
		Holder:       no.holder,
		LockDuration: no.duration,
		Mode:         no.mode,
	}
}

func setAddress(s string, target *base.Address, allowEmpty bool) error {
	if s = strings.TrimSpace(s); len(s) < 1 && allowEmpty {
		*target = base.EmptyAddress

		return nil
	}

	a, err := base.NewAddress(s)
	if err != nil {
		return err
	}

	*target = a

	return nil
}
