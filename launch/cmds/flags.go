package cmds

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/base"
	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/util/localtime"
)

// FileLoad reads the file content; "-" reads stdin.
type FileLoad []byte

func (v FileLoad) MarshalText() ([]byte, error) {
	return []byte(v), nil
}

func (v *FileLoad) UnmarshalText(b []byte) error {
	var body []byte
	if bytes.Equal(bytes.TrimSpace(b), []byte("-")) {
		c, err := io.ReadAll(os.Stdin)
		if err != nil {
			return errors.Wrap(err, "failed to read stdin")
		}

		body = c
	} else {
		c, err := os.ReadFile(filepath.Clean(string(b)))
		if err != nil {
			return err
		}

		body = c
	}

	if len(body) < 1 {
		return errors.Errorf("empty file")
	}

	*v = body

	return nil
}

func (v FileLoad) Bytes() []byte {
	return []byte(v)
}

type AddressFlag struct {
	a base.Address
}

func (v *AddressFlag) UnmarshalText(b []byte) error {
	a, err := base.NewAddress(string(b))
	if err != nil {
		return errors.Wrapf(err, "invalid address, %q", string(b))
	}

	v.a = a

	return nil
}

func (v AddressFlag) Address() base.Address {
	return v.a
}

func (v AddressFlag) String() string {
	return v.a.String()
}

type AmountFlag struct {
	a base.Amount
}

func (v *AmountFlag) UnmarshalText(b []byte) error {
	a, err := base.ParseAmount(string(b))
	if err != nil {
		return err
	}

	v.a = a

	return nil
}

func (v AmountFlag) Amount() base.Amount {
	return v.a
}

func (v AmountFlag) String() string {
	return v.a.String()
}

// TimeFlag parses RFC3339 time; "now" or empty is the current time.
type TimeFlag struct {
	t time.Time
}

func (v *TimeFlag) UnmarshalText(b []byte) error {
	s := strings.TrimSpace(string(b))
	if len(s) < 1 || s == "now" {
		v.t = time.Time{}

		return nil
	}

	t, err := localtime.ParseRFC3339(s)
	if err != nil {
		return errors.Wrapf(err, "invalid time, %q", s)
	}

	v.t = t

	return nil
}

func (v TimeFlag) Time(now time.Time) time.Time {
	if v.t.IsZero() {
		return now
	}

	return v.t
}
