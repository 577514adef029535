package config

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/util/logging"
)

var (
	DefaultLogLevel  = zerolog.InfoLevel
	DefaultLogFormat = "terminal"
)

type Log struct {
	level      zerolog.Level
	format     string
	outputs    []string
	forceColor bool
}

func (no Log) Level() zerolog.Level {
	return no.level
}

func (no *Log) SetLevel(s string) error {
	l, err := logging.ParseLevel(s)
	if err != nil {
		return err
	}

	no.level = l

	return nil
}

func (no Log) Format() string {
	return no.format
}

func (no *Log) SetFormat(s string) error {
	f, err := logging.ParseFormat(s)
	if err != nil {
		return err
	}

	no.format = f

	return nil
}

// Outputs are the log files; empty means stderr.
func (no Log) Outputs() []string {
	return no.outputs
}

func (no *Log) SetOutputs(s []string) error {
	var outputs []string
	for i := range s {
		if f := strings.TrimSpace(s[i]); len(f) > 0 {
			outputs = append(outputs, f)
		}
	}

	no.outputs = outputs

	return nil
}

func (no Log) ForceColor() bool {
	return no.forceColor
}

func (no *Log) SetForceColor(b bool) error {
	no.forceColor = b

	return nil
}
