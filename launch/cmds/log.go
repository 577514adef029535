package cmds

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"

	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/launch/config"
	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/util"
	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/util/localtime"
	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/util/logging"
)

func init() {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.LevelFieldName = "l"
	zerolog.TimestampFieldName = "t"
	zerolog.MessageFieldName = "m"
	zerolog.TimestampFunc = localtime.UTCNow
	zerolog.InterfaceMarshalFunc = util.JSONMarshal
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack

	zerolog.DisableSampling(true)
}

// LogFlags overrides the log config.
type LogFlags struct {
	LogLevel  string   `name:"log-level" help:"log level {trace debug info warn error}"`
	LogFormat string   `name:"log-format" help:"log format {json terminal}"`
	LogColor  bool     `name:"log-color" help:"force color log"`
	LogFile   []string `name:"log" help:"log file"`
}

func (flags LogFlags) apply(conf *config.Log) error {
	if len(flags.LogLevel) > 0 {
		if err := conf.SetLevel(flags.LogLevel); err != nil {
			return err
		}
	}

	if len(flags.LogFormat) > 0 {
		if err := conf.SetFormat(flags.LogFormat); err != nil {
			return err
		}
	}

	if flags.LogColor {
		if err := conf.SetForceColor(true); err != nil {
			return err
		}
	}

	if len(flags.LogFile) > 0 {
		if err := conf.SetOutputs(flags.LogFile); err != nil {
			return err
		}
	}

	return nil
}

func SetupLogging(conf *config.Log, defaultout io.Writer) (*logging.Logging, error) {
	if defaultout == nil {
		defaultout = os.Stderr
	}

	output := defaultout
	if len(conf.Outputs()) > 0 {
		i, err := logging.Outputs(conf.Outputs())
		if err != nil {
			return nil, err
		}

		output = i
	}

	return logging.Setup(output, conf.Level(), conf.Format(), conf.ForceColor()), nil
}
