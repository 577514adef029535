package cmds

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/launch"
	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/launch/config"
	yamlconfig "github.com/GeoDB-Limited/geodb-federation-fabric-prototype/launch/config/yaml"
	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/util"
	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/util/localtime"
	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/util/logging"
)

var (
	DefaultName        = "lockctl"
	DefaultDescription = "token lockup and federation governance"
	MainOptions        = kong.HelpOptions{NoAppSummary: false, Compact: true, Summary: false, Tree: true}
)

var defaultKongOptions = []kong.Option{
	kong.Name(DefaultName),
	kong.Description(DefaultDescription),
	kong.UsageOnError(),
	kong.ConfigureHelp(MainOptions),
}

// CommonFlags are shared by every command.
type CommonFlags struct {
	LogFlags
	Config FileLoad `name:"config" short:"c" help:"yaml config file; - for stdin" placeholder:"FILE"`
}

// Flags is the command tree of lockctl.
type Flags struct {
	CommonFlags
	Allowance  AllowanceCommand  `cmd:"" help:"calculate allowance"`
	Lockup     LockupCommand     `cmd:"" help:"lockup commands"`
	Federation FederationCommand `cmd:"" help:"federation commands"`
	Token      TokenCommand      `cmd:"" help:"token ledger commands"`
	Events     EventsCommand     `cmd:"" help:"list archived events"`
}

func Context(args []string, flags interface{}, options ...kong.Option) (*kong.Context, error) {
	ops := make([]kong.Option, len(defaultKongOptions)+len(options))
	copy(ops, defaultKongOptions)
	copy(ops[len(defaultKongOptions):], options)

	p, err := kong.New(flags, ops...)
	if err != nil {
		return nil, err
	}

	return p.Parse(args)
}

// Runtime is bound to every command. The node is started on the first
// request.
type Runtime struct {
	*logging.Logging
	flags     CommonFlags
	out       io.Writer
	logOutput io.Writer
	clock     localtime.Clock
	conf      *config.Local
	node      *launch.Node
}

func NewRuntime(flags CommonFlags, out, logOutput io.Writer) *Runtime {
	if out == nil {
		out = os.Stdout
	}

	return &Runtime{
		Logging: logging.NewLogging(func(c zerolog.Context) zerolog.Context {
			return c.Str("module", "command")
		}),
		flags:     flags,
		out:       out,
		logOutput: logOutput,
	}
}

// SetClock sets the clock of the node; it should be called before Node.
func (rt *Runtime) SetClock(clock localtime.Clock) *Runtime {
	rt.clock = clock

	return rt
}

// Initialize loads config and sets up logging.
func (rt *Runtime) Initialize() error {
	conf := config.NewLocal()
	if len(rt.flags.Config) > 0 {
		i, err := yamlconfig.Load(rt.flags.Config.Bytes())
		if err != nil {
			return errors.Wrap(err, "failed to load config")
		}

		conf = i
	} else if err := config.NewChecker(conf).Check(); err != nil {
		return err
	}

	if err := rt.flags.LogFlags.apply(conf.Log()); err != nil {
		return err
	}

	l, err := SetupLogging(conf.Log(), rt.logOutput)
	if err != nil {
		return err
	}

	_ = rt.SetLogging(l)
	rt.conf = conf

	rt.Log().Debug().Interface("flags", rt.flags.LogFlags).Msg("config loaded")

	return nil
}

func (rt *Runtime) Config() *config.Local {
	return rt.conf
}

func (rt *Runtime) Node() (*launch.Node, error) {
	if rt.node != nil {
		return rt.node, nil
	}

	if rt.conf == nil {
		return nil, errors.Errorf("runtime not initialized")
	}

	nd := launch.NewNode(rt.conf)
	if rt.clock != nil {
		_ = nd.SetClock(rt.clock)
	}

	_ = nd.SetLogging(rt.Logging)

	if err := nd.Start(); err != nil {
		return nil, errors.Wrap(err, "failed to start node")
	}

	rt.node = nd

	return nd, nil
}

func (rt *Runtime) Done() {
	if rt.node == nil {
		return
	}

	if err := rt.node.Close(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "error: %+v\n", err)
	}

	rt.node = nil
}

// Print writes v as indented json.
func (rt *Runtime) Print(v interface{}) error {
	b, err := util.JSONMarshalIndent(v)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(rt.out, string(b))

	return err
}
