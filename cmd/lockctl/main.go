package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/launch/cmds"
)

func main() {
	var flags cmds.Flags

	kctx := kong.Parse(&flags,
		kong.Name(cmds.DefaultName),
		kong.Description(cmds.DefaultDescription),
		kong.UsageOnError(),
		kong.ConfigureHelp(cmds.MainOptions),
	)

	rt := cmds.NewRuntime(flags.CommonFlags, os.Stdout, os.Stderr)
	if err := rt.Initialize(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "error: %+v\n", err)

		os.Exit(1)
	}

	err := kctx.Run(rt)
	rt.Done()

	kctx.FatalIfErrorf(err)
}
