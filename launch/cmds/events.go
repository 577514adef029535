package cmds

import (
	"github.com/pkg/errors"

	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/event"
)

type EventsCommand struct {
	Kind    string `name:"kind" help:"event kind"`
	Source  string `name:"source" help:"event source, lockup:<id> or federation:<id>"`
	Limit   int    `name:"limit" help:"maximum number of events" default:"100"`
	Reverse bool   `name:"reverse" help:"latest first"`
}

func (cmd *EventsCommand) Run(rt *Runtime) error {
	nd, err := rt.Node()
	if err != nil {
		return err
	}

	archive := nd.EventArchive()
	if archive == nil {
		return errors.Errorf("event archive not configured")
	}

	var es []event.Event
	if err := archive.Events(event.Kind(cmd.Kind), cmd.Source, !cmd.Reverse, func(e event.Event) (bool, error) {
		es = append(es, e)

		return cmd.Limit < 1 || len(es) < cmd.Limit, nil
	}); err != nil {
		return err
	}

	return rt.Print(es)
}
