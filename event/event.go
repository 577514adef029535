package event

import (
	"time"

	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/base"
	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/util"
)

type Kind string

const (
	KindLock                Kind = "lock"
	KindUnlock              Kind = "unlock"
	KindReclaim             Kind = "reclaim"
	KindBallotCreated       Kind = "ballot-created"
	KindVote                Kind = "vote"
	KindBallotResolved      Kind = "ballot-resolved"
	KindJoined              Kind = "joined"
	KindExited              Kind = "exited"
	KindMinimumStakeChanged Kind = "minimum-stake-changed"
	KindStakeAdded          Kind = "stake-added"
	KindReward              Kind = "reward"
)

// Event is the audit record of committed operation.
type Event struct {
	ID      string            `json:"id"`
	Kind    Kind              `json:"kind"`
	Source  string            `json:"source"`
	Actor   base.Address      `json:"actor"`
	Subject base.Address      `json:"subject,omitempty"`
	Amount  base.Amount       `json:"amount"`
	Ballot  string            `json:"ballot,omitempty"`
	Extra   map[string]string `json:"extra,omitempty"`
	At      time.Time         `json:"at"`
}

func New(kind Kind, source string, actor base.Address, amount base.Amount, at time.Time) Event {
	return Event{
		ID:     util.ULID(at).String(),
		Kind:   kind,
		Source: source,
		Actor:  actor,
		Amount: amount,
		At:     at,
	}
}

func (e Event) WithSubject(a base.Address) Event {
	e.Subject = a

	return e
}

func (e Event) WithBallot(ref string) Event {
	e.Ballot = ref

	return e
}

func (e Event) With(key, value string) Event {
	extra := make(map[string]string, len(e.Extra)+1)
	for k, v := range e.Extra {
		extra[k] = v
	}

	extra[key] = value
	e.Extra = extra

	return e
}
