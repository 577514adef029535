package mongodbstorage

import (
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/base"
	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/event"
	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/storage"
	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/util"
	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/util/logging"
)

const defaultColNameEvent = "event"

var _ event.Sink = (*EventArchive)(nil)

// EventArchive keeps the events in mongodb collection. Events are ordered by
// id.
type EventArchive struct {
	*logging.Logging
	client *Client
	col    string
}

func NewEventArchive(client *Client) (*EventArchive, error) {
	ea := &EventArchive{
		Logging: logging.NewLogging(func(c zerolog.Context) zerolog.Context {
			return c.Str("module", "mongodb-event-archive")
		}),
		client: client,
		col:    defaultColNameEvent,
	}

	if err := ea.client.CreateIndex(ea.col,
		mongo.IndexModel{Keys: bson.D{{Key: "kind", Value: 1}, {Key: "_id", Value: 1}}},
		mongo.IndexModel{Keys: bson.D{{Key: "source", Value: 1}, {Key: "_id", Value: 1}}},
	); err != nil {
		return nil, errors.Wrap(err, "failed to create event indexes")
	}

	return ea, nil
}

// Emit inserts events. Already archived events are ignored.
func (ea *EventArchive) Emit(es ...event.Event) error {
	if len(es) < 1 {
		return nil
	}

	models := make([]mongo.WriteModel, len(es))
	for i := range es {
		models[i] = mongo.NewReplaceOneModel().
			SetFilter(bson.D{{Key: "_id", Value: es[i].ID}}).
			SetReplacement(newEventDoc(es[i])).
			SetUpsert(true)
	}

	if err := ea.client.Bulk(ea.col, models); err != nil {
		return err
	}

	ea.Log().Debug().Int("events", len(es)).Msg("events archived")

	return nil
}

func (ea *EventArchive) Event(id string) (event.Event, bool, error) {
	var e event.Event
	if err := ea.client.GetByID(ea.col, id, func(res *mongo.SingleResult) error {
		i, err := loadEvent(res.Decode)
		if err != nil {
			return err
		}

		e = i

		return nil
	}); err != nil {
		if errors.Is(err, util.NotFoundError) {
			return event.Event{}, false, nil
		}

		return event.Event{}, false, err
	}

	return e, true, nil
}

// Events iterates events by id. Empty kind or source matches every event.
func (ea *EventArchive) Events(
	kind event.Kind,
	source string,
	sort bool,
	callback func(event.Event) (bool, error),
) error {
	filter := bson.D{}
	if len(kind) > 0 {
		filter = append(filter, bson.E{Key: "kind", Value: string(kind)})
	}

	if len(source) > 0 {
		filter = append(filter, bson.E{Key: "source", Value: source})
	}

	order := 1
	if !sort {
		order = -1
	}

	return ea.client.Find(
		ea.col,
		filter,
		func(cursor *mongo.Cursor) (bool, error) {
			e, err := loadEvent(cursor.Decode)
			if err != nil {
				return false, err
			}

			return callback(e)
		},
		options.Find().SetSort(bson.D{{Key: "_id", Value: order}}),
	)
}

func (ea *EventArchive) Count(kind event.Kind) (int64, error) {
	filter := bson.D{}
	if len(kind) > 0 {
		filter = append(filter, bson.E{Key: "kind", Value: string(kind)})
	}

	return ea.client.Count(ea.col, filter)
}

type eventDoc struct {
	ID      string            `bson:"_id"`
	Kind    string            `bson:"kind"`
	Source  string            `bson:"source"`
	Actor   string            `bson:"actor"`
	Subject string            `bson:"subject,omitempty"`
	Amount  string            `bson:"amount"`
	Ballot  string            `bson:"ballot,omitempty"`
	Extra   map[string]string `bson:"extra,omitempty"`
	At      time.Time         `bson:"at"`
}

func newEventDoc(e event.Event) eventDoc {
	return eventDoc{
		ID:      e.ID,
		Kind:    string(e.Kind),
		Source:  e.Source,
		Actor:   e.Actor.String(),
		Subject: e.Subject.String(),
		Amount:  e.Amount.String(),
		Ballot:  e.Ballot,
		Extra:   e.Extra,
		At:      e.At,
	}
}

func loadEvent(decode func(interface{}) error) (event.Event, error) {
	var doc eventDoc
	if err := decode(&doc); err != nil {
		return event.Event{}, storage.WrapStorageError(err)
	}

	am, err := base.ParseAmount(doc.Amount)
	if err != nil {
		return event.Event{}, storage.WrapStorageError(err)
	}

	return event.Event{
		ID:      doc.ID,
		Kind:    event.Kind(doc.Kind),
		Source:  doc.Source,
		Actor:   base.Address(doc.Actor),
		Subject: base.Address(doc.Subject),
		Amount:  am,
		Ballot:  doc.Ballot,
		Extra:   doc.Extra,
		At:      doc.At.UTC(),
	}, nil
}
