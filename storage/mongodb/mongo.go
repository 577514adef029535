package mongodbstorage

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/storage"
	"github.com/GeoDB-Limited/geodb-federation-fabric-prototype/util"
)

type (
	getRecordCallback  func(*mongo.SingleResult) error
	getRecordsCallback func(*mongo.Cursor) (bool, error)
)

type Client struct {
	uri         string
	client      *mongo.Client
	db          *mongo.Database
	execTimeout time.Duration
}

func NewClient(uri string, connectTimeout, execTimeout time.Duration) (*Client, error) {
	cs, err := checkURI(uri)
	if err != nil {
		return nil, err
	}

	clientOpts := options.Client().ApplyURI(uri)
	if err := clientOpts.Validate(); err != nil {
		return nil, storage.WrapStorageError(err)
	}

	var client *mongo.Client
	{
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()

		c, err := mongo.Connect(ctx, clientOpts)
		if err != nil {
			return nil, storage.TimeoutError.Wrap(errors.Wrap(err, "connect timeout"))
		}

		client = c
	}

	{
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()

		if err := client.Ping(ctx, readpref.Primary()); err != nil {
			return nil, storage.TimeoutError.Wrap(errors.Wrap(err, "ping timeout"))
		}
	}

	return &Client{
		uri:         uri,
		client:      client,
		db:          client.Database(cs.Database),
		execTimeout: execTimeout,
	}, nil
}

func (cl *Client) Find(
	col string,
	query interface{},
	callback getRecordsCallback,
	opts ...*options.FindOptions,
) error {
	ctx, cancel := context.WithTimeout(context.Background(), cl.execTimeout)
	defer cancel()

	cursor, err := cl.db.Collection(col).Find(ctx, query, opts...)
	if err != nil {
		return storage.WrapStorageError(err)
	}

	defer func() {
		_ = cursor.Close(context.Background())
	}()

	next := func() bool {
		ctx, cancel := context.WithTimeout(context.Background(), cl.execTimeout)
		defer cancel()

		return cursor.Next(ctx)
	}

	for next() {
		keep, err := callback(cursor)
		if err != nil {
			return err
		} else if !keep {
			break
		}
	}

	return storage.WrapStorageError(cursor.Err())
}

func (cl *Client) GetByID(
	col string,
	id interface{},
	callback getRecordCallback,
	opts ...*options.FindOneOptions,
) error {
	res, err := cl.getByFilter(col, bson.D{{Key: "_id", Value: id}}, opts...)
	if err != nil {
		return err
	}

	if callback == nil {
		return nil
	}

	return callback(res)
}

func (cl *Client) getByFilter(col string, filter bson.D, opts ...*options.FindOneOptions) (*mongo.SingleResult, error) {
	ctx, cancel := context.WithTimeout(context.Background(), cl.execTimeout)
	defer cancel()

	res := cl.db.Collection(col).FindOne(ctx, filter, opts...)
	if err := res.Err(); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, util.NotFoundError.Wrap(err)
		}

		return nil, storage.WrapStorageError(err)
	}

	return res, nil
}

// Bulk writes models in order. Duplicated key errors are returned as
// util.DuplicatedError.
func (cl *Client) Bulk(col string, models []mongo.WriteModel) error {
	if len(models) < 1 {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), cl.execTimeout)
	defer cancel()

	opts := options.BulkWrite().SetOrdered(true)
	if _, err := cl.db.Collection(col).BulkWrite(ctx, models, opts); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return util.DuplicatedError.Wrap(err)
		}

		return storage.WrapStorageError(err)
	}

	return nil
}

func (cl *Client) Count(col string, filter bson.D, opts ...*options.CountOptions) (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), cl.execTimeout)
	defer cancel()

	count, err := cl.db.Collection(col).CountDocuments(ctx, filter, opts...)

	return count, storage.WrapStorageError(err)
}

func (cl *Client) CreateIndex(col string, models ...mongo.IndexModel) error {
	if len(models) < 1 {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), cl.execTimeout)
	defer cancel()

	_, err := cl.db.Collection(col).Indexes().CreateMany(ctx, models)

	return storage.WrapStorageError(err)
}

func (cl *Client) DropDatabase() error {
	ctx, cancel := context.WithTimeout(context.Background(), cl.execTimeout)
	defer cancel()

	return storage.WrapStorageError(cl.db.Drop(ctx))
}

func (cl *Client) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), cl.execTimeout)
	defer cancel()

	return storage.WrapStorageError(cl.client.Disconnect(ctx))
}
