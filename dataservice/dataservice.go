package dataservice

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DatabaseHelper is an abstraction over the mongo database, so that the
// entity databases can be tested against mocks.
type DatabaseHelper interface {
	Collection(name string) CollectionHelper
	Client() ClientHelper
}

// CollectionHelper provides the collection operations used by the
// entity databases.
type CollectionHelper interface {
	FindOne(ctx context.Context, filter interface{}) SingleResultHelper
	Find(ctx context.Context, filter interface{}) (CursorHelper, error)
	InsertOne(ctx context.Context, document interface{}) (interface{}, error)
	// UpdateOne returns the number of documents the filter matched, so
	// callers can tell a conditional update that found nothing from one
	// that succeeded.
	UpdateOne(ctx context.Context, filter interface{}, update interface{}) (int64, error)
	DeleteOne(ctx context.Context, filter interface{}) (int64, error)
	DeleteMany(ctx context.Context, filter interface{}) (int64, error)
}

// SingleResultHelper wraps a single query result.
type SingleResultHelper interface {
	Decode(v interface{}) error
}

// CursorHelper wraps a query cursor.
type CursorHelper interface {
	All(ctx context.Context, results interface{}) error
}

// ClientHelper wraps the mongo client.
type ClientHelper interface {
	Database(name string) DatabaseHelper
	Connect() error
	StartSession() (mongo.Session, error)
}

type mongoClient struct {
	cl *mongo.Client
}

type mongoDatabase struct {
	db *mongo.Database
}

type mongoCollection struct {
	coll *mongo.Collection
}

type mongoSingleResult struct {
	sr *mongo.SingleResult
}

type mongoCursor struct {
	cur *mongo.Cursor
}

type mongoSession struct {
	mongo.Session
}

// NewClient returns a mongo client for the given URI.
func NewClient(uri string) (ClientHelper, error) {
	c, err := mongo.NewClient(options.Client().ApplyURI(uri))
	return &mongoClient{cl: c}, err
}

// NewDatabase returns a DatabaseHelper for the given database name.
func NewDatabase(dbName string, client ClientHelper) DatabaseHelper {
	return client.Database(dbName)
}

func (mc *mongoClient) Database(dbName string) DatabaseHelper {
	db := mc.cl.Database(dbName)
	return &mongoDatabase{db: db}
}

func (mc *mongoClient) Connect() error {
	return mc.cl.Connect(context.Background())
}

func (mc *mongoClient) StartSession() (mongo.Session, error) {
	session, err := mc.cl.StartSession()
	return &mongoSession{session}, err
}

func (md *mongoDatabase) Collection(colName string) CollectionHelper {
	collection := md.db.Collection(colName)
	return &mongoCollection{coll: collection}
}

func (md *mongoDatabase) Client() ClientHelper {
	client := md.db.Client()
	return &mongoClient{cl: client}
}

func (mc *mongoCollection) FindOne(ctx context.Context, filter interface{}) SingleResultHelper {
	singleResult := mc.coll.FindOne(ctx, filter)
	return &mongoSingleResult{sr: singleResult}
}

func (mc *mongoCollection) Find(ctx context.Context, filter interface{}) (CursorHelper, error) {
	cur, err := mc.coll.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &mongoCursor{cur: cur}, nil
}

func (mc *mongoCollection) InsertOne(ctx context.Context, document interface{}) (interface{}, error) {
	id, err := mc.coll.InsertOne(ctx, document)
	return id, err
}

func (mc *mongoCollection) UpdateOne(ctx context.Context, filter interface{}, update interface{}) (int64, error) {
	result, err := mc.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return 0, err
	}
	return result.MatchedCount, nil
}

func (mc *mongoCollection) DeleteOne(ctx context.Context, filter interface{}) (int64, error) {
	result, err := mc.coll.DeleteOne(ctx, filter)
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

func (mc *mongoCollection) DeleteMany(ctx context.Context, filter interface{}) (int64, error) {
	result, err := mc.coll.DeleteMany(ctx, filter)
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

func (sr *mongoSingleResult) Decode(v interface{}) error {
	return sr.sr.Decode(v)
}

func (cur *mongoCursor) All(ctx context.Context, results interface{}) error {
	return cur.cur.All(ctx, results)
}
