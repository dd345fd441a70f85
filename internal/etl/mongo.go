package etl

import (
	"context"
	"fmt"
	"time"

	"github.com/BartekS5/feedsync/pkg/database"
	"github.com/BartekS5/feedsync/pkg/logger"
	"github.com/BartekS5/feedsync/pkg/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	// ReplaceRename writes into a staging collection and renames it over the target.
	ReplaceRename = "rename"
	// ReplaceDelete empties the target and inserts into it. A crash between the
	// two steps leaves the collection empty.
	ReplaceDelete = "delete"

	stagingSuffix = "_staging"
)

// MongoLoader replaces a whole collection with the records of a run.
// Without an injected client it connects on Load and disconnects afterwards.
type MongoLoader[R any] struct {
	URI        string
	Database   string
	Collection string
	Strategy   string
	Timeout    time.Duration

	client *mongo.Client
}

func NewMongoLoader[R any](uri, db, coll, strategy string, timeout time.Duration) *MongoLoader[R] {
	return &MongoLoader[R]{
		URI:        uri,
		Database:   db,
		Collection: coll,
		Strategy:   strategy,
		Timeout:    timeout,
	}
}

// NewMongoLoaderWithClient uses client for every Load and never disconnects it.
func NewMongoLoaderWithClient[R any](client *mongo.Client, db, coll, strategy string, timeout time.Duration) *MongoLoader[R] {
	m := NewMongoLoader[R]("", db, coll, strategy, timeout)
	m.client = client
	return m
}

func (m *MongoLoader[R]) Load(ctx context.Context, records []R) (int, error) {
	if len(records) == 0 {
		logger.Info("No data to load.")
		return 0, nil
	}

	logger.Infof("Loading %d records into MongoDB %s.%s (strategy %s)...", len(records), m.Database, m.Collection, m.Strategy)

	client := m.client
	if client == nil {
		c, err := database.ConnectMongo(ctx, m.URI, m.Timeout)
		if err != nil {
			return 0, err
		}
		defer database.DisconnectMongo(c)
		client = c
	}

	if m.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.Timeout)
		defer cancel()
	}

	db := client.Database(m.Database)
	docs := utils.ToInterfaces(records)

	var inserted int
	var err error
	switch m.Strategy {
	case ReplaceDelete:
		inserted, err = replaceByDelete(ctx, db.Collection(m.Collection), docs)
	case ReplaceRename, "":
		inserted, err = replaceByRename(ctx, db, m.Collection, docs)
	default:
		err = fmt.Errorf("unknown replace strategy %q", m.Strategy)
	}
	if err != nil {
		return 0, err
	}

	logger.Infof("Successfully loaded %d documents into '%s'.", inserted, m.Collection)
	return inserted, nil
}

func replaceByDelete(ctx context.Context, coll *mongo.Collection, docs []interface{}) (int, error) {
	del, err := coll.DeleteMany(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("delete existing documents in %s: %w", coll.Name(), err)
	}
	logger.Infof("Deleted %d existing documents from '%s'.", del.DeletedCount, coll.Name())

	res, err := coll.InsertMany(ctx, docs)
	if err != nil {
		return 0, fmt.Errorf("insert into %s: %w", coll.Name(), err)
	}
	return len(res.InsertedIDs), nil
}

// replaceByRename swaps a fully written staging collection in for target.
// renameCollection with dropTarget replaces the target in one step, so
// readers see either the old or the new contents.
func replaceByRename(ctx context.Context, db *mongo.Database, target string, docs []interface{}) (int, error) {
	staging := db.Collection(target + stagingSuffix)

	if err := staging.Drop(ctx); err != nil {
		return 0, fmt.Errorf("drop stale %s: %w", staging.Name(), err)
	}

	res, err := staging.InsertMany(ctx, docs)
	if err != nil {
		return 0, fmt.Errorf("insert into %s: %w", staging.Name(), err)
	}

	cmd := bson.D{
		{Key: "renameCollection", Value: db.Name() + "." + staging.Name()},
		{Key: "to", Value: db.Name() + "." + target},
		{Key: "dropTarget", Value: true},
	}
	if err := db.Client().Database("admin").RunCommand(ctx, cmd).Err(); err != nil {
		return 0, fmt.Errorf("rename %s to %s: %w", staging.Name(), target, err)
	}
	return len(res.InsertedIDs), nil
}
