package repomanager

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/studyvault/internal/server/repositories/files"
	"github.com/dmitrijs2005/studyvault/internal/server/repositories/folders"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// mongoConnect is a seam for testing mongo.Connect.
var mongoConnect = func(ctx context.Context, opts ...*options.ClientOptions) (*mongo.Client, error) {
	return mongo.Connect(ctx, opts...)
}

// createIndexes is a seam for testing index creation.
var createIndexes = func(ctx context.Context, db *mongo.Database, collection string, models []mongo.IndexModel) error {
	_, err := db.Collection(collection).Indexes().CreateMany(ctx, models)
	return err
}

// indexModels lists the indexes each collection needs. The partial unique
// index on session_folders keeps a single active folder per student.
func indexModels() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		files.CollectionName: {
			{
				Keys: bson.D{
					{Key: "session_id", Value: 1},
					{Key: "created_at", Value: -1},
				},
			},
		},
		folders.CollectionName: {
			{
				Keys: bson.D{{Key: "student_id", Value: 1}},
				Options: options.Index().
					SetName("one_active_per_student").
					SetUnique(true).
					SetPartialFilterExpression(bson.M{"is_active": true}),
			},
			{
				Keys: bson.D{
					{Key: "student_id", Value: 1},
					{Key: "created_at", Value: -1},
				},
			},
		},
	}
}

// MongoRepositoryManager vends MongoDB-backed repositories.
type MongoRepositoryManager struct {
	client  *mongo.Client
	db      *mongo.Database
	files   *files.MongoRepository
	folders *folders.MongoRepository
}

// OpenMongoRepositoryManager connects to uri and binds the repositories to
// the named database.
func OpenMongoRepositoryManager(ctx context.Context, uri, database string) (RepositoryManager, error) {
	client, err := mongoConnect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	return NewMongoRepositoryManager(client, database), nil
}

func NewMongoRepositoryManager(client *mongo.Client, database string) *MongoRepositoryManager {
	db := client.Database(database)
	return &MongoRepositoryManager{
		client:  client,
		db:      db,
		files:   files.NewMongoRepository(db),
		folders: folders.NewMongoRepository(db),
	}
}

func (m *MongoRepositoryManager) Files() files.Repository     { return m.files }
func (m *MongoRepositoryManager) Folders() folders.Repository { return m.folders }

// RunMigrations creates the collections' indexes. CreateMany is idempotent
// for identical specs.
func (m *MongoRepositoryManager) RunMigrations(ctx context.Context) error {
	for collection, models := range indexModels() {
		if err := createIndexes(ctx, m.db, collection, models); err != nil {
			return fmt.Errorf("create indexes for %s: %w", collection, err)
		}
	}
	return nil
}

func (m *MongoRepositoryManager) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, readpref.Primary())
}

func (m *MongoRepositoryManager) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
