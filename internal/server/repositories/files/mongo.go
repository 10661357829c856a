package files

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/studyvault/internal/common"
	"github.com/dmitrijs2005/studyvault/internal/server/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionName is the MongoDB collection holding file records.
const CollectionName = "file_records"

// collection is the subset of *mongo.Collection used by MongoRepository.
type collection interface {
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) *mongo.SingleResult
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
}

type recordDocument struct {
	RecordID    string     `bson:"_id"`
	FileID      string     `bson:"file_id"`
	SessionID   string     `bson:"session_id"`
	LogicalName string     `bson:"logical_name"`
	Category    string     `bson:"category"`
	MimeType    string     `bson:"mime_type"`
	SizeBytes   int64      `bson:"size_bytes"`
	StorageKey  string     `bson:"storage_key"`
	IsActive    bool       `bson:"is_active"`
	Lifecycle   string     `bson:"lifecycle"`
	UploadedBy  string     `bson:"uploaded_by"`
	CreatedAt   time.Time  `bson:"created_at"`
	RetiredAt   *time.Time `bson:"retired_at,omitempty"`
}

func toDocument(rec *models.FileRecord) recordDocument {
	return recordDocument{
		RecordID:    rec.RecordID,
		FileID:      rec.FileID,
		SessionID:   rec.SessionID,
		LogicalName: rec.LogicalName,
		Category:    string(rec.Category),
		MimeType:    rec.MimeType,
		SizeBytes:   rec.SizeBytes,
		StorageKey:  rec.StorageKey,
		IsActive:    rec.IsActive,
		Lifecycle:   string(rec.Lifecycle),
		UploadedBy:  rec.UploadedBy,
		CreatedAt:   rec.CreatedAt,
		RetiredAt:   rec.RetiredAt,
	}
}

func (d recordDocument) toModel() *models.FileRecord {
	return &models.FileRecord{
		RecordID:    d.RecordID,
		FileID:      d.FileID,
		SessionID:   d.SessionID,
		LogicalName: d.LogicalName,
		Category:    models.Category(d.Category),
		MimeType:    d.MimeType,
		SizeBytes:   d.SizeBytes,
		StorageKey:  d.StorageKey,
		IsActive:    d.IsActive,
		Lifecycle:   models.Lifecycle(d.Lifecycle),
		UploadedBy:  d.UploadedBy,
		CreatedAt:   d.CreatedAt,
		RetiredAt:   d.RetiredAt,
	}
}

// MongoRepository implements Repository on a MongoDB collection. The record
// id is stored as the document _id.
type MongoRepository struct {
	coll collection
	now  func() time.Time
}

// NewMongoRepository binds the repository to db.file_records.
func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return newMongoRepository(db.Collection(CollectionName))
}

func newMongoRepository(coll collection) *MongoRepository {
	return &MongoRepository{coll: coll, now: func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) }}
}

// Create inserts rec. CreatedAt is taken from the server clock at millisecond
// precision, matching what BSON dates can hold.
func (r *MongoRepository) Create(ctx context.Context, rec *models.FileRecord) error {
	rec.CreatedAt = r.now()
	if _, err := r.coll.InsertOne(ctx, toDocument(rec)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("duplicate record id %s: %w", rec.RecordID, common.ErrConflict)
		}
		return fmt.Errorf("failed to insert file record: %w", err)
	}
	return nil
}

func (r *MongoRepository) GetByID(ctx context.Context, recordID string) (*models.FileRecord, error) {
	var doc recordDocument
	err := r.coll.FindOne(ctx, bson.M{"_id": recordID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("failed to find file record: %w", err)
	}
	return doc.toModel(), nil
}

func (r *MongoRepository) ListBySession(ctx context.Context, sessionID string, includeInactive bool) ([]*models.FileRecord, error) {
	filter := bson.M{"session_id": sessionID}
	if !includeInactive {
		filter["is_active"] = true
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find file records: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []recordDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode file records: %w", err)
	}

	result := make([]*models.FileRecord, 0, len(docs))
	for _, d := range docs {
		result = append(result, d.toModel())
	}
	return result, nil
}

func (r *MongoRepository) MarkBytesDeleted(ctx context.Context, recordID string) error {
	filter := bson.M{"_id": recordID, "lifecycle": string(models.LifecycleActive)}
	update := bson.M{"$set": bson.M{"lifecycle": string(models.LifecycleBytesDeleted)}}
	return r.updateOne(ctx, filter, update)
}

func (r *MongoRepository) MarkRetired(ctx context.Context, recordID string) error {
	filter := bson.M{"_id": recordID, "lifecycle": bson.M{"$ne": string(models.LifecycleRetired)}}
	update := bson.M{"$set": bson.M{
		"is_active":  false,
		"lifecycle":  string(models.LifecycleRetired),
		"retired_at": r.now(),
	}}
	return r.updateOne(ctx, filter, update)
}

func (r *MongoRepository) updateOne(ctx context.Context, filter, update bson.M) error {
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update file record: %w", err)
	}
	if res.MatchedCount == 0 {
		return common.ErrConflict
	}
	return nil
}
