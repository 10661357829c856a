package folders

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

// CollectionName is the MongoDB collection holding session folders.
const CollectionName = "session_folders"

const restoreTimeout = 5 * time.Second

type collection interface {
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) *mongo.SingleResult
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error)
	FindOneAndUpdate(ctx context.Context, filter interface{}, update interface{}, opts ...*options.FindOneAndUpdateOptions) *mongo.SingleResult
	UpdateMany(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
}

type folderDocument struct {
	FolderID    string    `bson:"_id"`
	StudentID   string    `bson:"student_id"`
	Name        string    `bson:"name"`
	Description string    `bson:"description"`
	IsActive    bool      `bson:"is_active"`
	CreatedAt   time.Time `bson:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

func (d folderDocument) toModel() *models.SessionFolder {
	return &models.SessionFolder{
		FolderID:    d.FolderID,
		StudentID:   d.StudentID,
		Name:        d.Name,
		Description: d.Description,
		IsActive:    d.IsActive,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

// MongoRepository relies on a partial unique index over student_id for
// documents with is_active=true (see repomanager). Deactivation and
// activation are separate conditional writes; a concurrent writer that slips
// between them hits the index and gets common.ErrConflict. When the
// activating write fails for any other reason the previously active folder
// is switched back on.
type MongoRepository struct {
	coll collection
	now  func() time.Time
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return newMongoRepository(db.Collection(CollectionName))
}

func newMongoRepository(coll collection) *MongoRepository {
	return &MongoRepository{coll: coll, now: func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) }}
}

// deactivateOthers reports how many folders it switched off. Their
// updated_at is set to at, which restoreOthers uses to find them again.
func (r *MongoRepository) deactivateOthers(ctx context.Context, studentID, keepID string, at time.Time) (int64, error) {
	filter := bson.M{"student_id": studentID, "is_active": true, "_id": bson.M{"$ne": keepID}}
	update := bson.M{"$set": bson.M{"is_active": false, "updated_at": at}}
	res, err := r.coll.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, fmt.Errorf("failed to deactivate folders: %w", err)
	}
	return res.ModifiedCount, nil
}

// restoreOthers undoes deactivateOthers after the activating write failed.
// A conflict means another writer activated a folder meanwhile, so nothing
// is restored. It runs on a fresh timeout because ctx may already be done.
func (r *MongoRepository) restoreOthers(ctx context.Context, cause error, studentID, keepID string, at time.Time, deactivated int64) error {
	if deactivated == 0 || errors.Is(cause, common.ErrConflict) {
		return cause
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), restoreTimeout)
	defer cancel()

	filter := bson.M{"student_id": studentID, "is_active": false, "updated_at": at, "_id": bson.M{"$ne": keepID}}
	update := bson.M{"$set": bson.M{"is_active": true}}
	if _, err := r.coll.UpdateMany(ctx, filter, update); err != nil && !mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w (restoring previous active folder failed: %v)", cause, err)
	}
	return cause
}

func (r *MongoRepository) Create(ctx context.Context, f *models.SessionFolder) error {
	now := r.now()
	var deactivated int64
	if f.IsActive {
		n, err := r.deactivateOthers(ctx, f.StudentID, f.FolderID, now)
		if err != nil {
			return err
		}
		deactivated = n
	}

	f.CreatedAt = now
	f.UpdatedAt = now
	doc := folderDocument{
		FolderID:    f.FolderID,
		StudentID:   f.StudentID,
		Name:        f.Name,
		Description: f.Description,
		IsActive:    f.IsActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return r.restoreOthers(ctx, translateMongo(err), f.StudentID, f.FolderID, now, deactivated)
	}
	return nil
}

func (r *MongoRepository) Activate(ctx context.Context, studentID, folderID string) (*models.SessionFolder, error) {
	owned := bson.M{"_id": folderID, "student_id": studentID}

	var existing folderDocument
	if err := r.coll.FindOne(ctx, owned).Decode(&existing); err != nil {
		return nil, translateMongo(err)
	}

	now := r.now()
	deactivated, err := r.deactivateOthers(ctx, studentID, folderID, now)
	if err != nil {
		return nil, err
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.M{"$set": bson.M{"is_active": true, "updated_at": now}}

	var doc folderDocument
	if err := r.coll.FindOneAndUpdate(ctx, owned, update, opts).Decode(&doc); err != nil {
		return nil, r.restoreOthers(ctx, translateMongo(err), studentID, folderID, now, deactivated)
	}
	return doc.toModel(), nil
}

func (r *MongoRepository) ListByStudent(ctx context.Context, studentID string) ([]*models.SessionFolder, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})

	cursor, err := r.coll.Find(ctx, bson.M{"student_id": studentID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find folders: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []folderDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode folders: %w", err)
	}

	result := make([]*models.SessionFolder, 0, len(docs))
	for _, d := range docs {
		result = append(result, d.toModel())
	}
	return result, nil
}

func translateMongo(err error) error {
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return common.ErrorNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("active folder race: %w", common.ErrConflict)
	default:
		return fmt.Errorf("mongo error: %w", err)
	}
}
