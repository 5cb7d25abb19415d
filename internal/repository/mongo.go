package repository

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"trackd.sh/internal/metrics"
	"trackd.sh/internal/models"
	"trackd.sh/internal/terrors"
)

// MongoStore implements AssetRepository on a MongoDB database. Partial
// updates go through $set on a single document, so each write is atomic at
// the field level and concurrent writers touching disjoint fields do not
// clobber each other.
type MongoStore struct {
	db     *mongo.Database
	assets *mongo.Collection
	logger *slog.Logger
}

// NewMongoStore creates a store on the given database handle.
func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{
		db:     db,
		assets: db.Collection(CollectionAssets),
		logger: slog.Default().With("component", "asset-store"),
	}
}

func (s *MongoStore) Find(ctx context.Context, filter AssetFilter, opts ListOptions) ([]*models.Asset, int64, error) {
	if err := normalizeListOptions(&opts); err != nil {
		return nil, 0, err
	}
	query := buildMongoFilter(filter)

	start := time.Now()
	total, err := s.assets.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, s.storeErr("count", start, err)
	}

	sortBy := opts.SortBy
	if sortBy == "" {
		sortBy = "createdAt"
	}
	direction := 1
	if opts.SortDesc {
		direction = -1
	}
	findOpts := options.Find().
		SetSkip(opts.Skip).
		SetLimit(opts.Limit).
		SetSort(bson.D{{Key: sortBy, Value: direction}})

	cursor, err := s.assets.Find(ctx, query, findOpts)
	if err != nil {
		return nil, 0, s.storeErr("find", start, err)
	}
	defer cursor.Close(ctx)

	assets := []*models.Asset{}
	if err := cursor.All(ctx, &assets); err != nil {
		return nil, 0, s.storeErr("find", start, err)
	}
	metrics.RecordStoreQuery("find", time.Since(start).Seconds())
	return assets, total, nil
}

func (s *MongoStore) FindByID(ctx context.Context, id string) (*models.Asset, error) {
	start := time.Now()
	var asset models.Asset
	err := s.assets.FindOne(ctx, bson.M{"_id": id}).Decode(&asset)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, terrors.Newf(terrors.ErrCodeNotFound, "asset not found: %s", id)
		}
		return nil, s.storeErr("findById", start, err)
	}
	metrics.RecordStoreQuery("findById", time.Since(start).Seconds())
	return &asset, nil
}

func (s *MongoStore) Insert(ctx context.Context, asset *models.Asset) (*models.Asset, error) {
	start := time.Now()
	if _, err := s.assets.InsertOne(ctx, asset); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, terrors.Newf(terrors.ErrCodeAlreadyExists, "asset already exists: %s", asset.ID)
		}
		return nil, s.storeErr("insert", start, err)
	}
	metrics.RecordStoreQuery("insert", time.Since(start).Seconds())
	return asset, nil
}

func (s *MongoStore) UpdateFields(ctx context.Context, id string, fields map[string]any) (*models.Asset, error) {
	set := bson.M{}
	for key, value := range fields {
		set[key] = value
	}

	start := time.Now()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.Asset
	err := s.assets.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, terrors.Newf(terrors.ErrCodeNotFound, "asset not found: %s", id)
		}
		return nil, s.storeErr("updateFields", start, err)
	}
	metrics.RecordStoreQuery("updateFields", time.Since(start).Seconds())
	return &updated, nil
}

func (s *MongoStore) ExistsByID(ctx context.Context, collection, id string) (bool, error) {
	start := time.Now()
	count, err := s.db.Collection(collection).CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return false, s.storeErr("existsById", start, err)
	}
	metrics.RecordStoreQuery("existsById", time.Since(start).Seconds())
	return count > 0, nil
}

func (s *MongoStore) Counts(ctx context.Context, filter AssetFilter) (StatusCounts, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: buildMongoFilter(filter)}},
		bson.D{{Key: "$facet", Value: bson.M{
			"byStatus": bson.A{bson.M{"$group": bson.M{"_id": "$status", "count": bson.M{"$sum": 1}}}},
			"byType":   bson.A{bson.M{"$group": bson.M{"_id": "$type", "count": bson.M{"$sum": 1}}}},
		}}},
	}

	start := time.Now()
	cursor, err := s.assets.Aggregate(ctx, pipeline)
	if err != nil {
		return StatusCounts{}, s.storeErr("counts", start, err)
	}
	defer cursor.Close(ctx)

	var results []struct {
		ByStatus []bucket `bson:"byStatus"`
		ByType   []bucket `bson:"byType"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return StatusCounts{}, s.storeErr("counts", start, err)
	}
	metrics.RecordStoreQuery("counts", time.Since(start).Seconds())

	counts := newStatusCounts()
	if len(results) == 0 {
		return counts, nil
	}
	for _, b := range results[0].ByStatus {
		counts.ByStatus[models.AssetStatus(b.ID)] = b.Count
		counts.Total += b.Count
	}
	for _, b := range results[0].ByType {
		counts.ByType[models.AssetType(b.ID)] = b.Count
	}
	return counts, nil
}

type bucket struct {
	ID    string `bson:"_id"`
	Count int64  `bson:"count"`
}

func (s *MongoStore) storeErr(op string, start time.Time, err error) error {
	metrics.RecordStoreQuery(op, time.Since(start).Seconds())
	metrics.RecordError("asset-store", "store", op)
	s.logger.Error("store operation failed", "operation", op, "error", err)
	return terrors.Wrapf(err, terrors.ErrCodeUnavailable, "store %s failed", op)
}

// buildMongoFilter translates an AssetFilter into a bson query document.
func buildMongoFilter(f AssetFilter) bson.M {
	query := bson.M{}
	if f.OrganizationID != "" {
		query["organizationId"] = f.OrganizationID
	}
	if f.BuildingID != "" {
		query[FieldBuildingID] = f.BuildingID
	}
	if f.FloorID != "" {
		query[FieldFloorID] = f.FloorID
	}
	if f.DepartmentID != "" {
		query[FieldDepartmentID] = f.DepartmentID
	}
	if len(f.Types) == 1 {
		query[FieldType] = f.Types[0]
	} else if len(f.Types) > 1 {
		query[FieldType] = bson.M{"$in": f.Types}
	}
	if len(f.Statuses) == 1 {
		query[FieldStatus] = f.Statuses[0]
	} else if len(f.Statuses) > 1 {
		query[FieldStatus] = bson.M{"$in": f.Statuses}
	}
	if f.IsActive != nil {
		query[FieldIsActive] = *f.IsActive
	}
	if f.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
		query["$or"] = bson.A{
			bson.M{FieldName: pattern},
			bson.M{FieldLocation: pattern},
			bson.M{FieldDescription: pattern},
			bson.M{FieldTags: pattern},
		}
	}
	return query
}
