package settingsRepo

import (
	"context"
	"fmt"
	"time"

	"servora/config"
	"servora/database"
	"servora/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	commissionDocID   = "commission"
	cancellationDocID = "cancellation"
)

// MongoSettingsRepo implements SettingsRepository using MongoDB. Policy values
// live as singleton documents in the settings collection.
type MongoSettingsRepo struct {
	settings   *mongo.Collection
	categories *mongo.Collection
}

// NewMongoSettingsRepo creates a new instance of SettingsRepository using MongoDB.
func NewMongoSettingsRepo() SettingsRepository {
	db := database.MongoClient.Database(database.DBName)
	return &MongoSettingsRepo{
		settings:   db.Collection("settings"),
		categories: db.Collection("categories"),
	}
}

func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

// GetCommissionPercent returns the current commission percentage, falling back
// to the configured default when no admin has set one yet.
func (r *MongoSettingsRepo) GetCommissionPercent() (float64, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var doc struct {
		Percent float64 `bson:"percent"`
	}
	err := r.settings.FindOne(ctx, bson.M{"_id": commissionDocID}).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return config.AppConfig.CommissionPercent, nil
		}
		return 0, fmt.Errorf("failed to fetch commission setting: %w", err)
	}
	return doc.Percent, nil
}

func (r *MongoSettingsRepo) SetCommissionPercent(percent float64) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{"percent": percent, "updated_at": time.Now()}}
	opts := options.Update().SetUpsert(true)
	if _, err := r.settings.UpdateOne(ctx, bson.M{"_id": commissionDocID}, update, opts); err != nil {
		return fmt.Errorf("failed to set commission percent: %w", err)
	}
	return nil
}

func (r *MongoSettingsRepo) GetCancellationPolicy() (*models.CancellationPolicy, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var policy models.CancellationPolicy
	err := r.settings.FindOne(ctx, bson.M{"_id": cancellationDocID}).Decode(&policy)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return &models.CancellationPolicy{
				Enabled: true,
				Percent: config.AppConfig.CancellationPercent,
			}, nil
		}
		return nil, fmt.Errorf("failed to fetch cancellation policy: %w", err)
	}
	return &policy, nil
}

func (r *MongoSettingsRepo) SetCancellationPolicy(policy models.CancellationPolicy) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"enabled":    policy.Enabled,
		"percent":    policy.Percent,
		"updated_at": time.Now(),
	}}
	opts := options.Update().SetUpsert(true)
	if _, err := r.settings.UpdateOne(ctx, bson.M{"_id": cancellationDocID}, update, opts); err != nil {
		return fmt.Errorf("failed to set cancellation policy: %w", err)
	}
	return nil
}

func (r *MongoSettingsRepo) CreateCategory(cat *models.Category) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	now := time.Now()
	cat.CreatedAt = now
	cat.UpdatedAt = now

	if _, err := r.categories.InsertOne(ctx, cat); err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

func (r *MongoSettingsRepo) GetCategory(id string) (*models.Category, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var cat models.Category
	if err := r.categories.FindOne(ctx, bson.M{"id": id}).Decode(&cat); err != nil {
		return nil, fmt.Errorf("failed to fetch category with id %s: %w", id, err)
	}
	return &cat, nil
}

func (r *MongoSettingsRepo) GetCategories(ids []string) ([]models.Category, error) {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	cursor, err := r.categories.Find(ctx, bson.M{"id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch categories: %w", err)
	}
	defer cursor.Close(ctx)

	var cats []models.Category
	if err := cursor.All(ctx, &cats); err != nil {
		return nil, fmt.Errorf("failed to decode categories: %w", err)
	}
	return cats, nil
}

func (r *MongoSettingsRepo) ListCategories() ([]models.Category, error) {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	cursor, err := r.categories.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer cursor.Close(ctx)

	var cats []models.Category
	if err := cursor.All(ctx, &cats); err != nil {
		return nil, fmt.Errorf("failed to decode categories: %w", err)
	}
	return cats, nil
}
