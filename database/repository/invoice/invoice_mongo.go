package invoiceRepo

import (
	"context"
	"fmt"
	"time"

	"servora/database"
	"servora/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoInvoiceRepo implements InvoiceRepository using MongoDB.
type MongoInvoiceRepo struct {
	coll *mongo.Collection
}

// NewMongoInvoiceRepo creates a new instance of InvoiceRepository using MongoDB.
func NewMongoInvoiceRepo() InvoiceRepository {
	coll := database.MongoClient.Database(database.DBName).Collection("invoices")
	repo := &MongoInvoiceRepo{coll: coll}

	ctx, cancel := newContext(10 * time.Second)
	defer cancel()
	_, err := coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "provider_id", Value: 1}, {Key: "status", Value: 1}}},
	})
	if err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func (r *MongoInvoiceRepo) Create(inv *models.Invoice) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	now := time.Now()
	inv.CreatedAt = now
	inv.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, inv); err != nil {
		return fmt.Errorf("failed to create invoice: %w", err)
	}
	return nil
}

func (r *MongoInvoiceRepo) GetByID(id string) (*models.Invoice, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var inv models.Invoice
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&inv); err != nil {
		return nil, fmt.Errorf("failed to fetch invoice with id %s: %w", id, err)
	}
	return &inv, nil
}

func (r *MongoInvoiceRepo) Update(inv *models.Invoice) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	inv.UpdatedAt = time.Now()
	result, err := r.coll.UpdateOne(ctx, bson.M{"id": inv.ID}, bson.M{"$set": inv})
	if err != nil {
		return fmt.Errorf("failed to update invoice with id %s: %w", inv.ID, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("invoice with id %s not found", inv.ID)
	}
	return nil
}

func (r *MongoInvoiceRepo) CountActiveByProvider(providerID string) (int64, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := bson.M{
		"provider_id": providerID,
		"status":      bson.M{"$ne": models.InvoiceCanceled},
	}
	count, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count invoices for provider %s: %w", providerID, err)
	}
	return count, nil
}

func (r *MongoInvoiceRepo) ListByProvider(providerID string) ([]models.Invoice, error) {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{"provider_id": providerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices for provider %s: %w", providerID, err)
	}
	defer cursor.Close(ctx)

	var invoices []models.Invoice
	if err := cursor.All(ctx, &invoices); err != nil {
		return nil, fmt.Errorf("failed to decode invoices: %w", err)
	}
	return invoices, nil
}
