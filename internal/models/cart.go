package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CartColName = "saved_carts"

type SavedCartItem struct {
	CartID    string          `json:"cartId" validate:"required,max=64"`
	PackageID int64           `json:"packageId" validate:"required,gt=0"`
	Name      string          `json:"name" validate:"max=255"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity" validate:"required,min=1,max=10"`
}

type SavedCart struct {
	UserID    int64           `json:"userId"`
	Items     []SavedCartItem `json:"items" validate:"max=50,dive"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

type CartRepo interface {
	SaveCart(ctx context.Context, userID int64, items []SavedCartItem) (*SavedCart, error)
	GetCart(ctx context.Context, userID int64) (*SavedCart, error)
	DeleteCart(ctx context.Context, userID int64) error
}

// cartDocument is the stored form. Prices are Decimal128 because the driver has
// no codec for decimal.Decimal.
type cartDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    int64              `bson:"user_id"`
	Items     []cartItemDocument `bson:"items"`
	CreatedAt time.Time          `bson:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at"`
}

type cartItemDocument struct {
	CartID    string               `bson:"cart_id"`
	PackageID int64                `bson:"package_id"`
	Name      string               `bson:"name"`
	Price     primitive.Decimal128 `bson:"price"`
	Quantity  int                  `bson:"quantity"`
}

func toCartItemDocuments(items []SavedCartItem) ([]cartItemDocument, error) {
	docs := make([]cartItemDocument, 0, len(items))
	for _, it := range items {
		price, err := primitive.ParseDecimal128(it.Price.StringFixed(2))
		if err != nil {
			return nil, fmt.Errorf("invalid price for package %d: %w", it.PackageID, err)
		}
		docs = append(docs, cartItemDocument{
			CartID:    it.CartID,
			PackageID: it.PackageID,
			Name:      it.Name,
			Price:     price,
			Quantity:  it.Quantity,
		})
	}
	return docs, nil
}

func (d *cartDocument) toSavedCart() (*SavedCart, error) {
	cart := &SavedCart{
		UserID:    d.UserID,
		Items:     make([]SavedCartItem, 0, len(d.Items)),
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
	for _, it := range d.Items {
		price, err := decimal.NewFromString(it.Price.String())
		if err != nil {
			return nil, fmt.Errorf("invalid stored price for package %d: %w", it.PackageID, err)
		}
		cart.Items = append(cart.Items, SavedCartItem{
			CartID:    it.CartID,
			PackageID: it.PackageID,
			Name:      it.Name,
			Price:     price,
			Quantity:  it.Quantity,
		})
	}
	return cart, nil
}

// CartTTL is how long an untouched saved cart is kept.
const CartTTL = 90 * 24 * time.Hour

// EnsureCartIndexes creates the unique per-user index and the TTL index that
// expires abandoned carts.
func (mdb *MongodbRepo) EnsureCartIndexes(ctx context.Context) error {
	col, err := mdb.GetCollection(CartColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %w", err)
	}

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetName("user_id_unique"),
		},
		{
			Keys: bson.D{{Key: "updated_at", Value: 1}},
			Options: options.Index().
				SetExpireAfterSeconds(int32(CartTTL / time.Second)).
				SetName("updated_at_ttl"),
		},
	}

	if _, err := col.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("error creating indexes: %w", err)
	}
	return nil
}

// SaveCart replaces the user's stored cart, creating the document on first use.
func (mdb *MongodbRepo) SaveCart(ctx context.Context, userID int64, items []SavedCartItem) (*SavedCart, error) {
	col, err := mdb.GetCollection(CartColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %w", err)
	}

	docs, err := toCartItemDocuments(items)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	filter := bson.M{"user_id": userID}
	update := bson.M{
		"$set": bson.M{
			"items":      docs,
			"updated_at": now,
		},
		"$setOnInsert": bson.M{
			"user_id":    userID,
			"created_at": now,
		},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var result cartDocument
	if err := col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&result); err != nil {
		return nil, fmt.Errorf("error upserting cart: %w", err)
	}
	return result.toSavedCart()
}

func (mdb *MongodbRepo) GetCart(ctx context.Context, userID int64) (*SavedCart, error) {
	col, err := mdb.GetCollection(CartColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %w", err)
	}

	var doc cartDocument
	err = col.FindOne(ctx, bson.M{"user_id": userID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error finding cart: %w", err)
	}
	return doc.toSavedCart()
}

func (mdb *MongodbRepo) DeleteCart(ctx context.Context, userID int64) error {
	col, err := mdb.GetCollection(CartColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %w", err)
	}
	if _, err := col.DeleteOne(ctx, bson.M{"user_id": userID}); err != nil {
		return fmt.Errorf("error deleting cart: %w", err)
	}
	return nil
}
