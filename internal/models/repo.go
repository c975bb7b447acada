package models

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/mongo"
)

var Validate = validator.New()

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrDuplicateEmail = errors.New("email already in use")
	// ErrStatusConflict is returned when a booking's status forbids the change.
	ErrStatusConflict = errors.New("booking status does not allow this change")
)

func init() {
	// Money goes over the wire as JSON numbers, matching the catalog's DECIMAL columns.
	decimal.MarshalJSONWithoutQuotes = true
}

// SQLRepo implements the relational repositories (users, packages, bookings).
// Queries are written with ? placeholders and rebound for the active driver.
type SQLRepo struct {
	db *sqlx.DB
}

func SQLNewRepo(db *sqlx.DB) *SQLRepo {
	return &SQLRepo{db: db}
}

func (r *SQLRepo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// insertReturningID runs an INSERT and returns the generated id. PostgreSQL has
// no LastInsertId, so it gets a RETURNING clause instead.
func insertReturningID(ctx context.Context, ext sqlx.ExtContext, query string, args ...interface{}) (int64, error) {
	if ext.DriverName() == "postgres" {
		var id int64
		if err := ext.QueryRowxContext(ctx, ext.Rebind(query+" RETURNING id"), args...).Scan(&id); err != nil {
			return 0, err
		}
		return id, nil
	}

	res, err := ext.ExecContext(ctx, ext.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read inserted id: %w", err)
	}
	return id, nil
}

type MongodbRepo struct {
	mongodbClient *mongo.Client
	dbName        string
}

func MongodbNewRepo(mongodbClient *mongo.Client, dbName string) *MongodbRepo {
	return &MongodbRepo{
		mongodbClient: mongodbClient,
		dbName:        dbName,
	}
}

func (mdb *MongodbRepo) GetCollection(name string) (*mongo.Collection, error) {
	if mdb.mongodbClient == nil {
		return nil, fmt.Errorf("mongodb client is not initialised")
	}
	return mdb.mongodbClient.Database(mdb.dbName).Collection(name), nil
}
