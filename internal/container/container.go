package container

import (
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/joshua-takyi/travelease/internal/helpers"
	"github.com/joshua-takyi/travelease/internal/models"
	"github.com/joshua-takyi/travelease/internal/services"
	"go.mongodb.org/mongo-driver/mongo"
)

// Container holds all application dependencies
type Container struct {
	Logger *slog.Logger
	Tokens *helpers.TokenManager
	// Database clients
	DB             *sqlx.DB
	SQLRepo        *models.SQLRepo
	MongoDBClient  *mongo.Client
	UserService    *services.UserService
	CatalogService *services.CatalogService
	BookingService *services.BookingService
	// CartService is nil when no MongoDB client is configured.
	CartService *services.CartService
}

// NewContainer creates a new dependency injection container. mongoDBClient
// may be nil.
func NewContainer(
	logger *slog.Logger,
	db *sqlx.DB,
	mongoDBClient *mongo.Client,
	mongoDBName string,
	tokens *helpers.TokenManager,
) *Container {
	// Initialize repositories
	sql := models.SQLNewRepo(db)
	userService := services.NewUserService(sql, tokens)
	catalogService := services.NewCatalogService(sql)
	bookingService := services.NewBookingService(sql, sql, sql)

	var cartService *services.CartService
	if mongoDBClient != nil {
		mongo := models.MongodbNewRepo(mongoDBClient, mongoDBName)
		cartService = services.NewCartService(mongo, sql)
	}

	return &Container{
		Logger:         logger,
		Tokens:         tokens,
		DB:             db,
		SQLRepo:        sql,
		MongoDBClient:  mongoDBClient,
		UserService:    userService,
		CatalogService: catalogService,
		BookingService: bookingService,
		CartService:    cartService,
	}
}
