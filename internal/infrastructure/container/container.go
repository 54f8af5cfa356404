package container

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/anondate/anondate-backend/internal/config"
	httpdelivery "github.com/anondate/anondate-backend/internal/delivery/http"
	"github.com/anondate/anondate-backend/internal/delivery/http/handler"
	"github.com/anondate/anondate-backend/internal/delivery/http/middleware"
	"github.com/anondate/anondate-backend/internal/infrastructure/database"
	"github.com/anondate/anondate-backend/internal/infrastructure/server"
	"github.com/anondate/anondate-backend/internal/repository/postgres"
	"github.com/anondate/anondate-backend/internal/repository/redissession"
	"github.com/anondate/anondate-backend/internal/usecase/auth"
	"github.com/anondate/anondate-backend/internal/usecase/block"
	"github.com/anondate/anondate-backend/internal/usecase/chat"
	"github.com/anondate/anondate-backend/internal/usecase/match"
	"github.com/anondate/anondate-backend/internal/usecase/profile"
)

// Container holds all application dependencies.
type Container struct {
	Config *config.Config
	DB     *sqlx.DB
	Redis  *redis.Client
	Server *server.Server
}

// NewContainer wires repositories, use cases, handlers and the server.
func NewContainer(cfg *config.Config) (*Container, error) {
	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := database.EnsureSchema(ctx, db); err != nil {
		return nil, err
	}

	redisClient, err := database.NewRedisClient(&cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize redis: %w", err)
	}

	// Repositories
	userRepo := postgres.NewUserRepository(db)
	profileRepo := postgres.NewProfileRepository(db)
	prefRepo := postgres.NewPreferenceRepository(db)
	blockRepo := postgres.NewBlockRepository(db)
	convRepo := postgres.NewConversationRepository(db)
	msgRepo := postgres.NewMessageRepository(db)
	sessionRepo := redissession.NewSessionRepository(redisClient)

	// Use cases
	authUseCase := auth.NewUseCase(
		userRepo,
		profileRepo,
		prefRepo,
		sessionRepo,
		cfg.Auth.JWTSecret,
		time.Duration(cfg.Auth.TokenExpiryMin)*time.Minute,
	)
	profileUseCase := profile.NewUseCase(profileRepo, prefRepo)
	matchUseCase := match.NewUseCase(profileRepo, blockRepo, convRepo)
	chatUseCase := chat.NewUseCase(convRepo, msgRepo, profileRepo, blockRepo)
	blockUseCase := block.NewUseCase(blockRepo, userRepo)

	// Handlers
	authHandler := handler.NewAuthHandler(authUseCase)
	profileHandler := handler.NewProfileHandler(profileUseCase)
	matchHandler := handler.NewMatchHandler(matchUseCase)
	conversationHandler := handler.NewConversationHandler(chatUseCase)
	blockHandler := handler.NewBlockHandler(blockUseCase)

	authMiddleware := middleware.NewAuthMiddleware(authUseCase)

	router := httpdelivery.NewRouter(
		authHandler,
		profileHandler,
		matchHandler,
		conversationHandler,
		blockHandler,
		authMiddleware,
	)

	srv := server.NewServer(&cfg.Server, router.Setup())

	return &Container{
		Config: cfg,
		DB:     db,
		Redis:  redisClient,
		Server: srv,
	}, nil
}

// Close closes all connections.
func (c *Container) Close() error {
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			return fmt.Errorf("failed to close redis: %w", err)
		}
	}
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
	}
	return nil
}
