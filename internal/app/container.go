package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ST10067544-Thato/Gift-Card-System/domain"
	"github.com/ST10067544-Thato/Gift-Card-System/internal/config"
	httpx "github.com/ST10067544-Thato/Gift-Card-System/internal/http"
	"github.com/ST10067544-Thato/Gift-Card-System/internal/http/handlers"
	"github.com/ST10067544-Thato/Gift-Card-System/internal/http/middleware"
	"github.com/ST10067544-Thato/Gift-Card-System/internal/infrastructure/auth"
	"github.com/ST10067544-Thato/Gift-Card-System/internal/infrastructure/database"
	"github.com/ST10067544-Thato/Gift-Card-System/internal/infrastructure/repositories"
	"github.com/ST10067544-Thato/Gift-Card-System/internal/logging"
	"github.com/ST10067544-Thato/Gift-Card-System/internal/services"
)

// Container holds all dependencies
type Container struct {
	Config *config.Config
	Logger *zap.Logger

	// Infrastructure
	DB          *gorm.DB
	MongoClient *mongo.Client
	RedisClient *redis.Client

	// Repositories
	UserRepo     domain.UserRepository
	PendingStore domain.PendingSecretStore

	// Services
	Audit        domain.AuditLogger
	PasswordSvc  domain.PasswordService
	TokenSvc     domain.TokenService
	TOTPProvider domain.TOTPProvider
	TOTPSvc      domain.TOTPService
	AuthSvc      domain.AuthService
	PolicySvc    domain.PolicyService

	Router *gin.Engine
}

// NewContainer creates and initializes all dependencies
func NewContainer(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Container, error) {
	c := &Container{Config: cfg, Logger: logger}

	if err := c.initUserStore(ctx); err != nil {
		c.Close()
		return nil, err
	}
	if err := c.initPendingStore(ctx); err != nil {
		c.Close()
		return nil, err
	}
	if err := c.initServices(); err != nil {
		c.Close()
		return nil, err
	}
	c.initRouter()
	return c, nil
}

func (c *Container) initUserStore(ctx context.Context) error {
	switch c.Config.Database.Driver {
	case config.DriverMongo:
		client, db, err := database.OpenMongo(ctx, c.Config.Mongo)
		if err != nil {
			return err
		}
		c.MongoClient = client
		repo := repositories.NewMongoUserRepository(db)
		if err := repo.EnsureIndexes(ctx); err != nil {
			return err
		}
		c.UserRepo = repo
	default:
		db, err := database.Open(c.Config.Database, c.Logger)
		if err != nil {
			return err
		}
		c.DB = db
		if err := database.AutoMigrate(db); err != nil {
			return err
		}
		c.UserRepo = repositories.NewUserRepository(db)
	}
	return nil
}

func (c *Container) initPendingStore(ctx context.Context) error {
	if c.Config.TOTP.PendingStore != config.PendingStoreRedis {
		c.PendingStore = repositories.NewMemoryPendingSecretStore()
		return nil
	}
	client, err := database.NewRedis(ctx, c.Config.Redis)
	if err != nil {
		return err
	}
	c.RedisClient = client
	c.PendingStore = repositories.NewRedisPendingSecretStore(client, c.Config.TOTP.PendingTTL)
	return nil
}

func (c *Container) initServices() error {
	casbinSvc, err := auth.NewCasbinService()
	if err != nil {
		return fmt.Errorf("failed to build role gate enforcer: %w", err)
	}

	c.Audit = logging.NewZapAuditLogger(c.Logger)
	c.PasswordSvc = auth.NewPasswordService(c.Config.Password.BcryptCost)
	c.TokenSvc = auth.NewJWTService(c.Config.JWT.Secret, c.Config.JWT.Issuer, c.Config.JWT.AccessTTL)
	c.TOTPProvider = auth.NewTOTPProvider(c.Config.TOTP.Issuer)
	c.PolicySvc = services.NewPolicyService(casbinSvc.E)

	c.TOTPSvc = services.NewTOTPService(c.UserRepo, c.PendingStore, c.TOTPProvider, c.Audit)
	c.AuthSvc = services.NewAuthService(c.UserRepo, c.PasswordSvc, c.TokenSvc, c.TOTPSvc, c.Audit)
	return nil
}

func (c *Container) initRouter() {
	gate := middleware.NewRoleGate(c.TokenSvc, c.PolicySvc, c.Audit, c.Logger)
	c.Router = httpx.BuildRouter(
		handlers.NewAuthHandlers(c.AuthSvc, c.Logger),
		handlers.NewAdminHandlers(c.AuthSvc, c.PolicySvc, c.Logger),
		gate,
		c.Logger,
	)
}

// Close closes all connections
func (c *Container) Close() error {
	var errs []error
	if c.RedisClient != nil {
		errs = append(errs, c.RedisClient.Close())
	}
	if c.MongoClient != nil {
		errs = append(errs, c.MongoClient.Disconnect(context.Background()))
	}
	if c.DB != nil {
		errs = append(errs, database.Close(c.DB))
	}
	return errors.Join(errs...)
}
