package wire

import (
	"context"
	"fmt"
	"time"

	"claridx/internal/common"
	"claridx/internal/config"
	"claridx/internal/conversation"
	"claridx/internal/copilot"
	"claridx/internal/dbmongo"
	"claridx/internal/dbsql"
	"claridx/internal/health"
	"claridx/internal/locale"
	"claridx/internal/logger"
	"claridx/internal/media"
	"claridx/internal/notif"
	"claridx/internal/storage"
	"claridx/internal/user"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const healthCheckInterval = 15 * time.Second

// Application is everything cmd/claridx needs to serve.
type Application struct {
	Config       *config.Config
	Logger       *zap.Logger
	Hub          *notif.Hub
	Health       *health.Checker
	Users        user.UserService
	User         *user.Handler
	Conversation *conversation.Handler
	Copilot      *copilot.Handler
	Locale       *locale.Handler
}

// MediaApplication backs the standalone media server.
type MediaApplication struct {
	Config *config.Config
	Logger *zap.Logger
	Server *media.HTTPServer
}

func ProvideConfig() (*config.Config, error) {
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func ProvideLogger(cfg *config.Config) (*zap.Logger, func(), error) {
	log, err := logger.New(cfg.Logging)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build logger: %w", err)
	}
	if cfg.Auth.JWTSecret == "" {
		log.Warn("JWT_SECRET is not set, sessions will not survive a restart")
	}
	return log, func() { _ = log.Sync() }, nil
}

func ProvideDatabase(cfg *config.Config, log *zap.Logger) (*gorm.DB, func(), error) {
	db, err := dbsql.NewDatabase(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	return db, func() {
		if err := dbsql.Close(db); err != nil {
			log.Warn("closing database failed", zap.Error(err))
		}
	}, nil
}

// ProvideMongo connects only when attachments live in GridFS.
func ProvideMongo(cfg *config.Config, log *zap.Logger) (*dbmongo.MongoClient, func(), error) {
	if cfg.Storage.Backend != "gridfs" {
		return nil, func() {}, nil
	}
	mc, err := dbmongo.NewMongoConnection(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	return mc, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mc.Close(ctx)
	}, nil
}

// ProvideRedis returns nil when Redis is disabled.
func ProvideRedis(cfg *config.Config, log *zap.Logger) (*redis.Client, func(), error) {
	if !cfg.Redis.Enabled {
		return nil, func() {}, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Redis.Addr, err)
	}
	log.Info("connected to redis", zap.String("addr", cfg.Redis.Addr))
	return client, func() { _ = client.Close() }, nil
}

// ProvideHub watches the chat tables and, with Redis, shares changes
// across instances.
func ProvideHub(cfg *config.Config, db *gorm.DB, rdb *redis.Client, log *zap.Logger) (*notif.Hub, func(), error) {
	hub := notif.NewHub(cfg.Notification, log)
	if err := hub.WatchTables(db, map[string][]string{
		"messages":      {"patient_id", "id"},
		"conversations": {"patient_id"},
	}); err != nil {
		hub.Shutdown()
		return nil, nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	if rdb != nil {
		relay := notif.NewRedisRelay(rdb, cfg.Redis.ChannelPrefix, log)
		if err := hub.AttachRelay(ctx, relay); err != nil {
			log.Warn("redis relay unavailable, changes stay local", zap.Error(err))
		}
	}

	// Shutdown also closes an attached relay.
	return hub, func() {
		cancel()
		hub.Shutdown()
	}, nil
}

func ProvideBlobStore(cfg *config.Config, mc *dbmongo.MongoClient, log *zap.Logger) (storage.BlobStore, error) {
	return storage.New(context.Background(), cfg, mc, log)
}

func ProvideTokenManager(cfg *config.Config) *common.TokenManager {
	return common.NewTokenManager(cfg.Auth)
}

func ProvideRevocationStore(cfg *config.Config, rdb *redis.Client) user.RevocationStore {
	if rdb != nil {
		return user.NewRedisRevocationStore(rdb, cfg.Redis.ChannelPrefix)
	}
	return user.NewMemoryRevocationStore()
}

func ProvideUserService(repo user.UserRepository, tokens *common.TokenManager, revoked user.RevocationStore, hub *notif.Hub, log *zap.Logger) user.UserService {
	return user.NewUserService(repo, tokens, revoked, hub, log)
}

func ProvideSynchronizer(repo conversation.Repository, blobs storage.BlobStore, hub *notif.Hub, log *zap.Logger) *conversation.Synchronizer {
	return conversation.NewSynchronizer(repo, blobs, hub, log)
}

func ProvideConversationHandler(cfg *config.Config, sync *conversation.Synchronizer, access *conversation.Authorizer, users user.UserService, log *zap.Logger) *conversation.Handler {
	return conversation.NewHandler(sync, access, users, maxUploadBytes(cfg), cfg.Server.AllowedOrigin, log)
}

func ProvideCopilotHandler(cfg *config.Config, log *zap.Logger) *copilot.Handler {
	if cfg.Copilot.APIKey == "" {
		log.Warn("OPENROUTER_API_KEY is not set, co-pilot requests will fail")
	}
	client := copilot.NewClient(cfg.Copilot, log)
	svc := copilot.NewService(client, cfg.Copilot, log)
	limiter := copilot.NewAccountLimiter(cfg.Copilot.RatePerMinute, cfg.Copilot.RateBurst)
	return copilot.NewHandler(svc, limiter, maxUploadBytes(cfg), log)
}

func ProvideHealthChecker(db *gorm.DB, mc *dbmongo.MongoClient, rdb *redis.Client, log *zap.Logger) *health.Checker {
	probes := []health.Probe{health.DatabaseProbe(db)}
	if mc != nil {
		probes = append(probes, health.MongoProbe(mc))
	}
	if rdb != nil {
		probes = append(probes, health.RedisProbe(rdb))
	}
	return health.NewChecker(healthCheckInterval, log, probes...)
}

func ProvideMediaServer(blobs storage.BlobStore, log *zap.Logger) *media.HTTPServer {
	return media.NewHTTPServer(blobs, log)
}

func maxUploadBytes(cfg *config.Config) int64 {
	mb := cfg.Server.MaxUploadMB
	if mb <= 0 {
		mb = 10
	}
	return int64(mb) << 20
}
