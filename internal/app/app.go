package app

import (
	"context"

	"github.com/AlexMickh/speak-messenger/internal/api"
	"github.com/AlexMickh/speak-messenger/internal/config"
	"github.com/AlexMickh/speak-messenger/internal/service"
	"github.com/AlexMickh/speak-messenger/internal/storage/minio"
	"github.com/AlexMickh/speak-messenger/internal/storage/postgres"
	redisstorage "github.com/AlexMickh/speak-messenger/internal/storage/redis"
	"github.com/AlexMickh/speak-messenger/pkg/jwt"
	"github.com/AlexMickh/speak-messenger/pkg/logger"
	minioclient "github.com/AlexMickh/speak-messenger/pkg/minio-client"
	postgresclient "github.com/AlexMickh/speak-messenger/pkg/postgres-client"
	redisclient "github.com/AlexMickh/speak-messenger/pkg/redis-client"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type App struct {
	db     *pgxpool.Pool
	cache  *redis.Client
	server *api.Server
}

func Register(ctx context.Context, cfg *config.Config) *App {
	const op = "app.Register"

	ctx = logger.GetFromCtx(ctx).With(ctx, zap.String("op", op))

	logger.GetFromCtx(ctx).Info(ctx, "initing postgres")
	pgCfg := postgresclient.NewConfig(
		cfg.DB.User,
		cfg.DB.Password,
		cfg.DB.Host,
		cfg.DB.Port,
		cfg.DB.Name,
		cfg.DB.MinPools,
		cfg.DB.MaxPools,
		cfg.DB.MigrationsPath,
	)
	db, err := postgresclient.New(ctx, pgCfg)
	if err != nil {
		logger.GetFromCtx(ctx).Fatal(ctx, "failed to init pgx pool", zap.Error(err))
	}

	storage := postgres.New(db)

	logger.GetFromCtx(ctx).Info(ctx, "initing minio")
	minioCfg := minioclient.NewConfig(
		cfg.S3.Endpoint,
		cfg.S3.User,
		cfg.S3.Password,
		cfg.S3.BucketName,
		cfg.S3.IsUseSsl,
	)
	mc, err := minioclient.New(ctx, minioCfg)
	if err != nil {
		logger.GetFromCtx(ctx).Fatal(ctx, "failed to init minio", zap.Error(err))
	}

	s3 := minio.New(mc, cfg.S3.BucketName, cfg.S3.Expires)

	logger.GetFromCtx(ctx).Info(ctx, "initing redis")
	redisCfg := redisclient.NewConfig(
		cfg.Redis.Addr,
		cfg.Redis.User,
		cfg.Redis.Password,
		cfg.Redis.DB,
	)
	rdb, err := redisclient.New(ctx, redisCfg)
	if err != nil {
		logger.GetFromCtx(ctx).Fatal(ctx, "failed to init redis", zap.Error(err))
	}

	cache := redisstorage.New(rdb, cfg.Redis.Expiration)

	tokens := jwt.New(cfg.JWT.Secret, cfg.JWT.TTL)
	svc := service.New(storage, cache, s3, tokens)

	logger.GetFromCtx(ctx).Info(ctx, "initing http server")
	server := api.New(ctx, cfg.Port, cfg.Env, svc, tokens, cfg.RateLimit.RPS, cfg.RateLimit.Burst)

	return &App{
		db:     db,
		cache:  rdb,
		server: server,
	}
}

func (a *App) Run(ctx context.Context) {
	go func() {
		if err := a.server.Run(ctx); err != nil {
			logger.GetFromCtx(ctx).Error(ctx, "http server stopped", zap.Error(err))
		}
	}()
}

func (a *App) GracefulStop(ctx context.Context) {
	const op = "app.GracefulStop"

	ctx = logger.GetFromCtx(ctx).With(ctx, zap.String("op", op))

	logger.GetFromCtx(ctx).Info(ctx, "stopping http server")
	if err := a.server.Stop(ctx); err != nil {
		logger.GetFromCtx(ctx).Error(ctx, "failed to stop http server", zap.Error(err))
	}

	logger.GetFromCtx(ctx).Info(ctx, "stopping redis")
	if err := a.cache.Close(); err != nil {
		logger.GetFromCtx(ctx).Error(ctx, "failed to stop redis", zap.Error(err))
	}

	logger.GetFromCtx(ctx).Info(ctx, "stopping postgres")
	a.db.Close()
}
