package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"toyshop/internal/config"
	"toyshop/internal/handler"
	"toyshop/internal/infra/catalog"
	"toyshop/internal/infra/db"
	infraRepo "toyshop/internal/infra/repository"
	"toyshop/internal/logging"
	"toyshop/internal/middleware"
	repo "toyshop/internal/repository"
	"toyshop/internal/server"
	"toyshop/internal/usecase"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type uuidGenerator struct{}

func (g *uuidGenerator) NewID() string {
	return uuid.NewString()
}

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now()
}

func main() {
	//.envは無くてもよい
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "load .env:", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.GoEnv)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(context.Background(), cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	kv, closeKV, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeKV()

	//usecaseに渡す部品
	idGen := &uuidGenerator{}
	clock := &realClock{}

	issuer, err := middleware.NewJWTIssuer(cfg.JWTSecret, cfg.AccessTokenTTL)
	if err != nil {
		return err
	}

	//bcrypt（会員登録：Hash / ログイン：Verify）
	hasher := usecase.NewBcryptPasswordHasher(12)
	verifier := usecase.NewBcryptPasswordVerifier()

	//Usecase生成
	shop, err := usecase.NewShop(ctx, kv, usecase.ContextIdentityProvider{}, idGen, clock, logger)
	if err != nil {
		return err
	}
	shop.Subscribe(usecase.LogObserver(logger))

	authUC, err := usecase.NewAuthUsecase(ctx, kv, hasher, verifier, issuer, clock, logger)
	if err != nil {
		return err
	}
	favoriteUC, err := usecase.NewFavoriteUsecase(ctx, kv, logger)
	if err != nil {
		return err
	}
	reviewUC, err := usecase.NewReviewUsecase(ctx, kv,
		usecase.FileSeedSource{Path: cfg.SeedReviewsPath},
		shop, authUC, idGen, clock, logger)
	if err != nil {
		return err
	}

	client := catalog.NewClient(cfg.CatalogBaseURL, cfg.CatalogTimeout, logger,
		catalog.WithImageBaseURL(cfg.CatalogImageBaseURL))
	catalogUC := usecase.NewCatalogUsecase(client, reviewUC)

	//Handler生成
	handlers := server.Handlers{
		Auth:     handler.NewAuthHandler(authUC),
		Cart:     handler.NewCartHandler(shop, catalogUC),
		Checkout: handler.NewCheckoutHandler(shop, cfg.CheckoutDelay),
		Order:    handler.NewOrderHandler(shop, reviewUC),
		Catalog:  handler.NewCatalogHandler(catalogUC, reviewUC),
		Favorite: handler.NewFavoriteHandler(favoriteUC, catalogUC),
		Review:   handler.NewReviewHandler(reviewUC),
	}

	e := server.New(handlers, cfg.JWTSecret, authUC, logger)
	return server.Start(ctx, e, ":"+cfg.Port, logger)
}

// STORE_BACKENDに応じたKV
func openStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (repo.KVStore, func(), error) {
	switch cfg.StoreBackend {
	case config.BackendPostgres:
		gormDB, err := db.Connect(cfg.PostgresDSN())
		if err != nil {
			return nil, nil, err
		}
		kv := infraRepo.NewKVGormRepository(gormDB)
		if err := kv.Migrate(ctx); err != nil {
			return nil, nil, err
		}
		logger.Info("store: postgres")
		closeFn := func() {
			if sqlDB, err := gormDB.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}
		return kv, closeFn, nil

	case config.BackendRedis:
		client, err := db.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("store: redis", zap.String("addr", cfg.RedisAddr), zap.String("prefix", cfg.KeyPrefix))
		return infraRepo.NewKVRedisRepository(client, cfg.KeyPrefix), func() { _ = client.Close() }, nil

	default:
		logger.Info("store: memory")
		return infraRepo.NewKVMemoryRepository(), func() {}, nil
	}
}
