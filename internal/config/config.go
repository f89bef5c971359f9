package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// ストアの種類
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// Configはアプリ全体の設定
type Config struct {
	Port  string // サーバーポート（8080）
	GoEnv string // dev/prod

	JWTSecret      string        // JWT署名シークレット
	AccessTokenTTL time.Duration // アクセストークンの有効期限

	StoreBackend string // memory / postgres / redis
	KeyPrefix    string // KVキーの名前空間

	DatabaseURL      string // あれば最優先
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresHost     string
	PostgresPort     int
	PostgresSSLMode  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	CatalogBaseURL      string        // カタログAPI
	CatalogImageBaseURL string        // 画像URLのベース
	CatalogTimeout      time.Duration // 1リクエストのタイムアウト

	SeedReviewsPath string        // seedレビューのJSON
	CheckoutDelay   time.Duration // 注文確定前の演出用待ち時間
}

// Loadは環境変数
func Load() (Config, error) {
	cfg := Config{
		Port:  getenv("PORT", "8080"),
		GoEnv: getenv("GO_ENV", "dev"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		StoreBackend: getenv("STORE_BACKEND", BackendMemory),
		KeyPrefix:    os.Getenv("KEY_PREFIX"),

		DatabaseURL:      os.Getenv("DATABASE_URL"),
		PostgresUser:     getenv("POSTGRES_USER", "postgres"),
		PostgresPassword: getenv("POSTGRES_PASSWORD", "postgres"),
		PostgresDB:       getenv("POSTGRES_DB", "toyshop"),
		PostgresHost:     getenv("POSTGRES_HOST", "localhost"),
		PostgresSSLMode:  getenv("POSTGRES_SSLMODE", "disable"),

		RedisAddr:     getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		CatalogBaseURL:      getenv("CATALOG_BASE_URL", "https://toy.pequla.com/api"),
		CatalogImageBaseURL: getenv("CATALOG_IMAGE_BASE_URL", "https://toy.pequla.com/img"),

		SeedReviewsPath: os.Getenv("SEED_REVIEWS_PATH"),
	}

	var err error
	if cfg.PostgresPort, err = atoiDefault("POSTGRES_PORT", 5432); err != nil {
		return Config{}, err
	}
	if cfg.RedisDB, err = atoiDefault("REDIS_DB", 0); err != nil {
		return Config{}, err
	}
	if cfg.AccessTokenTTL, err = durationDefault("ACCESS_TOKEN_TTL", 24*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.CatalogTimeout, err = durationDefault("CATALOG_TIMEOUT", 10*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.CheckoutDelay, err = durationDefault("CHECKOUT_DELAY", 0); err != nil {
		return Config{}, err
	}

	//必須チェック
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	switch cfg.StoreBackend {
	case BackendMemory, BackendPostgres, BackendRedis:
	default:
		return Config{}, fmt.Errorf("STORE_BACKEND must be one of memory, postgres, redis: %q", cfg.StoreBackend)
	}

	return cfg, nil
}

// DSN（DATABASE_URL優先）
func (c Config) PostgresDSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgresHost, c.PostgresPort, c.PostgresUser, c.PostgresPassword, c.PostgresDB, c.PostgresSSLMode,
	)
}

func (c Config) IsDev() bool {
	return c.GoEnv == "dev"
}

func getenv(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func atoiDefault(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}

func durationDefault(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be duration: %w", key, err)
	}
	return d, nil
}
