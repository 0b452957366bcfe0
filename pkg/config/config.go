package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	FeatureFlags FeatureFlagsConfig
	Stripe       StripeConfig
	Cart         CartConfig
	Checkout     CheckoutConfig
	Verification VerificationConfig
	Webhooks     WebhookConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"KUMIKO_APP_ENV" required:"true"`
	Port         string `envconfig:"KUMIKO_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"KUMIKO_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"KUMIKO_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"KUMIKO_DB_DSN"`
	Driver string `envconfig:"KUMIKO_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"KUMIKO_DB_HOST"`
	Port     int    `envconfig:"KUMIKO_DB_PORT" default:"5432"`
	User     string `envconfig:"KUMIKO_DB_USER"`
	Password string `envconfig:"KUMIKO_DB_PASSWORD"`
	Name     string `envconfig:"KUMIKO_DB_NAME"`
	SSLMode  string `envconfig:"KUMIKO_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"KUMIKO_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"KUMIKO_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"KUMIKO_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"KUMIKO_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"KUMIKO_REDIS_URL" required:"true"`
	Address      string        `envconfig:"KUMIKO_REDIS_ADDR"`
	Password     string        `envconfig:"KUMIKO_REDIS_PASSWORD"`
	DB           int           `envconfig:"KUMIKO_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"KUMIKO_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"KUMIKO_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"KUMIKO_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"KUMIKO_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"KUMIKO_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"KUMIKO_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"KUMIKO_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"KUMIKO_JWT_EXPIRATION_MINUTES" default:"60"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"KUMIKO_AUTO_MIGRATE" default:"false"`
}

type StripeConfig struct {
	APIKey         string `envconfig:"KUMIKO_STRIPE_API_KEY"`
	PublishableKey string `envconfig:"KUMIKO_STRIPE_PUBLISHABLE_KEY"`
	WebhookSecret  string `envconfig:"KUMIKO_STRIPE_WEBHOOK_SECRET"`
	Env            string `envconfig:"KUMIKO_STRIPE_ENV" default:"test"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

type CartConfig struct {
	SessionTTL        time.Duration `envconfig:"KUMIKO_CART_SESSION_TTL" default:"168h"`
	DefaultPickupTime string        `envconfig:"KUMIKO_CART_DEFAULT_PICKUP_TIME" default:"12:00"`
}

type CheckoutConfig struct {
	PreparationBuffer time.Duration `envconfig:"KUMIKO_CHECKOUT_PREP_BUFFER" default:"30m"`
	PickupWindowDays  int           `envconfig:"KUMIKO_CHECKOUT_PICKUP_WINDOW_DAYS" default:"30"`
}

type VerificationConfig struct {
	MaxAttempts int           `envconfig:"KUMIKO_VERIFICATION_MAX_ATTEMPTS" default:"2"`
	RetryDelay  time.Duration `envconfig:"KUMIKO_VERIFICATION_RETRY_DELAY" default:"2s"`
}

type WebhookConfig struct {
	IdempotencyTTL time.Duration `envconfig:"KUMIKO_WEBHOOK_IDEMPOTENCY_TTL" default:"720h"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range componentDBEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
