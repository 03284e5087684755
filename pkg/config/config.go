package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

const (
	// EnvPrefix namespaces every environment variable the service reads.
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "TRUCKBITES_DB_DSN"
	EnvDBHost = "TRUCKBITES_DB_HOST"
	EnvDBUser = "TRUCKBITES_DB_USER"
	EnvDBName = "TRUCKBITES_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Checkout     CheckoutConfig
	Square       SquareConfig
	Geocode      GeocodeConfig
	Sendgrid     SendgridConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if _, err := cfg.Checkout.TaxRateDecimal(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"TRUCKBITES_APP_ENV" required:"true"`
	Port         string `envconfig:"TRUCKBITES_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"TRUCKBITES_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"TRUCKBITES_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"TRUCKBITES_DB_DSN"`
	Driver string `envconfig:"TRUCKBITES_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"TRUCKBITES_DB_HOST"`
	LegacyPort     int    `envconfig:"TRUCKBITES_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"TRUCKBITES_DB_USER"`
	LegacyPassword string `envconfig:"TRUCKBITES_DB_PASSWORD"`
	LegacyName     string `envconfig:"TRUCKBITES_DB_NAME"`
	LegacySSLMode  string `envconfig:"TRUCKBITES_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"TRUCKBITES_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"TRUCKBITES_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"TRUCKBITES_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"TRUCKBITES_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"TRUCKBITES_REDIS_URL" required:"true"`
	Address      string        `envconfig:"TRUCKBITES_REDIS_ADDR"`
	Password     string        `envconfig:"TRUCKBITES_REDIS_PASSWORD"`
	DB           int           `envconfig:"TRUCKBITES_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"TRUCKBITES_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"TRUCKBITES_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"TRUCKBITES_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"TRUCKBITES_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"TRUCKBITES_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"TRUCKBITES_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"TRUCKBITES_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"TRUCKBITES_JWT_EXPIRATION_MINUTES" required:"true"`
}

// CheckoutConfig carries the order-math knobs that never come from the client.
type CheckoutConfig struct {
	TaxRate         string `envconfig:"TRUCKBITES_CHECKOUT_TAX_RATE" default:"0.0825"`
	DefaultCurrency string `envconfig:"TRUCKBITES_CHECKOUT_CURRENCY" default:"USD"`
}

// TaxRateDecimal parses the configured flat tax rate.
func (c CheckoutConfig) TaxRateDecimal() (decimal.Decimal, error) {
	rate, err := decimal.NewFromString(strings.TrimSpace(c.TaxRate))
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing tax rate %q: %w", c.TaxRate, err)
	}
	if rate.IsNegative() {
		return decimal.Zero, fmt.Errorf("tax rate must not be negative")
	}
	return rate, nil
}

type SquareConfig struct {
	AccessToken   string `envconfig:"TRUCKBITES_SQUARE_ACCESS_TOKEN"`
	Env           string `envconfig:"TRUCKBITES_SQUARE_ENV" default:"sandbox"`
	LocationID    string `envconfig:"TRUCKBITES_SQUARE_LOCATION_ID"`
	WebhookSecret string `envconfig:"TRUCKBITES_SQUARE_WEBHOOK_SECRET"`
}

// Environment returns the normalized Square environment (sandbox/production).
func (s SquareConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "sandbox"
	}
	return env
}

type GeocodeConfig struct {
	APIKey string `envconfig:"TRUCKBITES_GEOCODE_API_KEY"`
}

type SendgridConfig struct {
	APIKey      string `envconfig:"TRUCKBITES_SENDGRID_API_KEY"`
	DefaultFrom string `envconfig:"TRUCKBITES_SENDGRID_FROM_EMAIL"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"TRUCKBITES_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
