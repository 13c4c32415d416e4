package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "monsoon"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "MONSOON_DB_DSN"
	EnvDBHost = "MONSOON_DB_HOST"
	EnvDBUser = "MONSOON_DB_USER"
	EnvDBName = "MONSOON_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Admin        AdminConfig
	Password     PasswordConfig
	Cart         CartConfig
	Checkout     CheckoutConfig
	Stripe       StripeConfig
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
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"MONSOON_APP_ENV" required:"true"`
	Port         string `envconfig:"MONSOON_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"MONSOON_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"MONSOON_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"MONSOON_DB_DSN"`
	Driver string `envconfig:"MONSOON_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"MONSOON_DB_HOST"`
	LegacyPort     int    `envconfig:"MONSOON_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"MONSOON_DB_USER"`
	LegacyPassword string `envconfig:"MONSOON_DB_PASSWORD"`
	LegacyName     string `envconfig:"MONSOON_DB_NAME"`
	LegacySSLMode  string `envconfig:"MONSOON_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"MONSOON_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MONSOON_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"MONSOON_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MONSOON_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"MONSOON_REDIS_URL" required:"true"`
	Address      string        `envconfig:"MONSOON_REDIS_ADDR"`
	Password     string        `envconfig:"MONSOON_REDIS_PASSWORD"`
	DB           int           `envconfig:"MONSOON_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MONSOON_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MONSOON_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MONSOON_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MONSOON_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MONSOON_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"MONSOON_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"MONSOON_JWT_ISSUER" default:"monsoon"`
	ExpirationMinutes int    `envconfig:"MONSOON_JWT_EXPIRATION_MINUTES" default:"720"`
}

// AdminConfig carries the single back-office operator account. The password is
// stored as an Argon2id hash; PasswordPlain is only honored outside prod.
type AdminConfig struct {
	Email         string `envconfig:"MONSOON_ADMIN_EMAIL"`
	PasswordHash  string `envconfig:"MONSOON_ADMIN_PASSWORD_HASH"`
	PasswordPlain string `envconfig:"MONSOON_ADMIN_PASSWORD"`

	LoginWindow  time.Duration `envconfig:"MONSOON_ADMIN_LOGIN_RATE_WINDOW" default:"1m"`
	LoginIPLimit int           `envconfig:"MONSOON_ADMIN_LOGIN_RATE_IP_LIMIT" default:"10"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"MONSOON_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"MONSOON_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"MONSOON_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"MONSOON_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"MONSOON_ARGON_KEY_LEN" default:"32"`
}

type CartConfig struct {
	SessionCookie string        `envconfig:"MONSOON_CART_SESSION_COOKIE" default:"monsoon_cart"`
	TTL           time.Duration `envconfig:"MONSOON_CART_TTL" default:"720h"`
}

type CheckoutConfig struct {
	AppURL           string   `envconfig:"MONSOON_APP_URL" required:"true"`
	Currency         string   `envconfig:"MONSOON_CHECKOUT_CURRENCY" default:"eur"`
	AllowedCountries []string `envconfig:"MONSOON_CHECKOUT_SHIP_COUNTRIES" default:"FR,SN,BE,CA"`
	SuccessPath      string   `envconfig:"MONSOON_CHECKOUT_SUCCESS_PATH" default:"/success"`
	CancelPath       string   `envconfig:"MONSOON_CHECKOUT_CANCEL_PATH" default:"/cart?canceled=1"`
}

// SuccessURL returns the absolute redirect target after a completed payment.
func (c CheckoutConfig) SuccessURL() string {
	return strings.TrimRight(c.AppURL, "/") + c.SuccessPath
}

// CancelURL returns the absolute redirect target after an abandoned payment.
func (c CheckoutConfig) CancelURL() string {
	return strings.TrimRight(c.AppURL, "/") + c.CancelPath
}

type StripeConfig struct {
	APIKey string `envconfig:"MONSOON_STRIPE_API_KEY"`
	Secret string `envconfig:"MONSOON_STRIPE_SECRET"`
	Env    string `envconfig:"MONSOON_STRIPE_ENV" default:"test"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

type SendgridConfig struct {
	APIKey      string `envconfig:"MONSOON_SENDGRID_API_KEY"`
	DefaultFrom string `envconfig:"MONSOON_SENDGRID_FROM_EMAIL" default:"orders@monsoon.example"`
	FromName    string `envconfig:"MONSOON_SENDGRID_FROM_NAME" default:"Monsoon"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"MONSOON_AUTO_MIGRATE" default:"false"`
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
