package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "GUESTHOUSE"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvAppEnv   = "GUESTHOUSE_APP_ENV"
	EnvDBDSN    = "GUESTHOUSE_DB_DSN"
	EnvDBHost   = "GUESTHOUSE_DB_HOST"
	EnvDBUser   = "GUESTHOUSE_DB_USER"
	EnvDBName   = "GUESTHOUSE_DB_NAME"
	EnvJWTKey   = "GUESTHOUSE_JWT_SECRET"
	EnvRedisURL = "GUESTHOUSE_REDIS_URL"
)

var requiredDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App           AppConfig
	DB            DBConfig
	JWT           JWTConfig
	Redis         RedisConfig
	AuthRateLimit AuthRateLimitConfig
	Receipts      ReceiptsConfig
	Migrations    MigrationsConfig
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
	Env          string   `envconfig:"GUESTHOUSE_APP_ENV" required:"true"`
	Port         string   `envconfig:"GUESTHOUSE_APP_PORT" default:"8080"`
	LogLevel     string   `envconfig:"GUESTHOUSE_LOG_LEVEL" default:"info"`
	LogWarnStack bool     `envconfig:"GUESTHOUSE_LOG_WARN_STACK" default:"false"`
	CORSOrigins  []string `envconfig:"GUESTHOUSE_CORS_ORIGINS"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"GUESTHOUSE_DB_DSN"`

	Host     string `envconfig:"GUESTHOUSE_DB_HOST"`
	Port     int    `envconfig:"GUESTHOUSE_DB_PORT" default:"5432"`
	User     string `envconfig:"GUESTHOUSE_DB_USER"`
	Password string `envconfig:"GUESTHOUSE_DB_PASSWORD"`
	Name     string `envconfig:"GUESTHOUSE_DB_NAME"`
	SSLMode  string `envconfig:"GUESTHOUSE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"GUESTHOUSE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"GUESTHOUSE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"GUESTHOUSE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"GUESTHOUSE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type JWTConfig struct {
	Secret            string `envconfig:"GUESTHOUSE_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"GUESTHOUSE_JWT_ISSUER" default:"guesthouse-api"`
	ExpirationMinutes int    `envconfig:"GUESTHOUSE_JWT_EXPIRATION_MINUTES" default:"720"`
}

// AccessTokenTTL returns the configured token lifetime.
func (j JWTConfig) AccessTokenTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type RedisConfig struct {
	URL          string        `envconfig:"GUESTHOUSE_REDIS_URL"`
	DialTimeout  time.Duration `envconfig:"GUESTHOUSE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"GUESTHOUSE_REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"GUESTHOUSE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"GUESTHOUSE_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit int           `envconfig:"GUESTHOUSE_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit    int           `envconfig:"GUESTHOUSE_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

type ReceiptsConfig struct {
	Bucket          string `envconfig:"GUESTHOUSE_RECEIPTS_BUCKET"`
	CredentialsFile string `envconfig:"GUESTHOUSE_RECEIPTS_CREDENTIALS_FILE"`
}

type MigrationsConfig struct {
	AutoRun bool `envconfig:"GUESTHOUSE_AUTO_MIGRATE" default:"false"`
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
	for _, env := range requiredDBEnvVars {
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
