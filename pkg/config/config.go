package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password      PasswordConfig
	Settlement    SettlementConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
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
	Env          string `envconfig:"DATAFLEX_APP_ENV" required:"true"`
	Port         string `envconfig:"DATAFLEX_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"DATAFLEX_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"DATAFLEX_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"DATAFLEX_DB_DSN"`
	Driver string `envconfig:"DATAFLEX_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"DATAFLEX_DB_HOST"`
	Port     int    `envconfig:"DATAFLEX_DB_PORT" default:"5432"`
	User     string `envconfig:"DATAFLEX_DB_USER"`
	Password string `envconfig:"DATAFLEX_DB_PASSWORD"`
	Name     string `envconfig:"DATAFLEX_DB_NAME"`
	SSLMode  string `envconfig:"DATAFLEX_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"DATAFLEX_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"DATAFLEX_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"DATAFLEX_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"DATAFLEX_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"DATAFLEX_REDIS_URL" required:"true"`
	Password     string        `envconfig:"DATAFLEX_REDIS_PASSWORD"`
	DB           int           `envconfig:"DATAFLEX_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"DATAFLEX_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"DATAFLEX_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"DATAFLEX_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"DATAFLEX_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"DATAFLEX_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"DATAFLEX_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"DATAFLEX_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"DATAFLEX_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"DATAFLEX_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"DATAFLEX_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"DATAFLEX_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"DATAFLEX_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"DATAFLEX_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"DATAFLEX_ARGON_KEY_LEN" default:"32"`
}

// SettlementConfig carries the business limits for commission withdrawals.
type SettlementConfig struct {
	MinWithdrawalAmount   string `envconfig:"DATAFLEX_MIN_WITHDRAWAL_AMOUNT" default:"10"`
	MaxMonthlyWithdrawals int    `envconfig:"DATAFLEX_MAX_MONTHLY_WITHDRAWALS" default:"5"`
}

// MinWithdrawal parses the configured minimum into a decimal amount.
func (s SettlementConfig) MinWithdrawal() (decimal.Decimal, error) {
	min, err := decimal.NewFromString(strings.TrimSpace(s.MinWithdrawalAmount))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid minimum withdrawal amount %q: %w", s.MinWithdrawalAmount, err)
	}
	return min, nil
}

// AuthRateLimitConfig throttles the unauthenticated auth surface per client IP.
type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"DATAFLEX_LOGIN_RATE_WINDOW" default:"1m"`
	LoginIPLimit    int64         `envconfig:"DATAFLEX_LOGIN_RATE_IP_LIMIT" default:"10"`
	RegisterWindow  time.Duration `envconfig:"DATAFLEX_REGISTER_RATE_WINDOW" default:"1h"`
	RegisterIPLimit int64         `envconfig:"DATAFLEX_REGISTER_RATE_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"DATAFLEX_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"DATAFLEX_AUTO_MIGRATE" default:"false"`
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
