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
	Password     PasswordConfig
	FeatureFlags FeatureFlagsConfig
	Razorpay     RazorpayConfig
	Storage      StorageConfig
	SMTP         SMTPConfig
	Contact      ContactConfig
	Delivery     DeliveryConfig
	RateLimit    RateLimitConfig
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
	Env          string `envconfig:"PULPPIXELS_APP_ENV" required:"true"`
	Port         string `envconfig:"PULPPIXELS_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"PULPPIXELS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PULPPIXELS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"PULPPIXELS_DB_DSN"`
	Driver string `envconfig:"PULPPIXELS_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"PULPPIXELS_DB_HOST"`
	LegacyPort     int    `envconfig:"PULPPIXELS_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"PULPPIXELS_DB_USER"`
	LegacyPassword string `envconfig:"PULPPIXELS_DB_PASSWORD"`
	LegacyName     string `envconfig:"PULPPIXELS_DB_NAME"`
	LegacySSLMode  string `envconfig:"PULPPIXELS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"PULPPIXELS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"PULPPIXELS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"PULPPIXELS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PULPPIXELS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"PULPPIXELS_REDIS_URL" required:"true"`
	Address      string        `envconfig:"PULPPIXELS_REDIS_ADDR"`
	Password     string        `envconfig:"PULPPIXELS_REDIS_PASSWORD"`
	DB           int           `envconfig:"PULPPIXELS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"PULPPIXELS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"PULPPIXELS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"PULPPIXELS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PULPPIXELS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"PULPPIXELS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"PULPPIXELS_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"PULPPIXELS_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"PULPPIXELS_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"PULPPIXELS_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"PULPPIXELS_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"PULPPIXELS_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"PULPPIXELS_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"PULPPIXELS_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"PULPPIXELS_ARGON_KEY_LEN" default:"32"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"PULPPIXELS_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"PULPPIXELS_AUTO_MIGRATE" default:"false"`
	SimulateUPI bool `envconfig:"PULPPIXELS_SIMULATE_UPI" default:"false"`
}

type RazorpayConfig struct {
	KeyID     string        `envconfig:"PULPPIXELS_RAZORPAY_KEY_ID" required:"true"`
	KeySecret string        `envconfig:"PULPPIXELS_RAZORPAY_KEY_SECRET" required:"true"`
	VerifyTTL time.Duration `envconfig:"PULPPIXELS_RAZORPAY_VERIFY_TTL" default:"24h"`
}

type StorageConfig struct {
	ProjectURL        string        `envconfig:"PULPPIXELS_STORAGE_URL" required:"true"`
	ServiceRoleKey    string        `envconfig:"PULPPIXELS_STORAGE_SERVICE_KEY" required:"true"`
	Bucket            string        `envconfig:"PULPPIXELS_STORAGE_BUCKET" default:"wallpapers"`
	DownloadURLExpiry time.Duration `envconfig:"PULPPIXELS_STORAGE_DOWNLOAD_URL_EXPIRY" default:"1h"`
}

type SMTPConfig struct {
	Host     string `envconfig:"PULPPIXELS_SMTP_HOST" required:"true"`
	Port     int    `envconfig:"PULPPIXELS_SMTP_PORT" default:"587"`
	User     string `envconfig:"PULPPIXELS_SMTP_USER" required:"true"`
	Password string `envconfig:"PULPPIXELS_SMTP_PASSWORD" required:"true"`
	From     string `envconfig:"PULPPIXELS_SMTP_FROM"`
}

// Sender returns the From address, falling back to the SMTP user.
func (s SMTPConfig) Sender() string {
	if s.From != "" {
		return s.From
	}
	return s.User
}

type ContactConfig struct {
	MaxPerDay int    `envconfig:"PULPPIXELS_CONTACT_MAX_PER_DAY" default:"2"`
	Inbox     string `envconfig:"PULPPIXELS_CONTACT_INBOX"`
}

type RateLimitConfig struct {
	Window       time.Duration `envconfig:"PULPPIXELS_RATE_LIMIT_WINDOW" default:"1m"`
	ContactLimit int           `envconfig:"PULPPIXELS_RATE_LIMIT_CONTACT" default:"10"`
	LoginLimit   int           `envconfig:"PULPPIXELS_RATE_LIMIT_LOGIN" default:"10"`
}

type DeliveryConfig struct {
	BatchSize      int `envconfig:"PULPPIXELS_DELIVERY_BATCH_SIZE" default:"25"`
	PollIntervalMS int `envconfig:"PULPPIXELS_DELIVERY_POLL_MS" default:"1000"`
	MaxAttempts    int `envconfig:"PULPPIXELS_DELIVERY_MAX_ATTEMPTS" default:"8"`
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
