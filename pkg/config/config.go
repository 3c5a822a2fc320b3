package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App      AppConfig
	DB       DBConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Password PasswordConfig
	SMTP     SMTPConfig
	Shares   SharesConfig
	Cron     CronConfig
	Features FeatureFlagsConfig
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
	Env          string `envconfig:"COOP_APP_ENV" required:"true"`
	Port         string `envconfig:"COOP_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"COOP_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"COOP_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"COOP_DB_DSN"`
	Driver string `envconfig:"COOP_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"COOP_DB_HOST"`
	Port     int    `envconfig:"COOP_DB_PORT" default:"5432"`
	User     string `envconfig:"COOP_DB_USER"`
	Password string `envconfig:"COOP_DB_PASSWORD"`
	Name     string `envconfig:"COOP_DB_NAME"`
	SSLMode  string `envconfig:"COOP_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"COOP_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"COOP_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"COOP_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"COOP_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"COOP_REDIS_URL"`
	Address      string        `envconfig:"COOP_REDIS_ADDR"`
	Password     string        `envconfig:"COOP_REDIS_PASSWORD"`
	DB           int           `envconfig:"COOP_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"COOP_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"COOP_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"COOP_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"COOP_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"COOP_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"COOP_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"COOP_JWT_ISSUER" default:"harambee-coop"`
	ExpirationMinutes int    `envconfig:"COOP_JWT_EXPIRATION_MINUTES" default:"60"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"COOP_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"COOP_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"COOP_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"COOP_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"COOP_ARGON_KEY_LEN" default:"32"`
}

// SMTPConfig configures the outbound mail sink. Leaving Host empty disables
// email entirely; sends become logged no-ops.
type SMTPConfig struct {
	Host     string `envconfig:"COOP_SMTP_HOST"`
	Port     string `envconfig:"COOP_SMTP_PORT" default:"587"`
	Username string `envconfig:"COOP_SMTP_USERNAME"`
	Password string `envconfig:"COOP_SMTP_PASSWORD"`
	From     string `envconfig:"COOP_SMTP_FROM" default:"no-reply@harambee-coop.org"`
	AdminTo  string `envconfig:"COOP_SMTP_ADMIN_TO"`
}

// SharesConfig carries the share economics. Defaults match the bylaws: 20
// currency units per share, 20 shares minimum for an active account.
type SharesConfig struct {
	UnitPrice           string `envconfig:"COOP_SHARE_UNIT_PRICE" default:"20"`
	ActivationThreshold int    `envconfig:"COOP_SHARE_ACTIVATION_THRESHOLD" default:"20"`
	MonthlyDeduction    int    `envconfig:"COOP_SHARE_MONTHLY_DEDUCTION" default:"1"`
}

type CronConfig struct {
	Interval                  time.Duration `envconfig:"COOP_CRON_INTERVAL" default:"24h"`
	LockKey                   string        `envconfig:"COOP_CRON_LOCK_KEY" default:"coop:cron:lock"`
	LockTTL                   time.Duration `envconfig:"COOP_CRON_LOCK_TTL" default:"25h"`
	NotificationRetentionDays int           `envconfig:"COOP_CRON_NOTIFICATION_RETENTION_DAYS" default:"90"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"COOP_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	required := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, envName := range requiredDBEnvVars {
		if required[envName] == "" {
			missing = append(missing, envName)
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
