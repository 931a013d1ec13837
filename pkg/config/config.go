package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App          AppConfig
	DB           DBConfig
	JWT          JWTConfig
	HTTP         HTTPConfig
	Redis        RedisConfig
	Storage      StorageConfig
	Subscription SubscriptionConfig
	Notify       NotifyConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env      string // development, staging, production
	Name     string
	LogLevel string
}

// DBConfig configuración de PostgreSQL.
// Si DatabaseURL no está vacío, se usa como connection string completo.
// Driver "memory" levanta el almacenamiento en memoria (demos y pruebas locales, sin persistencia).
type DBConfig struct {
	Driver      string
	DatabaseURL string
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	TxTimeout   time.Duration // deadline de cada transacción
	LockTimeout time.Duration // espera máxima por un bloqueo de fila
	MaxConns    int32
}

// ConnectionString devuelve el DSN a usar: DATABASE_URL si está definido, si no el construido con DSN().
func (c DBConfig) ConnectionString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return c.DSN()
}

// DSN devuelve el connection string para PostgreSQL con URL encoding para caracteres especiales.
func (c DBConfig) DSN() string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: fmt.Sprintf("sslmode=%s", c.SSLMode),
	}
	return u.String()
}

// JWTConfig configuración de JWT (access corto y refresh largo).
type JWTConfig struct {
	Secret            string
	Expiration        int // minutos
	RefreshExpiration int // minutos
	Issuer            string
}

// HTTPConfig configuración del servidor HTTP.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// RedisConfig caché de respuestas. Addr vacío = caché en memoria del proceso.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// StorageConfig almacenamiento de archivos compatible con S3 (imágenes de producto, logos).
// Bucket vacío deshabilita la subida de archivos.
type StorageConfig struct {
	Endpoint     string
	Region       string
	Bucket       string
	AccessKey    string
	SecretKey    string
	UsePathStyle bool
}

// SubscriptionConfig parámetros de planes y suscripciones.
type SubscriptionConfig struct {
	PlansFile         string
	TrialDays         int
	BillingPeriodDays int
}

// NotifyConfig cadencia del despachador de notificaciones y del outbox.
type NotifyConfig struct {
	Interval     time.Duration
	OutboxPoll   time.Duration
	OutboxLease  time.Duration
	MailFrom     string
	ContactEmail string
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad. Nombres esperados: APP_ENV, DB_HOST, DB_PORT, JWT_SECRET, etc.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		App: AppConfig{
			Env:      getString(v, "APP_ENV", "development"),
			Name:     getString(v, "APP_NAME", "boutique-api"),
			LogLevel: getString(v, "LOG_LEVEL", "info"),
		},
		DB: DBConfig{
			Driver:      getString(v, "DB_DRIVER", "postgres"),
			DatabaseURL: getString(v, "DATABASE_URL", ""),
			Host:        getString(v, "DB_HOST", "localhost"),
			Port:        getInt(v, "DB_PORT", 5432),
			User:        getString(v, "DB_USER", "postgres"),
			Password:    getString(v, "DB_PASSWORD", ""),
			DBName:      getString(v, "DB_NAME", "boutique"),
			SSLMode:     getString(v, "DB_SSLMODE", "disable"),
			TxTimeout:   time.Duration(getInt(v, "DB_TX_TIMEOUT_SECONDS", 10)) * time.Second,
			LockTimeout: time.Duration(getInt(v, "DB_LOCK_TIMEOUT_MS", 5000)) * time.Millisecond,
			MaxConns:    int32(getInt(v, "DB_MAX_CONNS", 25)),
		},
		JWT: JWTConfig{
			Secret:            getString(v, "JWT_SECRET", ""),
			Expiration:        getInt(v, "JWT_EXPIRATION_MINUTES", 60),
			RefreshExpiration: getInt(v, "JWT_REFRESH_EXPIRATION_MINUTES", 7*24*60),
			Issuer:            getString(v, "JWT_ISSUER", "boutique-api"),
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "0.0.0.0"),
			Port: getInt(v, "HTTP_PORT", 8080),
		},
		Redis: RedisConfig{
			Addr:     getString(v, "REDIS_ADDR", ""),
			Password: getString(v, "REDIS_PASSWORD", ""),
			DB:       getInt(v, "REDIS_DB", 0),
		},
		Storage: StorageConfig{
			Endpoint:     getString(v, "STORAGE_ENDPOINT", ""),
			Region:       getString(v, "STORAGE_REGION", "us-east-1"),
			Bucket:       getString(v, "STORAGE_BUCKET", ""),
			AccessKey:    getString(v, "STORAGE_ACCESS_KEY", ""),
			SecretKey:    getString(v, "STORAGE_SECRET_KEY", ""),
			UsePathStyle: getBool(v, "STORAGE_USE_PATH_STYLE", true),
		},
		Subscription: SubscriptionConfig{
			PlansFile:         getString(v, "PLANS_FILE", "config/plans.yaml"),
			TrialDays:         getInt(v, "TRIAL_DAYS", 14),
			BillingPeriodDays: getInt(v, "BILLING_PERIOD_DAYS", 30),
		},
		Notify: NotifyConfig{
			Interval:     time.Duration(getInt(v, "NOTIFY_INTERVAL_HOURS", 48)) * time.Hour,
			OutboxPoll:   time.Duration(getInt(v, "OUTBOX_POLL_SECONDS", 5)) * time.Second,
			OutboxLease:  time.Duration(getInt(v, "OUTBOX_CLAIM_LEASE_SECONDS", 300)) * time.Second,
			MailFrom:     getString(v, "MAIL_FROM", "no-reply@boutique.local"),
			ContactEmail: getString(v, "CONTACT_EMAIL", "contact@boutique.local"),
		},
	}

	if cfg.DB.Driver != "postgres" && cfg.DB.Driver != "memory" {
		return nil, fmt.Errorf("DB_DRIVER inválido: %q", cfg.DB.Driver)
	}
	return cfg, nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case int:
			return v.GetInt(key)
		case string:
			n, err := strconv.Atoi(v.GetString(key))
			if err != nil {
				return def
			}
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}

func getBool(v *viper.Viper, key string, def bool) bool {
	if v.IsSet(key) {
		return v.GetBool(key)
	}
	return def
}
