package config

import (
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration loaded from environment variables
// Provide sane defaults for local development.
type Config struct {
	AppName string
	Env     string // development, staging, production
	Port    string
	GinMode string

	// Storage driver: mongo or memory
	StorageDriver string

	// Database (MongoDB)
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBURI         string // optional; overrides host/port/user/password when set
	DBConnTimeout time.Duration

	// Migrations
	MigrationsDir string

	// Credentials
	Salt        string
	TokenSecret string
	TokenTTL    time.Duration

	// Uploads
	UploadDir      string
	UploadMaxBytes int64
	StaticPrefix   string

	// Google Cloud Storage (optional upload backend)
	GCSBucket              string
	GCSCredentialsJSONPath string // optional; if empty, Application Default Credentials are used

	// Redis
	RedisAddr        string
	RedisPassword    string
	RedisDB          int
	RateLimitEnabled bool

	// Elasticsearch
	ElasticsearchAddrs string // comma-separated
	ElasticsearchUser  string
	ElasticsearchPass  string
	ESOffersIndex      string

	// RabbitMQ
	RabbitMQURL        string
	RabbitMQEmailQueue string

	// Mailgun
	MailSendEnabled bool
	MailgunDomain   string
	MailgunAPIKey   string
	MailgunSender   string

	// CORS
	CORSAllowedOrigins string // comma-separated

	// Debug metrics (/debug/vars)
	DebugMetricsEnabled bool

	// HTTP access log toggle
	HTTPLogEnabled bool
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getbool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			log.Printf("invalid boolean for %s: %v, using default %v", key, err, def)
			return def
		}
		return b
	}
	return def
}

func getint(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err != nil {
			log.Printf("invalid int for %s: %v, using default %d", key, err, def)
			return def
		}
		return i
	}
	return def
}

func getdur(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			log.Printf("invalid duration for %s: %v, using default %v", key, err, def)
			return def
		}
		return d
	}
	return def
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		AppName: getenv("APP_NAME", "six-cities"),
		Env:     getenv("APP_ENV", "development"),
		Port:    getenv("PORT", "4000"),
		GinMode: getenv("GIN_MODE", "release"),

		StorageDriver: strings.ToLower(getenv("STORAGE_DRIVER", "mongo")),

		DBHost:        getenv("DB_HOST", "127.0.0.1"),
		DBPort:        getenv("DB_PORT", "27017"),
		DBUser:        getenv("DB_USER", ""),
		DBPassword:    getenv("DB_PASSWORD", ""),
		DBName:        getenv("DB_NAME", "six-cities"),
		DBURI:         getenv("DB_URI", ""),
		DBConnTimeout: getdur("DB_CONN_TIMEOUT", 10*time.Second),

		MigrationsDir: getenv("MIGRATIONS_DIR", "db/migrations"),

		Salt:        getenv("SALT", ""),
		TokenSecret: getenv("TOKEN_SECRET", "devtokensecret"),
		TokenTTL:    getdur("TOKEN_TTL", time.Hour),

		UploadDir:      getenv("UPLOAD_DIR", "upload"),
		UploadMaxBytes: int64(getint("UPLOAD_MAX_BYTES", 5*1024*1024)),
		StaticPrefix:   getenv("STATIC_PREFIX", "/uploads"),

		GCSBucket:              getenv("GCS_BUCKET", ""),
		GCSCredentialsJSONPath: getenv("GCS_CREDENTIALS_JSON", ""),

		RedisAddr:        getenv("REDIS_ADDR", ""),
		RedisPassword:    getenv("REDIS_PASSWORD", ""),
		RedisDB:          getint("REDIS_DB", 0),
		RateLimitEnabled: getbool("RATE_LIMIT_ENABLED", true),

		ElasticsearchAddrs: getenv("ELASTICSEARCH_ADDRS", ""),
		ElasticsearchUser:  getenv("ELASTICSEARCH_USERNAME", ""),
		ElasticsearchPass:  getenv("ELASTICSEARCH_PASSWORD", ""),
		ESOffersIndex:      getenv("ES_OFFERS_INDEX", "offers"),

		RabbitMQURL:        getenv("RABBITMQ_URL", ""),
		RabbitMQEmailQueue: getenv("RABBITMQ_EMAIL_QUEUE", "emails"),

		// Email sending toggle (off unless a broker is configured)
		MailSendEnabled: getbool("MAIL_SEND_ENABLED", false),
		MailgunDomain:   getenv("MAILGUN_DOMAIN", ""),
		MailgunAPIKey:   getenv("MAILGUN_API_KEY", ""),
		MailgunSender:   getenv("MAILGUN_SENDER", ""),

		CORSAllowedOrigins: getenv("CORS_ALLOWED_ORIGINS", "*"),

		DebugMetricsEnabled: getbool("DEBUG_METRICS_ENABLED", true),

		HTTPLogEnabled: getbool("HTTP_LOG_ENABLED", false),
	}
}

// MongoURI returns a connection string for the mongo driver.
// DB_HOST may already be a full mongodb:// URI, as in older deployments.
func (c *Config) MongoURI() string {
	if c.DBURI != "" {
		return c.DBURI
	}
	if strings.HasPrefix(c.DBHost, "mongodb://") || strings.HasPrefix(c.DBHost, "mongodb+srv://") {
		return c.DBHost
	}
	u := url.URL{Scheme: "mongodb", Host: c.DBHost + ":" + c.DBPort}
	if c.DBUser != "" {
		u.User = url.UserPassword(c.DBUser, c.DBPassword)
	}
	return u.String()
}

// MigrateURL returns the golang-migrate database URL (the database name is part of the path).
func (c *Config) MigrateURL() string {
	u, err := url.Parse(c.MongoURI())
	if err != nil {
		return c.MongoURI()
	}
	u.Path = "/" + c.DBName
	return u.String()
}

// CORSOrigins returns the allowed origins as slice
func (c *Config) CORSOrigins() []string {
	return splitCSV(c.CORSAllowedOrigins)
}

// ESAddrs returns Elasticsearch addresses as a slice
func (c *Config) ESAddrs() []string {
	return splitCSV(c.ElasticsearchAddrs)
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	res := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			res = append(res, p)
		}
	}
	return res
}
