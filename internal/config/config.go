package config

import (
	"strings"
	"time"

	"github.com/Ayush22-04/xetor-backen/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	MongoDB   MongoDBConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	JWT       JWTConfig
	Mail      MailConfig
	Upload    UploadConfig
	CORS      CORSConfig
	Auth      AuthConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	Environment  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type MongoDBConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Addr returns host:port, or "" when Redis is not configured.
func (r RedisConfig) Addr() string {
	if r.Host == "" {
		return ""
	}
	port := r.Port
	if port == "" {
		port = "6379"
	}
	return r.Host + ":" + port
}

type RateLimitConfig struct {
	Enabled bool
	RPS     float64
	Burst   int
	// UseRedis selects the fixed-window Redis limiter shared across replicas.
	UseRedis bool
	Window   time.Duration
}

type JWTConfig struct {
	Secret          string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

type MailConfig struct {
	Server        string
	Port          int
	Username      string
	Password      string
	DefaultSender string
	AdminAddress  string
	UseSSL        bool
	Timeout       time.Duration
}

// Enabled reports whether enough SMTP settings exist to send mail.
func (m MailConfig) Enabled() bool {
	return m.Server != "" && m.DefaultSender != ""
}

type UploadConfig struct {
	// Backend is one of imgbb, minio, none. Empty picks imgbb when a key is set, then minio, then none.
	Backend         string
	ImgBBAPIKey     string
	ImgBBURL        string
	MaxWidth        int
	MaxHeight       int
	CompressQuality int
	Timeout         time.Duration
}

type CORSConfig struct {
	Origins []string
}

type AuthConfig struct {
	BcryptCost int
}

// LoadConfig loads configuration from environment variables and .env file
func LoadConfig() (*Config, error) {
	_ = godotenv.Load(".env")

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVER_PORT", "5000")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_ENVIRONMENT", "development")
	v.SetDefault("SERVER_READ_TIMEOUT", 30)
	v.SetDefault("SERVER_WRITE_TIMEOUT", 30)
	v.SetDefault("MONGODB_DATABASE", "xetor")
	v.SetDefault("MONGODB_TIMEOUT", 10)
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("RATE_LIMIT_ENABLED", false)
	v.SetDefault("RATE_LIMIT_RPS", 10.0)
	v.SetDefault("RATE_LIMIT_BURST", 20)
	v.SetDefault("RATE_LIMIT_USE_REDIS", false)
	v.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 1)
	v.SetDefault("JWT_ACCESS_TOKEN_TTL", 15)
	v.SetDefault("JWT_REFRESH_TOKEN_TTL", 10080)
	v.SetDefault("MAIL_PORT", 587)
	v.SetDefault("MAIL_USE_SSL", false)
	v.SetDefault("MAIL_TIMEOUT_SECONDS", 10)
	v.SetDefault("IMGBB_URL", "https://api.imgbb.com/1/upload")
	v.SetDefault("IMGBB_MAX_WIDTH", 1920)
	v.SetDefault("IMGBB_MAX_HEIGHT", 1080)
	v.SetDefault("IMGBB_COMPRESS_QUALITY", 75)
	v.SetDefault("UPLOAD_TIMEOUT_SECONDS", 30)
	v.SetDefault("CORS_ORIGINS", "http://localhost:8080")
	v.SetDefault("BCRYPT_COST", 12)

	cfg := &Config{
		Server: ServerConfig{
			Port:         v.GetString("SERVER_PORT"),
			Host:         v.GetString("SERVER_HOST"),
			Environment:  v.GetString("SERVER_ENVIRONMENT"),
			ReadTimeout:  time.Duration(v.GetInt("SERVER_READ_TIMEOUT")) * time.Second,
			WriteTimeout: time.Duration(v.GetInt("SERVER_WRITE_TIMEOUT")) * time.Second,
		},
		MongoDB: MongoDBConfig{
			URI:      v.GetString("MONGODB_URI"),
			Database: v.GetString("MONGODB_DATABASE"),
			Timeout:  time.Duration(v.GetInt("MONGODB_TIMEOUT")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		RateLimit: RateLimitConfig{
			Enabled:  v.GetBool("RATE_LIMIT_ENABLED"),
			RPS:      v.GetFloat64("RATE_LIMIT_RPS"),
			Burst:    v.GetInt("RATE_LIMIT_BURST"),
			UseRedis: v.GetBool("RATE_LIMIT_USE_REDIS"),
			Window:   time.Duration(v.GetInt("RATE_LIMIT_WINDOW_SECONDS")) * time.Second,
		},
		JWT: JWTConfig{
			Secret:          v.GetString("JWT_SECRET"),
			AccessTokenTTL:  time.Duration(v.GetInt("JWT_ACCESS_TOKEN_TTL")) * time.Minute,
			RefreshTokenTTL: time.Duration(v.GetInt("JWT_REFRESH_TOKEN_TTL")) * time.Minute,
		},
		Mail: MailConfig{
			Server:        v.GetString("MAIL_SERVER"),
			Port:          v.GetInt("MAIL_PORT"),
			Username:      v.GetString("MAIL_USERNAME"),
			Password:      v.GetString("MAIL_PASSWORD"),
			DefaultSender: v.GetString("MAIL_DEFAULT_SENDER"),
			AdminAddress:  v.GetString("MAIL_ADMIN_ADDRESS"),
			UseSSL:        v.GetBool("MAIL_USE_SSL"),
			Timeout:       time.Duration(v.GetInt("MAIL_TIMEOUT_SECONDS")) * time.Second,
		},
		Upload: UploadConfig{
			Backend:         strings.ToLower(strings.TrimSpace(v.GetString("UPLOAD_BACKEND"))),
			ImgBBAPIKey:     v.GetString("IMGBB_API_KEY"),
			ImgBBURL:        v.GetString("IMGBB_URL"),
			MaxWidth:        v.GetInt("IMGBB_MAX_WIDTH"),
			MaxHeight:       v.GetInt("IMGBB_MAX_HEIGHT"),
			CompressQuality: v.GetInt("IMGBB_COMPRESS_QUALITY"),
			Timeout:         time.Duration(v.GetInt("UPLOAD_TIMEOUT_SECONDS")) * time.Second,
		},
		CORS: CORSConfig{Origins: splitList(v.GetString("CORS_ORIGINS"))},
		Auth: AuthConfig{BcryptCost: v.GetInt("BCRYPT_COST")},
	}

	if cfg.Mail.AdminAddress == "" {
		cfg.Mail.AdminAddress = cfg.Mail.DefaultSender
	}

	// Basic validation
	if cfg.JWT.Secret == "" {
		logger.Warnf("JWT_SECRET is not set; set a secure value in production")
	}
	if cfg.MongoDB.URI == "" {
		logger.Warnf("MONGODB_URI is not set; documents are kept in memory only")
	}

	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
