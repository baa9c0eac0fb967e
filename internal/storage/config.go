package storage

import (
	"strings"

	"github.com/spf13/viper"
)

// MinIOConfig holds MinIO connection configuration
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
	// PublicURL is the base URL clients use to fetch objects; defaults to the endpoint.
	PublicURL string
	// PublicRead grants anonymous read access to uploaded images.
	PublicRead bool
}

// LoadMinIOConfig loads MinIO config from environment
func LoadMinIOConfig() *MinIOConfig {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("MINIO_USE_SSL", false)
	v.SetDefault("MINIO_BUCKET", "xetor")
	v.SetDefault("MINIO_PUBLIC_READ", true)

	cfg := &MinIOConfig{
		Endpoint:   v.GetString("MINIO_ENDPOINT"),
		AccessKey:  v.GetString("MINIO_ACCESS_KEY"),
		SecretKey:  v.GetString("MINIO_SECRET_KEY"),
		UseSSL:     v.GetBool("MINIO_USE_SSL"),
		Bucket:     v.GetString("MINIO_BUCKET"),
		PublicURL:  strings.TrimRight(v.GetString("MINIO_PUBLIC_URL"), "/"),
		PublicRead: v.GetBool("MINIO_PUBLIC_READ"),
	}
	if cfg.PublicURL == "" && cfg.Endpoint != "" {
		scheme := "http://"
		if cfg.UseSSL {
			scheme = "https://"
		}
		cfg.PublicURL = scheme + cfg.Endpoint
	}
	return cfg
}

// Configured reports whether an endpoint was given.
func (c *MinIOConfig) Configured() bool {
	return c != nil && c.Endpoint != ""
}
