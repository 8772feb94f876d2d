package s3media

import (
	"errors"
	"fmt"
	"time"

	"github.com/lberndt/helpline/internal/pkg/env"
)

// Config holds S3 recording-archive configuration
type Config struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	BucketName      string
	EndpointURL     string // Optional for S3-compatible services
	PublicBaseURL   string // Base URL recordings are served from
	Enabled         bool
}

// LoadConfig loads S3 configuration from environment variables
func LoadConfig() (*Config, error) {
	config := &Config{
		AccessKeyID:     env.GetEnv("S3_ACCESS_KEY_ID", ""),
		SecretAccessKey: env.GetEnv("S3_SECRET_ACCESS_KEY", ""),
		Region:          env.GetEnv("S3_REGION", "us-west-001"),
		BucketName:      env.GetEnv("S3_BUCKET_NAME", ""),
		EndpointURL:     env.GetEnv("S3_ENDPOINT_URL", ""),
		PublicBaseURL:   env.GetEnv("S3_PUBLIC_BASE_URL", ""),
		Enabled:         env.GetEnv("S3_RECORDINGS_ENABLED", "false") == "true",
	}

	// Validate required fields if recording archival is enabled
	if config.Enabled {
		if config.AccessKeyID == "" {
			return nil, errors.New("S3_ACCESS_KEY_ID is required when recording archival is enabled")
		}
		if config.SecretAccessKey == "" {
			return nil, errors.New("S3_SECRET_ACCESS_KEY is required when recording archival is enabled")
		}
		if config.BucketName == "" {
			return nil, errors.New("S3_BUCKET_NAME is required when recording archival is enabled")
		}
	}

	return config, nil
}

// IsEnabled returns true if recording archival is enabled
func (c *Config) IsEnabled() bool {
	return c.Enabled
}

// ObjectKey generates a standardized S3 object key for a call recording.
func (c *Config) ObjectKey(sessionUUID string, at time.Time) string {
	// Format: recordings/YYYY/MM/UUID.mp3
	return fmt.Sprintf("recordings/%04d/%02d/%s.mp3", at.Year(), int(at.Month()), sessionUUID)
}

// PublicURL returns the durable public URL for an object key.
func (c *Config) PublicURL(objectKey string) string {
	if c.PublicBaseURL != "" {
		return fmt.Sprintf("%s/%s", c.PublicBaseURL, objectKey)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", c.BucketName, c.Region, objectKey)
}
