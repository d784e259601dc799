package storage

import "time"

// Config represents storage configuration
type Config struct {
	S3           S3Config      `mapstructure:"s3"`
	SignedURLTTL time.Duration `mapstructure:"signedUrlTTL"`
}

// S3Config represents S3 configuration settings
type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"accessKeyId"`
	SecretAccessKey string `mapstructure:"secretAccessKey"`
	UseSSL          bool   `mapstructure:"useSSL"`
	Region          string `mapstructure:"region"`
}
