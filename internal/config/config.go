package config

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Server  ServerConfig
	Storage StorageConfig
	S3      S3Config
}

type ServerConfig struct {
	Port int `envconfig:"SERVER_PORT" default:"4000"`
	// APIKey, when set, must match the raw Authorization header.
	APIKey string `envconfig:"UPLOAD_API_KEY"`
	Debug  bool   `envconfig:"DEBUG" default:"false"`
}

type StorageConfig struct {
	Dir string `envconfig:"STORAGE_DIR" default:"./uploads"`
}

// S3Config selects an optional bucket that receives every assembled file.
type S3Config struct {
	Bucket          string `envconfig:"S3_BUCKET"`
	Region          string `envconfig:"S3_REGION" default:"us-west-2"`
	Endpoint        string `envconfig:"S3_ENDPOINT"`
	ForcePathStyle  bool   `envconfig:"S3_FORCE_PATH_STYLE" default:"true"`
	AccessKeyID     string `envconfig:"AWS_ACCESS_KEY_ID"`
	SecretAccessKey string `envconfig:"AWS_SECRET_ACCESS_KEY"`
}

func (c S3Config) Enabled() bool {
	return c.Bucket != ""
}

func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
