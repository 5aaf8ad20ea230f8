package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Config struct {
	LogLevel         string `json:"log_level"`
	LogFormat        string `json:"log_format"`
	Addr             string `json:"addr"`
	Storage          string `json:"storage"`
	DatabaseName     string `json:"database_name"`
	DatabaseUser     string `json:"database_user"`
	DatabaseHost     string `json:"database_host"`
	DatabasePassword string `json:"database_password"`
	SessionSecret    string `json:"session_secret,required"`
	MaxPhotoBytes    int64  `json:"max_photo_bytes"`
	S3Endpoint       string `json:"s3_endpoint"`
	S3AccessKey      string `json:"s3_access_key"`
	S3SecretKey      string `json:"s3_secret_key"`
	S3Bucket         string `json:"s3_bucket"`
	S3UseSSL         bool   `json:"s3_use_ssl"`
	S3PublicURL      string `json:"s3_public_url"`
	SlackWebhookURL  string `json:"slack_webhook_url"`
}

func DefaultConfig() *Config {
	return &Config{
		LogLevel:         "info",
		LogFormat:        "json",
		Addr:             "localhost:8080",
		Storage:          "postgres",
		DatabaseName:     "campusvoice",
		DatabaseUser:     "postgres",
		DatabasePassword: "postgres",
		DatabaseHost:     "127.0.0.1",
		S3Bucket:         "campusvoice",
	}
}

func (c *Config) Load() error {
	// A .env file is optional, real deployments set the environment.
	err := godotenv.Load()
	if err != nil && !os.IsNotExist(err) {
		return err
	}

	f, err := os.Open("config.json")
	if err != nil && !os.IsNotExist(err) {
		return err
	}

	if !os.IsNotExist(err) {
		err = json.NewDecoder(f).Decode(c)
		if err != nil {
			return err
		}
	}

	v := os.Getenv("LOG_LEVEL")
	if v != "" {
		c.LogLevel = v
	}

	v = os.Getenv("LOG_FORMAT")
	if v != "" {
		c.LogFormat = v
	}

	v = os.Getenv("ADDR")
	if v != "" {
		c.Addr = v
	}

	v = os.Getenv("STORAGE")
	if v != "" {
		c.Storage = v
	}

	v = os.Getenv("DATABASE_NAME")
	if v != "" {
		c.DatabaseName = v
	}

	v = os.Getenv("DATABASE_USER")
	if v != "" {
		c.DatabaseUser = v
	}

	v = os.Getenv("DATABASE_HOST")
	if v != "" {
		c.DatabaseHost = v
	}

	v = os.Getenv("DATABASE_PASSWORD")
	if v != "" {
		c.DatabasePassword = v
	}

	v = os.Getenv("SESSION_SECRET")
	if v != "" {
		c.SessionSecret = v
	}

	v = os.Getenv("MAX_PHOTO_BYTES")
	if v != "" {
		vi, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return err
		}

		c.MaxPhotoBytes = vi
	}

	v = os.Getenv("S3_ENDPOINT")
	if v != "" {
		c.S3Endpoint = v
	}

	v = os.Getenv("S3_ACCESS_KEY")
	if v != "" {
		c.S3AccessKey = v
	}

	v = os.Getenv("S3_SECRET_KEY")
	if v != "" {
		c.S3SecretKey = v
	}

	v = os.Getenv("S3_BUCKET")
	if v != "" {
		c.S3Bucket = v
	}

	v = os.Getenv("S3_USE_SSL")
	if v != "" {
		vb, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}

		c.S3UseSSL = vb
	}

	v = os.Getenv("S3_PUBLIC_URL")
	if v != "" {
		c.S3PublicURL = v
	}

	v = os.Getenv("SLACK_WEBHOOK_URL")
	if v != "" {
		c.SlackWebhookURL = v
	}

	if c.SessionSecret == "" {
		return fmt.Errorf("missing config 'session secret'")
	}

	if c.Storage != "postgres" && c.Storage != "memory" {
		return fmt.Errorf("unknown storage %q", c.Storage)
	}

	if c.Storage == "postgres" {
		if c.DatabaseName == "" || c.DatabaseUser == "" || c.DatabaseHost == "" {
			return fmt.Errorf("missing database configuration")
		}
	}

	return nil
}

func (c *Config) DatabaseString() string {
	return fmt.Sprintf(
		"user=%v dbname=%v sslmode=disable password=%v host=%v",
		c.DatabaseUser,
		c.DatabaseName,
		c.DatabasePassword,
		c.DatabaseHost,
	)
}

func SetupLogger(cfg *Config) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Fatal().Err(err).Str("input", cfg.LogLevel).Msg("Cannot parse log level")
	}
	zerolog.SetGlobalLevel(level)

	if cfg.LogFormat == "" || cfg.LogFormat == "json" {
		return zerolog.New(os.Stderr).With().Timestamp().Logger()
	} else {
		output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		return zerolog.New(output).With().Timestamp().Logger()
	}
}
