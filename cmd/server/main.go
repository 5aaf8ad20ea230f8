package main

import (
	"github.com/rs/zerolog/log"

	"github.com/campusvoice/campusvoice"
	"github.com/campusvoice/campusvoice/blobstore"
	"github.com/campusvoice/campusvoice/cmd"
	"github.com/campusvoice/campusvoice/memstore"
	"github.com/campusvoice/campusvoice/notify"
	"github.com/campusvoice/campusvoice/pgstore"
)

func main() {
	cfg := cmd.DefaultConfig()
	err := cfg.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Cannot read configuration")
	}
	logger := cmd.SetupLogger(cfg)

	// setup storage
	var store campusvoice.Store
	var pg *pgstore.PGStore
	switch cfg.Storage {
	case "memory":
		logger.Warn().Msg("Using in-memory storage, data is lost on restart")
		store = memstore.New()
	default:
		pg = pgstore.New(cfg.DatabaseString())
		store = pg
	}

	// setup photo storage, optional
	var blobs blobstore.Store
	if cfg.S3Endpoint != "" {
		blobs, err = blobstore.NewS3(blobstore.S3Config{
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.S3Bucket,
			UseSSL:    cfg.S3UseSSL,
			PublicURL: cfg.S3PublicURL,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("Cannot setup photo storage")
		}
	} else {
		logger.Warn().Msg("No photo storage configured, photo uploads will fail")
	}

	// fire the server
	s := campusvoice.NewServer(&campusvoice.ServerConfig{
		Addr:          cfg.Addr,
		SessionSecret: cfg.SessionSecret,
		MaxPhotoBytes: cfg.MaxPhotoBytes,
	}, logger, store, blobs)

	if cfg.SlackWebhookURL != "" {
		ll := logger.With().Str("component", "slack notify").Logger()
		s.AddRequestHook(notify.NewSlackHook(cfg.SlackWebhookURL, ll))
	}

	err = s.Prepare()
	if err != nil {
		logger.Fatal().Err(err).Msg("Cannot prepare server")
	}

	if pg != nil {
		err = pg.EnsureSchema()
		if err != nil {
			logger.Fatal().Err(err).Msg("Cannot ensure database schema")
		}
	}

	err = s.Start()
	if err != nil {
		logger.Fatal().Err(err).Msg("Cannot start server")
	}
}
