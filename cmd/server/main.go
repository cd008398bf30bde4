package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/gostones/resumable/internal/config"
	"github.com/gostones/resumable/internal/server"
)

func main() {
	log := logrus.New()

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Error("failed to load config")
		os.Exit(1)
	}
	if cfg.Server.Debug {
		log.SetLevel(logrus.DebugLevel)
	}

	store, err := server.NewStore(cfg.Storage.Dir)
	if err != nil {
		log.WithError(err).Error("failed to open storage")
		os.Exit(1)
	}

	// nil interface unless a bucket is configured
	var sink server.Sink
	if cfg.S3.Enabled() {
		s3sink, err := server.NewS3Sink(cfg.S3)
		if err != nil {
			log.WithError(err).Error("failed to configure s3")
			os.Exit(1)
		}
		sink = s3sink
		log.WithField("bucket", cfg.S3.Bucket).Info("assembled files are copied to s3")
	}

	srv := server.New(store, sink, cfg.Server.APIKey, log)

	hostport := fmt.Sprintf(":%v", cfg.Server.Port)
	log.WithFields(logrus.Fields{
		"addr":    hostport,
		"storage": cfg.Storage.Dir,
	}).Info("listening")
	if err := http.ListenAndServe(hostport, srv.Router()); err != nil {
		log.WithError(err).Error("server stopped")
		os.Exit(1)
	}
}
