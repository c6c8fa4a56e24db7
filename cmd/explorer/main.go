package main

import (
	"github.com/sirupsen/logrus"

	"ledgerd/core"
	"ledgerd/pkg/config"
)

func main() {
	logger := logrus.StandardLogger()

	cfg, err := config.LoadFromEnv()
	if err != nil {
		logger.WithError(err).Fatal("config load")
	}
	lvl, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)

	coord, err := core.NewCoordinator(cfg.Storage.BlockStorePath, core.NewHashProvider(), logger)
	if err != nil {
		logger.WithError(err).Fatal("coordinator init")
	}
	defer coord.Close()

	svc, err := NewLedgerService(coord)
	if err != nil {
		logger.WithError(err).Fatal("service init")
	}

	addr := ":8081"
	srv := NewServer(addr, svc, logger)

	logger.WithField("addr", addr).Info("explorer listening")
	if err := srv.Start(); err != nil {
		logger.WithError(err).Fatal("server")
	}
}
