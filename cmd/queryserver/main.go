package main

import (
	"net/http"

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

	addr := ":8082"
	logger.WithField("addr", addr).Info("queryserver listening")
	if err := http.ListenAndServe(addr, newRouter(coord, logger)); err != nil {
		logger.WithError(err).Fatal("server")
	}
}
