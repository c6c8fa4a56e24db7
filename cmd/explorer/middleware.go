package main

import (
	"net/http"

	"github.com/sirupsen/logrus"
)

func loggingMiddleware(logger logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger.WithFields(logrus.Fields{"method": r.Method, "path": r.URL.Path}).Info("request")
			next.ServeHTTP(w, r)
		})
	}
}
