package rest

import (
	"context"
	"net/http"

	"github.com/gofrs/uuid"
	"github.com/sirupsen/logrus"
)

type contextKey string

const loggerKey contextKey = "requestLogger"

// RequestLogger tags every request with a unique identifier and stores a
// request-scoped field logger in the context, for handlers to retrieve
// through GetLogger.
func (e *Engine) RequestLogger() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, request *http.Request) {
			reqUUID, err := uuid.NewV4()
			if err != nil {
				e.baseLogger.WithError(err).Error("can't generate a request UUID")
				w.WriteHeader(http.StatusInternalServerError)
				return
			}

			var logger = e.baseLogger.WithFields(logrus.Fields{
				"reqid":     reqUUID.String(),
				"remote-ip": request.RemoteAddr,
			})

			logger.WithFields(logrus.Fields{
				"method": request.Method,
				"path":   request.URL.Path,
			}).Debug("request received")

			next.ServeHTTP(w, request.WithContext(context.WithValue(request.Context(), loggerKey, logger)))
		})
	}
}

// GetLogger returns the request-scoped logger, falling back to the standard
// one when the logging middleware wasn't applied to the route.
func GetLogger(request *http.Request) logrus.FieldLogger {
	if logger, ok := request.Context().Value(loggerKey).(logrus.FieldLogger); ok {
		return logger
	}
	return logrus.StandardLogger()
}
