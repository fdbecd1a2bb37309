package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/Seann-Moser/chatrelay/utils"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const requestIDHeader = "X-Request-ID"

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// RequestLogger logs each request with latency, status and a request ID,
// propagating an inbound X-Request-ID when present.
func RequestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = zap.L()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			requestID := strings.TrimSpace(r.Header.Get(requestIDHeader))
			if requestID == "" {
				requestID = uuid.NewString()
			}
			w.Header().Set(requestIDHeader, requestID)

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			fields := []zap.Field{
				zap.String("request_id", requestID),
				zap.Int("status", rec.status),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Duration("latency", time.Since(start)),
				zap.String("client_ip", r.RemoteAddr),
				zap.String("user_agent", r.UserAgent()),
			}
			if origin := utils.Origin(r); origin != "" {
				fields = append(fields, zap.String("origin", origin))
			}

			switch {
			case rec.status >= 500:
				logger.Error("http_request", fields...)
			case rec.status >= 400:
				logger.Warn("http_request", fields...)
			default:
				logger.Info("http_request", fields...)
			}
		})
	}
}

// WithCredential resolves the token for the request and attaches it to the
// request context. A store failure ends the request with a 500.
func (s *Server) WithCredential(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cred, err := s.resolver.Resolve(r)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to load credentials")
			return
		}
		s.logger.Debug("resolved credential",
			zap.String("source", string(cred.Source)),
			zap.String("user_id", cred.UserID),
			zap.String("url", utils.FullURL(r)),
		)
		next.ServeHTTP(w, r.WithContext(cred.WithContext(r.Context())))
	})
}
