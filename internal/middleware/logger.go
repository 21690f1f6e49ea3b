package middleware

import (
	"net"
	"net/http"
	"runtime/debug"
	"time"

	chiMid "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/northgate-sc/clubweb/internal/observability"
)

// Logger emits one structured log line per request and puts a request-scoped logger on the
// context for handlers.
func Logger(base *zap.Logger) func(http.Handler) http.Handler {
	if base == nil {
		base = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			logger := base.With(
				zap.String("request_id", chiMid.GetReqID(r.Context())),
				zap.String("method", observability.SanitizeMethod(r.Method)),
				zap.String("path", observability.SanitizeRoute(r.URL.Path)),
			)
			if tid := observability.TraceID(r); tid != "" {
				logger = logger.With(zap.String("trace_id", tid))
			}
			rw := NewResponseRecorder(w)
			r = r.WithContext(observability.WithLogger(r.Context(), logger))

			defer func() {
				fields := []zap.Field{
					zap.Int("status", rw.Status()),
					zap.Duration("duration", time.Since(start)),
					zap.Int64("bytes", rw.BytesWritten()),
					zap.String("remote_ip", clientIP(r)),
				}
				switch {
				case rw.Status() >= http.StatusInternalServerError:
					logger.Error("request", fields...)
				case rw.Status() >= http.StatusBadRequest:
					logger.Warn("request", fields...)
				default:
					logger.Info("request", fields...)
				}
			}()
			next.ServeHTTP(rw, r)
		})
	}
}

// Recoverer turns panics into a 500 and logs the stack with the request logger.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				observability.FromContext(r.Context()).Error("panic recovered",
					zap.Any("panic", rec),
					zap.ByteString("stack", debug.Stack()),
				)
				writeError(w, r, http.StatusInternalServerError, "internal_server_error", "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// clientIP expects chi's RealIP to have normalised RemoteAddr already.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
