package middleware

import (
	"net/http"
	"time"

	"github.com/dd0wney/cluso-graphviewer/pkg/logging"
)

// Logging logs every request at debug level with its status, latency and
// request ID.
func Logging(logger logging.Logger) Middleware {
	logger = logging.OrNop(logger)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := wrap(w)
			next.ServeHTTP(sw, r)

			fields := []logging.Field{
				logging.String("method", r.Method),
				logging.Path(r.URL.Path),
				logging.Int("status", sw.statusCode),
				logging.Latency(time.Since(start)),
			}
			if id := GetRequestID(r); id != "" {
				fields = append(fields, logging.String("request_id", id))
			}
			logger.Debug("http request", fields...)
		})
	}
}
