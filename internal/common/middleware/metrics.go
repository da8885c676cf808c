package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/jonokeeton/g4yp1g-bot/internal/common/metrics"
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

type MetricsMiddleware struct {
	serviceName string
}

func NewMetricsMiddleware(serviceName string) *MetricsMiddleware {
	return &MetricsMiddleware{
		serviceName: serviceName,
	}
}

func (m *MetricsMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{
			ResponseWriter: w,
			statusCode:     200,
		}

		next.ServeHTTP(rw, r)

		// Маршрут с плейсхолдерами вместо сырого пути, чтобы идентификаторы
		// групп не раздували кардинальность метрики.
		path := r.URL.Path
		if r.Pattern != "" {
			path = r.Pattern
			if i := strings.IndexByte(path, ' '); i >= 0 {
				path = path[i+1:]
			}
		}

		duration := time.Since(start)
		metrics.RecordHTTPRequest(
			m.serviceName,
			r.Method,
			path,
			rw.statusCode,
			duration,
		)
	})
}
