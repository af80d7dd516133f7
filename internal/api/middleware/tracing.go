package middleware

import (
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Tracing продолжает трейс вызывающей стороны из заголовка traceparent
// и открывает серверный span на каждый запрос.
// Запросы к skipPath (обычно /metrics) не трассируются.
func Tracing(service, skipPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(next, service,
			otelhttp.WithFilter(func(r *http.Request) bool {
				return skipPath == "" || r.URL.Path != skipPath
			}),
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				return r.Method + " " + r.URL.Path
			}),
		)
	}
}
