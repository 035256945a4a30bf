package server

import (
	"bytes"
	"net/http"
	"strconv"
	"time"

	"github.com/Leopold1975/usermodel/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

func loggingMiddleware(logg logger.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			body := &errorBody{status: ww.Status} //nolint:exhaustruct
			ww.Tee(body)

			defer func() {
				logg.Infof("METHOD %s %s URI %s STATUS %d Latency %s Client IP %s User Agent %s",
					r.Method,
					r.Proto,
					r.URL.RequestURI(),
					ww.Status(),
					time.Since(start).String(),
					r.RemoteAddr,
					r.UserAgent(),
				)

				if body.buf.Len() != 0 {
					logg.Errorf("error: %s", body.buf.String())
				}
			}()

			next.ServeHTTP(ww, r)
		})
	}
}

const maxLoggedBody = 4 << 10

// errorBody keeps the first maxLoggedBody bytes of error responses only.
type errorBody struct {
	status func() int
	buf    bytes.Buffer
}

func (eb *errorBody) Write(p []byte) (int, error) {
	n := len(p)

	if eb.status() < http.StatusBadRequest {
		return n, nil
	}

	if room := maxLoggedBody - eb.buf.Len(); room > 0 {
		eb.buf.Write(p[:min(n, room)])
	}

	return n, nil
}

type metrics struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{ //nolint:exhaustruct
			Namespace: "usermodel",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{ //nolint:exhaustruct
			Namespace: "usermodel",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and method.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}

	reg.MustRegister(m.requests, m.latency)

	return m
}

func metricsMiddleware(m *metrics) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			// the pattern is only known once routing has happened
			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}

			m.requests.WithLabelValues(route, r.Method, strconv.Itoa(ww.Status())).Inc()
			m.latency.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
		})
	}
}
