package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// HTTPのリクエスト数・処理時間・レスポンスサイズを集計する
type HTTPMetrics struct {
	logger          *zap.Logger
	requestCounter  *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	responseSize    *prometheus.SummaryVec
}

func NewHTTPMetrics(reg prometheus.Registerer, logger *zap.Logger) *HTTPMetrics {
	f := promauto.With(reg)
	return &HTTPMetrics{
		logger: logger,
		requestCounter: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crabbox",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		requestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "crabbox",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5},
		}, []string{"method", "path"}),
		responseSize: f.NewSummaryVec(prometheus.SummaryOpts{
			Namespace:  "crabbox",
			Subsystem:  "http",
			Name:       "response_size_bytes",
			Help:       "HTTP response size in bytes",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		}, []string{"method", "path"}),
	}
}

func (m *HTTPMetrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			//ラベルはルートのパターン（/orders/:id）にする。IDごとに系列を増やさない
			path := c.Path()
			if path == "" {
				path = "unmatched"
			}
			method := c.Request().Method
			status := c.Response().Status
			if err != nil {
				var he *echo.HTTPError
				if errors.As(err, &he) {
					status = he.Code
				} else if !c.Response().Committed {
					status = http.StatusInternalServerError
				}
			}
			elapsed := time.Since(start)

			m.requestCounter.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
			m.requestDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
			m.responseSize.WithLabelValues(method, path).Observe(float64(c.Response().Size))

			if m.logger != nil {
				m.logger.Debug("http metrics",
					zap.String("method", method),
					zap.String("path", path),
					zap.Int("status", status),
					zap.Duration("duration", elapsed),
				)
			}
			return err
		}
	}
}
