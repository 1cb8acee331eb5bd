package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vfw_http_requests_total",
		Help: "HTTP requests by method, route and status code.",
	}, []string{"method", "route", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "vfw_http_request_duration_seconds",
		Help:    "HTTP request latency by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})

	OrdersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vfw_orders_created_total",
		Help: "Orders successfully placed.",
	})

	InquiriesSubmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vfw_inquiries_submitted_total",
		Help: "Inquiries received from the public site.",
	})

	ClaimsFiled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vfw_warranty_claims_filed_total",
		Help: "Warranty claims filed.",
	})
)

// Middleware records request counts and latency per gin route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		requestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}
