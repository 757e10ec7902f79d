// Package metrics holds the service's prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PaymentAttempts counts payment authorization attempts by outcome:
	// success, forbidden, user_not_found, bill_not_found,
	// ownership_mismatch, already_paid, amount_mismatch.
	PaymentAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "paycheck",
		Name:      "payment_attempts_total",
		Help:      "Payment authorization attempts by outcome.",
	}, []string{"outcome"})

	// HTTPRequests counts handled HTTP requests by method, path pattern,
	// and status class.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "paycheck",
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, route, and status.",
	}, []string{"method", "route", "status"})
)
