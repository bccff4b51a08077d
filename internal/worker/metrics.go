package worker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals
var (
	runsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "deals_check_runs_total",
		Help: "Completed deal check runs.",
	})

	dealsFound = promauto.NewCounter(prometheus.CounterOpts{
		Name: "deals_found_total",
		Help: "Qualified deals found across runs.",
	})

	dealsSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "deals_sent_total",
		Help: "Deals published to the channel.",
	})

	productsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "products_rejected_total",
		Help: "Products rejected during evaluation, by reason (lookup failures carry the gateway error kind).",
	}, []string{"reason"})
)
