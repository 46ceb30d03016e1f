package intake

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var outcomesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "dogspotter_intake_outcomes_total",
	Help: "Number of processed submissions, by outcome",
}, []string{"outcome"})

var usersSuspended = promauto.NewCounter(prometheus.CounterOpts{
	Name: "dogspotter_users_suspended_total",
	Help: "Number of users suspended by the moderation policy",
})
