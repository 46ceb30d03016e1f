package classifier

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	resultPositive = "positive"
	resultNegative = "negative"
	resultError    = "error"
)

var classificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "dogspotter_classifications_total",
	Help: "Number of classified images, by result (positive, negative, error)",
}, []string{"result"})

var detectorDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Name: "dogspotter_detector_duration_sec",
	Help: "Duration of detector API calls",
})

var detectorRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "dogspotter_detector_requests_total",
	Help: "Number of detector API calls, by endpoint and HTTP status code",
}, []string{"endpoint", "status"})
