package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	loginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pixshelf_login_attempts_total",
		Help: "Number of login attempts grouped by status.",
	}, []string{"status"})

	imageUploads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pixshelf_image_uploads_total",
		Help: "Number of image upload requests grouped by status.",
	}, []string{"status"})

	imageReorders = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pixshelf_image_reorders_total",
		Help: "Number of gallery reorder requests grouped by status.",
	}, []string{"status"})

	rateLimitHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pixshelf_rate_limit_hits_total",
		Help: "Rate limiter activations grouped by limiter name.",
	}, []string{"limiter"})
)

// IncLogin increments the login counter.
func IncLogin(status string) {
	loginAttempts.WithLabelValues(status).Inc()
}

// IncUpload increments the image upload counter.
func IncUpload(status string) {
	imageUploads.WithLabelValues(status).Inc()
}

// IncReorder increments the reorder counter.
func IncReorder(status string) {
	imageReorders.WithLabelValues(status).Inc()
}

// IncRateLimit increments the rate-limit hit counter.
func IncRateLimit(name string) {
	rateLimitHits.WithLabelValues(name).Inc()
}
