package constants

// Static route constants
const (
	UploadsRoute = "/uploads"
	// Upload path without leading slash, relative to the working directory
	UploadsPath = "uploads"

	APIPrefix   = "/api"
	APIDocsSpec = "public/docs/v1/openapi.yml"
	APIDocsPath = "/api/docs"
	MonitorPath = "/metrics"
)
