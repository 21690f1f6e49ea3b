package handlers

import "os"

// Analytics holds client instrumentation configuration surfaced to templates.
type Analytics struct {
	PlausibleDomain  string // e.g. northgate-sc.example
	GA4MeasurementID string // e.g. G-XXXXXXXXXX
	Debug            bool
}

// Enabled reports whether any provider is configured.
func (a Analytics) Enabled() bool { return a.PlausibleDomain != "" || a.GA4MeasurementID != "" }

// LoadAnalyticsFromEnv builds Analytics from environment variables.
func LoadAnalyticsFromEnv() Analytics {
	return Analytics{
		PlausibleDomain:  os.Getenv("CLUBWEB_PLAUSIBLE_DOMAIN"),
		GA4MeasurementID: os.Getenv("CLUBWEB_GA_MEASUREMENT_ID"),
		Debug:            os.Getenv("CLUBWEB_ANALYTICS_DEBUG") != "",
	}
}
