package config

// RegionConfig holds region-specific search parameters
type RegionConfig struct {
	Lang   string // Result language
	Region string // Market region
}

// RegionConfigs maps region codes to their configurations
var RegionConfigs = map[string]RegionConfig{
	"in-en": {"en-IN", "IN"}, // India (English)
	"us":    {"en-US", "US"}, // United States
	"uk":    {"en-GB", "GB"}, // United Kingdom
	"ca":    {"en-CA", "CA"}, // Canada
	"au":    {"en-AU", "AU"}, // Australia
	"sg":    {"en-SG", "SG"}, // Singapore
	"de":    {"de-DE", "DE"}, // Germany
	"fr":    {"fr-FR", "FR"}, // France
}
