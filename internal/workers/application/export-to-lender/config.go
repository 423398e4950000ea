// internal/workers/application/export-to-lender/config.go
package exporttolender

import "time"

type Config struct {
	Timeout time.Duration
	// FromEmail is the verified SES sender identity.
	FromEmail    string
	EmailEnabled bool
}

func LoadConfig() *Config {
	return &Config{
		Timeout:      15 * time.Second,
		FromEmail:    "decisions@lending-workers.example.com",
		EmailEnabled: true,
	}
}
