// internal/workers/application/validate-application/config.go
package validateapplication

import "time"

// Validation is pure; the config exists for fleet consistency.
type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 30 * time.Second,
	}
}
