// internal/workers/data-access/query-application-data/config.go
package queryapplicationdata

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}
