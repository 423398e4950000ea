// internal/workers/credit/pull-credit-report/config.go
package pullcreditreport

import "time"

type Config struct {
	// Timeout bounds the bureau call for one job.
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}
