// internal/workers/credit/evaluate-eligibility/config.go
package evaluateeligibility

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}
