// internal/workers/notification/send-decision-notification/config.go
package senddecisionnotification

import "time"

type Config struct {
	Timeout      time.Duration
	FromEmail    string
	EmailEnabled bool
	SMSEnabled   bool
}

func LoadConfig() *Config {
	return &Config{
		Timeout:      15 * time.Second,
		FromEmail:    "decisions@lending-workers.example.com",
		EmailEnabled: true,
		SMSEnabled:   false,
	}
}
