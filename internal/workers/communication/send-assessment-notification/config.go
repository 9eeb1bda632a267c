package sendassessmentnotification

import "time"

type Config struct {
	Timeout      time.Duration
	EmailEnabled bool
	SMSEnabled   bool
	FromEmail    string

	// EscalateOnStatus triggers an SMS when any use case lands on this
	// status. Empty disables escalation.
	EscalateOnStatus string
}

func LoadConfig() *Config {
	return &Config{
		Timeout:          30 * time.Second,
		EmailEnabled:     true,
		SMSEnabled:       false,
		FromEmail:        "noreply@assessments.example.com",
		EscalateOnStatus: "red",
	}
}
