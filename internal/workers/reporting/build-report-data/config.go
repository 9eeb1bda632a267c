package buildreportdata

import "time"

type Config struct {
	Timeout time.Duration
	Index   string

	// SchemaStrict fails the job on schema violations instead of
	// logging and indexing anyway.
	SchemaStrict bool
}

func LoadConfig() *Config {
	return &Config{
		Timeout:      30 * time.Second,
		Index:        "assessment-reports",
		SchemaStrict: true,
	}
}
