// internal/decision/config.go
package decision

import (
	"time"

	"loan-intake/internal/common/config"
)

type Config struct {
	Endpoint string
	Timeout  time.Duration
}

func LoadConfig(cfg config.DecisionConfig) *Config {
	return &Config{
		Endpoint: cfg.Endpoint(),
		Timeout:  config.GetDuration(cfg.Timeout),
	}
}
