// internal/form/config.go
package form

import (
	"context"

	"loan-intake/internal/common/config"
	"loan-intake/internal/decision"
	"loan-intake/internal/journal"
)

// Submitter sends a request to the decision service.
type Submitter interface {
	Submit(ctx context.Context, req *decision.Request) (*decision.Response, error)
}

// Guard serializes submissions for the same applicant across processes.
type Guard interface {
	Acquire(ctx context.Context, key string) (release func(), acquired bool, err error)
}

// Journal records terminal submission outcomes.
type Journal interface {
	Record(ctx context.Context, entry journal.Entry) (string, error)
}

type Config struct {
	AmountDue              float64
	SkipSubmitRevalidation bool
}

func LoadConfig(cfg config.FormConfig) *Config {
	return &Config{
		AmountDue:              cfg.AmountDue,
		SkipSubmitRevalidation: cfg.SkipSubmitRevalidation,
	}
}
