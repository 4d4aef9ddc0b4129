package collector

import (
	"fmt"
	"os"

	"github.com/Creator-ad-biz/reddit-trend-analyzer/internal/config"
	"github.com/Creator-ad-biz/reddit-trend-analyzer/internal/domain"
)

// NewCollector selects the client implementation for the configured mode.
// Credentials stay in the environment; everything else comes from config.
func NewCollector(cfg config.Config) (domain.Collector, error) {
	switch cfg.CollectorMode {
	case "api":
		return NewAPIClient(
			os.Getenv("REDDIT_CLIENT_ID"),
			os.Getenv("REDDIT_CLIENT_SECRET"),
			os.Getenv("REDDIT_USERNAME"),
			os.Getenv("REDDIT_PASSWORD"),
			cfg.UserAgent,
		)
	case "public":
		return NewPublicClient(cfg.UserAgent)
	case "mock":
		return NewMockClient(), nil
	default:
		return nil, fmt.Errorf("unknown COLLECTOR_MODE: %s (use 'api', 'public', or 'mock')", cfg.CollectorMode)
	}
}
