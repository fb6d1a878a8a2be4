package config

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
)

// Validate checks the settings a command mode depends on. Modes are
// "extract", "batch" and "serve".
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case "extract":
	case "batch":
		if c.Batch.Concurrency < 1 || c.Batch.Concurrency > 64 {
			errs = append(errs, "batch.concurrency must be between 1 and 64")
		}
	case "serve":
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, "server.port must be > 0 and <= 65535")
		}
		if c.Server.RateLimitRPS < 0 {
			errs = append(errs, "server.rate_limit_rps must be >= 0")
		}
		if c.Server.RateLimitRPS > 0 && c.Server.RateLimitBurst < 1 {
			errs = append(errs, "server.rate_limit_burst must be >= 1 when rate limiting is on")
		}
		if c.Server.MaxBodyBytes <= 0 {
			errs = append(errs, "server.max_body_bytes must be > 0")
		}
		if c.Batch.Concurrency < 1 || c.Batch.Concurrency > 64 {
			errs = append(errs, "batch.concurrency must be between 1 and 64")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if c.Amount.MinAmount < 0 || c.Amount.MinBareAmount < 0 {
		errs = append(errs, "amount minimums must be >= 0")
	}
	if c.Amount.MaxAmount > 0 && c.Amount.MaxAmount < c.Amount.MinAmount {
		errs = append(errs, "amount.max_amount must be >= amount.min_amount")
	}
	if c.Category.MinScore < 0 {
		errs = append(errs, fmt.Sprintf("category.min_score must be >= 0, got %.2f", c.Category.MinScore))
	}

	if len(errs) > 0 {
		return eris.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
