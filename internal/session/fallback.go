package session

import (
	"context"
	"errors"

	"github.com/vk/gmicli/internal/ctxlog"
)

// Tier is one attempt of a fallback chain.
type Tier struct {
	Name string
	Run  func(ctx context.Context) error
}

// Fallback runs tiers in order and stops at the first that succeeds. The
// error of the last tier is returned when all of them fail.
func Fallback(ctx context.Context, tiers ...Tier) error {
	logger := ctxlog.FromContext(ctx)
	err := errors.New("no fallback tiers")
	for i, t := range tiers {
		if err = t.Run(ctx); err == nil {
			logger.Debug("Fallback tier succeeded.", "tier", t.Name, "attempt", i+1)
			return nil
		}
		logger.Debug("Fallback tier failed.", "tier", t.Name, "attempt", i+1, "error", err)
	}
	return err
}
