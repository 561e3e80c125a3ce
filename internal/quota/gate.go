package quota

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redis/redis_rate/v9"
	"github.com/meltforce/repforge/internal/models"
)

// Limiter is the rolling-window rate limiter behind the gate.
// *redis_rate.Limiter satisfies it.
type Limiter interface {
	Allow(ctx context.Context, key string, limit redis_rate.Limit) (*redis_rate.Result, error)
}

// Gate bounds how many generations a principal may trigger per rolling
// 24h window. Admin principals bypass it entirely, and any limiter
// error fails open: an enforcement outage must not block generation.
type Gate struct {
	limiter Limiter
	perDay  int
	log     *slog.Logger
}

// New creates a Gate. A nil limiter disables enforcement (all requests
// allowed), which is the dev-mode default when Redis is not configured.
func New(limiter Limiter, perDay int, log *slog.Logger) *Gate {
	return &Gate{limiter: limiter, perDay: perDay, log: log}
}

// CheckAndConsume atomically consumes one generation slot for the
// principal. Returns false only when the quota is genuinely exhausted.
func (g *Gate) CheckAndConsume(ctx context.Context, principal models.Principal) bool {
	if principal.Admin {
		return true
	}
	if g.limiter == nil || g.perDay <= 0 {
		return true
	}

	key := fmt.Sprintf("quota:generate:%d", principal.UserID)
	res, err := g.limiter.Allow(ctx, key, redis_rate.Limit{
		Rate:   g.perDay,
		Period: 24 * time.Hour,
		Burst:  g.perDay,
	})
	if err != nil {
		g.log.Warn("quota check failed, allowing request", "user_id", principal.UserID, "error", err)
		return true
	}
	if res.Allowed == 0 {
		g.log.Info("quota exceeded", "user_id", principal.UserID, "retry_after", res.RetryAfter.String())
		return false
	}
	return true
}
