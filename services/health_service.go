package services

import (
	"context"
	"time"

	"github.com/VisaTrek/visa-trek-backend/logger"
	"github.com/VisaTrek/visa-trek-backend/types"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// HealthService reports readiness of the process and its store. A nil redis
// client means the in-memory store is in use, which has no failure mode of
// its own.
type HealthService struct {
	redisClient *redis.Client
	version     string
	startTime   time.Time
	log         *zap.SugaredLogger
}

func NewHealthService(redisClient *redis.Client, version string) *HealthService {
	return &HealthService{
		redisClient: redisClient,
		version:     version,
		startTime:   time.Now(),
		log:         logger.GetLogger(),
	}
}

func (h *HealthService) CheckHealth(ctx context.Context) types.HealthCheck {
	components := make(map[string]types.HealthComponent)
	overallStatus := types.HealthStatusUp

	storeStatus := h.checkStore(ctx)
	components["store"] = storeStatus
	if storeStatus.Status == types.HealthStatusDown {
		overallStatus = types.HealthStatusDown
	}

	return types.HealthCheck{
		Status:     overallStatus,
		Components: components,
		Version:    h.version,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Uptime:     time.Since(h.startTime).Round(time.Second).String(),
	}
}

func (h *HealthService) checkStore(ctx context.Context) types.HealthComponent {
	if h.redisClient == nil {
		return types.HealthComponent{
			Status:  types.HealthStatusUp,
			Details: "in-memory store",
		}
	}

	if err := h.redisClient.Ping(ctx).Err(); err != nil {
		h.log.Errorw("Redis health check failed", "error", err)
		return types.HealthComponent{
			Status:  types.HealthStatusDown,
			Details: "Redis connection failed",
		}
	}

	return types.HealthComponent{
		Status: types.HealthStatusUp,
	}
}
