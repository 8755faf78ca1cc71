package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/maintenance-service/internal/domain"
	"github.com/spec-kit/maintenance-service/internal/events"
	"github.com/spec-kit/maintenance-service/internal/permission"
	"github.com/spec-kit/maintenance-service/internal/persistence"
	"github.com/spec-kit/maintenance-service/internal/repository"
	apperrors "github.com/spec-kit/maintenance-service/pkg/util"
)

const configCacheKey = "system-config"

// ConfigService loads and saves the admin-owned runtime configuration
// singleton. Reads go through a short-lived Redis cache because every
// transition and every ticket read needs the config.
type ConfigService struct {
	repo       repository.SystemConfigRepository
	redis      *persistence.Redis
	cacheTTL   time.Duration
	gate       permissionChecker
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewConfigService constructs the service. redis may be nil in tests; the
// cache is then skipped.
func NewConfigService(repo repository.SystemConfigRepository, redis *persistence.Redis, cacheTTL time.Duration, gate permissionChecker, dispatcher events.Dispatcher, logger *zap.Logger) *ConfigService {
	return &ConfigService{
		repo:       repo,
		redis:      redis,
		cacheTTL:   cacheTTL,
		gate:       gate,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Get returns the current configuration, falling back to defaults when the
// singleton row has never been saved.
func (s *ConfigService) Get(ctx context.Context) (domain.SystemConfig, error) {
	if cached, ok := s.readCache(ctx); ok {
		return cached, nil
	}

	cfg, err := s.repo.Get(ctx)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.DefaultSystemConfig(), nil
		}
		return domain.SystemConfig{}, err
	}
	s.writeCache(ctx, *cfg)
	return *cfg, nil
}

// Save validates and persists a full configuration snapshot. Partial updates
// are not supported; the admin surface always submits the complete document.
func (s *ConfigService) Save(ctx context.Context, actor domain.Role, actorID string, cfg domain.SystemConfig) error {
	if !s.gate.IsAllowed(actor, permission.KeySettingsManage) {
		return apperrors.NewForbidden("settings management requires the settings.manage permission")
	}
	if err := validateSystemConfig(cfg); err != nil {
		return err
	}
	if err := s.repo.Save(ctx, &cfg); err != nil {
		return err
	}
	s.invalidateCache(ctx)

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			Type:      events.EventConfigUpdated,
			Actor:     events.Actor{ID: actorID, Role: actor},
			Timestamp: time.Now(),
			Payload:   cfg,
		})
	}
	return nil
}

func validateSystemConfig(cfg domain.SystemConfig) error {
	fieldErrors := map[string]any{}
	if cfg.GeofenceRadiusMeters <= 0 {
		fieldErrors["geofence_radius_meters"] = "must be positive"
	}
	if cfg.TechnicianRangeKm <= 0 {
		fieldErrors["technician_range_km"] = "must be positive"
	}
	if cfg.SLAHighPriorityHours <= 0 {
		fieldErrors["sla_high_priority_hours"] = "must be positive"
	}
	if cfg.SLAMediumPriorityHours <= 0 {
		fieldErrors["sla_medium_priority_hours"] = "must be positive"
	}
	if cfg.SLALowPriorityHours <= 0 {
		fieldErrors["sla_low_priority_hours"] = "must be positive"
	}
	if cfg.MaxImageCount < 0 {
		fieldErrors["max_image_count"] = "must not be negative"
	}
	if len(fieldErrors) > 0 {
		return apperrors.NewValidationFailed("system configuration invalid", fieldErrors)
	}
	return nil
}

func (s *ConfigService) readCache(ctx context.Context) (domain.SystemConfig, bool) {
	if s.redis == nil || s.redis.Client == nil {
		return domain.SystemConfig{}, false
	}
	raw, err := s.redis.Client.Get(ctx, configCacheKey).Bytes()
	if err != nil {
		if err != goredis.Nil && s.logger != nil {
			s.logger.Warn("config cache read failed", zap.Error(err))
		}
		return domain.SystemConfig{}, false
	}
	var cfg domain.SystemConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return domain.SystemConfig{}, false
	}
	return cfg, true
}

func (s *ConfigService) writeCache(ctx context.Context, cfg domain.SystemConfig) {
	if s.redis == nil || s.redis.Client == nil {
		return
	}
	raw, err := json.Marshal(cfg)
	if err != nil {
		return
	}
	if err := s.redis.Client.Set(ctx, configCacheKey, raw, s.cacheTTL).Err(); err != nil && s.logger != nil {
		s.logger.Warn("config cache write failed", zap.Error(err))
	}
}

func (s *ConfigService) invalidateCache(ctx context.Context) {
	if s.redis == nil || s.redis.Client == nil {
		return
	}
	if err := s.redis.Client.Del(ctx, configCacheKey).Err(); err != nil && s.logger != nil {
		s.logger.Warn("config cache invalidation failed", zap.Error(err))
	}
}
