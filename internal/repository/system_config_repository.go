package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/maintenance-service/internal/domain"
)

// SystemConfigRepository stores the singleton runtime configuration row.
type SystemConfigRepository interface {
	Get(ctx context.Context) (*domain.SystemConfig, error)
	Save(ctx context.Context, cfg *domain.SystemConfig) error
}

type systemConfigRepository struct {
	pool *pgxpool.Pool
}

// NewSystemConfigRepository instantiates repository.
func NewSystemConfigRepository(pool *pgxpool.Pool) SystemConfigRepository {
	return &systemConfigRepository{pool: pool}
}

func (r *systemConfigRepository) Get(ctx context.Context) (*domain.SystemConfig, error) {
	const query = `
        SELECT geofence_radius_meters, technician_range_km, sla_high_priority_hours,
               sla_medium_priority_hours, sla_low_priority_hours, max_image_count,
               enable_ai_analysis, maintenance_mode
        FROM system_config WHERE id=1`
	var cfg domain.SystemConfig
	if err := r.pool.QueryRow(ctx, query).Scan(
		&cfg.GeofenceRadiusMeters,
		&cfg.TechnicianRangeKm,
		&cfg.SLAHighPriorityHours,
		&cfg.SLAMediumPriorityHours,
		&cfg.SLALowPriorityHours,
		&cfg.MaxImageCount,
		&cfg.EnableAIAnalysis,
		&cfg.MaintenanceMode,
	); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (r *systemConfigRepository) Save(ctx context.Context, cfg *domain.SystemConfig) error {
	const query = `
        UPDATE system_config SET geofence_radius_meters=$1, technician_range_km=$2,
            sla_high_priority_hours=$3, sla_medium_priority_hours=$4, sla_low_priority_hours=$5,
            max_image_count=$6, enable_ai_analysis=$7, maintenance_mode=$8
        WHERE id=1`
	_, err := r.pool.Exec(ctx, query,
		cfg.GeofenceRadiusMeters,
		cfg.TechnicianRangeKm,
		cfg.SLAHighPriorityHours,
		cfg.SLAMediumPriorityHours,
		cfg.SLALowPriorityHours,
		cfg.MaxImageCount,
		cfg.EnableAIAnalysis,
		cfg.MaintenanceMode,
	)
	return err
}
