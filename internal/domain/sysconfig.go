package domain

// SystemConfig is the admin-owned runtime configuration singleton. It is
// loaded and injected per engine call, never held as ambient state.
type SystemConfig struct {
	GeofenceRadiusMeters   float64
	TechnicianRangeKm      float64
	SLAHighPriorityHours   int
	SLAMediumPriorityHours int
	SLALowPriorityHours    int
	MaxImageCount          int
	EnableAIAnalysis       bool
	MaintenanceMode        bool
}

// DefaultSystemConfig mirrors the seed values used before an administrator
// saves their own configuration.
func DefaultSystemConfig() SystemConfig {
	return SystemConfig{
		GeofenceRadiusMeters:   200,
		TechnicianRangeKm:      50,
		SLAHighPriorityHours:   4,
		SLAMediumPriorityHours: 24,
		SLALowPriorityHours:    72,
		MaxImageCount:          5,
		EnableAIAnalysis:       true,
		MaintenanceMode:        false,
	}
}
