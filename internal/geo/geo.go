package geo

import (
	"math"

	"github.com/spec-kit/maintenance-service/internal/domain"
)

const earthRadiusMeters = 6371000

// Result classifies a position against a circular geofence.
type Result struct {
	InRange        bool
	DistanceMeters float64
}

// Distance returns the great-circle distance in meters between two
// coordinates, using the haversine formula on degree inputs.
func Distance(a, b domain.Coordinates) float64 {
	lat1 := toRadians(a.Lat)
	lat2 := toRadians(b.Lat)
	dLat := toRadians(b.Lat - a.Lat)
	dLng := toRadians(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusMeters * c
}

// Verify classifies actorPosition against a geofence of radiusMeters around
// targetPosition. A point exactly at the radius is in range.
func Verify(actorPosition, targetPosition domain.Coordinates, radiusMeters float64) Result {
	distance := Distance(actorPosition, targetPosition)
	return Result{
		InRange:        distance <= radiusMeters,
		DistanceMeters: distance,
	}
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
