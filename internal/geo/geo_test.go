package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/maintenance-service/internal/domain"
)

var (
	riyadh  = domain.Coordinates{Lat: 24.7136, Lng: 46.6753}
	jeddah  = domain.Coordinates{Lat: 21.4858, Lng: 39.1925}
	nearSite = domain.Coordinates{Lat: 24.7140, Lng: 46.6753}
)

func TestDistance_SelfIsZero(t *testing.T) {
	assert.Equal(t, 0.0, Distance(riyadh, riyadh))
}

func TestDistance_Symmetric(t *testing.T) {
	assert.InDelta(t, Distance(riyadh, jeddah), Distance(jeddah, riyadh), 1e-9)
}

func TestDistance_KnownCityPair(t *testing.T) {
	// Riyadh to Jeddah is roughly 847 km great-circle.
	d := Distance(riyadh, jeddah)
	assert.InDelta(t, 847000, d, 5000)
}

func TestVerify_WithinRadius(t *testing.T) {
	// ~44.5m north of the site.
	res := Verify(nearSite, riyadh, 200)
	assert.True(t, res.InRange)
	assert.InDelta(t, 44.5, res.DistanceMeters, 1.0)
}

func TestVerify_ExactlyAtRadiusIsInRange(t *testing.T) {
	res := Verify(nearSite, riyadh, Distance(nearSite, riyadh))
	assert.True(t, res.InRange)
}

func TestVerify_OutsideRadius(t *testing.T) {
	// ~250m north of the site against a 200m geofence.
	actor := domain.Coordinates{Lat: riyadh.Lat + 250.0/111320.0, Lng: riyadh.Lng}
	res := Verify(actor, riyadh, 200)
	assert.False(t, res.InRange)
	assert.InDelta(t, 250, res.DistanceMeters, 2.0)
}

func TestVerify_ZeroRadiusOnlyMatchesSamePoint(t *testing.T) {
	assert.True(t, Verify(riyadh, riyadh, 0).InRange)
	assert.False(t, Verify(nearSite, riyadh, 0).InRange)
}
