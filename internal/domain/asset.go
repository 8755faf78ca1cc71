package domain

import "time"

// AssetStatus enumerates operational states of equipment.
type AssetStatus string

const (
	AssetStatusActive      AssetStatus = "ACTIVE"
	AssetStatusBroken      AssetStatus = "BROKEN"
	AssetStatusMaintenance AssetStatus = "MAINTENANCE"
	AssetStatusScrapped    AssetStatus = "SCRAPPED"
)

// Asset models a maintainable piece of equipment. Read-only to the workflow
// engine; its branch supplies the geofence target location.
type Asset struct {
	ID              string
	Name            string
	SerialNumber    string
	Category        string
	Status          AssetStatus
	BranchID        string
	Location        string
	HealthScore     int
	PurchaseDate    time.Time
	WarrantyExpiry  time.Time
	Supplier        string
	SupplierContact string
	InitialValue    float64
	ImageURL        string
}

// UnderWarranty reports whether the asset's warranty window covers now.
func (a *Asset) UnderWarranty(now time.Time) bool {
	return now.After(a.PurchaseDate) && now.Before(a.WarrantyExpiry)
}
