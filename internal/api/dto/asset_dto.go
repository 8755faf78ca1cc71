package dto

import (
	"time"

	"github.com/spec-kit/maintenance-service/internal/domain"
)

// CreateAssetRequest payload.
type CreateAssetRequest struct {
	Name            string     `json:"name"`
	SerialNumber    string     `json:"serial_number"`
	Category        string     `json:"category"`
	Status          string     `json:"status"`
	BranchID        string     `json:"branch_id"`
	Location        string     `json:"location"`
	HealthScore     int        `json:"health_score"`
	PurchaseDate    *time.Time `json:"purchase_date"`
	WarrantyExpiry  *time.Time `json:"warranty_expiry"`
	Supplier        string     `json:"supplier"`
	SupplierContact string     `json:"supplier_contact"`
	InitialValue    float64    `json:"initial_value"`
	ImageURL        string     `json:"image_url"`
}

// AssetResponse response.
type AssetResponse struct {
	ID            string             `json:"id"`
	Name          string             `json:"name"`
	SerialNumber  string             `json:"serial_number"`
	Category      string             `json:"category"`
	Status        domain.AssetStatus `json:"status"`
	BranchID      string             `json:"branch_id"`
	Location      string             `json:"location"`
	HealthScore   int                `json:"health_score"`
	UnderWarranty bool               `json:"under_warranty"`
	Supplier      string             `json:"supplier,omitempty"`
	InitialValue  float64            `json:"initial_value"`
	ImageURL      string             `json:"image_url,omitempty"`
}
