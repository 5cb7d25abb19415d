package models

import (
	"strings"
	"time"
)

// AssetType classifies what kind of trackable thing an asset is.
type AssetType string

const (
	AssetTypeDevice    AssetType = "device"
	AssetTypeEquipment AssetType = "equipment"
	AssetTypeStaff     AssetType = "staff"
	AssetTypePersonnel AssetType = "personnel"
)

// AssetTypes lists every valid asset type, in stats output order.
var AssetTypes = []AssetType{AssetTypeDevice, AssetTypeEquipment, AssetTypeStaff, AssetTypePersonnel}

// Valid reports whether t is a known asset type.
func (t AssetType) Valid() bool {
	switch t {
	case AssetTypeDevice, AssetTypeEquipment, AssetTypeStaff, AssetTypePersonnel:
		return true
	}
	return false
}

// AssetStatus is the derived operational status of an asset. It is never set
// directly by callers; every write path recomputes it from the battery and
// staleness signals.
type AssetStatus string

const (
	StatusOnline     AssetStatus = "online"
	StatusOffline    AssetStatus = "offline"
	StatusLowBattery AssetStatus = "low-battery"
)

// AssetStatuses lists every valid status, in stats output order.
var AssetStatuses = []AssetStatus{StatusOnline, StatusOffline, StatusLowBattery}

// Valid reports whether s is a known status.
func (s AssetStatus) Valid() bool {
	switch s {
	case StatusOnline, StatusOffline, StatusLowBattery:
		return true
	}
	return false
}

// MapCoordinates places an asset on a floor plan, either as plan-local x/y
// or as geographic lat/long.
type MapCoordinates struct {
	X         *float64 `json:"x,omitempty" bson:"x,omitempty"`
	Y         *float64 `json:"y,omitempty" bson:"y,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty" bson:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty" bson:"longitude,omitempty"`
}

// Asset is one trackable thing (device, equipment item, staff member,
// personnel badge) owned by an organization.
type Asset struct {
	ID             string          `json:"id" bson:"_id"`
	OrganizationID string          `json:"organizationId" bson:"organizationId"`
	Name           string          `json:"name" bson:"name"`
	Type           AssetType       `json:"type" bson:"type"`
	Status         AssetStatus     `json:"status" bson:"status"`
	BatteryLevel   *int            `json:"batteryLevel" bson:"batteryLevel"`
	LastSeen       *time.Time      `json:"lastSeen" bson:"lastSeen"`
	BuildingID     *string         `json:"buildingId,omitempty" bson:"buildingId,omitempty"`
	FloorID        *string         `json:"floorId,omitempty" bson:"floorId,omitempty"`
	DepartmentID   *string         `json:"departmentId,omitempty" bson:"departmentId,omitempty"`
	Location       *string         `json:"location,omitempty" bson:"location,omitempty"`
	MapCoordinates *MapCoordinates `json:"mapCoordinates,omitempty" bson:"mapCoordinates,omitempty"`
	Description    string          `json:"description,omitempty" bson:"description,omitempty"`
	Tags           []string        `json:"tags,omitempty" bson:"tags,omitempty"`
	IsActive       bool            `json:"isActive" bson:"isActive"`
	CreatedBy      string          `json:"createdBy,omitempty" bson:"createdBy,omitempty"`
	UpdatedBy      string          `json:"updatedBy,omitempty" bson:"updatedBy,omitempty"`
	CreatedAt      time.Time       `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt" bson:"updatedAt"`
}

// Validate checks the fields every persisted asset must carry.
func (a *Asset) Validate() error {
	if a.OrganizationID == "" {
		return ErrInvalidAsset("asset organization is required")
	}
	if a.Name == "" {
		return ErrInvalidAsset("asset name is required")
	}
	if !a.Type.Valid() {
		return ErrInvalidAsset("asset type must be one of device, equipment, staff, personnel")
	}
	if a.BatteryLevel != nil && (*a.BatteryLevel < 0 || *a.BatteryLevel > 100) {
		return ErrInvalidAsset("battery level must be between 0 and 100")
	}
	return nil
}

// ErrInvalidAsset represents an asset validation error.
type ErrInvalidAsset string

func (e ErrInvalidAsset) Error() string {
	return string(e)
}

// SanitizeTags trims whitespace, drops empty entries, and removes duplicates
// (case-sensitive), preserving first-occurrence order.
func SanitizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
