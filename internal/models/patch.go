package models

import "time"

// Optional distinguishes a field absent from a patch from a field explicitly
// set, including explicitly set to nil. Partial updates only touch fields
// that are set.
type Optional[T any] struct {
	value T
	set   bool
}

// Set returns an Optional carrying v.
func Set[T any](v T) Optional[T] {
	return Optional[T]{value: v, set: true}
}

// IsSet reports whether the field was present in the patch.
func (o Optional[T]) IsSet() bool {
	return o.set
}

// Value returns the carried value, or the zero value when unset.
func (o Optional[T]) Value() T {
	return o.value
}

// CreateAssetInput carries the caller-supplied fields for asset creation.
// Status is a hint only: it is honored when no telemetry is supplied and
// recomputed otherwise.
type CreateAssetInput struct {
	OrganizationID string
	Name           string
	Type           AssetType
	Status         AssetStatus
	BatteryLevel   *int
	LastSeen       *time.Time
	BuildingID     *string
	FloorID        *string
	DepartmentID   *string
	Location       *string
	MapCoordinates *MapCoordinates
	Description    string
	Tags           []string
}

// AssetPatch is a partial update for the general update path. Unset fields
// are left untouched; nullable fields set to nil are cleared. Organization
// and status are not patchable: the former is immutable, the latter derived.
type AssetPatch struct {
	Name           Optional[string]
	Type           Optional[AssetType]
	BatteryLevel   Optional[*int]
	LastSeen       Optional[*time.Time]
	BuildingID     Optional[*string]
	FloorID        Optional[*string]
	DepartmentID   Optional[*string]
	Location       Optional[*string]
	MapCoordinates Optional[*MapCoordinates]
	Description    Optional[string]
	Tags           Optional[[]string]
}

// LocationPatch is the payload of a location update. The write itself counts
// as a heartbeat regardless of which fields are set.
type LocationPatch struct {
	BuildingID     Optional[*string]
	FloorID        Optional[*string]
	Location       Optional[*string]
	MapCoordinates Optional[*MapCoordinates]
}
