package repository

import (
	"context"

	"trackd.sh/internal/models"
	"trackd.sh/internal/terrors"
)

// Collections the record store knows about. Assets live in their own
// collection; the rest are only consulted for referential checks.
const (
	CollectionAssets        = "assets"
	CollectionOrganizations = "organizations"
	CollectionBuildings     = "buildings"
	CollectionFloors        = "floors"
	CollectionDepartments   = "departments"
	CollectionUsers         = "users"
)

// Canonical asset field names, shared by the coordinator's partial updates
// and both store implementations.
const (
	FieldName           = "name"
	FieldType           = "type"
	FieldStatus         = "status"
	FieldBatteryLevel   = "batteryLevel"
	FieldLastSeen       = "lastSeen"
	FieldBuildingID     = "buildingId"
	FieldFloorID        = "floorId"
	FieldDepartmentID   = "departmentId"
	FieldLocation       = "location"
	FieldMapCoordinates = "mapCoordinates"
	FieldDescription    = "description"
	FieldTags           = "tags"
	FieldIsActive       = "isActive"
	FieldUpdatedBy      = "updatedBy"
	FieldUpdatedAt      = "updatedAt"
)

// AssetFilter scopes listing and counting. Zero-valued fields are ignored.
type AssetFilter struct {
	OrganizationID string
	BuildingID     string
	FloorID        string
	DepartmentID   string
	Types          []models.AssetType
	Statuses       []models.AssetStatus
	IsActive       *bool
	// Search is free text matched against name, location, description, and
	// tags.
	Search string
}

// ListOptions contains pagination and ordering for Find.
type ListOptions struct {
	Skip     int64
	Limit    int64
	SortBy   string
	SortDesc bool
}

// StatusCounts is the aggregation consumed by the stats service. ByStatus
// and ByType are zero-filled for every known status and type.
type StatusCounts struct {
	Total    int64
	ByStatus map[models.AssetStatus]int64
	ByType   map[models.AssetType]int64
}

// AssetRepository is the record store contract. UpdateFields must be an
// atomic field-level update (never a whole-document replace) so concurrent
// writers touching disjoint fields cannot clobber each other, and must
// return the document as persisted.
type AssetRepository interface {
	Find(ctx context.Context, filter AssetFilter, opts ListOptions) ([]*models.Asset, int64, error)
	FindByID(ctx context.Context, id string) (*models.Asset, error)
	Insert(ctx context.Context, asset *models.Asset) (*models.Asset, error)
	UpdateFields(ctx context.Context, id string, fields map[string]any) (*models.Asset, error)
	ExistsByID(ctx context.Context, collection, id string) (bool, error)
	Counts(ctx context.Context, filter AssetFilter) (StatusCounts, error)
}

const (
	defaultLimit = 100
	maxLimit     = 1000
)

var validSortFields = map[string]bool{
	"":             true,
	FieldName:      true,
	FieldType:      true,
	FieldStatus:    true,
	FieldLastSeen:  true,
	"createdAt":    true,
	FieldUpdatedAt: true,
}

// normalizeListOptions applies pagination defaults and rejects sort fields
// outside the allow list.
func normalizeListOptions(opts *ListOptions) error {
	if opts.Limit <= 0 || opts.Limit > maxLimit {
		opts.Limit = defaultLimit
	}
	if opts.Skip < 0 {
		opts.Skip = 0
	}
	if !validSortFields[opts.SortBy] {
		return terrors.Newf(terrors.ErrCodeInvalidInput, "invalid sort field: %s", opts.SortBy)
	}
	return nil
}

// newStatusCounts returns a StatusCounts with every bucket present.
func newStatusCounts() StatusCounts {
	counts := StatusCounts{
		ByStatus: make(map[models.AssetStatus]int64, len(models.AssetStatuses)),
		ByType:   make(map[models.AssetType]int64, len(models.AssetTypes)),
	}
	for _, s := range models.AssetStatuses {
		counts.ByStatus[s] = 0
	}
	for _, t := range models.AssetTypes {
		counts.ByType[t] = 0
	}
	return counts
}
