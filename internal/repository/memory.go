package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"trackd.sh/internal/models"
	"trackd.sh/internal/terrors"
)

// MemoryStore is an in-memory AssetRepository for tests and local
// development. It honors the same field-level update semantics as the
// MongoDB store: each UpdateFields call is atomic under the store mutex.
type MemoryStore struct {
	mu     sync.RWMutex
	assets map[string]*models.Asset
	refs   map[string]map[string]struct{}
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		assets: make(map[string]*models.Asset),
		refs:   make(map[string]map[string]struct{}),
	}
}

// AddReference registers an id in a referenced collection (organizations,
// buildings, floors, departments, users) so referential checks pass.
func (m *MemoryStore) AddReference(collection, id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.refs[collection] == nil {
		m.refs[collection] = make(map[string]struct{})
	}
	m.refs[collection][id] = struct{}{}
}

func (m *MemoryStore) Find(ctx context.Context, filter AssetFilter, opts ListOptions) ([]*models.Asset, int64, error) {
	if err := normalizeListOptions(&opts); err != nil {
		return nil, 0, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	matched := make([]*models.Asset, 0, len(m.assets))
	for _, a := range m.assets {
		if matchesFilter(a, filter) {
			matched = append(matched, a)
		}
	}
	total := int64(len(matched))

	sortAssets(matched, opts.SortBy, opts.SortDesc)

	if opts.Skip >= total {
		return []*models.Asset{}, total, nil
	}
	end := opts.Skip + opts.Limit
	if end > total {
		end = total
	}
	page := matched[opts.Skip:end]

	out := make([]*models.Asset, len(page))
	for i, a := range page {
		out[i] = cloneAsset(a)
	}
	return out, total, nil
}

func (m *MemoryStore) FindByID(ctx context.Context, id string) (*models.Asset, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.assets[id]
	if !ok {
		return nil, terrors.Newf(terrors.ErrCodeNotFound, "asset not found: %s", id)
	}
	return cloneAsset(a), nil
}

func (m *MemoryStore) Insert(ctx context.Context, asset *models.Asset) (*models.Asset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.assets[asset.ID]; exists {
		return nil, terrors.Newf(terrors.ErrCodeAlreadyExists, "asset already exists: %s", asset.ID)
	}
	m.assets[asset.ID] = cloneAsset(asset)
	return cloneAsset(asset), nil
}

func (m *MemoryStore) UpdateFields(ctx context.Context, id string, fields map[string]any) (*models.Asset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.assets[id]
	if !ok {
		return nil, terrors.Newf(terrors.ErrCodeNotFound, "asset not found: %s", id)
	}
	updated := cloneAsset(a)
	for key, value := range fields {
		if err := applyField(updated, key, value); err != nil {
			return nil, err
		}
	}
	m.assets[id] = updated
	return cloneAsset(updated), nil
}

func (m *MemoryStore) ExistsByID(ctx context.Context, collection, id string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if collection == CollectionAssets {
		_, ok := m.assets[id]
		return ok, nil
	}
	ids, ok := m.refs[collection]
	if !ok {
		return false, nil
	}
	_, ok = ids[id]
	return ok, nil
}

func (m *MemoryStore) Counts(ctx context.Context, filter AssetFilter) (StatusCounts, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	counts := newStatusCounts()
	for _, a := range m.assets {
		if !matchesFilter(a, filter) {
			continue
		}
		counts.Total++
		counts.ByStatus[a.Status]++
		counts.ByType[a.Type]++
	}
	return counts, nil
}

func matchesFilter(a *models.Asset, f AssetFilter) bool {
	if f.OrganizationID != "" && a.OrganizationID != f.OrganizationID {
		return false
	}
	if f.BuildingID != "" && (a.BuildingID == nil || *a.BuildingID != f.BuildingID) {
		return false
	}
	if f.FloorID != "" && (a.FloorID == nil || *a.FloorID != f.FloorID) {
		return false
	}
	if f.DepartmentID != "" && (a.DepartmentID == nil || *a.DepartmentID != f.DepartmentID) {
		return false
	}
	if len(f.Types) > 0 && !containsType(f.Types, a.Type) {
		return false
	}
	if len(f.Statuses) > 0 && !containsStatus(f.Statuses, a.Status) {
		return false
	}
	if f.IsActive != nil && a.IsActive != *f.IsActive {
		return false
	}
	if f.Search != "" && !matchesSearch(a, f.Search) {
		return false
	}
	return true
}

func matchesSearch(a *models.Asset, search string) bool {
	needle := strings.ToLower(search)
	if strings.Contains(strings.ToLower(a.Name), needle) {
		return true
	}
	if a.Location != nil && strings.Contains(strings.ToLower(*a.Location), needle) {
		return true
	}
	if strings.Contains(strings.ToLower(a.Description), needle) {
		return true
	}
	for _, tag := range a.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}

func containsType(types []models.AssetType, t models.AssetType) bool {
	for _, v := range types {
		if v == t {
			return true
		}
	}
	return false
}

func containsStatus(statuses []models.AssetStatus, s models.AssetStatus) bool {
	for _, v := range statuses {
		if v == s {
			return true
		}
	}
	return false
}

func sortAssets(assets []*models.Asset, sortBy string, desc bool) {
	less := func(i, j int) bool {
		a, b := assets[i], assets[j]
		switch sortBy {
		case FieldName:
			return a.Name < b.Name
		case FieldType:
			return a.Type < b.Type
		case FieldStatus:
			return a.Status < b.Status
		case FieldLastSeen:
			return timePtrBefore(a.LastSeen, b.LastSeen)
		case FieldUpdatedAt:
			return a.UpdatedAt.Before(b.UpdatedAt)
		default: // createdAt
			return a.CreatedAt.Before(b.CreatedAt)
		}
	}
	if desc {
		sort.SliceStable(assets, func(i, j int) bool { return less(j, i) })
		return
	}
	sort.SliceStable(assets, less)
}

func timePtrBefore(a, b *time.Time) bool {
	if a == nil {
		return b != nil
	}
	if b == nil {
		return false
	}
	return a.Before(*b)
}

func applyField(a *models.Asset, key string, value any) error {
	switch key {
	case FieldName:
		a.Name, _ = value.(string)
	case FieldType:
		if t, ok := value.(models.AssetType); ok {
			a.Type = t
		}
	case FieldStatus:
		if s, ok := value.(models.AssetStatus); ok {
			a.Status = s
		}
	case FieldBatteryLevel:
		if value == nil {
			a.BatteryLevel = nil
			break
		}
		if level, ok := value.(*int); ok {
			a.BatteryLevel = copyIntPtr(level)
		}
	case FieldLastSeen:
		if value == nil {
			a.LastSeen = nil
			break
		}
		if ts, ok := value.(*time.Time); ok {
			a.LastSeen = copyTimePtr(ts)
		}
	case FieldBuildingID:
		a.BuildingID = toStringPtr(value)
	case FieldFloorID:
		a.FloorID = toStringPtr(value)
	case FieldDepartmentID:
		a.DepartmentID = toStringPtr(value)
	case FieldLocation:
		a.Location = toStringPtr(value)
	case FieldMapCoordinates:
		if value == nil {
			a.MapCoordinates = nil
			break
		}
		if mc, ok := value.(*models.MapCoordinates); ok {
			a.MapCoordinates = copyCoordinates(mc)
		}
	case FieldDescription:
		a.Description, _ = value.(string)
	case FieldTags:
		if tags, ok := value.([]string); ok {
			a.Tags = append([]string(nil), tags...)
		} else if value == nil {
			a.Tags = nil
		}
	case FieldIsActive:
		if active, ok := value.(bool); ok {
			a.IsActive = active
		}
	case FieldUpdatedBy:
		a.UpdatedBy, _ = value.(string)
	case FieldUpdatedAt:
		if ts, ok := value.(time.Time); ok {
			a.UpdatedAt = ts
		}
	default:
		return terrors.Newf(terrors.ErrCodeInvalidInput, "unknown asset field: %s", key)
	}
	return nil
}

func toStringPtr(value any) *string {
	if value == nil {
		return nil
	}
	if s, ok := value.(*string); ok {
		return copyStringPtr(s)
	}
	return nil
}

func cloneAsset(a *models.Asset) *models.Asset {
	clone := *a
	clone.BatteryLevel = copyIntPtr(a.BatteryLevel)
	clone.LastSeen = copyTimePtr(a.LastSeen)
	clone.BuildingID = copyStringPtr(a.BuildingID)
	clone.FloorID = copyStringPtr(a.FloorID)
	clone.DepartmentID = copyStringPtr(a.DepartmentID)
	clone.Location = copyStringPtr(a.Location)
	clone.MapCoordinates = copyCoordinates(a.MapCoordinates)
	clone.Tags = append([]string(nil), a.Tags...)
	return &clone
}

func copyIntPtr(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func copyTimePtr(v *time.Time) *time.Time {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func copyStringPtr(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func copyCoordinates(v *models.MapCoordinates) *models.MapCoordinates {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
