package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"trackd.sh/internal/metrics"
	"trackd.sh/internal/models"
	"trackd.sh/internal/repository"
	"trackd.sh/internal/status"
	"trackd.sh/internal/terrors"
)

// AssetService coordinates every asset write path. Each operation reads a
// single consistent snapshot, re-derives the operational status from the
// latest battery/staleness signals, and persists through a field-level
// atomic update, so status stays consistent no matter which fields the
// caller touched. No operation is retried internally; a failed write is
// assumed not to have happened.
type AssetService struct {
	repo   repository.AssetRepository
	logger *slog.Logger
	now    func() time.Time
}

// NewAssetService creates a coordinator on the given record store.
func NewAssetService(repo repository.AssetRepository) *AssetService {
	return &AssetService{
		repo:   repo,
		logger: slog.Default().With("component", "asset-service"),
		now:    time.Now,
	}
}

// CreateAsset validates and persists a new asset. Status defaults to
// offline when neither a status nor any telemetry is supplied; otherwise it
// is derived from the supplied signals.
func (s *AssetService) CreateAsset(ctx context.Context, input models.CreateAssetInput, actorID string) (*models.Asset, error) {
	asset, err := s.createAsset(ctx, input, actorID)
	recordOutcome("create", err)
	return asset, err
}

func (s *AssetService) createAsset(ctx context.Context, input models.CreateAssetInput, actorID string) (*models.Asset, error) {
	if input.OrganizationID == "" {
		return nil, terrors.New(terrors.ErrCodeInvalidInput, "organization is required")
	}
	if input.Name == "" {
		return nil, terrors.New(terrors.ErrCodeInvalidInput, "name is required")
	}
	if !input.Type.Valid() {
		return nil, terrors.Newf(terrors.ErrCodeInvalidInput, "invalid asset type: %s", input.Type)
	}
	if input.Status != "" && !input.Status.Valid() {
		return nil, terrors.Newf(terrors.ErrCodeInvalidInput, "invalid asset status: %s", input.Status)
	}
	if input.BatteryLevel != nil && (*input.BatteryLevel < 0 || *input.BatteryLevel > 100) {
		return nil, terrors.New(terrors.ErrCodeInvalidInput, "battery level must be between 0 and 100")
	}
	if err := s.checkActor(ctx, actorID); err != nil {
		return nil, err
	}
	if err := s.checkReference(ctx, repository.CollectionOrganizations, input.OrganizationID); err != nil {
		return nil, err
	}
	if err := s.checkOptionalReference(ctx, repository.CollectionBuildings, input.BuildingID); err != nil {
		return nil, err
	}
	if err := s.checkOptionalReference(ctx, repository.CollectionFloors, input.FloorID); err != nil {
		return nil, err
	}
	if err := s.checkOptionalReference(ctx, repository.CollectionDepartments, input.DepartmentID); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	asset := &models.Asset{
		ID:             uuid.NewString(),
		OrganizationID: input.OrganizationID,
		Name:           input.Name,
		Type:           input.Type,
		Status:         status.Derive(input.Status, input.BatteryLevel, input.LastSeen, now),
		BatteryLevel:   input.BatteryLevel,
		LastSeen:       input.LastSeen,
		BuildingID:     input.BuildingID,
		FloorID:        input.FloorID,
		DepartmentID:   input.DepartmentID,
		Location:       input.Location,
		MapCoordinates: input.MapCoordinates,
		Description:    input.Description,
		Tags:           models.SanitizeTags(input.Tags),
		IsActive:       true,
		CreatedBy:      actorID,
		UpdatedBy:      actorID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	created, err := s.repo.Insert(ctx, asset)
	if err != nil {
		return nil, err
	}

	s.logger.Info("asset created",
		"id", created.ID,
		"organization", created.OrganizationID,
		"type", created.Type,
		"status", created.Status,
	)
	return created, nil
}

// UpdateAsset applies a partial update. Only fields present in the patch
// are touched; status is re-derived even when the patch contains nothing
// telemetry-related, because elapsed time alone can flip freshness.
func (s *AssetService) UpdateAsset(ctx context.Context, id string, patch models.AssetPatch, actorID string) (*models.Asset, error) {
	asset, err := s.updateAsset(ctx, id, patch, actorID)
	recordOutcome("update", err)
	return asset, err
}

func (s *AssetService) updateAsset(ctx context.Context, id string, patch models.AssetPatch, actorID string) (*models.Asset, error) {
	if err := validatePatch(patch); err != nil {
		return nil, err
	}
	if err := s.checkActor(ctx, actorID); err != nil {
		return nil, err
	}

	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.BuildingID.IsSet() {
		if err := s.checkOptionalReference(ctx, repository.CollectionBuildings, patch.BuildingID.Value()); err != nil {
			return nil, err
		}
	}
	if patch.FloorID.IsSet() {
		if err := s.checkOptionalReference(ctx, repository.CollectionFloors, patch.FloorID.Value()); err != nil {
			return nil, err
		}
	}
	if patch.DepartmentID.IsSet() {
		if err := s.checkOptionalReference(ctx, repository.CollectionDepartments, patch.DepartmentID.Value()); err != nil {
			return nil, err
		}
	}

	now := s.now().UTC()
	fields := map[string]any{}

	if patch.Name.IsSet() {
		fields[repository.FieldName] = patch.Name.Value()
	}
	if patch.Type.IsSet() {
		fields[repository.FieldType] = patch.Type.Value()
	}
	if patch.BuildingID.IsSet() {
		fields[repository.FieldBuildingID] = patch.BuildingID.Value()
	}
	if patch.FloorID.IsSet() {
		fields[repository.FieldFloorID] = patch.FloorID.Value()
	}
	if patch.DepartmentID.IsSet() {
		fields[repository.FieldDepartmentID] = patch.DepartmentID.Value()
	}
	if patch.Location.IsSet() {
		fields[repository.FieldLocation] = patch.Location.Value()
	}
	if patch.MapCoordinates.IsSet() {
		fields[repository.FieldMapCoordinates] = patch.MapCoordinates.Value()
	}
	if patch.Description.IsSet() {
		fields[repository.FieldDescription] = patch.Description.Value()
	}
	if patch.Tags.IsSet() {
		fields[repository.FieldTags] = models.SanitizeTags(patch.Tags.Value())
	}

	// Status derives from the patched signals where present, and from the
	// persisted snapshot where not.
	battery := current.BatteryLevel
	if patch.BatteryLevel.IsSet() {
		battery = patch.BatteryLevel.Value()
		fields[repository.FieldBatteryLevel] = battery
	}
	lastSeen := current.LastSeen
	if patch.LastSeen.IsSet() {
		lastSeen = patch.LastSeen.Value()
		fields[repository.FieldLastSeen] = lastSeen
	}
	newStatus := status.Derive(current.Status, battery, lastSeen, now)
	fields[repository.FieldStatus] = newStatus
	fields[repository.FieldUpdatedBy] = actorID
	fields[repository.FieldUpdatedAt] = now

	updated, err := s.repo.UpdateFields(ctx, id, fields)
	if err != nil {
		return nil, err
	}
	s.logTransition(updated.ID, current.Status, newStatus)
	return updated, nil
}

// UpdateAssetLocation moves an asset and counts as a heartbeat: lastSeen is
// reset to now, so an offline asset comes back online immediately unless
// its battery is critical.
func (s *AssetService) UpdateAssetLocation(ctx context.Context, id string, patch models.LocationPatch, actorID string) (*models.Asset, error) {
	asset, err := s.updateAssetLocation(ctx, id, patch, actorID)
	recordOutcome("updateLocation", err)
	return asset, err
}

func (s *AssetService) updateAssetLocation(ctx context.Context, id string, patch models.LocationPatch, actorID string) (*models.Asset, error) {
	if err := s.checkActor(ctx, actorID); err != nil {
		return nil, err
	}

	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.BuildingID.IsSet() {
		if err := s.checkOptionalReference(ctx, repository.CollectionBuildings, patch.BuildingID.Value()); err != nil {
			return nil, err
		}
	}
	if patch.FloorID.IsSet() {
		if err := s.checkOptionalReference(ctx, repository.CollectionFloors, patch.FloorID.Value()); err != nil {
			return nil, err
		}
	}

	now := s.now().UTC()
	fields := map[string]any{}
	if patch.BuildingID.IsSet() {
		fields[repository.FieldBuildingID] = patch.BuildingID.Value()
	}
	if patch.FloorID.IsSet() {
		fields[repository.FieldFloorID] = patch.FloorID.Value()
	}
	if patch.Location.IsSet() {
		fields[repository.FieldLocation] = patch.Location.Value()
	}
	if patch.MapCoordinates.IsSet() {
		fields[repository.FieldMapCoordinates] = patch.MapCoordinates.Value()
	}

	// A location report is liveness evidence regardless of payload.
	newStatus := status.Derive(current.Status, current.BatteryLevel, &now, now)
	fields[repository.FieldLastSeen] = &now
	fields[repository.FieldStatus] = newStatus
	fields[repository.FieldUpdatedBy] = actorID
	fields[repository.FieldUpdatedAt] = now

	updated, err := s.repo.UpdateFields(ctx, id, fields)
	if err != nil {
		return nil, err
	}
	metrics.RecordHeartbeat("location")
	s.logTransition(updated.ID, current.Status, newStatus)
	return updated, nil
}

// UpdateAssetBattery records a battery report, which is also a heartbeat.
func (s *AssetService) UpdateAssetBattery(ctx context.Context, id string, batteryLevel int, actorID string) (*models.Asset, error) {
	asset, err := s.updateAssetBattery(ctx, id, batteryLevel, actorID)
	recordOutcome("updateBattery", err)
	return asset, err
}

func (s *AssetService) updateAssetBattery(ctx context.Context, id string, batteryLevel int, actorID string) (*models.Asset, error) {
	if batteryLevel < 0 || batteryLevel > 100 {
		return nil, terrors.Newf(terrors.ErrCodeInvalidInput, "battery level must be between 0 and 100, got %d", batteryLevel)
	}
	if err := s.checkActor(ctx, actorID); err != nil {
		return nil, err
	}

	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	newStatus := status.Derive(current.Status, &batteryLevel, &now, now)
	fields := map[string]any{
		repository.FieldBatteryLevel: &batteryLevel,
		repository.FieldLastSeen:     &now,
		repository.FieldStatus:       newStatus,
		repository.FieldUpdatedBy:    actorID,
		repository.FieldUpdatedAt:    now,
	}

	updated, err := s.repo.UpdateFields(ctx, id, fields)
	if err != nil {
		return nil, err
	}
	metrics.RecordHeartbeat("battery")
	s.logTransition(updated.ID, current.Status, newStatus)
	return updated, nil
}

// DeactivateAsset soft-deletes an asset. Status is left untouched so the
// last-known operational state survives for historical reporting; the asset
// simply drops out of active-population listings and aggregates.
func (s *AssetService) DeactivateAsset(ctx context.Context, id string, actorID string) (*models.Asset, error) {
	asset, err := s.deactivateAsset(ctx, id, actorID)
	recordOutcome("deactivate", err)
	return asset, err
}

func (s *AssetService) deactivateAsset(ctx context.Context, id string, actorID string) (*models.Asset, error) {
	if err := s.checkActor(ctx, actorID); err != nil {
		return nil, err
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	fields := map[string]any{
		repository.FieldIsActive:  false,
		repository.FieldUpdatedBy: actorID,
		repository.FieldUpdatedAt: now,
	}
	updated, err := s.repo.UpdateFields(ctx, id, fields)
	if err != nil {
		return nil, err
	}
	s.logger.Info("asset deactivated", "id", id, "actor", actorID)
	return updated, nil
}

// GetAsset returns a single asset by id.
func (s *AssetService) GetAsset(ctx context.Context, id string) (*models.Asset, error) {
	return s.repo.FindByID(ctx, id)
}

// ListAssets returns a page of assets plus the total match count. When the
// filter does not mention isActive, only the active population is listed.
func (s *AssetService) ListAssets(ctx context.Context, filter repository.AssetFilter, page, limit int64) ([]*models.Asset, int64, error) {
	if filter.IsActive == nil {
		active := true
		filter.IsActive = &active
	}
	if page < 1 {
		page = 1
	}
	opts := repository.ListOptions{
		Skip:     (page - 1) * limit,
		Limit:    limit,
		SortBy:   "createdAt",
		SortDesc: true,
	}
	return s.repo.Find(ctx, filter, opts)
}

func validatePatch(patch models.AssetPatch) error {
	if patch.Name.IsSet() && patch.Name.Value() == "" {
		return terrors.New(terrors.ErrCodeInvalidInput, "name cannot be empty")
	}
	if patch.Type.IsSet() && !patch.Type.Value().Valid() {
		return terrors.Newf(terrors.ErrCodeInvalidInput, "invalid asset type: %s", patch.Type.Value())
	}
	if patch.BatteryLevel.IsSet() {
		if level := patch.BatteryLevel.Value(); level != nil && (*level < 0 || *level > 100) {
			return terrors.Newf(terrors.ErrCodeInvalidInput, "battery level must be between 0 and 100, got %d", *level)
		}
	}
	return nil
}

func (s *AssetService) checkActor(ctx context.Context, actorID string) error {
	if actorID == "" {
		return terrors.New(terrors.ErrCodeInvalidInput, "actor is required")
	}
	return s.checkReference(ctx, repository.CollectionUsers, actorID)
}

func (s *AssetService) checkReference(ctx context.Context, collection, id string) error {
	exists, err := s.repo.ExistsByID(ctx, collection, id)
	if err != nil {
		return err
	}
	if !exists {
		return terrors.Newf(terrors.ErrCodeReferenceNotFound, "referenced %s does not exist: %s", collection, id).
			WithDetail("collection", collection).
			WithDetail("id", id)
	}
	return nil
}

func (s *AssetService) checkOptionalReference(ctx context.Context, collection string, id *string) error {
	if id == nil {
		return nil
	}
	return s.checkReference(ctx, collection, *id)
}

func (s *AssetService) logTransition(id string, from, to models.AssetStatus) {
	if from == to {
		return
	}
	metrics.RecordStatusTransition(string(from), string(to))
	s.logger.Info("asset status changed", "id", id, "from", from, "to", to)
}

func recordOutcome(operation string, err error) {
	if err != nil {
		metrics.RecordWrite(operation, "error")
		metrics.RecordError("asset-service", string(terrors.GetCode(err)), operation)
		return
	}
	metrics.RecordWrite(operation, "success")
}
