package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trackd.sh/internal/models"
	"trackd.sh/internal/repository"
)

func TestGetAssetStatsEmptyPopulation(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	svc := NewStatsService(store)

	stats, err := svc.GetAssetStats(ctx, StatsFilter{})
	require.NoError(t, err)

	assert.Equal(t, int64(0), stats.Total)
	assert.Equal(t, int64(0), stats.Online)
	assert.Equal(t, int64(0), stats.Offline)
	assert.Equal(t, int64(0), stats.LowBattery)
	// Every known type is present even when its count is zero.
	for _, typ := range models.AssetTypes {
		count, ok := stats.ByType[typ]
		assert.True(t, ok, "missing type bucket %s", typ)
		assert.Equal(t, int64(0), count)
	}
}

func TestGetAssetStatsCountsByStatusAndType(t *testing.T) {
	ctx := context.Background()
	asvc, store := newTestService(t)
	svc := NewStatsService(store)

	recent := testNow.Add(-time.Minute)
	stale := testNow.Add(-time.Hour)

	fixtures := []struct {
		name     string
		typ      models.AssetType
		battery  *int
		lastSeen *time.Time
	}{
		{name: "pump 1", typ: models.AssetTypeEquipment, battery: intPtr(80), lastSeen: &recent}, // online
		{name: "pump 2", typ: models.AssetTypeEquipment, battery: intPtr(15), lastSeen: &recent}, // low-battery
		{name: "scanner", typ: models.AssetTypeDevice, lastSeen: &stale},                         // offline
		{name: "badge", typ: models.AssetTypeStaff, lastSeen: &recent},                           // online
	}
	for _, f := range fixtures {
		input := models.CreateAssetInput{
			OrganizationID: "org-1",
			Name:           f.name,
			Type:           f.typ,
			BatteryLevel:   f.battery,
			LastSeen:       f.lastSeen,
		}
		_, err := asvc.CreateAsset(ctx, input, testActor)
		require.NoError(t, err)
	}

	stats, err := svc.GetAssetStats(ctx, StatsFilter{OrganizationID: "org-1"})
	require.NoError(t, err)

	assert.Equal(t, int64(4), stats.Total)
	assert.Equal(t, int64(2), stats.Online)
	assert.Equal(t, int64(1), stats.Offline)
	assert.Equal(t, int64(1), stats.LowBattery)
	assert.Equal(t, stats.Total, stats.Online+stats.Offline+stats.LowBattery)

	assert.Equal(t, int64(2), stats.ByType[models.AssetTypeEquipment])
	assert.Equal(t, int64(1), stats.ByType[models.AssetTypeDevice])
	assert.Equal(t, int64(1), stats.ByType[models.AssetTypeStaff])
	assert.Equal(t, int64(0), stats.ByType[models.AssetTypePersonnel])
}

func TestGetAssetStatsExcludesDeactivated(t *testing.T) {
	ctx := context.Background()
	asvc, store := newTestService(t)
	svc := NewStatsService(store)

	recent := testNow.Add(-time.Minute)
	input := models.CreateAssetInput{
		OrganizationID: "org-1",
		Name:           "pump",
		Type:           models.AssetTypeEquipment,
		LastSeen:       &recent,
	}
	created, err := asvc.CreateAsset(ctx, input, testActor)
	require.NoError(t, err)

	stats, err := svc.GetAssetStats(ctx, StatsFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Total)

	_, err = asvc.DeactivateAsset(ctx, created.ID, testActor)
	require.NoError(t, err)

	stats, err = svc.GetAssetStats(ctx, StatsFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.Total)
	assert.Equal(t, int64(0), stats.Online)
}

func TestGetAssetStatsScopedToOrganization(t *testing.T) {
	ctx := context.Background()
	asvc, store := newTestService(t)
	store.AddReference(repository.CollectionOrganizations, "org-2")
	svc := NewStatsService(store)

	for _, org := range []string{"org-1", "org-1", "org-2"} {
		input := models.CreateAssetInput{
			OrganizationID: org,
			Name:           "asset in " + org,
			Type:           models.AssetTypeDevice,
		}
		_, err := asvc.CreateAsset(ctx, input, testActor)
		require.NoError(t, err)
	}

	stats, err := svc.GetAssetStats(ctx, StatsFilter{OrganizationID: "org-1"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Total)

	stats, err = svc.GetAssetStats(ctx, StatsFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Total)
}
