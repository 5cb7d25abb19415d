package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"trackd.sh/internal/models"
)

func TestBuildMongoFilter(t *testing.T) {
	active := true

	tests := []struct {
		name     string
		filter   AssetFilter
		expected bson.M
	}{
		{
			name:     "empty filter matches everything",
			filter:   AssetFilter{},
			expected: bson.M{},
		},
		{
			name:   "scoping fields map to equality",
			filter: AssetFilter{OrganizationID: "org-1", BuildingID: "b-1", FloorID: "f-1", DepartmentID: "d-1"},
			expected: bson.M{
				"organizationId": "org-1",
				"buildingId":     "b-1",
				"floorId":        "f-1",
				"departmentId":   "d-1",
			},
		},
		{
			name:     "single type avoids $in",
			filter:   AssetFilter{Types: []models.AssetType{models.AssetTypeDevice}},
			expected: bson.M{"type": models.AssetTypeDevice},
		},
		{
			name:   "multiple types use $in",
			filter: AssetFilter{Types: []models.AssetType{models.AssetTypeDevice, models.AssetTypeStaff}},
			expected: bson.M{
				"type": bson.M{"$in": []models.AssetType{models.AssetTypeDevice, models.AssetTypeStaff}},
			},
		},
		{
			name:     "single status avoids $in",
			filter:   AssetFilter{Statuses: []models.AssetStatus{models.StatusLowBattery}},
			expected: bson.M{"status": models.StatusLowBattery},
		},
		{
			name:     "isActive maps to equality",
			filter:   AssetFilter{IsActive: &active},
			expected: bson.M{"isActive": true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, buildMongoFilter(tt.filter))
		})
	}
}

func TestBuildMongoFilterSearch(t *testing.T) {
	query := buildMongoFilter(AssetFilter{Search: "pump (icu)"})

	or, ok := query["$or"].(bson.A)
	require.True(t, ok, "expected $or clause")
	require.Len(t, or, 4)

	first, ok := or[0].(bson.M)
	require.True(t, ok)
	pattern, ok := first[FieldName].(primitive.Regex)
	require.True(t, ok, "expected a regex match on name")

	// Regex metacharacters in user input are escaped.
	assert.Equal(t, `pump \(icu\)`, pattern.Pattern)
	assert.Equal(t, "i", pattern.Options)
}
