package persistence

import (
	"testing"

	"github.com/google/uuid"
	"github.com/homeops/backend/internal/domain/plan"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB creates an in-memory SQLite database with all tables migrated
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&plan.BuildSystem{},
		&plan.Project{},
		&plan.Location{},
		&plan.LineItem{},
	)
	require.NoError(t, err)

	return db
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// testCatalog returns a small device lookup for building trees in tests
func testCatalog() (map[uuid.UUID]plan.DeviceInfo, []uuid.UUID) {
	speaker := uuid.New()
	panel := uuid.New()

	devices := map[uuid.UUID]plan.DeviceInfo{
		speaker: {ID: speaker, Name: "Ceiling Speaker", Code: "SPK-01", SellingPrice: dec("150.00"), IsActive: true},
		panel:   {ID: panel, Name: "Control Panel", Code: "PNL-01", SellingPrice: dec("1200.00"), IsActive: true},
	}
	return devices, []uuid.UUID{speaker, panel}
}

// buildTestTree builds a two-level tree: root with one item plus a child
// location with two items. Total: 2*150 + (1*1200 + 4*150) = 2100.
func buildTestTree(t *testing.T, aggregateID uuid.UUID, kind plan.AggregateKind) *plan.Tree {
	t.Helper()

	devices, ids := testCatalog()
	speaker, panel := ids[0], ids[1]

	tree, err := plan.BuildTree(aggregateID, kind, []plan.LocationInput{
		{
			Name: "Ground Floor",
			Devices: []plan.LineItemInput{
				{DeviceID: speaker, Quantity: 2},
			},
			SubLocations: []plan.LocationInput{
				{
					Name: "Living Room",
					Devices: []plan.LineItemInput{
						{DeviceID: panel, Quantity: 1},
						{DeviceID: speaker, Quantity: 4},
					},
				},
			},
		},
	}, devices)
	require.NoError(t, err)
	return tree
}

func countRows(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}
