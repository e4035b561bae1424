package persistence

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/homeops/backend/internal/domain/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockReportRepository creates a GormReportRepository with a mocked SQL connection
func newMockReportRepository(t *testing.T) (*GormReportRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormReportRepository(gormDB), mock, mockDB
}

func TestGormReportRepository_PortfolioSummary(t *testing.T) {
	t.Run("aggregates by status", func(t *testing.T) {
		repo, mock, mockDB := newMockReportRepository(t)
		defer mockDB.Close()

		rows := sqlmock.NewRows([]string{"status", "count", "total_value"}).
			AddRow("ACTIVE", 3, "45000.00").
			AddRow("CANCELLED", 1, "8000.00").
			AddRow("COMPLETED", 2, "30000.00").
			AddRow("DRAFT", 4, "12000.00")

		mock.ExpectQuery(`SELECT status, COUNT\(\*\) as count, COALESCE\(SUM\(total_cost\), 0\) as total_value FROM "projects" GROUP BY .* ORDER BY status ASC`).
			WillReturnRows(rows)

		summary, err := repo.PortfolioSummary(context.Background())
		require.NoError(t, err)

		assert.EqualValues(t, 10, summary.TotalProjects)
		assert.True(t, dec("95000.00").Equal(summary.TotalValue))
		// Pipeline covers DRAFT and ACTIVE only
		assert.True(t, dec("57000.00").Equal(summary.PipelineValue))
		require.Len(t, summary.ByStatus, 4)
		assert.Equal(t, "ACTIVE", summary.ByStatus[0].Status)
		assert.EqualValues(t, 3, summary.ByStatus[0].Count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty portfolio", func(t *testing.T) {
		repo, mock, mockDB := newMockReportRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT status, COUNT\(\*\) as count.*FROM "projects"`).
			WillReturnRows(sqlmock.NewRows([]string{"status", "count", "total_value"}))

		summary, err := repo.PortfolioSummary(context.Background())
		require.NoError(t, err)

		assert.EqualValues(t, 0, summary.TotalProjects)
		assert.True(t, summary.TotalValue.IsZero())
		assert.Empty(t, summary.ByStatus)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormReportRepository_TopDevices(t *testing.T) {
	t.Run("applies default limit", func(t *testing.T) {
		repo, mock, mockDB := newMockReportRepository(t)
		defer mockDB.Close()

		deviceID := uuid.New()
		rows := sqlmock.NewRows([]string{"device_id", "device_name", "device_code", "total_quantity", "total_value"}).
			AddRow(deviceID, "Ceiling Speaker", "SPK-01", 42, "6300.00")

		mock.ExpectQuery(`SELECT .* FROM "line_items" li JOIN locations l ON l\.id = li\.location_id JOIN projects p ON p\.id = l\.aggregate_id WHERE l\.aggregate_kind = \$1 GROUP BY .* ORDER BY total_value DESC LIMIT .*`).
			WithArgs("PROJECT", DefaultTopDevicesLimit).
			WillReturnRows(rows)

		devices, err := repo.TopDevices(context.Background(), report.TopDevicesFilter{})
		require.NoError(t, err)

		require.Len(t, devices, 1)
		assert.Equal(t, deviceID, devices[0].DeviceID)
		assert.Equal(t, "SPK-01", devices[0].DeviceCode)
		assert.EqualValues(t, 42, devices[0].TotalQuantity)
		assert.True(t, dec("6300.00").Equal(devices[0].TotalValue))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("filters by project status", func(t *testing.T) {
		repo, mock, mockDB := newMockReportRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT .* FROM "line_items" li .* WHERE l\.aggregate_kind = \$1 AND p\.status = \$2 GROUP BY .* LIMIT .*`).
			WithArgs("PROJECT", "ACTIVE", 5).
			WillReturnRows(sqlmock.NewRows([]string{"device_id", "device_name", "device_code", "total_quantity", "total_value"}))

		devices, err := repo.TopDevices(context.Background(), report.TopDevicesFilter{Limit: 5, Status: "ACTIVE"})
		require.NoError(t, err)
		assert.Empty(t, devices)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
