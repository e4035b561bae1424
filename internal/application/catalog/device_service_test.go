package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/homeops/backend/internal/domain/catalog"
	"github.com/homeops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockDeviceRepository is a mock implementation of catalog.DeviceRepository
type MockDeviceRepository struct {
	mock.Mock
}

func (m *MockDeviceRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Device, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Device), args.Error(1)
}

func (m *MockDeviceRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Device, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]catalog.Device), args.Error(1)
}

func (m *MockDeviceRepository) FindByCode(ctx context.Context, code string) (*catalog.Device, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Device), args.Error(1)
}

func (m *MockDeviceRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Device, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]catalog.Device), args.Error(1)
}

func (m *MockDeviceRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDeviceRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

func (m *MockDeviceRepository) Save(ctx context.Context, device *catalog.Device) error {
	args := m.Called(ctx, device)
	return args.Error(0)
}

func (m *MockDeviceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestDeviceService_Create(t *testing.T) {
	t.Run("creates device with prices", func(t *testing.T) {
		repo := new(MockDeviceRepository)
		service := NewDeviceService(repo)

		repo.On("ExistsByCode", mock.Anything, "SPK-01").Return(false, nil)
		repo.On("Save", mock.Anything, mock.AnythingOfType("*catalog.Device")).Return(nil)

		cost := dec("100.00")
		selling := dec("150.00")
		resp, err := service.Create(context.Background(), CreateDeviceRequest{
			Code:         "SPK-01",
			Name:         "Ceiling Speaker",
			Category:     "audio",
			Brand:        "Sonos",
			CostPrice:    &cost,
			SellingPrice: &selling,
		})

		require.NoError(t, err)
		assert.Equal(t, "SPK-01", resp.Code)
		assert.Equal(t, "active", resp.Status)
		assert.True(t, resp.SellingPrice.Equal(dec("150.00")))
		repo.AssertExpectations(t)
	})

	t.Run("rejects duplicate code", func(t *testing.T) {
		repo := new(MockDeviceRepository)
		service := NewDeviceService(repo)

		repo.On("ExistsByCode", mock.Anything, "SPK-01").Return(true, nil)

		_, err := service.Create(context.Background(), CreateDeviceRequest{
			Code: "SPK-01",
			Name: "Ceiling Speaker",
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "ALREADY_EXISTS", domainErr.Code)
		repo.AssertNotCalled(t, "Save")
	})

	t.Run("rejects negative selling price", func(t *testing.T) {
		repo := new(MockDeviceRepository)
		service := NewDeviceService(repo)

		repo.On("ExistsByCode", mock.Anything, "SPK-01").Return(false, nil)

		selling := dec("-1.00")
		_, err := service.Create(context.Background(), CreateDeviceRequest{
			Code:         "SPK-01",
			Name:         "Ceiling Speaker",
			SellingPrice: &selling,
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_PRICE", domainErr.Code)
	})
}

func TestDeviceService_Update(t *testing.T) {
	repo := new(MockDeviceRepository)
	service := NewDeviceService(repo)

	device, err := catalog.NewDevice("SPK-01", "Ceiling Speaker", "audio", "Sonos", "One")
	require.NoError(t, err)

	repo.On("FindByID", mock.Anything, device.ID).Return(device, nil)
	repo.On("Save", mock.Anything, device).Return(nil)

	name := "Ceiling Speaker v2"
	selling := dec("175.00")
	resp, err := service.Update(context.Background(), device.ID, UpdateDeviceRequest{
		Name:         &name,
		SellingPrice: &selling,
	})

	require.NoError(t, err)
	assert.Equal(t, "Ceiling Speaker v2", resp.Name)
	assert.Equal(t, "Sonos", resp.Brand, "unset fields keep their values")
	assert.True(t, resp.SellingPrice.Equal(dec("175.00")))
	repo.AssertExpectations(t)
}

func TestDeviceService_StatusTransitions(t *testing.T) {
	repo := new(MockDeviceRepository)
	service := NewDeviceService(repo)

	device, err := catalog.NewDevice("SPK-01", "Ceiling Speaker", "audio", "Sonos", "One")
	require.NoError(t, err)

	repo.On("FindByID", mock.Anything, device.ID).Return(device, nil)
	repo.On("Save", mock.Anything, device).Return(nil)

	resp, err := service.Deactivate(context.Background(), device.ID)
	require.NoError(t, err)
	assert.Equal(t, "inactive", resp.Status)

	resp, err = service.Activate(context.Background(), device.ID)
	require.NoError(t, err)
	assert.Equal(t, "active", resp.Status)

	resp, err = service.Discontinue(context.Background(), device.ID)
	require.NoError(t, err)
	assert.Equal(t, "discontinued", resp.Status)

	// Discontinuing twice is a domain error
	_, err = service.Discontinue(context.Background(), device.ID)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_STATE", domainErr.Code)
}

func TestDeviceService_List(t *testing.T) {
	repo := new(MockDeviceRepository)
	service := NewDeviceService(repo)

	device, err := catalog.NewDevice("SPK-01", "Ceiling Speaker", "audio", "Sonos", "One")
	require.NoError(t, err)

	repo.On("FindAll", mock.Anything, mock.MatchedBy(func(f shared.Filter) bool {
		return f.Page == 1 && f.PageSize == 20 && f.Filters["status"] == "active"
	})).Return([]catalog.Device{*device}, nil)
	repo.On("Count", mock.Anything, mock.Anything).Return(int64(1), nil)

	devices, total, err := service.List(context.Background(), DeviceListFilter{Status: "active"})

	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, devices, 1)
	assert.Equal(t, "SPK-01", devices[0].Code)
}

func TestDeviceService_GetByID_NotFound(t *testing.T) {
	repo := new(MockDeviceRepository)
	service := NewDeviceService(repo)

	id := uuid.New()
	repo.On("FindByID", mock.Anything, id).Return(nil, shared.ErrNotFound)

	_, err := service.GetByID(context.Background(), id)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
