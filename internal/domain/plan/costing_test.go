package plan

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// testDevices returns a small catalog: A @ 1000, B @ 5000, C @ 2500
func testDevices() (map[uuid.UUID]DeviceInfo, []uuid.UUID) {
	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	devices := map[uuid.UUID]DeviceInfo{
		ids[0]: {ID: ids[0], Name: "Device A", Code: "DEV-A", SellingPrice: dec("1000"), IsActive: true},
		ids[1]: {ID: ids[1], Name: "Device B", Code: "DEV-B", SellingPrice: dec("5000"), IsActive: true},
		ids[2]: {ID: ids[2], Name: "Device C", Code: "DEV-C", SellingPrice: dec("2500"), IsActive: true},
	}
	return devices, ids
}

// livingRoomTree builds the reference tree:
// "Living Room" with A x3 @ 1000 and B x1 @ 5000, plus sub-location
// "TV Nook" with C x2 @ 2500.
func livingRoomTree(t *testing.T) *Tree {
	t.Helper()
	devices, ids := testDevices()

	tree, err := BuildTree(uuid.New(), KindBuildSystem, []LocationInput{
		{
			Name: "Living Room",
			Devices: []LineItemInput{
				{DeviceID: ids[0], Quantity: 3},
				{DeviceID: ids[1], Quantity: 1},
			},
			SubLocations: []LocationInput{
				{
					Name: "TV Nook",
					Devices: []LineItemInput{
						{DeviceID: ids[2], Quantity: 2},
					},
				},
			},
		},
	}, devices)
	require.NoError(t, err)
	return tree
}

func TestLocationAndSubtreeCost(t *testing.T) {
	tree := livingRoomTree(t)
	require.Len(t, tree.Roots, 1)
	living := tree.Roots[0]

	t.Run("location cost covers own items only", func(t *testing.T) {
		assert.True(t, LocationCost(living).Equal(dec("8000")), "got %s", LocationCost(living))
	})

	t.Run("subtree cost includes children recursively", func(t *testing.T) {
		assert.True(t, SubtreeCost(living).Equal(dec("13000")), "got %s", SubtreeCost(living))
	})

	t.Run("tree total equals sum over roots", func(t *testing.T) {
		assert.True(t, TreeTotal(tree).Equal(dec("13000")))
	})

	t.Run("device counts sum quantities not items", func(t *testing.T) {
		assert.Equal(t, 4, DeviceCount(living))
		assert.Equal(t, 6, SubtreeDeviceCount(living))
		assert.Equal(t, 6, TreeDeviceCount(tree))
	})
}

func TestTreeTotalEmptyTree(t *testing.T) {
	empty := &Tree{}
	assert.True(t, TreeTotal(empty).IsZero())
	assert.Equal(t, 0, TreeDeviceCount(empty))

	var nilTree *Tree
	assert.True(t, TreeTotal(nilTree).IsZero())
}

func TestFlattenThenSumEqualsRecursiveSum(t *testing.T) {
	tree := livingRoomTree(t)

	flat := decimal.Zero
	for loc := range tree.Flatten() {
		flat = flat.Add(LocationCost(loc))
	}

	assert.True(t, flat.Equal(TreeTotal(tree)), "flatten-then-sum %s vs recursive %s", flat, TreeTotal(tree))
}

func TestReconcile(t *testing.T) {
	tree := livingRoomTree(t)

	t.Run("within epsilon reports no mismatch", func(t *testing.T) {
		assert.Nil(t, Reconcile(tree, dec("12999.99"), ReconcileEpsilon))
		assert.Nil(t, Reconcile(tree, dec("13000.00"), ReconcileEpsilon))
		assert.Nil(t, Reconcile(tree, dec("13000.01"), ReconcileEpsilon))
	})

	t.Run("beyond epsilon reports expected, actual and delta", func(t *testing.T) {
		m := Reconcile(tree, dec("12990.00"), ReconcileEpsilon)
		require.NotNil(t, m)
		assert.True(t, m.Expected.Equal(dec("13000")))
		assert.True(t, m.Actual.Equal(dec("12990.00")))
		assert.True(t, m.Delta.Equal(dec("10.00")), "delta %s", m.Delta)
	})

	t.Run("never mutates the cached value", func(t *testing.T) {
		cached := dec("1.00")
		m := Reconcile(tree, cached, ReconcileEpsilon)
		require.NotNil(t, m)
		assert.True(t, cached.Equal(dec("1.00")))
	})
}

func TestSnapshotPricesNotLiveCatalogReads(t *testing.T) {
	devices, ids := testDevices()
	tree, err := BuildTree(uuid.New(), KindProject, []LocationInput{
		{Name: "Garage", Devices: []LineItemInput{{DeviceID: ids[0], Quantity: 2}}},
	}, devices)
	require.NoError(t, err)

	// A later catalog price change must not affect the built tree
	info := devices[ids[0]]
	info.SellingPrice = dec("9999")
	devices[ids[0]] = info

	assert.True(t, TreeTotal(tree).Equal(dec("2000")))
}

func TestExplicitUnitPriceOverridesCatalog(t *testing.T) {
	devices, ids := testDevices()
	discounted := dec("800")
	tree, err := BuildTree(uuid.New(), KindProject, []LocationInput{
		{Name: "Garage", Devices: []LineItemInput{{DeviceID: ids[0], Quantity: 3, UnitPrice: &discounted}}},
	}, devices)
	require.NoError(t, err)

	assert.True(t, TreeTotal(tree).Equal(dec("2400")))
}
