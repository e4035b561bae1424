package proposal

import (
	"testing"

	"github.com/google/uuid"
	"github.com/homeops/backend/internal/domain/partner"
	"github.com/homeops/backend/internal/domain/plan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDocumentProject(t *testing.T) *plan.Project {
	t.Helper()

	speakerID := uuid.New()
	panelID := uuid.New()
	devices := map[uuid.UUID]plan.DeviceInfo{
		speakerID: {ID: speakerID, Name: "Ceiling Speaker", Code: "SPK-01", SellingPrice: dec("150.00"), IsActive: true},
		panelID:   {ID: panelID, Name: "Control Panel", Code: "PNL-01", SellingPrice: dec("1200.00"), IsActive: true},
	}

	p, err := plan.NewProject("Harbor House", "Whole-home audio", uuid.New(), "Jordan Reeves", nil)
	require.NoError(t, err)

	tree, err := plan.BuildTree(p.ID, plan.KindProject, []plan.LocationInput{
		{
			Name: "Ground Floor",
			Devices: []plan.LineItemInput{
				{DeviceID: speakerID, Quantity: 2},
			},
			SubLocations: []plan.LocationInput{
				{
					Name: "Living Room",
					Devices: []plan.LineItemInput{
						{DeviceID: panelID, Quantity: 1},
						{DeviceID: speakerID, Quantity: 4},
					},
				},
			},
		},
	}, devices)
	require.NoError(t, err)
	require.NoError(t, p.ReplaceTree(tree))

	return p
}

func TestBuildDocument(t *testing.T) {
	p := newDocumentProject(t)
	client, err := partner.NewClient("Jordan Reeves", "jordan@example.com", "555-0134", "12 Dock Road")
	require.NoError(t, err)

	doc := BuildDocument(p, client, CompanyInfo{Name: "HomeOps Installations"})

	assert.Equal(t, "Harbor House", doc.ProjectName)
	assert.Equal(t, "Jordan Reeves", doc.Client.Name)
	assert.Equal(t, "jordan@example.com", doc.Client.Email)
	assert.True(t, doc.TotalCost.Equal(dec("2100.00")))

	require.Len(t, doc.Sections, 2)

	ground := doc.Sections[0]
	assert.Equal(t, "Ground Floor", ground.Name)
	assert.Equal(t, 0, ground.Depth)
	assert.True(t, ground.Subtotal.Equal(dec("2100.00")), "section subtotal includes sub-locations")
	require.Len(t, ground.Items, 1)
	assert.Equal(t, "SPK-01", ground.Items[0].DeviceCode)
	assert.True(t, ground.Items[0].Amount.Equal(dec("300.00")))

	living := doc.Sections[1]
	assert.Equal(t, "Living Room", living.Name)
	assert.Equal(t, 1, living.Depth)
	assert.True(t, living.Subtotal.Equal(dec("1800.00")))
	assert.Len(t, living.Items, 2)
}

func TestBuildDocument_WithoutClientRecord(t *testing.T) {
	p := newDocumentProject(t)

	doc := BuildDocument(p, nil, CompanyInfo{Name: "HomeOps Installations"})

	assert.Equal(t, "Jordan Reeves", doc.Client.Name)
	assert.Empty(t, doc.Client.Email)
}
