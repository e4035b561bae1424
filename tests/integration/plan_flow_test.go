// Package integration exercises the full HTTP stack against an in-memory
// database: real repositories, services, handlers, and router.
package integration

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalogapp "github.com/homeops/backend/internal/application/catalog"
	partnerapp "github.com/homeops/backend/internal/application/partner"
	planapp "github.com/homeops/backend/internal/application/plan"
	proposalapp "github.com/homeops/backend/internal/application/proposal"
	reportapp "github.com/homeops/backend/internal/application/report"
	"github.com/homeops/backend/internal/infrastructure/cache"
	"github.com/homeops/backend/internal/infrastructure/persistence"
	"github.com/homeops/backend/internal/infrastructure/proposal"
	"github.com/homeops/backend/internal/interfaces/http/handler"
	"github.com/homeops/backend/internal/interfaces/http/middleware"
	"github.com/homeops/backend/internal/interfaces/http/router"
	"github.com/homeops/backend/tests/testutil"
)

// stubRenderer avoids launching a browser in tests
type stubRenderer struct{}

func (stubRenderer) Render(ctx context.Context, req *proposal.RenderRequest) (*proposal.RenderResult, error) {
	return &proposal.RenderResult{
		PDFData:        []byte("%PDF-1.7 integration"),
		PageCount:      1,
		RenderDuration: time.Millisecond,
	}, nil
}

func (stubRenderer) Close() error { return nil }

func newTestServer(t *testing.T) *gin.Engine {
	t.Helper()

	db := testutil.NewSQLiteDB(t)

	deviceRepo := persistence.NewGormDeviceRepository(db)
	clientRepo := persistence.NewGormClientRepository(db)
	buildSystemRepo := persistence.NewGormBuildSystemRepository(db)
	projectRepo := persistence.NewGormProjectRepository(db)
	reportRepo := persistence.NewGormReportRepository(db)

	store := cache.NewInMemoryIdempotencyStore()
	t.Cleanup(func() { _ = store.Close() })

	deviceService := catalogapp.NewDeviceService(deviceRepo)
	clientService := partnerapp.NewClientService(clientRepo)
	buildSystemService := planapp.NewBuildSystemService(buildSystemRepo, deviceRepo, store, nil)
	projectService := planapp.NewProjectService(projectRepo, buildSystemRepo, deviceRepo, clientRepo, store, nil)
	proposalService := proposalapp.NewProposalService(projectRepo, clientRepo, stubRenderer{}, proposal.CompanyInfo{
		Name:    "HomeOps Installations",
		Address: "12 Harbor Way",
	}, nil)
	reportService := reportapp.NewReportService(reportRepo)

	deviceHandler := handler.NewDeviceHandler(deviceService)
	clientHandler := handler.NewClientHandler(clientService)
	buildSystemHandler := handler.NewBuildSystemHandler(buildSystemService)
	projectHandler := handler.NewProjectHandler(projectService, proposalService)
	reportHandler := handler.NewReportHandler(reportService)

	middleware.SetupValidator()

	engine := gin.New()
	engine.Use(middleware.RequestID())

	r := router.NewRouter(engine)

	catalogRoutes := router.NewDomainGroup("catalog", "/catalog")
	catalogRoutes.POST("/devices", deviceHandler.Create)
	catalogRoutes.GET("/devices", deviceHandler.List)
	catalogRoutes.GET("/devices/:id", deviceHandler.Get)

	partnerRoutes := router.NewDomainGroup("partners", "/partners")
	partnerRoutes.POST("/clients", clientHandler.Create)
	partnerRoutes.GET("/clients/:id", clientHandler.Get)

	planRoutes := router.NewDomainGroup("plan", "/plan")
	planRoutes.POST("/build-systems", buildSystemHandler.Create)
	planRoutes.GET("/build-systems/:id", buildSystemHandler.Get)
	planRoutes.POST("/build-systems/:id/clone", buildSystemHandler.Clone)
	planRoutes.POST("/projects", projectHandler.Create)
	planRoutes.GET("/projects", projectHandler.List)
	planRoutes.GET("/projects/:id", projectHandler.Get)
	planRoutes.PUT("/projects/:id", projectHandler.Update)
	planRoutes.PUT("/projects/:id/status", projectHandler.UpdateStatus)
	planRoutes.POST("/projects/:id/import", projectHandler.Import)
	planRoutes.GET("/projects/:id/proposal", projectHandler.Proposal)

	reportRoutes := router.NewDomainGroup("reports", "/reports")
	reportRoutes.GET("/portfolio", reportHandler.Portfolio)
	reportRoutes.GET("/top-devices", reportHandler.TopDevices)

	r.Register(catalogRoutes).
		Register(partnerRoutes).
		Register(planRoutes).
		Register(reportRoutes)
	r.Setup()

	return engine
}

func TestPlanLifecycleFlow(t *testing.T) {
	engine := newTestServer(t)

	// Seed the catalog
	var speaker catalogapp.DeviceResponse
	w := testutil.PerformRequest(t, engine, "POST", "/api/v1/catalog/devices", gin.H{
		"code":          "SPK-100",
		"name":          "Ceiling Speaker",
		"category":      "audio",
		"brand":         "Acme",
		"selling_price": "150.00",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	testutil.DecodeData(t, w, &speaker)

	// Register the client
	var client partnerapp.ClientResponse
	w = testutil.PerformRequest(t, engine, "POST", "/api/v1/partners/clients", gin.H{
		"name":  "Harbor House LLC",
		"email": "owner@harborhouse.example",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	testutil.DecodeData(t, w, &client)

	// Build a reusable template: 4 speakers, 600 total
	var template planapp.BuildSystemResponse
	w = testutil.PerformRequest(t, engine, "POST", "/api/v1/plan/build-systems", gin.H{
		"name": "Audio Zone",
		"locations": []gin.H{
			{"name": "Zone A", "devices": []gin.H{{"device_id": speaker.ID, "quantity": 4}}},
		},
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	testutil.DecodeData(t, w, &template)
	assert.True(t, template.TotalCost.Equal(decimal.RequireFromString("600.00")))

	// Open a project for the client: 2 speakers, 300 total
	var project planapp.ProjectResponse
	w = testutil.PerformRequest(t, engine, "POST", "/api/v1/plan/projects", gin.H{
		"name":      "Harbor House Retrofit",
		"client_id": client.ID,
		"locations": []gin.H{
			{"name": "Ground Floor", "devices": []gin.H{{"device_id": speaker.ID, "quantity": 2}}},
		},
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	testutil.DecodeData(t, w, &project)
	assert.Equal(t, "DRAFT", project.Status)
	assert.Equal(t, "Harbor House LLC", project.ClientName)
	assert.True(t, project.TotalCost.Equal(decimal.RequireFromString("300.00")))

	// Import the template into the project
	importURL := "/api/v1/plan/projects/" + project.ID.String() + "/import"
	w = testutil.PerformRequest(t, engine, "POST", importURL, gin.H{
		"build_system_id": template.ID,
	}, map[string]string{handler.IdempotencyKeyHeader: "import-1"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var imported planapp.ImportResponse
	testutil.DecodeData(t, w, &imported)
	assert.Equal(t, 1, imported.ImportedLocations)
	assert.True(t, imported.CostDelta.Equal(decimal.RequireFromString("600.00")))
	assert.True(t, imported.NewTotal.Equal(decimal.RequireFromString("900.00")))

	// Replaying the import with the same key is rejected
	w = testutil.PerformRequest(t, engine, "POST", importURL, gin.H{
		"build_system_id": template.ID,
	}, map[string]string{handler.IdempotencyKeyHeader: "import-1"})
	assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())

	// The stored project reflects the merged tree
	w = testutil.PerformRequest(t, engine, "GET", "/api/v1/plan/projects/"+project.ID.String(), nil, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var stored planapp.ProjectResponse
	testutil.DecodeData(t, w, &stored)
	assert.True(t, stored.TotalCost.Equal(decimal.RequireFromString("900.00")))
	assert.Len(t, stored.Locations, 2)
	assert.Equal(t, 6, stored.DeviceCount)

	// Activate the project
	w = testutil.PerformRequest(t, engine, "PUT", "/api/v1/plan/projects/"+project.ID.String()+"/status", gin.H{
		"status": "ACTIVE",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Portfolio report sees the project value
	w = testutil.PerformRequest(t, engine, "GET", "/api/v1/reports/portfolio", nil, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var summary struct {
		TotalProjects int64           `json:"total_projects"`
		TotalValue    decimal.Decimal `json:"total_value"`
		PipelineValue decimal.Decimal `json:"pipeline_value"`
	}
	testutil.DecodeData(t, w, &summary)
	assert.Equal(t, int64(1), summary.TotalProjects)
	assert.True(t, summary.TotalValue.Equal(decimal.RequireFromString("900.00")))
	assert.True(t, summary.PipelineValue.Equal(decimal.RequireFromString("900.00")))

	// Top devices aggregates the project line items
	w = testutil.PerformRequest(t, engine, "GET", "/api/v1/reports/top-devices", nil, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var top []struct {
		DeviceID      uuid.UUID       `json:"device_id"`
		TotalQuantity int64           `json:"total_quantity"`
		TotalValue    decimal.Decimal `json:"total_value"`
	}
	testutil.DecodeData(t, w, &top)
	require.Len(t, top, 1)
	assert.Equal(t, speaker.ID, top[0].DeviceID)
	assert.Equal(t, int64(6), top[0].TotalQuantity)
	assert.True(t, top[0].TotalValue.Equal(decimal.RequireFromString("900.00")))

	// Proposal PDF is served as an attachment
	w = testutil.PerformRequest(t, engine, "GET", "/api/v1/plan/projects/"+project.ID.String()+"/proposal", nil, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
}

func TestValidationFailuresPersistNothing(t *testing.T) {
	engine := newTestServer(t)

	var speaker catalogapp.DeviceResponse
	w := testutil.PerformRequest(t, engine, "POST", "/api/v1/catalog/devices", gin.H{
		"code":          "SPK-100",
		"name":          "Ceiling Speaker",
		"selling_price": "150.00",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	testutil.DecodeData(t, w, &speaker)

	// One valid line and one unknown device: the whole tree is rejected
	w = testutil.PerformRequest(t, engine, "POST", "/api/v1/plan/build-systems", gin.H{
		"name": "Broken Template",
		"locations": []gin.H{
			{
				"name": "Hallway",
				"devices": []gin.H{
					{"device_id": speaker.ID, "quantity": 1},
					{"device_id": uuid.New(), "quantity": 2},
				},
			},
		},
	}, nil)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())

	resp := testutil.DecodeResponse(t, w)
	require.NotNil(t, resp.Error)
	require.Len(t, resp.Error.Details, 1)

	// Nothing was written
	w = testutil.PerformRequest(t, engine, "GET", "/api/v1/plan/projects", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	listResp := testutil.DecodeResponse(t, w)
	require.NotNil(t, listResp.Meta)
	assert.Equal(t, int64(0), listResp.Meta.Total)
}
