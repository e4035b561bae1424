package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	planapp "github.com/homeops/backend/internal/application/plan"
	proposalapp "github.com/homeops/backend/internal/application/proposal"
	"github.com/homeops/backend/internal/domain/partner"
	"github.com/homeops/backend/internal/domain/plan"
	"github.com/homeops/backend/internal/domain/shared"
	"github.com/homeops/backend/internal/infrastructure/cache"
	"github.com/homeops/backend/internal/infrastructure/proposal"
)

type memProjectRepo struct {
	projects map[uuid.UUID]*plan.Project
}

func newMemProjectRepo() *memProjectRepo {
	return &memProjectRepo{projects: make(map[uuid.UUID]*plan.Project)}
}

func (m *memProjectRepo) FindByID(ctx context.Context, id uuid.UUID) (*plan.Project, error) {
	if p, ok := m.projects[id]; ok {
		return p, nil
	}
	return nil, shared.ErrNotFound
}

func (m *memProjectRepo) FindAll(ctx context.Context, filter shared.Filter) ([]plan.Project, error) {
	result := make([]plan.Project, 0, len(m.projects))
	for _, p := range m.projects {
		result = append(result, *p)
	}
	return result, nil
}

func (m *memProjectRepo) FindByClient(ctx context.Context, clientID uuid.UUID, filter shared.Filter) ([]plan.Project, error) {
	var result []plan.Project
	for _, p := range m.projects {
		if p.ClientID == clientID {
			result = append(result, *p)
		}
	}
	return result, nil
}

func (m *memProjectRepo) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	return int64(len(m.projects)), nil
}

func (m *memProjectRepo) Save(ctx context.Context, p *plan.Project) error {
	m.projects[p.ID] = p
	return nil
}

func (m *memProjectRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.projects[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.projects, id)
	return nil
}

type memClientRepo struct {
	clients map[uuid.UUID]*partner.Client
}

func newMemClientRepo() *memClientRepo {
	return &memClientRepo{clients: make(map[uuid.UUID]*partner.Client)}
}

func (m *memClientRepo) add(c *partner.Client) *partner.Client {
	m.clients[c.ID] = c
	return c
}

func (m *memClientRepo) FindByID(ctx context.Context, id uuid.UUID) (*partner.Client, error) {
	if c, ok := m.clients[id]; ok {
		return c, nil
	}
	return nil, shared.ErrNotFound
}

func (m *memClientRepo) FindAll(ctx context.Context, filter shared.Filter) ([]partner.Client, error) {
	result := make([]partner.Client, 0, len(m.clients))
	for _, c := range m.clients {
		result = append(result, *c)
	}
	return result, nil
}

func (m *memClientRepo) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	return int64(len(m.clients)), nil
}

func (m *memClientRepo) Save(ctx context.Context, c *partner.Client) error {
	m.clients[c.ID] = c
	return nil
}

func (m *memClientRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(m.clients, id)
	return nil
}

// stubRenderer returns a fixed PDF payload without a browser
type stubRenderer struct{}

func (stubRenderer) Render(ctx context.Context, req *proposal.RenderRequest) (*proposal.RenderResult, error) {
	return &proposal.RenderResult{
		PDFData:        []byte("%PDF-1.7 stub"),
		PageCount:      1,
		RenderDuration: time.Millisecond,
	}, nil
}

func (stubRenderer) Close() error { return nil }

type projectHarness struct {
	engine      *gin.Engine
	projectRepo *memProjectRepo
	bsRepo      *memBuildSystemRepo
	deviceRepo  *memDeviceRepo
	clientRepo  *memClientRepo
}

func newProjectHarness(t *testing.T) *projectHarness {
	t.Helper()

	projectRepo := newMemProjectRepo()
	bsRepo := newMemBuildSystemRepo()
	deviceRepo := newMemDeviceRepo()
	clientRepo := newMemClientRepo()
	store := cache.NewInMemoryIdempotencyStore()
	t.Cleanup(func() { _ = store.Close() })

	projectSvc := planapp.NewProjectService(projectRepo, bsRepo, deviceRepo, clientRepo, store, nil)
	proposalSvc := proposalapp.NewProposalService(projectRepo, clientRepo, stubRenderer{}, proposal.CompanyInfo{
		Name:    "HomeOps Installations",
		Address: "12 Harbor Way",
	}, nil)
	h := NewProjectHandler(projectSvc, proposalSvc)

	engine := gin.New()
	g := engine.Group("/api/v1/plan")
	g.POST("/projects", h.Create)
	g.GET("/projects", h.List)
	g.GET("/projects/:id", h.Get)
	g.PUT("/projects/:id", h.Update)
	g.PUT("/projects/:id/status", h.UpdateStatus)
	g.POST("/projects/:id/clone", h.Clone)
	g.POST("/projects/:id/import", h.Import)
	g.GET("/projects/:id/proposal", h.Proposal)
	g.DELETE("/projects/:id", h.Delete)

	return &projectHarness{
		engine:      engine,
		projectRepo: projectRepo,
		bsRepo:      bsRepo,
		deviceRepo:  deviceRepo,
		clientRepo:  clientRepo,
	}
}

func (h *projectHarness) do(t *testing.T, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	h.engine.ServeHTTP(w, req)
	return w
}

func activeClient(t *testing.T, name string) *partner.Client {
	t.Helper()
	c, err := partner.NewClient(name, "owner@example.com", "+1-555-0100", "12 Harbor Way")
	require.NoError(t, err)
	return c
}

func (h *projectHarness) createProject(t *testing.T, name string, clientID uuid.UUID, locations []gin.H) planapp.ProjectResponse {
	t.Helper()

	w := h.do(t, "POST", "/api/v1/plan/projects", gin.H{
		"name":      name,
		"client_id": clientID,
		"locations": locations,
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created planapp.ProjectResponse
	decodeDataInto(t, w, &created)
	return created
}

func TestProjectHandlerCreate(t *testing.T) {
	t.Run("creates draft project with client snapshot", func(t *testing.T) {
		h := newProjectHarness(t)
		client := h.clientRepo.add(activeClient(t, "Harbor House LLC"))
		camera := h.deviceRepo.add(catalogDevice(t, "CAM-200", "Doorbell Camera", "250.00"))

		created := h.createProject(t, "Harbor House Retrofit", client.ID, []gin.H{
			{"name": "Entry", "devices": []gin.H{{"device_id": camera.ID, "quantity": 2}}},
		})

		assert.Equal(t, "DRAFT", created.Status)
		assert.Equal(t, "Harbor House LLC", created.ClientName)
		assert.True(t, created.TotalCost.Equal(decimal.RequireFromString("500.00")))
	})

	t.Run("unknown client returns 400", func(t *testing.T) {
		h := newProjectHarness(t)

		w := h.do(t, "POST", "/api/v1/plan/projects", gin.H{
			"name":      "Orphan Project",
			"client_id": uuid.New(),
		}, nil)

		assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		assert.Empty(t, h.projectRepo.projects)
	})
}

func TestProjectHandlerUpdateStatus(t *testing.T) {
	h := newProjectHarness(t)
	client := h.clientRepo.add(activeClient(t, "Harbor House LLC"))
	created := h.createProject(t, "Harbor House Retrofit", client.ID, nil)

	statusURL := "/api/v1/plan/projects/" + created.ID.String() + "/status"

	t.Run("skipping active is rejected", func(t *testing.T) {
		w := h.do(t, "PUT", statusURL, gin.H{"status": "COMPLETED"}, nil)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
	})

	t.Run("draft moves to active", func(t *testing.T) {
		w := h.do(t, "PUT", statusURL, gin.H{"status": "ACTIVE"}, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var updated planapp.ProjectResponse
		decodeDataInto(t, w, &updated)
		assert.Equal(t, "ACTIVE", updated.Status)
	})

	t.Run("unknown status fails binding", func(t *testing.T) {
		w := h.do(t, "PUT", statusURL, gin.H{"status": "PAUSED"}, nil)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
	})
}

func TestProjectHandlerImport(t *testing.T) {
	h := newProjectHarness(t)
	client := h.clientRepo.add(activeClient(t, "Harbor House LLC"))
	speaker := h.deviceRepo.add(catalogDevice(t, "SPK-100", "Ceiling Speaker", "150.00"))

	created := h.createProject(t, "Harbor House Retrofit", client.ID, []gin.H{
		{"name": "Ground Floor", "devices": []gin.H{{"device_id": speaker.ID, "quantity": 2}}},
	})

	bsBody := gin.H{
		"name": "Audio Zone",
		"locations": []gin.H{
			{"name": "Zone A", "devices": []gin.H{{"device_id": speaker.ID, "quantity": 4}}},
		},
	}
	bsSvc := planapp.NewBuildSystemService(h.bsRepo, h.deviceRepo, nil, nil)
	bsReq := planapp.CreateBuildSystemRequest{}
	raw, err := json.Marshal(bsBody)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &bsReq))
	bs, err := bsSvc.Create(context.Background(), bsReq)
	require.NoError(t, err)

	importURL := "/api/v1/plan/projects/" + created.ID.String() + "/import"
	headers := map[string]string{IdempotencyKeyHeader: "import-req-1"}

	w := h.do(t, "POST", importURL, gin.H{"build_system_id": bs.ID}, headers)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result planapp.ImportResponse
	decodeDataInto(t, w, &result)
	assert.Equal(t, 1, result.ImportedLocations)
	assert.True(t, result.CostDelta.Equal(decimal.RequireFromString("600.00")))
	assert.True(t, result.NewTotal.Equal(decimal.RequireFromString("900.00")))

	t.Run("replaying the same key returns 409", func(t *testing.T) {
		w := h.do(t, "POST", importURL, gin.H{"build_system_id": bs.ID}, headers)
		assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())
	})

	t.Run("unknown build system returns 400", func(t *testing.T) {
		w := h.do(t, "POST", importURL, gin.H{"build_system_id": uuid.New()}, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	})
}

func TestProjectHandlerProposal(t *testing.T) {
	h := newProjectHarness(t)
	client := h.clientRepo.add(activeClient(t, "Harbor House LLC"))
	camera := h.deviceRepo.add(catalogDevice(t, "CAM-200", "Doorbell Camera", "250.00"))

	created := h.createProject(t, "Harbor House Retrofit", client.ID, []gin.H{
		{"name": "Entry", "devices": []gin.H{{"device_id": camera.ID, "quantity": 2}}},
	})

	w := h.do(t, "GET", "/api/v1/plan/projects/"+created.ID.String()+"/proposal", nil, nil)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment; filename=")
	assert.Contains(t, w.Header().Get("Content-Disposition"), "proposal-harbor-house-retrofit-")
	assert.Equal(t, []byte("%PDF-1.7 stub"), w.Body.Bytes())
}

func TestProjectHandlerClone(t *testing.T) {
	h := newProjectHarness(t)
	client := h.clientRepo.add(activeClient(t, "Harbor House LLC"))
	created := h.createProject(t, "Harbor House Retrofit", client.ID, nil)

	w := h.do(t, "POST", "/api/v1/plan/projects/"+created.ID.String()+"/clone", gin.H{"name": "Harbor House Phase 2"}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var clone planapp.ProjectResponse
	decodeDataInto(t, w, &clone)
	assert.Equal(t, "Harbor House Phase 2", clone.Name)
	assert.Equal(t, "DRAFT", clone.Status)
	assert.NotEqual(t, created.ID, clone.ID)
}
