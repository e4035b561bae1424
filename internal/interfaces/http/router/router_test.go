package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestNewRouter(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	assert.NotNil(t, r)
	assert.Equal(t, "v1", r.apiVersion)
	assert.Empty(t, r.registrars)
}

func TestRouterWithAPIVersion(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine, WithAPIVersion("v2"))

	assert.Equal(t, "v2", r.apiVersion)
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	group := NewDomainGroup("catalog", "/catalog")
	group.GET("/devices", func(c *gin.Context) {
		c.String(http.StatusOK, "devices")
	})

	r.Register(group)
	r.Setup()

	req := httptest.NewRequest("GET", "/api/v1/catalog/devices", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "devices", w.Body.String())
}

func TestRouterUse(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	r.Use(func(c *gin.Context) {
		c.Header("X-Router-Middleware", "applied")
		c.Next()
	})

	group := NewDomainGroup("plan", "/plan")
	group.GET("/projects", func(c *gin.Context) {
		c.String(http.StatusOK, "projects")
	})

	r.Register(group).Setup()

	req := httptest.NewRequest("GET", "/api/v1/plan/projects", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "applied", w.Header().Get("X-Router-Middleware"))
}

func TestDomainGroup(t *testing.T) {
	t.Run("creates group with name and prefix", func(t *testing.T) {
		g := NewDomainGroup("plan", "/plan")
		assert.Equal(t, "plan", g.Name())
		assert.Equal(t, "/plan", g.Prefix())
	})

	t.Run("registers routes for every method", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("plan", "/plan")
		g.GET("/build-systems", func(c *gin.Context) { c.String(http.StatusOK, "list") }).
			POST("/build-systems", func(c *gin.Context) { c.String(http.StatusCreated, "created") }).
			PUT("/build-systems/:id", func(c *gin.Context) { c.String(http.StatusOK, "updated") }).
			DELETE("/build-systems/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

		api := engine.Group("/api/v1")
		g.RegisterRoutes(api)

		tests := []struct {
			method string
			path   string
			want   int
		}{
			{"GET", "/api/v1/plan/build-systems", http.StatusOK},
			{"POST", "/api/v1/plan/build-systems", http.StatusCreated},
			{"PUT", "/api/v1/plan/build-systems/123", http.StatusOK},
			{"DELETE", "/api/v1/plan/build-systems/123", http.StatusNoContent},
		}

		for _, tt := range tests {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code, "%s %s", tt.method, tt.path)
		}
	})

	t.Run("applies group middleware", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("identity", "/identity")

		g.Use(func(c *gin.Context) {
			c.Header("X-Group-Middleware", "applied")
			c.Next()
		})

		g.GET("/users", func(c *gin.Context) {
			c.String(http.StatusOK, "ok")
		})

		api := engine.Group("/api/v1")
		g.RegisterRoutes(api)

		req := httptest.NewRequest("GET", "/api/v1/identity/users", nil)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, "applied", w.Header().Get("X-Group-Middleware"))
	})

	t.Run("registers subgroups", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("reports", "/reports")

		inventory := g.Group("devices", "/devices")
		inventory.GET("/top", func(c *gin.Context) {
			c.String(http.StatusOK, "top devices")
		})

		api := engine.Group("/api/v1")
		g.RegisterRoutes(api)

		req := httptest.NewRequest("GET", "/api/v1/reports/devices/top", nil)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "top devices", w.Body.String())
	})
}

func TestMultipleDomainGroups(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	catalog := NewDomainGroup("catalog", "/catalog")
	catalog.GET("/devices", func(c *gin.Context) {
		c.String(http.StatusOK, "devices")
	})

	partners := NewDomainGroup("partners", "/partners")
	partners.GET("/clients", func(c *gin.Context) {
		c.String(http.StatusOK, "clients")
	})

	r.Register(catalog).Register(partners)
	r.Setup()

	req1 := httptest.NewRequest("GET", "/api/v1/catalog/devices", nil)
	w1 := httptest.NewRecorder()
	engine.ServeHTTP(w1, req1)
	assert.Equal(t, http.StatusOK, w1.Code)
	assert.Equal(t, "devices", w1.Body.String())

	req2 := httptest.NewRequest("GET", "/api/v1/partners/clients", nil)
	w2 := httptest.NewRecorder()
	engine.ServeHTTP(w2, req2)
	assert.Equal(t, http.StatusOK, w2.Code)
	assert.Equal(t, "clients", w2.Body.String())
}
