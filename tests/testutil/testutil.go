// Package testutil provides shared helpers for integration tests: an
// in-memory SQLite database with the full schema migrated, and HTTP
// request plumbing against a gin engine.
package testutil

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/homeops/backend/internal/domain/catalog"
	"github.com/homeops/backend/internal/domain/identity"
	"github.com/homeops/backend/internal/domain/partner"
	"github.com/homeops/backend/internal/domain/plan"
	"github.com/homeops/backend/internal/interfaces/http/dto"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// NewSQLiteDB creates an in-memory SQLite database with every table migrated
func NewSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&catalog.Device{},
		&partner.Client{},
		&plan.BuildSystem{},
		&plan.Project{},
		&plan.Location{},
		&plan.LineItem{},
		&identity.User{},
		&identity.Role{},
	))

	return db
}

// PerformRequest executes an HTTP request against the engine. A non-nil
// body is JSON encoded.
func PerformRequest(t *testing.T, engine *gin.Engine, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
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
	engine.ServeHTTP(w, req)
	return w
}

// DecodeResponse unmarshals the standard response envelope
func DecodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

// DecodeData unmarshals the data field of a successful envelope into target
func DecodeData(t *testing.T, w *httptest.ResponseRecorder, target any) {
	t.Helper()

	resp := DecodeResponse(t, w)
	require.True(t, resp.Success, "expected success envelope, got %s", w.Body.String())
	raw, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, target))
}
