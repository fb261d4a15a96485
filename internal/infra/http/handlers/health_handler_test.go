package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getHealth(t *testing.T, h *HealthHandler) (*httptest.ResponseRecorder, HealthResponse) {
	t.Helper()
	w := httptest.NewRecorder()
	h.Handle(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	var resp HealthResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return w, resp
}

func TestHealthWithoutOptionalDependencies(t *testing.T) {
	w, resp := getHealth(t, NewHealthHandler(nil, nil, "connector"))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, Version, resp.Version)
	assert.Equal(t, "not configured", resp.Dependencies["database"])
	assert.Equal(t, "not configured", resp.Dependencies["rabbitmq"])
	assert.Equal(t, "configured (connector)", resp.Dependencies["hubspot"])
}

func TestHealthWithoutCRMCredentials(t *testing.T) {
	w, resp := getHealth(t, NewHealthHandler(nil, nil, ""))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "degraded", resp.Status)
}

func TestHealthDatabasePing(t *testing.T) {
	db, sqlMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	sqlMock.ExpectPing()
	w, resp := getHealth(t, NewHealthHandler(db, nil, "static"))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", resp.Dependencies["database"])

	sqlMock.ExpectPing().WillReturnError(errors.New("connection refused"))
	w, resp = getHealth(t, NewHealthHandler(db, nil, "static"))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "unhealthy: connection refused", resp.Dependencies["database"])

	assert.NoError(t, sqlMock.ExpectationsWereMet())
}
