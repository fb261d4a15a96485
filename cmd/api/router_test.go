package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/brightforge/agency-leads/internal/config"
	"github.com/brightforge/agency-leads/internal/entity"
	"github.com/brightforge/agency-leads/internal/infra/http/handlers"
	"github.com/brightforge/agency-leads/internal/infra/integration/connectors"
	"github.com/brightforge/agency-leads/internal/usecase"
)

type stubSyncer struct {
	mock.Mock
}

func (s *stubSyncer) Execute(ctx context.Context, lead entity.Lead) usecase.SyncResult {
	return s.Called(ctx, lead).Get(0).(usecase.SyncResult)
}

func newTestRouter(syncer *stubSyncer) http.Handler {
	return NewRouter(
		handlers.NewLeadHandler(syncer, nil, nil),
		handlers.NewHealthHandler(nil, nil, "static"),
		[]string{"https://brightforge.dev"},
		zap.NewNop(),
	)
}

func TestRouterProductInterest(t *testing.T) {
	syncer := new(stubSyncer)
	syncer.On("Execute", mock.Anything, mock.Anything).
		Return(usecase.SyncResult{Outcome: usecase.OutcomeCreated, ContactID: "c-1"})

	body := `{"name":"Jane Doe","email":"jane@x.com","phone":"555","productName":"Taxi App","tier":"MVP","price":8000}`
	w := httptest.NewRecorder()
	newTestRouter(syncer).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/product-interest", strings.NewReader(body)))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"contactId":"c-1"`)
	assert.NotEmpty(t, w.Header().Get("Content-Type"))
}

func TestRouterRejectsGetOnProductInterest(t *testing.T) {
	w := httptest.NewRecorder()
	newTestRouter(new(stubSyncer)).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/product-interest", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestRouterHealthAndMetrics(t *testing.T) {
	router := newTestRouter(new(stubSyncer))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
}

func TestRouterCORSPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/product-interest", nil)
	req.Header.Set("Origin", "https://brightforge.dev")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	w := httptest.NewRecorder()
	newTestRouter(new(stubSyncer)).ServeHTTP(w, req)

	assert.Equal(t, "https://brightforge.dev", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestTokenSourceSelection(t *testing.T) {
	static, label := tokenSource(&config.Config{HubSpotToken: "pat-1"}, http.DefaultClient, zap.NewNop())
	assert.Equal(t, "static", label)
	assert.Equal(t, connectors.StaticTokenSource("pat-1"), static)

	_, label = tokenSource(&config.Config{ConnectorsHostname: "connectors.local", ReplIdentity: "id"}, http.DefaultClient, zap.NewNop())
	assert.Equal(t, "connector", label)

	_, label = tokenSource(&config.Config{}, http.DefaultClient, zap.NewNop())
	assert.Equal(t, "", label)
}
