package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoplead/shoplead_server/config"
	"github.com/shoplead/shoplead_server/internal/api/handler"
	"github.com/shoplead/shoplead_server/internal/pkg/jwt"
	"github.com/shoplead/shoplead_server/internal/pkg/lock"
	"github.com/shoplead/shoplead_server/internal/pkg/response"
	"github.com/shoplead/shoplead_server/internal/pkg/ws"
	"github.com/shoplead/shoplead_server/internal/repository"
	"github.com/shoplead/shoplead_server/internal/service"
	"github.com/shoplead/shoplead_server/internal/testutil"
)

const testSecret = "router-test-secret"

func setupRouter(t *testing.T) http.Handler {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.CleanupTestDB(t, db) })

	cfg := &config.Config{
		Server: config.ServerConfig{Mode: "test"},
		JWT:    config.JWTConfig{Secret: testSecret},
		Upload: config.UploadConfig{MaxSize: 1 << 20, TempDir: t.TempDir()},
	}
	store := repository.NewStore(db)
	hub := ws.NewHub()
	ingestService := service.NewIngestService(store, lock.NewLocalLocker(), nil, &cfg.Ingest)
	importService := service.NewImportService(cfg, store.Runs, nil, nil)

	router := NewRouter(
		handler.NewIngestHandler(ingestService, importService, hub, cfg),
		handler.NewWorkCenterHandler(service.NewWorkCenterService(store.Operations)),
		handler.NewJobHandler(service.NewJobService(store.Jobs, store.Operations)),
		handler.NewNCRHandler(service.NewNCRService(store.NCRs)),
		handler.NewWorkLogHandler(service.NewWorkLogService(store.WorkLogs, 100), importService),
		handler.NewWebSocketHandler(hub, testSecret, nil),
		cfg,
	)
	return router.Setup()
}

func call(t *testing.T, h http.Handler, method, path, token string) response.Response {
	t.Helper()

	var body *strings.Reader
	if method == http.MethodGet {
		body = strings.NewReader("")
	} else {
		body = strings.NewReader("{}")
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestRouter_PublicReads(t *testing.T) {
	h := setupRouter(t)

	for _, path := range []string{
		"/api/v1/work_centers",
		"/api/v1/forecast",
		"/api/v1/jobs",
		"/api/v1/schedule",
		"/api/v1/ncrs",
		"/api/v1/ncrs/monitor",
		"/api/v1/imports",
		"/api/v1/worklogs",
	} {
		resp := call(t, h, http.MethodGet, path, "")
		assert.Equal(t, response.CodeSuccess, resp.Code, path)
	}
}

func TestRouter_WritesRequireToken(t *testing.T) {
	h := setupRouter(t)

	writes := []struct{ method, path string }{
		{http.MethodPost, "/api/v1/upload"},
		{http.MethodPost, "/api/v1/imports"},
		{http.MethodPost, "/api/v1/schedule"},
		{http.MethodPost, "/api/v1/ncrs"},
		{http.MethodPut, "/api/v1/ncrs/NCR-1"},
		{http.MethodPost, "/api/v1/worklogs/upload"},
	}
	for _, w := range writes {
		resp := call(t, h, w.method, w.path, "")
		assert.Equal(t, response.CodeAuthFailed, resp.Code, w.path)
	}

	token, err := jwt.GenerateToken(1, testSecret, 1)
	require.NoError(t, err)

	// 令牌有效时进入处理器，空请求体得到参数错误
	resp := call(t, h, http.MethodPost, "/api/v1/ncrs", token)
	assert.Equal(t, response.CodeParamError, resp.Code)
}

func TestRouter_WebSocketRequiresToken(t *testing.T) {
	h := setupRouter(t)

	resp := call(t, h, http.MethodGet, "/api/v1/ws", "")
	assert.Equal(t, response.CodeAuthFailed, resp.Code)

	resp = call(t, h, http.MethodGet, "/api/v1/ws?token=bad", "")
	assert.Equal(t, response.CodeAuthFailed, resp.Code)
}
