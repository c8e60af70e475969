package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/shoplead/shoplead_server/config"
	"github.com/shoplead/shoplead_server/internal/api/middleware"
	"github.com/shoplead/shoplead_server/internal/model"
	"github.com/shoplead/shoplead_server/internal/pkg/lock"
	"github.com/shoplead/shoplead_server/internal/pkg/pubsub"
	"github.com/shoplead/shoplead_server/internal/pkg/queue"
	"github.com/shoplead/shoplead_server/internal/repository"
	"github.com/shoplead/shoplead_server/internal/service"
	"github.com/shoplead/shoplead_server/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const scenarioCSV = "Order,Oper./Act.,Oper.WorkCenter,Work,Actual work\n" +
	"1001,10,MILL,40,10\n" +
	"1001,20,NCR,5,5\n"

const operatorID int64 = 7

type apiResponse struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type fakeQueue struct {
	mu   sync.Mutex
	msgs []*queue.IngestMessage
}

func (q *fakeQueue) Push(_ context.Context, msg *queue.IngestMessage) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.msgs = append(q.msgs, msg)
	return nil
}

type recordingSink struct {
	mu   sync.Mutex
	msgs []*pubsub.ProgressMessage
	err  error
}

func (s *recordingSink) SendProgress(msg *pubsub.ProgressMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = append(s.msgs, msg)
	return s.err
}

type testEnv struct {
	cfg    *config.Config
	store  *repository.Store
	locker *lock.LocalLocker
	queue  *fakeQueue
	sink   *recordingSink
	engine *gin.Engine
}

// setupEnv 注册全部处理器；写接口直接注入操作员 ID，不经过 Auth
func setupEnv(t *testing.T, withQueue bool) *testEnv {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.CleanupTestDB(t, db) })

	cfg := &config.Config{
		Upload: config.UploadConfig{
			MaxSize:           1 << 20,
			TempDir:           t.TempDir(),
			AllowedExtensions: []string{".xlsx", ".csv"},
		},
		Ingest: config.IngestConfig{
			Mode:        model.IngestModeUpsert,
			BatchSize:   100,
			LockKey:     "test:handler",
			LockWaitSec: 1,
		},
	}

	env := &testEnv{
		cfg:    cfg,
		store:  repository.NewStore(db),
		locker: lock.NewLocalLocker(),
		sink:   &recordingSink{},
	}

	var enqueuer service.Enqueuer
	if withQueue {
		env.queue = &fakeQueue{}
		enqueuer = env.queue
	}

	ingestService := service.NewIngestService(env.store, env.locker, nil, &cfg.Ingest)
	importService := service.NewImportService(cfg, env.store.Runs, enqueuer, nil)

	ingest := NewIngestHandler(ingestService, importService, env.sink, cfg)
	workCenters := NewWorkCenterHandler(service.NewWorkCenterService(env.store.Operations))
	jobs := NewJobHandler(service.NewJobService(env.store.Jobs, env.store.Operations))
	ncrs := NewNCRHandler(service.NewNCRService(env.store.NCRs))
	worklogs := NewWorkLogHandler(service.NewWorkLogService(env.store.WorkLogs, 100), importService)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.UserIDKey, operatorID)
		c.Next()
	})
	r.POST("/upload", ingest.Upload)
	r.POST("/imports", ingest.Enqueue)
	r.GET("/imports", ingest.ListRuns)
	r.GET("/imports/:id", ingest.GetRun)
	r.GET("/work_centers", workCenters.Summary)
	r.GET("/work_centers/:name/forecast", workCenters.Forecast)
	r.GET("/forecast", workCenters.ForecastAll)
	r.GET("/jobs", jobs.List)
	r.GET("/jobs/:number", jobs.Get)
	r.GET("/schedule", jobs.ListSchedule)
	r.POST("/schedule", jobs.SetSchedule)
	r.GET("/ncrs", ncrs.List)
	r.GET("/ncrs/monitor", ncrs.Monitor)
	r.GET("/ncrs/:number", ncrs.Get)
	r.POST("/ncrs", ncrs.Submit)
	r.PUT("/ncrs/:number", ncrs.UpdateReport)
	r.POST("/worklogs/upload", worklogs.Upload)
	r.GET("/worklogs", worklogs.List)
	env.engine = r

	return env
}

func (e *testEnv) do(t *testing.T, req *http.Request) apiResponse {
	t.Helper()

	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp apiResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func (e *testEnv) get(t *testing.T, path string) apiResponse {
	return e.do(t, httptest.NewRequest(http.MethodGet, path, nil))
}

func (e *testEnv) sendJSON(t *testing.T, method, path string, body interface{}) apiResponse {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	return e.do(t, req)
}

// upload 以 multipart 表单上传文件，fields 为附加表单字段
func (e *testEnv) upload(t *testing.T, path, filename, content string, fields map[string]string) apiResponse {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if filename != "" {
		part, err := writer.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return e.do(t, req)
}

func decode(t *testing.T, resp apiResponse, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(resp.Data, v))
}
