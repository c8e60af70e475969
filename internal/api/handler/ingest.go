package handler

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shoplead/shoplead_server/config"
	"github.com/shoplead/shoplead_server/internal/api/middleware"
	"github.com/shoplead/shoplead_server/internal/pkg/pubsub"
	"github.com/shoplead/shoplead_server/internal/pkg/response"
	"github.com/shoplead/shoplead_server/internal/service"
)

const defaultLockWait = 30 * time.Second

// ProgressSink 同步导入时直接推送进度
type ProgressSink interface {
	SendProgress(msg *pubsub.ProgressMessage) error
}

type IngestHandler struct {
	ingestService *service.IngestService
	importService *service.ImportService
	progress      ProgressSink
	cfg           *config.Config
}

func NewIngestHandler(ingestService *service.IngestService, importService *service.ImportService, progress ProgressSink, cfg *config.Config) *IngestHandler {
	return &IngestHandler{
		ingestService: ingestService,
		importService: importService,
		progress:      progress,
		cfg:           cfg,
	}
}

// Upload 同步导入 SAP 导出文件
// POST /api/v1/upload
func (h *IngestHandler) Upload(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	filename, path, ok := h.saveUpload(c)
	if !ok {
		return
	}
	defer h.importService.Cleanup(path)

	mode, err := h.ingestService.ResolveMode(c.PostForm("mode"))
	if err != nil {
		writeImportError(c, err)
		return
	}

	table, err := h.importService.ReadTable(path)
	if err != nil {
		writeImportError(c, err)
		return
	}

	// 客户端断开不应让已开始的导入停在批次之间
	ctx := context.WithoutCancel(c.Request.Context())

	result, err := h.ingestService.Ingest(ctx, &service.IngestRequest{
		Filename:   filename,
		Table:      table,
		Mode:       mode,
		UserID:     userID,
		ArchiveURL: h.importService.Archive(path),
		LockWait:   h.lockWait(),
		Progress:   h.push,
	})
	if err != nil {
		writeImportError(c, err)
		return
	}

	response.Success(c, result)
}

// Enqueue 保存上传并排队，由 worker 执行导入
// POST /api/v1/imports
func (h *IngestHandler) Enqueue(c *gin.Context) {
	if !h.importService.QueueEnabled() {
		response.ServerError(c, service.ErrQueueUnavailable.Error())
		return
	}
	userID, _ := middleware.GetUserID(c)

	mode, err := h.ingestService.ResolveMode(c.PostForm("mode"))
	if err != nil {
		writeImportError(c, err)
		return
	}

	filename, path, ok := h.saveUpload(c)
	if !ok {
		return
	}

	result, err := h.importService.Enqueue(c.Request.Context(), userID, filename, path, mode)
	if err != nil {
		h.importService.Cleanup(path)
		writeImportError(c, err)
		return
	}

	response.Success(c, result)
}

// GetRun 导入记录
// GET /api/v1/imports/:id
func (h *IngestHandler) GetRun(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的导入 ID")
		return
	}

	run, err := h.ingestService.GetRun(id)
	if err != nil {
		writeImportError(c, err)
		return
	}
	response.Success(c, run)
}

// ListRuns 最近的导入记录
// GET /api/v1/imports?limit=20
func (h *IngestHandler) ListRuns(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	runs, err := h.ingestService.ListRuns(limit)
	if err != nil {
		response.ServerError(c, "获取导入记录失败")
		return
	}
	response.Success(c, runs)
}

// saveUpload 校验并保存上传文件，失败时已写入响应
func (h *IngestHandler) saveUpload(c *gin.Context) (filename, path string, ok bool) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		response.ParamError(c, "请上传文件")
		return "", "", false
	}
	defer file.Close()

	if err := h.importService.CheckFile(header.Filename, header.Size); err != nil {
		writeImportError(c, err)
		return "", "", false
	}

	path, err = h.importService.Save(header.Filename, file)
	if err != nil {
		response.ServerError(c, "文件保存失败")
		return "", "", false
	}
	return header.Filename, path, true
}

func (h *IngestHandler) push(e service.ProgressEvent) {
	if h.progress == nil || e.UserID == 0 {
		return
	}
	err := h.progress.SendProgress(&pubsub.ProgressMessage{
		UserID: e.UserID,
		RunID:  e.RunID,
		Status: e.Status,
		Step:   e.Step,
		Error:  e.Error,
	})
	if err != nil {
		log.Printf("Run %d: push progress to user %d: %v", e.RunID, e.UserID, err)
	}
}

func (h *IngestHandler) lockWait() time.Duration {
	if h.cfg != nil && h.cfg.Ingest.LockWaitSec > 0 {
		return time.Duration(h.cfg.Ingest.LockWaitSec) * time.Second
	}
	return defaultLockWait
}
