package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/shoplead/shoplead_server/internal/pkg/response"
	"github.com/shoplead/shoplead_server/internal/service"
)

type WorkLogHandler struct {
	workLogService *service.WorkLogService
	importService  *service.ImportService
}

func NewWorkLogHandler(workLogService *service.WorkLogService, importService *service.ImportService) *WorkLogHandler {
	return &WorkLogHandler{
		workLogService: workLogService,
		importService:  importService,
	}
}

// Upload 导入员工工时记录（只追加）
// POST /api/v1/worklogs/upload
func (h *WorkLogHandler) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		response.ParamError(c, "请上传文件")
		return
	}
	defer file.Close()

	if err := h.importService.CheckFile(header.Filename, header.Size); err != nil {
		writeImportError(c, err)
		return
	}

	table, err := h.importService.Parse(header.Filename, file)
	if err != nil {
		writeImportError(c, err)
		return
	}

	result, err := h.workLogService.Import(header.Filename, table)
	if err != nil {
		writeImportError(c, err)
		return
	}
	response.Success(c, result)
}

// List 工时记录，可按 job 过滤
// GET /api/v1/worklogs?job=1001&limit=200
func (h *WorkLogHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	logs, err := h.workLogService.List(c.Query("job"), limit)
	if err != nil {
		response.ServerError(c, "获取工时记录失败")
		return
	}
	response.Success(c, logs)
}
