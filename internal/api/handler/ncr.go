package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/shoplead/shoplead_server/internal/model/dto"
	"github.com/shoplead/shoplead_server/internal/pkg/response"
	"github.com/shoplead/shoplead_server/internal/service"
)

type NCRHandler struct {
	ncrService *service.NCRService
}

func NewNCRHandler(ncrService *service.NCRService) *NCRHandler {
	return &NCRHandler{ncrService: ncrService}
}

// List NCR 报告，可按 status 过滤
// GET /api/v1/ncrs?status=Active
func (h *NCRHandler) List(c *gin.Context) {
	ncrs, err := h.ncrService.List(c.Query("status"))
	if err != nil {
		if errors.Is(err, service.ErrInvalidNCRStatus) {
			response.ParamError(c, err.Error())
			return
		}
		response.ServerError(c, "获取 NCR 失败")
		return
	}
	response.Success(c, ncrs)
}

// Monitor 未关闭的 Active NCR
// GET /api/v1/ncrs/monitor
func (h *NCRHandler) Monitor(c *gin.Context) {
	ncrs, err := h.ncrService.ListActive()
	if err != nil {
		response.ServerError(c, "获取 NCR 失败")
		return
	}
	response.Success(c, ncrs)
}

// Get GET /api/v1/ncrs/:number
func (h *NCRHandler) Get(c *gin.Context) {
	ncr, err := h.ncrService.Get(c.Param("number"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, ncr)
}

// Submit 人工提交 NCR
// POST /api/v1/ncrs
func (h *NCRHandler) Submit(c *gin.Context) {
	var req dto.SubmitNCRRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	ncr, err := h.ncrService.Submit(&req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.SuccessWithMessage(c, "NCR 已提交", ncr)
}

// UpdateReport 更新 NCR 报告字段
// PUT /api/v1/ncrs/:number
func (h *NCRHandler) UpdateReport(c *gin.Context) {
	var req dto.UpdateNCRReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	ncr, err := h.ncrService.UpdateReport(c.Param("number"), &req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, ncr)
}

func (h *NCRHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNCRNotFound):
		response.NotFoundError(c, err.Error())
	case errors.Is(err, service.ErrInvalidNCRStatus):
		response.ParamError(c, err.Error())
	default:
		response.ServerError(c, "保存 NCR 失败")
	}
}
