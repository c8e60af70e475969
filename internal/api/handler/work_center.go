package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/shoplead/shoplead_server/internal/pkg/response"
	"github.com/shoplead/shoplead_server/internal/service"
)

type WorkCenterHandler struct {
	workCenterService *service.WorkCenterService
}

func NewWorkCenterHandler(workCenterService *service.WorkCenterService) *WorkCenterHandler {
	return &WorkCenterHandler{workCenterService: workCenterService}
}

// Summary 各工作中心负荷
// GET /api/v1/work_centers
func (h *WorkCenterHandler) Summary(c *gin.Context) {
	summaries, err := h.workCenterService.Summary()
	if err != nil {
		response.ServerError(c, "获取工作中心负荷失败")
		return
	}
	response.Success(c, summaries)
}

// Forecast 单个工作中心的工时预测
// GET /api/v1/work_centers/:name/forecast
func (h *WorkCenterHandler) Forecast(c *gin.Context) {
	forecast, err := h.workCenterService.Forecast(c.Param("name"))
	if err != nil {
		if errors.Is(err, service.ErrWorkCenterNotFound) {
			response.NotFoundError(c, err.Error())
			return
		}
		response.ServerError(c, "获取预测失败")
		return
	}
	response.Success(c, forecast)
}

// ForecastAll 全部工作中心的工时预测
// GET /api/v1/forecast
func (h *WorkCenterHandler) ForecastAll(c *gin.Context) {
	forecasts, err := h.workCenterService.ForecastAll()
	if err != nil {
		response.ServerError(c, "获取预测失败")
		return
	}
	response.Success(c, forecasts)
}
