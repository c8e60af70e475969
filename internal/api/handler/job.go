package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/shoplead/shoplead_server/internal/model/dto"
	"github.com/shoplead/shoplead_server/internal/pkg/response"
	"github.com/shoplead/shoplead_server/internal/service"
)

type JobHandler struct {
	jobService *service.JobService
}

func NewJobHandler(jobService *service.JobService) *JobHandler {
	return &JobHandler{jobService: jobService}
}

// List 全部工单及其工序
// GET /api/v1/jobs
func (h *JobHandler) List(c *gin.Context) {
	jobs, err := h.jobService.List()
	if err != nil {
		response.ServerError(c, "获取工单失败")
		return
	}
	response.Success(c, jobs)
}

// Get GET /api/v1/jobs/:number
func (h *JobHandler) Get(c *gin.Context) {
	job, err := h.jobService.Get(c.Param("number"))
	if err != nil {
		if errors.Is(err, service.ErrJobNotFound) {
			response.NotFoundError(c, err.Error())
			return
		}
		response.ServerError(c, "获取工单失败")
		return
	}
	response.Success(c, job)
}

// ListSchedule 已排程的工序，按日历事件返回
// GET /api/v1/schedule
func (h *JobHandler) ListSchedule(c *gin.Context) {
	events, err := h.jobService.ListSchedule()
	if err != nil {
		response.ServerError(c, "获取排程失败")
		return
	}
	response.Success(c, events)
}

// SetSchedule 设置工序的排程日期
// POST /api/v1/schedule
func (h *JobHandler) SetSchedule(c *gin.Context) {
	var req dto.SetScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	op, err := h.jobService.SetSchedule(&req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidDate):
			response.ParamError(c, err.Error())
		case errors.Is(err, service.ErrOperationNotFound):
			response.NotFoundError(c, err.Error())
		default:
			response.ServerError(c, "设置排程失败")
		}
		return
	}
	response.SuccessWithMessage(c, "排程已更新", op)
}
