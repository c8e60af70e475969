package service

import (
	"fmt"
	"time"

	"github.com/shoplead/shoplead_server/internal/model"
	"github.com/shoplead/shoplead_server/internal/model/dto"
	"github.com/shoplead/shoplead_server/internal/repository"
)

// ScheduleDateLayout 排程日期格式
const ScheduleDateLayout = "2006-01-02"

type JobService struct {
	jobRepo *repository.JobRepository
	opRepo  *repository.OperationRepository
}

func NewJobService(jobRepo *repository.JobRepository, opRepo *repository.OperationRepository) *JobService {
	return &JobService{jobRepo: jobRepo, opRepo: opRepo}
}

// List 全部 Job 及其工单、工序
func (s *JobService) List() ([]*model.Job, error) {
	jobs, err := s.jobRepo.ListWithHierarchy()
	if err != nil {
		return nil, err
	}
	if jobs == nil {
		jobs = []*model.Job{}
	}
	return jobs, nil
}

// Get 按 Job 编号查询
func (s *JobService) Get(jobNumber string) (*model.Job, error) {
	job, err := s.jobRepo.GetByNumberWithHierarchy(jobNumber)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrJobNotFound
		}
		return nil, err
	}
	return job, nil
}

// ListSchedule 已排程工序的日历事件
func (s *JobService) ListSchedule() ([]dto.ScheduleEvent, error) {
	rows, err := s.opRepo.ListScheduled()
	if err != nil {
		return nil, err
	}

	events := make([]dto.ScheduleEvent, 0, len(rows))
	for _, row := range rows {
		events = append(events, dto.ScheduleEvent{
			ID:              row.OperationID,
			Title:           fmt.Sprintf("%s - Op %d", row.WorkOrderNumber, row.OperationNumber),
			Start:           row.ScheduledDate.Format(ScheduleDateLayout),
			JobNumber:       row.JobNumber,
			WorkOrder:       row.WorkOrderNumber,
			OperationNumber: row.OperationNumber,
			WorkCenter:      row.WorkCenter,
			Status:          string(row.Status),
		})
	}
	return events, nil
}

// SetSchedule 设置工序的排程日期
func (s *JobService) SetSchedule(req *dto.SetScheduleRequest) (*model.Operation, error) {
	date, err := time.Parse(ScheduleDateLayout, req.Date)
	if err != nil {
		return nil, ErrInvalidDate
	}

	op, err := s.opRepo.GetByID(req.OperationID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrOperationNotFound
		}
		return nil, err
	}

	if err := s.opRepo.SetScheduledDate(op.ID, date); err != nil {
		return nil, err
	}
	op.ScheduledDate = &date
	return op, nil
}
