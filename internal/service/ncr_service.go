package service

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/shoplead/shoplead_server/internal/model"
	"github.com/shoplead/shoplead_server/internal/model/dto"
	"github.com/shoplead/shoplead_server/internal/repository"
	"github.com/shoplead/shoplead_server/internal/schema"
)

type NCRService struct {
	ncrRepo *repository.NCRRepository
}

func NewNCRService(ncrRepo *repository.NCRRepository) *NCRService {
	return &NCRService{ncrRepo: ncrRepo}
}

// List NCR 报告，status 为空时返回全部
func (s *NCRService) List(status string) ([]*model.NCRTracker, error) {
	if status != "" && !model.ValidNCRStatus(model.NCRStatus(status)) {
		return nil, ErrInvalidNCRStatus
	}
	ncrs, err := s.ncrRepo.List(model.NCRStatus(status))
	if err != nil {
		return nil, err
	}
	if ncrs == nil {
		ncrs = []*model.NCRTracker{}
	}
	return ncrs, nil
}

// ListActive 监控页面只关心 Active 状态
func (s *NCRService) ListActive() ([]*model.NCRTracker, error) {
	return s.List(string(model.NCRStatusActive))
}

func (s *NCRService) Get(number string) (*model.NCRTracker, error) {
	ncr, err := s.ncrRepo.GetByNumber(number)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNCRNotFound
		}
		return nil, err
	}
	return ncr, nil
}

// Submit 人工提交 NCR，未填写的叙述字段使用默认值
func (s *NCRService) Submit(req *dto.SubmitNCRRequest) (*model.NCRTracker, error) {
	status := model.NCRStatus(req.Status)
	if status == "" {
		status = model.NCRStatusForHours(req.ActualHours)
	}
	if !model.ValidNCRStatus(status) {
		return nil, ErrInvalidNCRStatus
	}

	jobNumber := strings.TrimSpace(req.JobNumber)
	workOrder := strings.TrimSpace(req.WorkOrder)
	if workOrder == "" {
		workOrder = jobNumber
	}

	ncr := &model.NCRTracker{
		NCRNumber:        GenerateNCRNumber(),
		JobNumber:        jobNumber,
		WorkOrder:        workOrder,
		OperationNumber:  req.OperationNumber,
		PartName:         req.PartName,
		PlannedHours:     req.PlannedHours,
		ActualHours:      req.ActualHours,
		IssueDescription: orDefault(req.IssueDescription, schema.DefaultIssueDescription),
		IssueCategory:    orDefault(req.IssueCategory, schema.DefaultIssueCategory),
		RootCause:        orDefault(req.RootCause, schema.DefaultRootCause),
		CorrectiveAction: orDefault(req.CorrectiveAction, schema.DefaultCorrectiveAction),
		FinancialImpact:  decimal.NewFromFloat(req.FinancialImpact).Round(2),
		Status:           status,
		Source:           model.NCRSourceManual,
	}
	if err := s.ncrRepo.Create(ncr); err != nil {
		return nil, err
	}
	return ncr, nil
}

// UpdateReport 更新叙述字段与状态，未提供的字段不变
func (s *NCRService) UpdateReport(number string, req *dto.UpdateNCRReportRequest) (*model.NCRTracker, error) {
	ncr, err := s.Get(number)
	if err != nil {
		return nil, err
	}

	if req.Status != nil {
		status := model.NCRStatus(*req.Status)
		if !model.ValidNCRStatus(status) {
			return nil, ErrInvalidNCRStatus
		}
		ncr.Status = status
	}
	if req.IssueDescription != nil {
		ncr.IssueDescription = *req.IssueDescription
	}
	if req.IssueCategory != nil {
		ncr.IssueCategory = *req.IssueCategory
	}
	if req.RootCause != nil {
		ncr.RootCause = *req.RootCause
	}
	if req.CorrectiveAction != nil {
		ncr.CorrectiveAction = *req.CorrectiveAction
	}
	if req.FinancialImpact != nil {
		ncr.FinancialImpact = decimal.NewFromFloat(*req.FinancialImpact).Round(2)
	}

	if err := s.ncrRepo.Update(ncr); err != nil {
		return nil, err
	}
	return ncr, nil
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
