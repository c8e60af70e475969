package service

import (
	"log"

	"github.com/shoplead/shoplead_server/internal/model"
	"github.com/shoplead/shoplead_server/internal/model/dto"
	"github.com/shoplead/shoplead_server/internal/pkg/sheet"
	"github.com/shoplead/shoplead_server/internal/repository"
	"github.com/shoplead/shoplead_server/internal/schema"
)

type WorkLogService struct {
	logRepo   *repository.WorkLogRepository
	batchSize int
}

func NewWorkLogService(logRepo *repository.WorkLogRepository, batchSize int) *WorkLogService {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &WorkLogService{logRepo: logRepo, batchSize: batchSize}
}

// Import 追加员工工时记录，无法解析的行跳过
func (s *WorkLogService) Import(filename string, table *sheet.Table) (*dto.WorkLogImportResult, error) {
	rows, err := schema.Normalize(table, schema.WorkLogColumns)
	if err != nil {
		log.Printf("worklog import %s: rejected: %v", filename, err)
		return nil, err
	}

	logs := make([]*model.WorkLog, 0, len(rows))
	issues := []model.RowIssue{}
	for _, row := range rows {
		rec, err := schema.ToWorkLogRecord(row)
		if err != nil {
			log.Printf("worklog import %s: skip row %d: %v", filename, row.Index, err)
			issues = append(issues, rowIssue(row.Index, err))
			continue
		}
		logs = append(logs, &model.WorkLog{
			EmployeeID:           rec.EmployeeID,
			EmployeeName:         rec.EmployeeName,
			JobNumber:            rec.JobNumber,
			WorkOrder:            rec.WorkOrderNumber,
			OperationNumber:      rec.OperationNumber,
			OperationDescription: rec.OperationDescription,
			ActualHours:          rec.ActualHours,
			PostingDate:          rec.PostingDate,
			AdjustmentText:       rec.AdjustmentText,
			NonProdCode:          rec.NonProdCode,
		})
	}

	if err := s.logRepo.CreateBatch(logs, s.batchSize); err != nil {
		return nil, err
	}

	log.Printf("worklog import %s: %d rows, %d imported, %d skipped", filename, len(rows), len(logs), len(issues))
	return &dto.WorkLogImportResult{
		RowsTotal:   len(rows),
		RowsSkipped: len(issues),
		Imported:    len(logs),
		RowIssues:   issues,
	}, nil
}

// List jobNumber 为空时返回全部
func (s *WorkLogService) List(jobNumber string, limit int) ([]*model.WorkLog, error) {
	if limit <= 0 || limit > 1000 {
		limit = 200
	}
	logs, err := s.logRepo.List(jobNumber, limit)
	if err != nil {
		return nil, err
	}
	if logs == nil {
		logs = []*model.WorkLog{}
	}
	return logs, nil
}
