package service

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shoplead/shoplead_server/internal/model"
	"github.com/shoplead/shoplead_server/internal/repository"
	"github.com/shoplead/shoplead_server/internal/schema"
)

// NCRWorkCenter 标记不合格品工序的工作中心
const NCRWorkCenter = "NCR"

// IsNCRWorkCenter 忽略大小写和首尾空格
func IsNCRWorkCenter(workCenter string) bool {
	return strings.EqualFold(strings.TrimSpace(workCenter), NCRWorkCenter)
}

// GenerateNCRNumber NCR- 加 12 位大写十六进制
func GenerateNCRNumber() string {
	id := uuid.New()
	return "NCR-" + strings.ToUpper(hex.EncodeToString(id[:6]))
}

// ExtractNCRs 为每条 NCR 工作中心的记录生成一条 NCR，不访问存储
func ExtractNCRs(records []*schema.Record) []*model.NCRTracker {
	var ncrs []*model.NCRTracker
	for _, rec := range records {
		if !IsNCRWorkCenter(rec.WorkCenter) {
			continue
		}
		ncrs = append(ncrs, &model.NCRTracker{
			NCRNumber:        GenerateNCRNumber(),
			JobNumber:        rec.JobNumber,
			WorkOrder:        rec.JobNumber,
			OperationNumber:  rec.OperationNumber,
			PartName:         rec.PartName,
			PlannedHours:     rec.PlannedHours,
			ActualHours:      rec.ActualHours,
			IssueDescription: rec.Narrative.IssueDescription,
			IssueCategory:    rec.Narrative.IssueCategory,
			RootCause:        rec.Narrative.RootCause,
			CorrectiveAction: rec.Narrative.CorrectiveAction,
			FinancialImpact:  rec.Narrative.FinancialImpact,
			Status:           model.NCRStatusForHours(rec.ActualHours),
			Source:           model.NCRSourceIngest,
		})
	}
	return ncrs
}

// NCRPersistResult 写入结果，Created 为新建的记录
type NCRPersistResult struct {
	Created []*model.NCRTracker
	Updated int
}

// PersistNCRs 同一道工序已有导入生成的 NCR 时只刷新工时和状态，
// 人工填写的叙述字段保持不变；已关闭的 NCR 不会被重新打开
func PersistNCRs(store *repository.Store, ncrs []*model.NCRTracker) (*NCRPersistResult, error) {
	result := &NCRPersistResult{}
	for _, ncr := range ncrs {
		existing, err := store.NCRs.GetBySource(ncr.JobNumber, ncr.WorkOrder, ncr.OperationNumber)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if err := store.NCRs.Create(ncr); err != nil {
				return nil, fmt.Errorf("create ncr for %s/%d: %w", ncr.JobNumber, ncr.OperationNumber, err)
			}
			result.Created = append(result.Created, ncr)
			continue
		}
		if err != nil {
			return nil, err
		}

		existing.PlannedHours = ncr.PlannedHours
		existing.ActualHours = ncr.ActualHours
		if ncr.PartName != "" {
			existing.PartName = ncr.PartName
		}
		if existing.Status != model.NCRStatusClosed {
			existing.Status = ncr.Status
		}
		if err := store.NCRs.Update(existing); err != nil {
			return nil, fmt.Errorf("update ncr %s: %w", existing.NCRNumber, err)
		}
		result.Updated++
	}
	return result, nil
}
