package repository

import (
	"gorm.io/gorm"

	"github.com/shoplead/shoplead_server/internal/model"
)

type WorkLogRepository struct {
	db *gorm.DB
}

func NewWorkLogRepository(db *gorm.DB) *WorkLogRepository {
	return &WorkLogRepository{db: db}
}

// CreateBatch 批量追加
func (r *WorkLogRepository) CreateBatch(logs []*model.WorkLog, batchSize int) error {
	if len(logs) == 0 {
		return nil
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	return r.db.CreateInBatches(logs, batchSize).Error
}

// List jobNumber 为空时返回全部，按过账日期倒序
func (r *WorkLogRepository) List(jobNumber string, limit int) ([]*model.WorkLog, error) {
	var logs []*model.WorkLog
	query := r.db.Model(&model.WorkLog{})
	if jobNumber != "" {
		query = query.Where("job_number = ?", jobNumber)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Order("posting_date DESC, id DESC").Find(&logs).Error
	return logs, err
}

// SumHoursByJob 某个 Job 的已记录工时合计
func (r *WorkLogRepository) SumHoursByJob(jobNumber string) (float64, error) {
	var total float64
	err := r.db.Model(&model.WorkLog{}).
		Where("job_number = ?", jobNumber).
		Select("COALESCE(SUM(actual_hours), 0)").
		Scan(&total).Error
	return total, err
}
