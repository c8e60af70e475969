package repository

import (
	"gorm.io/gorm"

	"github.com/shoplead/shoplead_server/internal/model"
)

type NCRRepository struct {
	db *gorm.DB
}

func NewNCRRepository(db *gorm.DB) *NCRRepository {
	return &NCRRepository{db: db}
}

func (r *NCRRepository) Create(ncr *model.NCRTracker) error {
	return r.db.Create(ncr).Error
}

func (r *NCRRepository) Update(ncr *model.NCRTracker) error {
	return r.db.Save(ncr).Error
}

func (r *NCRRepository) GetByNumber(number string) (*model.NCRTracker, error) {
	var ncr model.NCRTracker
	err := r.db.Where("ncr_number = ?", number).First(&ncr).Error
	if err != nil {
		return nil, err
	}
	return &ncr, nil
}

// GetBySource 查找由同一道工序导入生成的 NCR
func (r *NCRRepository) GetBySource(jobNumber, workOrder string, operationNumber int) (*model.NCRTracker, error) {
	var ncr model.NCRTracker
	err := r.db.Where("job_number = ? AND work_order = ? AND operation_number = ? AND source = ?",
		jobNumber, workOrder, operationNumber, model.NCRSourceIngest).
		Order("id ASC").
		First(&ncr).Error
	if err != nil {
		return nil, err
	}
	return &ncr, nil
}

// List 状态为空时返回全部，按创建时间倒序
func (r *NCRRepository) List(status model.NCRStatus) ([]*model.NCRTracker, error) {
	var ncrs []*model.NCRTracker
	query := r.db.Model(&model.NCRTracker{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	err := query.Order("created_at DESC, id DESC").Find(&ncrs).Error
	return ncrs, err
}

func (r *NCRRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&model.NCRTracker{}).Count(&count).Error
	return count, err
}
