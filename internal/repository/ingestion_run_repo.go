package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/shoplead/shoplead_server/internal/model"
)

type IngestionRunRepository struct {
	db *gorm.DB
}

func NewIngestionRunRepository(db *gorm.DB) *IngestionRunRepository {
	return &IngestionRunRepository{db: db}
}

func (r *IngestionRunRepository) Create(run *model.IngestionRun) error {
	return r.db.Create(run).Error
}

func (r *IngestionRunRepository) GetByID(id int64) (*model.IngestionRun, error) {
	var run model.IngestionRun
	err := r.db.Where("id = ?", id).First(&run).Error
	if err != nil {
		return nil, err
	}
	return &run, nil
}

func (r *IngestionRunRepository) Update(run *model.IngestionRun) error {
	return r.db.Save(run).Error
}

func (r *IngestionRunRepository) UpdateStep(id int64, step string) error {
	return r.db.Model(&model.IngestionRun{}).Where("id = ?", id).Update("current_step", step).Error
}

// ListRecent 最近的导入记录
func (r *IngestionRunRepository) ListRecent(limit int) ([]*model.IngestionRun, error) {
	var runs []*model.IngestionRun
	err := r.db.Order("created_at DESC, id DESC").Limit(limit).Find(&runs).Error
	return runs, err
}

// GetPendingRuns 获取排队中的导入
func (r *IngestionRunRepository) GetPendingRuns(limit int) ([]*model.IngestionRun, error) {
	var runs []*model.IngestionRun
	err := r.db.Where("status = ?", model.RunStatusQueued).
		Order("created_at ASC").
		Limit(limit).
		Find(&runs).Error
	return runs, err
}

// FailStale 将开始时间早于 before 仍在处理中的导入标记为失败
func (r *IngestionRunRepository) FailStale(before time.Time, message string) (int64, error) {
	result := r.db.Model(&model.IngestionRun{}).
		Where("status = ? AND started_at < ?", model.RunStatusProcessing, before).
		Updates(map[string]interface{}{
			"status":        model.RunStatusFailed,
			"error_message": message,
			"completed_at":  time.Now(),
		})
	return result.RowsAffected, result.Error
}
