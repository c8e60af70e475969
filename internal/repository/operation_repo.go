package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/shoplead/shoplead_server/internal/metrics"
	"github.com/shoplead/shoplead_server/internal/model"
)

// ScheduledOperation 已排程工序及其所属 Job / 工单编号
type ScheduledOperation struct {
	OperationID     int64
	JobNumber       string
	WorkOrderNumber string
	OperationNumber int
	WorkCenter      string
	Description     string
	Status          model.OperationStatus
	ScheduledDate   time.Time
}

type OperationRepository struct {
	db *gorm.DB
}

func NewOperationRepository(db *gorm.DB) *OperationRepository {
	return &OperationRepository{db: db}
}

func (r *OperationRepository) Create(op *model.Operation) error {
	return r.db.Create(op).Error
}

func (r *OperationRepository) Update(op *model.Operation) error {
	return r.db.Save(op).Error
}

func (r *OperationRepository) GetByID(id int64) (*model.Operation, error) {
	var op model.Operation
	err := r.db.Where("id = ?", id).First(&op).Error
	if err != nil {
		return nil, err
	}
	return &op, nil
}

// GetByKey 按自然键 (工单, 工序号) 查找
func (r *OperationRepository) GetByKey(workOrderID int64, operationNumber int) (*model.Operation, error) {
	var op model.Operation
	err := r.db.Where("work_order_id = ? AND operation_number = ?", workOrderID, operationNumber).First(&op).Error
	if err != nil {
		return nil, err
	}
	return &op, nil
}

func (r *OperationRepository) SetScheduledDate(id int64, date time.Time) error {
	return r.db.Model(&model.Operation{}).Where("id = ?", id).Update("scheduled_date", date).Error
}

// ListLoads 当前全部工序的负荷，工作中心为空时返回全部
func (r *OperationRepository) ListLoads(workCenter string) ([]metrics.Load, error) {
	var loads []metrics.Load
	query := r.db.Table("operations").
		Select("jobs.job_number AS job_number, operations.work_center AS work_center, " +
			"operations.planned_hours AS planned_hours, operations.actual_hours AS actual_hours").
		Joins("JOIN work_orders ON work_orders.id = operations.work_order_id").
		Joins("JOIN jobs ON jobs.id = work_orders.job_id")
	if workCenter != "" {
		query = query.Where("operations.work_center = ?", workCenter)
	}
	err := query.Scan(&loads).Error
	return loads, err
}

// ListScheduled 已设置排程日期的工序
func (r *OperationRepository) ListScheduled() ([]ScheduledOperation, error) {
	var rows []ScheduledOperation
	err := r.db.Table("operations").
		Select("operations.id AS operation_id, jobs.job_number AS job_number, " +
			"work_orders.work_order_number AS work_order_number, operations.operation_number AS operation_number, " +
			"operations.work_center AS work_center, operations.description AS description, " +
			"operations.status AS status, operations.scheduled_date AS scheduled_date").
		Joins("JOIN work_orders ON work_orders.id = operations.work_order_id").
		Joins("JOIN jobs ON jobs.id = work_orders.job_id").
		Where("operations.scheduled_date IS NOT NULL").
		Order("operations.scheduled_date ASC, jobs.job_number ASC, operations.operation_number ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *OperationRepository) ExistsWorkCenter(workCenter string) (bool, error) {
	var count int64
	err := r.db.Model(&model.Operation{}).Where("work_center = ?", workCenter).Count(&count).Error
	return count > 0, err
}

func (r *OperationRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&model.Operation{}).Count(&count).Error
	return count, err
}

// CountByStatus 各状态的工序数量
func (r *OperationRepository) CountByStatus() (map[model.OperationStatus]int64, error) {
	var rows []struct {
		Status model.OperationStatus
		Count  int64
	}
	err := r.db.Model(&model.Operation{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[model.OperationStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
