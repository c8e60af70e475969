package repository

import (
	"gorm.io/gorm"

	"github.com/shoplead/shoplead_server/internal/model"
)

type JobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db: db}
}

func (r *JobRepository) Create(job *model.Job) error {
	return r.db.Create(job).Error
}

func (r *JobRepository) GetByNumber(jobNumber string) (*model.Job, error) {
	var job model.Job
	err := r.db.Where("job_number = ?", jobNumber).First(&job).Error
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// GetByNumberWithHierarchy 同时加载工单与工序
func (r *JobRepository) GetByNumberWithHierarchy(jobNumber string) (*model.Job, error) {
	var job model.Job
	err := r.db.Preload("WorkOrders", orderByNumber("work_order_number")).
		Preload("WorkOrders.Operations", orderByNumber("operation_number")).
		Where("job_number = ?", jobNumber).
		First(&job).Error
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *JobRepository) Update(job *model.Job) error {
	return r.db.Save(job).Error
}

// ListWithHierarchy 全部 Job 及其工单、工序
func (r *JobRepository) ListWithHierarchy() ([]*model.Job, error) {
	var jobs []*model.Job
	err := r.db.Preload("WorkOrders", orderByNumber("work_order_number")).
		Preload("WorkOrders.Operations", orderByNumber("operation_number")).
		Order("job_number ASC").
		Find(&jobs).Error
	return jobs, err
}

func (r *JobRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&model.Job{}).Count(&count).Error
	return count, err
}

// DeleteAll 按依赖顺序删除全部工序、工单和 Job
func (r *JobRepository) DeleteAll() error {
	if err := r.db.Where("1 = 1").Delete(&model.Operation{}).Error; err != nil {
		return err
	}
	if err := r.db.Where("1 = 1").Delete(&model.WorkOrder{}).Error; err != nil {
		return err
	}
	return r.db.Where("1 = 1").Delete(&model.Job{}).Error
}

func orderByNumber(column string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Order(column + " ASC")
	}
}

type WorkOrderRepository struct {
	db *gorm.DB
}

func NewWorkOrderRepository(db *gorm.DB) *WorkOrderRepository {
	return &WorkOrderRepository{db: db}
}

func (r *WorkOrderRepository) Create(wo *model.WorkOrder) error {
	return r.db.Create(wo).Error
}

func (r *WorkOrderRepository) GetByNumber(number string) (*model.WorkOrder, error) {
	var wo model.WorkOrder
	err := r.db.Where("work_order_number = ?", number).First(&wo).Error
	if err != nil {
		return nil, err
	}
	return &wo, nil
}

func (r *WorkOrderRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&model.WorkOrder{}).Count(&count).Error
	return count, err
}
