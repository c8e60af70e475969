package service

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/shoplead/shoplead_server/internal/model"
	"github.com/shoplead/shoplead_server/internal/repository"
	"github.com/shoplead/shoplead_server/internal/schema"
)

// BuildResult 一次构建写入的实体数量
type BuildResult struct {
	JobsCreated       int
	WorkOrdersCreated int
	OperationsCreated int
	OperationsUpdated int
	// Skipped 与已有层级冲突而跳过的行
	Skipped []*schema.RowError

	workCenters map[string]struct{}
}

// SkippedRows 被跳过的行号
func (r *BuildResult) SkippedRows() map[int]struct{} {
	rows := make(map[int]struct{}, len(r.Skipped))
	for _, e := range r.Skipped {
		rows[e.Row] = struct{}{}
	}
	return rows
}

// WorkCenters 本次涉及的工作中心，按名称排序
func (r *BuildResult) WorkCenters() []string {
	names := make([]string, 0, len(r.workCenters))
	for name := range r.workCenters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HierarchyBuilder 把记录还原成 Job -> WorkOrder -> Operation 层级。
// 缓存只在一次导入内有效，跨导入的互斥由调用方的锁保证
type HierarchyBuilder struct {
	jobs       map[string]*model.Job
	workOrders map[string]*model.WorkOrder
	now        func() time.Time
	result     BuildResult
}

func NewHierarchyBuilder() *HierarchyBuilder {
	return &HierarchyBuilder{
		jobs:       make(map[string]*model.Job),
		workOrders: make(map[string]*model.WorkOrder),
		now:        time.Now,
		result:     BuildResult{workCenters: make(map[string]struct{})},
	}
}

// Result 目前为止的累计结果
func (b *HierarchyBuilder) Result() *BuildResult {
	return &b.result
}

// Reset 清空缓存。replace 模式删除全部数据后必须调用
func (b *HierarchyBuilder) Reset() {
	b.jobs = make(map[string]*model.Job)
	b.workOrders = make(map[string]*model.WorkOrder)
}

// Apply 在给定的 store（通常是事务句柄）上写入一组记录。
// 工单已属于其他 Job 的行跳过并记入 Skipped，遇到持久化错误立即返回
func (b *HierarchyBuilder) Apply(store *repository.Store, records []*schema.Record) error {
	for _, rec := range records {
		err := b.applyRecord(store, rec)
		var rowErr *schema.RowError
		if errors.As(err, &rowErr) {
			b.result.Skipped = append(b.result.Skipped, rowErr)
			continue
		}
		if err != nil {
			return fmt.Errorf("row %d: %w", rec.Row, err)
		}
	}
	return nil
}

func (b *HierarchyBuilder) applyRecord(store *repository.Store, rec *schema.Record) error {
	wo, err := b.findWorkOrder(store, rec.WorkOrderNumber)
	if err != nil {
		return err
	}
	job, err := b.findJob(store, rec.JobNumber)
	if err != nil {
		return err
	}
	if wo != nil && (job == nil || wo.JobID != job.ID) {
		return &schema.RowError{Row: rec.Row, Field: schema.FieldWorkOrder, Value: rec.WorkOrderNumber, Err: ErrWorkOrderConflict}
	}

	if job, err = b.ensureJob(store, job, rec); err != nil {
		return err
	}
	if wo == nil {
		if wo, err = b.createWorkOrder(store, job, rec.WorkOrderNumber); err != nil {
			return err
		}
	}

	b.result.workCenters[rec.WorkCenter] = struct{}{}

	op, err := store.Operations.GetByKey(wo.ID, rec.OperationNumber)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		op = &model.Operation{
			WorkOrderID:     wo.ID,
			OperationNumber: rec.OperationNumber,
			WorkCenter:      rec.WorkCenter,
			Description:     rec.Description,
			ScheduledDate:   rec.ScheduledDate,
		}
		op.SetHours(rec.PlannedHours, rec.ActualHours, b.now())
		if err := store.Operations.Create(op); err != nil {
			return fmt.Errorf("create operation %s/%d: %w", wo.WorkOrderNumber, rec.OperationNumber, err)
		}
		b.result.OperationsCreated++
		return nil
	}
	if err != nil {
		return err
	}

	// 行内没有值的字段保留原值，人工排程不会被覆盖
	if rec.WorkCenter != "" {
		op.WorkCenter = rec.WorkCenter
	}
	if rec.Description != "" {
		op.Description = rec.Description
	}
	if rec.ScheduledDate != nil {
		op.ScheduledDate = rec.ScheduledDate
	}
	op.SetHours(rec.PlannedHours, rec.ActualHours, b.now())
	if err := store.Operations.Update(op); err != nil {
		return fmt.Errorf("update operation %s/%d: %w", wo.WorkOrderNumber, rec.OperationNumber, err)
	}
	b.result.OperationsUpdated++
	return nil
}

// findJob 缓存或存储中的 Job，不存在时返回 nil
func (b *HierarchyBuilder) findJob(store *repository.Store, number string) (*model.Job, error) {
	if job, ok := b.jobs[number]; ok {
		return job, nil
	}
	job, err := store.Jobs.GetByNumber(number)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	b.jobs[number] = job
	return job, nil
}

func (b *HierarchyBuilder) ensureJob(store *repository.Store, job *model.Job, rec *schema.Record) (*model.Job, error) {
	if job == nil {
		job = &model.Job{JobNumber: rec.JobNumber, CustomerName: rec.CustomerName}
		if err := store.Jobs.Create(job); err != nil {
			return nil, fmt.Errorf("create job %s: %w", rec.JobNumber, err)
		}
		b.result.JobsCreated++
		b.jobs[rec.JobNumber] = job
		return job, nil
	}

	if rec.CustomerName != "" && job.CustomerName != rec.CustomerName {
		job.CustomerName = rec.CustomerName
		if err := store.Jobs.Update(job); err != nil {
			return nil, fmt.Errorf("update job %s: %w", rec.JobNumber, err)
		}
	}
	return job, nil
}

// findWorkOrder 缓存或存储中的工单，不存在时返回 nil
func (b *HierarchyBuilder) findWorkOrder(store *repository.Store, number string) (*model.WorkOrder, error) {
	if wo, ok := b.workOrders[number]; ok {
		return wo, nil
	}
	wo, err := store.WorkOrders.GetByNumber(number)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	b.workOrders[number] = wo
	return wo, nil
}

func (b *HierarchyBuilder) createWorkOrder(store *repository.Store, job *model.Job, number string) (*model.WorkOrder, error) {
	wo := &model.WorkOrder{WorkOrderNumber: number, JobID: job.ID}
	if err := store.WorkOrders.Create(wo); err != nil {
		return nil, fmt.Errorf("create work order %s: %w", number, err)
	}
	b.result.WorkOrdersCreated++
	b.workOrders[number] = wo
	return wo, nil
}
