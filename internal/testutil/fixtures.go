package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/shoplead/shoplead_server/internal/model"
)

// TestJob 创建测试 Job 以及同号的 WorkOrder
func TestJob(t *testing.T, db *gorm.DB, jobNumber string, opts ...func(*model.Job)) (*model.Job, *model.WorkOrder) {
	t.Helper()

	job := &model.Job{JobNumber: jobNumber}
	for _, opt := range opts {
		opt(job)
	}
	if err := db.Create(job).Error; err != nil {
		t.Fatalf("Failed to create test job: %v", err)
	}

	wo := &model.WorkOrder{WorkOrderNumber: jobNumber, JobID: job.ID}
	if err := db.Create(wo).Error; err != nil {
		t.Fatalf("Failed to create test work order: %v", err)
	}

	return job, wo
}

// WithCustomer 设置客户名
func WithCustomer(name string) func(*model.Job) {
	return func(j *model.Job) {
		j.CustomerName = name
	}
}

// TestOperation 创建测试工序，状态由工时推导
func TestOperation(t *testing.T, db *gorm.DB, workOrderID int64, number int, workCenter string, planned, actual float64, opts ...func(*model.Operation)) *model.Operation {
	t.Helper()

	op := &model.Operation{
		WorkOrderID:     workOrderID,
		OperationNumber: number,
		WorkCenter:      workCenter,
		Description:     fmt.Sprintf("Operation %d", number),
	}
	op.SetHours(planned, actual, time.Now())

	for _, opt := range opts {
		opt(op)
	}

	if err := db.Create(op).Error; err != nil {
		t.Fatalf("Failed to create test operation: %v", err)
	}

	return op
}

// WithScheduledDate 设置排程日期
func WithScheduledDate(date time.Time) func(*model.Operation) {
	return func(o *model.Operation) {
		o.ScheduledDate = &date
	}
}

// TestNCR 创建测试 NCR，默认为导入生成的 Active 记录
func TestNCR(t *testing.T, db *gorm.DB, opts ...func(*model.NCRTracker)) *model.NCRTracker {
	t.Helper()

	ncr := &model.NCRTracker{
		NCRNumber:        fmt.Sprintf("NCR-TEST%08d", time.Now().UnixNano()%100000000),
		JobNumber:        "1001",
		WorkOrder:        "1001",
		OperationNumber:  20,
		PlannedHours:     5,
		ActualHours:      5,
		IssueDescription: "No issue description provided",
		IssueCategory:    "Uncategorized",
		RootCause:        "Unknown",
		CorrectiveAction: "None",
		FinancialImpact:  decimal.Zero,
		Status:           model.NCRStatusActive,
		Source:           "ingest",
	}

	for _, opt := range opts {
		opt(ncr)
	}

	if err := db.Create(ncr).Error; err != nil {
		t.Fatalf("Failed to create test ncr: %v", err)
	}

	return ncr
}

// WithNCRNumber 设置 NCR 编号
func WithNCRNumber(number string) func(*model.NCRTracker) {
	return func(n *model.NCRTracker) {
		n.NCRNumber = number
	}
}

// WithNCRSource 设置来源工序
func WithNCRSource(jobNumber, workOrder string, operation int) func(*model.NCRTracker) {
	return func(n *model.NCRTracker) {
		n.JobNumber = jobNumber
		n.WorkOrder = workOrder
		n.OperationNumber = operation
	}
}

// WithNCRStatus 设置 NCR 状态
func WithNCRStatus(status model.NCRStatus) func(*model.NCRTracker) {
	return func(n *model.NCRTracker) {
		n.Status = status
	}
}

// TestRun 创建测试导入记录
func TestRun(t *testing.T, db *gorm.DB, status string, opts ...func(*model.IngestionRun)) *model.IngestionRun {
	t.Helper()

	run := &model.IngestionRun{
		UserID:   1,
		Filename: "extract.csv",
		Mode:     model.IngestModeUpsert,
		Status:   status,
	}

	for _, opt := range opts {
		opt(run)
	}

	if err := db.Create(run).Error; err != nil {
		t.Fatalf("Failed to create test run: %v", err)
	}

	return run
}

// WithStartedAt 设置开始时间
func WithStartedAt(at time.Time) func(*model.IngestionRun) {
	return func(r *model.IngestionRun) {
		r.StartedAt = &at
	}
}

// TestWorkLog 创建测试工时记录
func TestWorkLog(t *testing.T, db *gorm.DB, jobNumber string, hours float64, postedOn time.Time) *model.WorkLog {
	t.Helper()

	wl := &model.WorkLog{
		EmployeeID:      42,
		EmployeeName:    "Dana",
		JobNumber:       jobNumber,
		WorkOrder:       jobNumber,
		OperationNumber: 10,
		ActualHours:     hours,
		PostingDate:     postedOn,
	}

	if err := db.Create(wl).Error; err != nil {
		t.Fatalf("Failed to create test work log: %v", err)
	}

	return wl
}
