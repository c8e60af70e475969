package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoplead/shoplead_server/internal/model"
	"github.com/shoplead/shoplead_server/internal/repository"
	"github.com/shoplead/shoplead_server/internal/schema"
	"github.com/shoplead/shoplead_server/internal/testutil"
)

func record(job string, op int, wc string, planned, actual float64) *schema.Record {
	return &schema.Record{
		JobNumber:       job,
		WorkOrderNumber: job,
		OperationNumber: op,
		WorkCenter:      wc,
		PlannedHours:    planned,
		ActualHours:     actual,
	}
}

func TestHierarchyBuilder_Apply(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	store := repository.NewStore(db)

	builder := NewHierarchyBuilder()
	err := builder.Apply(store, []*schema.Record{
		record("1001", 10, "MILL", 40, 10),
		record("1001", 20, "NCR", 5, 5),
		record("1002", 10, "MILL", 8, 0),
	})
	require.NoError(t, err)

	result := builder.Result()
	assert.Equal(t, 2, result.JobsCreated)
	assert.Equal(t, 2, result.WorkOrdersCreated)
	assert.Equal(t, 3, result.OperationsCreated)
	assert.Zero(t, result.OperationsUpdated)
	assert.Equal(t, []string{"MILL", "NCR"}, result.WorkCenters())

	jobs, err := store.Jobs.ListWithHierarchy()
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Len(t, jobs[0].WorkOrders[0].Operations, 2)
}

func TestHierarchyBuilder_ReusesExistingRows(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	store := repository.NewStore(db)

	scheduled := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	job, wo := testutil.TestJob(t, db, "1001", testutil.WithCustomer("Acme"))
	existing := testutil.TestOperation(t, db, wo.ID, 10, "MILL", 40, 0, testutil.WithScheduledDate(scheduled), func(op *model.Operation) {
		op.Description = "Rough mill"
	})

	builder := NewHierarchyBuilder()
	require.NoError(t, builder.Apply(store, []*schema.Record{record("1001", 10, "MILL", 40, 40)}))

	result := builder.Result()
	assert.Zero(t, result.JobsCreated)
	assert.Zero(t, result.WorkOrdersCreated)
	assert.Equal(t, 1, result.OperationsUpdated)

	op, err := store.Operations.GetByID(existing.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, op.Status)
	assert.NotNil(t, op.CompletedAt)
	// 行内缺失的字段保留人工维护的值
	assert.Equal(t, "Rough mill", op.Description)
	require.NotNil(t, op.ScheduledDate)
	assert.True(t, scheduled.Equal(op.ScheduledDate.UTC()))

	found, err := store.Jobs.GetByNumber("1001")
	require.NoError(t, err)
	assert.Equal(t, job.ID, found.ID)
	assert.Equal(t, "Acme", found.CustomerName)
}

func TestHierarchyBuilder_UpdatesCustomerAndClearsCompletion(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	store := repository.NewStore(db)

	_, wo := testutil.TestJob(t, db, "1001")
	existing := testutil.TestOperation(t, db, wo.ID, 10, "MILL", 10, 10)
	require.NotNil(t, existing.CompletedAt)

	rec := record("1001", 10, "MILL", 20, 10)
	rec.CustomerName = "Globex"
	rec.Description = "Finish mill"

	builder := NewHierarchyBuilder()
	require.NoError(t, builder.Apply(store, []*schema.Record{rec}))

	op, err := store.Operations.GetByID(existing.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusInProgress, op.Status)
	assert.Nil(t, op.CompletedAt)
	assert.Equal(t, "Finish mill", op.Description)

	job, err := store.Jobs.GetByNumber("1001")
	require.NoError(t, err)
	assert.Equal(t, "Globex", job.CustomerName)
}

func TestHierarchyBuilder_SeparateWorkOrder(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	store := repository.NewStore(db)

	rec := record("1001", 10, "MILL", 4, 0)
	rec.WorkOrderNumber = "1001-B"

	builder := NewHierarchyBuilder()
	require.NoError(t, builder.Apply(store, []*schema.Record{record("1001", 10, "MILL", 4, 0), rec}))

	assert.Equal(t, 1, builder.Result().JobsCreated)
	assert.Equal(t, 2, builder.Result().WorkOrdersCreated)
	assert.Equal(t, 2, builder.Result().OperationsCreated)

	job, err := store.Jobs.GetByNumberWithHierarchy("1001")
	require.NoError(t, err)
	assert.Len(t, job.WorkOrders, 2)
}

func TestHierarchyBuilder_DuplicateRowsInOneRun(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	store := repository.NewStore(db)

	builder := NewHierarchyBuilder()
	require.NoError(t, builder.Apply(store, []*schema.Record{
		record("1001", 10, "MILL", 4, 0),
		record("1001", 10, "MILL", 4, 2),
	}))

	assert.Equal(t, 1, builder.Result().OperationsCreated)
	assert.Equal(t, 1, builder.Result().OperationsUpdated)

	ops, err := store.Operations.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(1), ops)
}

func TestHierarchyBuilder_WorkOrderOwnedByAnotherJob(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	store := repository.NewStore(db)

	first := record("A", 10, "MILL", 4, 1)
	first.Row, first.WorkOrderNumber = 1, "W1"
	second := record("B", 20, "LATHE", 4, 1)
	second.Row, second.WorkOrderNumber = 2, "W1"

	builder := NewHierarchyBuilder()
	require.NoError(t, builder.Apply(store, []*schema.Record{first, second}))

	result := builder.Result()
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, 2, result.Skipped[0].Row)
	assert.Equal(t, schema.FieldWorkOrder, result.Skipped[0].Field)
	assert.ErrorIs(t, result.Skipped[0], ErrWorkOrderConflict)
	assert.Equal(t, 1, result.JobsCreated)
	assert.Equal(t, 1, result.OperationsCreated)
	assert.Equal(t, []string{"MILL"}, result.WorkCenters())

	// 冲突行不会留下空 Job
	jobs, err := store.Jobs.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(1), jobs)

	// 工单已在库中时同样拒绝
	again := NewHierarchyBuilder()
	require.NoError(t, again.Apply(store, []*schema.Record{second}))
	require.Len(t, again.Result().Skipped, 1)
	assert.Zero(t, again.Result().JobsCreated)

	loads, err := store.Operations.ListLoads("")
	require.NoError(t, err)
	require.Len(t, loads, 1)
	assert.Equal(t, "A", loads[0].JobNumber)
}
