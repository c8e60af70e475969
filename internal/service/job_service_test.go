package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoplead/shoplead_server/internal/model/dto"
	"github.com/shoplead/shoplead_server/internal/repository"
	"github.com/shoplead/shoplead_server/internal/testutil"
)

func setupJobService(t *testing.T) (*JobService, func()) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	_, wo := testutil.TestJob(t, db, "1001", testutil.WithCustomer("Acme"))
	testutil.TestOperation(t, db, wo.ID, 10, "MILL", 40, 10, testutil.WithScheduledDate(time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC)))
	testutil.TestOperation(t, db, wo.ID, 20, "NCR", 5, 5)

	svc := NewJobService(repository.NewJobRepository(db), repository.NewOperationRepository(db))
	return svc, func() { testutil.CleanupTestDB(t, db) }
}

func TestJobService_ListAndGet(t *testing.T) {
	svc, cleanup := setupJobService(t)
	defer cleanup()

	jobs, err := svc.List()
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "Acme", jobs[0].CustomerName)

	job, err := svc.Get("1001")
	require.NoError(t, err)
	require.Len(t, job.WorkOrders, 1)
	assert.Len(t, job.WorkOrders[0].Operations, 2)

	_, err = svc.Get("9999")
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestJobService_Schedule(t *testing.T) {
	svc, cleanup := setupJobService(t)
	defer cleanup()

	events, err := svc.ListSchedule()
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "1001 - Op 10", events[0].Title)
	assert.Equal(t, "2024-03-08", events[0].Start)
	assert.Equal(t, "MILL", events[0].WorkCenter)
	assert.Equal(t, "In Progress", events[0].Status)

	job, err := svc.Get("1001")
	require.NoError(t, err)
	ncrOp := job.WorkOrders[0].Operations[1]

	op, err := svc.SetSchedule(&dto.SetScheduleRequest{OperationID: ncrOp.ID, Date: "2024-03-04"})
	require.NoError(t, err)
	require.NotNil(t, op.ScheduledDate)
	assert.Equal(t, "2024-03-04", op.ScheduledDate.Format(ScheduleDateLayout))

	events, err = svc.ListSchedule()
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, ncrOp.ID, events[0].ID)
	assert.Equal(t, "2024-03-04", events[0].Start)
}

func TestJobService_SetScheduleErrors(t *testing.T) {
	svc, cleanup := setupJobService(t)
	defer cleanup()

	_, err := svc.SetSchedule(&dto.SetScheduleRequest{OperationID: 9999, Date: "2024-03-04"})
	assert.ErrorIs(t, err, ErrOperationNotFound)

	_, err = svc.SetSchedule(&dto.SetScheduleRequest{OperationID: 1, Date: "03/04/2024"})
	assert.ErrorIs(t, err, ErrInvalidDate)
}
