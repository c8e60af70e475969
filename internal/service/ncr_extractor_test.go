package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoplead/shoplead_server/internal/model"
	"github.com/shoplead/shoplead_server/internal/repository"
	"github.com/shoplead/shoplead_server/internal/schema"
	"github.com/shoplead/shoplead_server/internal/testutil"
)

func withDefaults(rec *schema.Record) *schema.Record {
	rec.Narrative = schema.Narrative{
		IssueDescription: schema.DefaultIssueDescription,
		IssueCategory:    schema.DefaultIssueCategory,
		RootCause:        schema.DefaultRootCause,
		CorrectiveAction: schema.DefaultCorrectiveAction,
		FinancialImpact:  decimal.Zero,
	}
	return rec
}

func TestIsNCRWorkCenter(t *testing.T) {
	tests := []struct {
		workCenter string
		want       bool
	}{
		{"NCR", true},
		{"ncr", true},
		{" Ncr ", true},
		{"NCR-2", false},
		{"MILL", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsNCRWorkCenter(tt.workCenter), tt.workCenter)
	}
}

func TestGenerateNCRNumber(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		n := GenerateNCRNumber()
		assert.Regexp(t, `^NCR-[0-9A-F]{12}$`, n)
		assert.False(t, seen[n])
		seen[n] = true
	}
}

func TestExtractNCRs(t *testing.T) {
	active := withDefaults(record("1001", 20, "ncr", 5, 3))
	active.PartName = "Bracket"
	pending := withDefaults(record("1002", 30, "NCR", 2, 0))

	ncrs := ExtractNCRs([]*schema.Record{
		withDefaults(record("1001", 10, "MILL", 40, 10)),
		active,
		pending,
	})
	require.Len(t, ncrs, 2)

	assert.Equal(t, model.NCRStatusActive, ncrs[0].Status)
	assert.Equal(t, "1001", ncrs[0].JobNumber)
	assert.Equal(t, "1001", ncrs[0].WorkOrder)
	assert.Equal(t, 20, ncrs[0].OperationNumber)
	assert.Equal(t, "Bracket", ncrs[0].PartName)
	assert.Equal(t, 3.0, ncrs[0].ActualHours)
	assert.Equal(t, model.NCRSourceIngest, ncrs[0].Source)
	assert.Equal(t, schema.DefaultIssueDescription, ncrs[0].IssueDescription)
	assert.Equal(t, schema.DefaultIssueCategory, ncrs[0].IssueCategory)
	assert.Equal(t, schema.DefaultRootCause, ncrs[0].RootCause)
	assert.Equal(t, schema.DefaultCorrectiveAction, ncrs[0].CorrectiveAction)
	assert.True(t, ncrs[0].FinancialImpact.IsZero())

	assert.Equal(t, model.NCRStatusPending, ncrs[1].Status)
	assert.NotEqual(t, ncrs[0].NCRNumber, ncrs[1].NCRNumber)

	assert.Empty(t, ExtractNCRs(nil))
}

func TestPersistNCRs_Dedupe(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	store := repository.NewStore(db)

	existing := testutil.TestNCR(t, db, testutil.WithNCRSource("1001", "1001", 20), testutil.WithNCRStatus(model.NCRStatusPending), func(n *model.NCRTracker) {
		n.RootCause = "Worn tooling"
	})

	ncrs := ExtractNCRs([]*schema.Record{
		withDefaults(record("1001", 20, "NCR", 5, 4)),
		withDefaults(record("1001", 30, "NCR", 1, 0)),
	})
	result, err := PersistNCRs(store, ncrs)
	require.NoError(t, err)
	assert.Len(t, result.Created, 1)
	assert.Equal(t, 1, result.Updated)

	found, err := store.NCRs.GetByNumber(existing.NCRNumber)
	require.NoError(t, err)
	assert.Equal(t, 4.0, found.ActualHours)
	assert.Equal(t, model.NCRStatusActive, found.Status)
	assert.Equal(t, "Worn tooling", found.RootCause)

	count, err := store.NCRs.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestPersistNCRs_KeepsClosed(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	store := repository.NewStore(db)

	closed := testutil.TestNCR(t, db, testutil.WithNCRSource("1001", "1001", 20), testutil.WithNCRStatus(model.NCRStatusClosed))

	_, err := PersistNCRs(store, ExtractNCRs([]*schema.Record{withDefaults(record("1001", 20, "NCR", 5, 5))}))
	require.NoError(t, err)

	found, err := store.NCRs.GetByNumber(closed.NCRNumber)
	require.NoError(t, err)
	assert.Equal(t, model.NCRStatusClosed, found.Status)
	assert.Equal(t, 5.0, found.ActualHours)
}
