package schema

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoplead/shoplead_server/internal/pkg/sheet"
)

func newTable(headers []string, rows ...[]string) *sheet.Table {
	return &sheet.Table{Headers: headers, Rows: rows}
}

func TestResolve_Synonyms(t *testing.T) {
	canonical, err := Resolve([]string{"Order", "Oper./Act.", "Oper.WorkCenter", "Work", "Actual work"}, OperationColumns)
	require.NoError(t, err)

	synonyms, err := Resolve([]string{" job ", "operation", "work_center", "planned_hours", "actual_hours"}, OperationColumns)
	require.NoError(t, err)

	assert.Equal(t, 1, canonical[FieldOperation])
	assert.Equal(t, 1, synonyms[FieldOperation])
	assert.Equal(t, canonical[FieldWork], synonyms[FieldWork])

	_, hasDescription := canonical[FieldDescription]
	assert.False(t, hasDescription)
}

func TestResolve_FirstSpellingWins(t *testing.T) {
	mapping, err := Resolve([]string{"planned", "order", "operation", "workcenter", "work", "actual"}, OperationColumns)
	require.NoError(t, err)
	// "work" 排在 "planned" 之前
	assert.Equal(t, 4, mapping[FieldWork])
}

func TestResolve_MissingWork(t *testing.T) {
	_, err := Resolve([]string{"order", "operation", "work_center", "actual work"}, OperationColumns)
	require.Error(t, err)

	assert.True(t, errors.Is(err, ErrStructural))
	var missing *MissingColumnError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{FieldWork}, missing.Fields())
	assert.Contains(t, err.Error(), `"work"`)
}

func TestResolve_MissingSeveral(t *testing.T) {
	_, err := Resolve([]string{"order"}, OperationColumns)

	var missing *MissingColumnError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{FieldOperation, FieldWorkCenter, FieldWork, FieldActualWork}, missing.Fields())
}

func TestNormalize_EmptyTable(t *testing.T) {
	_, err := Normalize(nil, OperationColumns)
	assert.ErrorIs(t, err, ErrEmptyTable)

	_, err = Normalize(&sheet.Table{}, OperationColumns)
	assert.ErrorIs(t, err, ErrEmptyTable)
	assert.True(t, IsStructural(err))

	_, err = Normalize(newTable([]string{"order", "operation", "workcenter", "work", "actual"}), OperationColumns)
	assert.ErrorIs(t, err, ErrNoRows)
}

func TestNormalize_Defaults(t *testing.T) {
	table := newTable(
		[]string{"Order", "Oper./Act.", "Oper.WorkCenter", "Work", "Actual work"},
		[]string{"1001", "10", "MILL", "40", ""},
	)

	rows, err := Normalize(table, OperationColumns)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	row := rows[0]
	assert.Equal(t, 1, row.Index)
	assert.Equal(t, "0", row.Get(FieldActualWork))
	assert.Equal(t, "", row.Get(FieldDescription))
	assert.Equal(t, DefaultIssueDescription, row.Get(FieldIssueDescription))
	assert.Equal(t, DefaultIssueCategory, row.Get(FieldIssueCategory))
	assert.Equal(t, DefaultRootCause, row.Get(FieldRootCause))
	assert.Equal(t, DefaultCorrectiveAction, row.Get(FieldCorrectiveAction))
}

func TestToRecord(t *testing.T) {
	table := newTable(
		[]string{"Order", "Oper./Act.", "Oper.WorkCenter", "Work", "Actual work", "Customer", "Scheduled Date", "Financial Impact"},
		[]string{"1001.0", "20", "NCR", "5", "5", "Acme", "2024-03-04", "$1,250.50"},
	)
	rows, err := Normalize(table, OperationColumns)
	require.NoError(t, err)

	rec, err := ToRecord(rows[0])
	require.NoError(t, err)

	assert.Equal(t, "1001", rec.JobNumber)
	assert.Equal(t, "1001", rec.WorkOrderNumber)
	assert.Equal(t, 20, rec.OperationNumber)
	assert.Equal(t, "NCR", rec.WorkCenter)
	assert.Equal(t, 5.0, rec.PlannedHours)
	assert.Equal(t, 5.0, rec.ActualHours)
	assert.Equal(t, "Acme", rec.CustomerName)
	require.NotNil(t, rec.ScheduledDate)
	assert.Equal(t, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), *rec.ScheduledDate)
	assert.True(t, decimal.RequireFromString("1250.50").Equal(rec.Narrative.FinancialImpact))
	assert.Equal(t, DefaultIssueDescription, rec.Narrative.IssueDescription)
}

func TestToRecord_RowErrors(t *testing.T) {
	headers := []string{"order", "operation", "workcenter", "work", "actual"}
	tests := []struct {
		name  string
		cells []string
		field string
		cause error
	}{
		{"non numeric work", []string{"1001", "10", "MILL", "abc", "1"}, FieldWork, ErrNotNumber},
		{"empty work", []string{"1001", "10", "MILL", "", "1"}, FieldWork, ErrRequiredValue},
		{"negative actual", []string{"1001", "10", "MILL", "4", "-1"}, FieldActualWork, ErrNegative},
		{"fractional operation", []string{"1001", "10.5", "MILL", "4", "1"}, FieldOperation, ErrNotInteger},
		{"missing order", []string{"", "10", "MILL", "4", "1"}, FieldOrder, ErrRequiredValue},
		{"missing work center", []string{"1001", "10", "", "4", "1"}, FieldWorkCenter, ErrRequiredValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := Normalize(newTable(headers, tt.cells), OperationColumns)
			require.NoError(t, err)

			_, err = ToRecord(rows[0])
			var rowErr *RowError
			require.ErrorAs(t, err, &rowErr)
			assert.Equal(t, 1, rowErr.Row)
			assert.Equal(t, tt.field, rowErr.Field)
			assert.ErrorIs(t, err, tt.cause)
			assert.False(t, IsStructural(err))
		})
	}
}

func TestToRecord_BadScheduledDate(t *testing.T) {
	rows, err := Normalize(newTable(
		[]string{"order", "operation", "workcenter", "work", "actual", "scheduled_date"},
		[]string{"1001", "10", "MILL", "4", "1", "next tuesday"},
	), OperationColumns)
	require.NoError(t, err)

	_, err = ToRecord(rows[0])
	assert.ErrorIs(t, err, ErrBadDate)
}

func TestParseDate(t *testing.T) {
	want := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	for _, raw := range []string{"2024-01-15", "2024-01-15T08:30:00Z", "2024/01/15", "01/15/2024", "1/15/2024", "45306"} {
		got, err := ParseDate(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}

	_, err := ParseDate("15.01.2024")
	assert.ErrorIs(t, err, ErrBadDate)
}

func TestToWorkLogRecord(t *testing.T) {
	table := newTable(
		[]string{"Employee ID", "Employee Name", "Order", "Operation", "Actual Hours", "Posting Date", "Non-Prod Code"},
		[]string{"42", "Dana", "1001", "10", "7.5", "03/15/2024", ""},
		[]string{"43", "Lee", "1001", "20", "2", "2024-03-15", ""},
	)
	rows, err := Normalize(table, WorkLogColumns)
	require.NoError(t, err)

	rec, err := ToWorkLogRecord(rows[0])
	require.NoError(t, err)
	assert.Equal(t, int64(42), rec.EmployeeID)
	assert.Equal(t, "1001", rec.WorkOrderNumber)
	assert.Equal(t, 7.5, rec.ActualHours)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), rec.PostingDate)

	// 过账日期只接受 MM/DD/YYYY
	_, err = ToWorkLogRecord(rows[1])
	var rowErr *RowError
	require.ErrorAs(t, err, &rowErr)
	assert.Equal(t, 2, rowErr.Row)
	assert.Equal(t, FieldPostingDate, rowErr.Field)
}
