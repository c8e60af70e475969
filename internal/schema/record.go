package schema

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// PostingDateLayout 工时记录的过账日期格式 MM/DD/YYYY（月日允许一位数）
const PostingDateLayout = "1/2/2006"

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006/01/02",
	"1/2/2006",
	"1-2-06",
	"1/2/06",
}

// Narrative NCR 叙述字段，导出表通常不带，由默认值填充
type Narrative struct {
	IssueDescription string
	IssueCategory    string
	RootCause        string
	CorrectiveAction string
	FinancialImpact  decimal.Decimal
}

// Record 一行工序数据的强类型表示
type Record struct {
	Row             int
	JobNumber       string
	WorkOrderNumber string
	OperationNumber int
	WorkCenter      string
	Description     string
	PlannedHours    float64
	ActualHours     float64
	CustomerName    string
	PartName        string
	ScheduledDate   *time.Time
	Narrative       Narrative
}

// WorkLogRecord 一行员工工时记录
type WorkLogRecord struct {
	Row                  int
	EmployeeID           int64
	EmployeeName         string
	JobNumber            string
	WorkOrderNumber      string
	OperationNumber      int
	OperationDescription string
	ActualHours          float64
	PostingDate          time.Time
	AdjustmentText       string
	NonProdCode          string
}

// ToRecord 转换工序行，失败时返回 *RowError
func ToRecord(row Row) (*Record, error) {
	jobNumber, err := requiredKey(row, FieldOrder)
	if err != nil {
		return nil, err
	}
	opNumber, err := parseWholeNumber(row, FieldOperation)
	if err != nil {
		return nil, err
	}
	workCenter := row.Get(FieldWorkCenter)
	if workCenter == "" {
		return nil, rowError(row, FieldWorkCenter, ErrRequiredValue)
	}
	planned, err := parseHours(row, FieldWork)
	if err != nil {
		return nil, err
	}
	actual, err := parseHours(row, FieldActualWork)
	if err != nil {
		return nil, err
	}
	scheduled, err := parseOptionalDate(row, FieldScheduledDate)
	if err != nil {
		return nil, err
	}
	impact, err := parseMoney(row, FieldFinancialImpact)
	if err != nil {
		return nil, err
	}

	workOrder := normalizeKey(row.Get(FieldWorkOrder))
	if workOrder == "" {
		workOrder = jobNumber
	}

	return &Record{
		Row:             row.Index,
		JobNumber:       jobNumber,
		WorkOrderNumber: workOrder,
		OperationNumber: opNumber,
		WorkCenter:      workCenter,
		Description:     row.Get(FieldDescription),
		PlannedHours:    planned,
		ActualHours:     actual,
		CustomerName:    row.Get(FieldCustomer),
		PartName:        row.Get(FieldPartName),
		ScheduledDate:   scheduled,
		Narrative: Narrative{
			IssueDescription: row.Get(FieldIssueDescription),
			IssueCategory:    row.Get(FieldIssueCategory),
			RootCause:        row.Get(FieldRootCause),
			CorrectiveAction: row.Get(FieldCorrectiveAction),
			FinancialImpact:  impact,
		},
	}, nil
}

// ToWorkLogRecord 转换工时记录行，过账日期严格按 MM/DD/YYYY 解析
func ToWorkLogRecord(row Row) (*WorkLogRecord, error) {
	employeeID, err := parseWholeNumber(row, FieldEmployeeID)
	if err != nil {
		return nil, err
	}
	name := row.Get(FieldEmployeeName)
	if name == "" {
		return nil, rowError(row, FieldEmployeeName, ErrRequiredValue)
	}
	jobNumber, err := requiredKey(row, FieldOrder)
	if err != nil {
		return nil, err
	}
	opNumber, err := parseWholeNumber(row, FieldOperation)
	if err != nil {
		return nil, err
	}
	hours, err := parseHours(row, FieldActualWork)
	if err != nil {
		return nil, err
	}

	raw := row.Get(FieldPostingDate)
	if raw == "" {
		return nil, rowError(row, FieldPostingDate, ErrRequiredValue)
	}
	posted, err := time.Parse(PostingDateLayout, raw)
	if err != nil {
		return nil, rowError(row, FieldPostingDate, ErrBadDate)
	}

	workOrder := normalizeKey(row.Get(FieldWorkOrder))
	if workOrder == "" {
		workOrder = jobNumber
	}

	return &WorkLogRecord{
		Row:                  row.Index,
		EmployeeID:           int64(employeeID),
		EmployeeName:         name,
		JobNumber:            jobNumber,
		WorkOrderNumber:      workOrder,
		OperationNumber:      opNumber,
		OperationDescription: row.Get(FieldOperationDescription),
		ActualHours:          hours,
		PostingDate:          posted,
		AdjustmentText:       row.Get(FieldAdjustmentText),
		NonProdCode:          row.Get(FieldNonProdCode),
	}, nil
}

func rowError(row Row, field string, err error) *RowError {
	return &RowError{Row: row.Index, Field: field, Value: row.Get(field), Err: err}
}

func requiredKey(row Row, field string) (string, error) {
	key := normalizeKey(row.Get(field))
	if key == "" {
		return "", rowError(row, field, ErrRequiredValue)
	}
	return key, nil
}

// normalizeKey 表格软件常把整数编号存成 1001.0，这里还原成 1001
func normalizeKey(raw string) string {
	raw = strings.TrimSpace(raw)
	if !strings.Contains(raw, ".") {
		return raw
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v != math.Trunc(v) || math.IsInf(v, 0) {
		return raw
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func parseNumber(row Row, field string) (float64, error) {
	raw := strings.ReplaceAll(row.Get(field), ",", "")
	if raw == "" {
		return 0, rowError(row, field, ErrRequiredValue)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, rowError(row, field, ErrNotNumber)
	}
	return v, nil
}

func parseHours(row Row, field string) (float64, error) {
	v, err := parseNumber(row, field)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, rowError(row, field, ErrNegative)
	}
	return v, nil
}

func parseWholeNumber(row Row, field string) (int, error) {
	v, err := parseNumber(row, field)
	if err != nil {
		return 0, err
	}
	if v != math.Trunc(v) {
		return 0, rowError(row, field, ErrNotInteger)
	}
	if v < 0 {
		return 0, rowError(row, field, ErrNegative)
	}
	return int(v), nil
}

func parseMoney(row Row, field string) (decimal.Decimal, error) {
	raw := strings.TrimPrefix(strings.ReplaceAll(row.Get(field), ",", ""), "$")
	if raw == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, rowError(row, field, ErrNotNumber)
	}
	return d, nil
}

func parseOptionalDate(row Row, field string) (*time.Time, error) {
	raw := row.Get(field)
	if raw == "" {
		return nil, nil
	}
	t, err := ParseDate(raw)
	if err != nil {
		return nil, rowError(row, field, err)
	}
	return &t, nil
}

// ParseDate 接受常见日期写法以及 Excel 序列日期，只保留日期部分
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return truncateDay(t), nil
		}
	}
	if serial, err := strconv.ParseFloat(raw, 64); err == nil && serial > 0 && serial < 2958466 {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err == nil {
			return truncateDay(t), nil
		}
	}
	return time.Time{}, ErrBadDate
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
