package schema

// 工序导出表的规范字段名（表头小写后的首选写法）
const (
	FieldOrder            = "order"
	FieldOperation        = "oper./act."
	FieldWorkCenter       = "oper.workcenter"
	FieldWork             = "work"
	FieldActualWork       = "actual work"
	FieldDescription      = "description"
	FieldWorkOrder        = "work order"
	FieldCustomer         = "customer"
	FieldPartName         = "part name"
	FieldScheduledDate    = "scheduled date"
	FieldIssueDescription = "issue description"
	FieldIssueCategory    = "issue category"
	FieldRootCause        = "root cause"
	FieldCorrectiveAction = "corrective action"
	FieldFinancialImpact  = "financial impact"
)

// 工时记录表额外的规范字段名
const (
	FieldEmployeeID           = "employee id"
	FieldEmployeeName         = "employee name"
	FieldOperationDescription = "operation description"
	FieldPostingDate          = "posting date"
	FieldAdjustmentText       = "adjustment text"
	FieldNonProdCode          = "non prod code"
)

// NCR 叙述字段的占位默认值，等待人工补充
const (
	DefaultIssueDescription = "No issue description provided"
	DefaultIssueCategory    = "Uncategorized"
	DefaultRootCause        = "Unknown"
	DefaultCorrectiveAction = "None"
	DefaultFinancialImpact  = "0.0"
)

// Column 一个规范字段及其可接受的表头写法，按顺序匹配，先出现的写法优先
type Column struct {
	Field    string
	Accepted []string
	Required bool
	// Default 列缺失或单元格为空时使用
	Default string
}

// OperationColumns 工序导出表的列定义。所有默认值只在这里声明
var OperationColumns = []Column{
	{Field: FieldOrder, Accepted: []string{"order", "job", "order_id"}, Required: true},
	{Field: FieldOperation, Accepted: []string{"oper./act.", "operation", "operation_number"}, Required: true},
	{Field: FieldWorkCenter, Accepted: []string{"oper.workcenter", "work_center", "workcenter"}, Required: true},
	{Field: FieldWork, Accepted: []string{"work", "planned_hours", "planned"}, Required: true},
	{Field: FieldActualWork, Accepted: []string{"actual work", "actual_hours", "actual"}, Required: true, Default: "0"},
	{Field: FieldDescription, Accepted: []string{"description", "task_description", "task"}},
	// 为空时取 order，由 ToRecord 处理
	{Field: FieldWorkOrder, Accepted: []string{"work order", "work_order", "work_order_number"}},
	{Field: FieldCustomer, Accepted: []string{"customer", "customer_name", "customer name"}},
	{Field: FieldPartName, Accepted: []string{"part name", "part_name", "material description"}},
	{Field: FieldScheduledDate, Accepted: []string{"scheduled date", "scheduled_date", "start_date", "basic start date"}},
	{Field: FieldIssueDescription, Accepted: []string{"issue description", "issue_description"}, Default: DefaultIssueDescription},
	{Field: FieldIssueCategory, Accepted: []string{"issue category", "issue_category"}, Default: DefaultIssueCategory},
	{Field: FieldRootCause, Accepted: []string{"root cause", "root_cause"}, Default: DefaultRootCause},
	{Field: FieldCorrectiveAction, Accepted: []string{"corrective action", "corrective_action"}, Default: DefaultCorrectiveAction},
	{Field: FieldFinancialImpact, Accepted: []string{"financial impact", "financial_impact"}, Default: DefaultFinancialImpact},
}

// WorkLogColumns 员工工时记录表的列定义
var WorkLogColumns = []Column{
	{Field: FieldEmployeeID, Accepted: []string{"employee id", "employee_id", "personnel number", "pers.no."}, Required: true},
	{Field: FieldEmployeeName, Accepted: []string{"employee name", "employee_name", "name"}, Required: true},
	{Field: FieldOrder, Accepted: []string{"order", "job", "order_id"}, Required: true},
	{Field: FieldWorkOrder, Accepted: []string{"work order", "work_order", "work_order_number"}},
	{Field: FieldOperation, Accepted: []string{"oper./act.", "operation", "operation_number"}, Required: true},
	{Field: FieldOperationDescription, Accepted: []string{"operation description", "operation_description", "description"}},
	{Field: FieldActualWork, Accepted: []string{"actual work", "actual hours", "actual_hours", "actual", "hours"}, Required: true, Default: "0"},
	{Field: FieldPostingDate, Accepted: []string{"posting date", "posting_date"}, Required: true},
	{Field: FieldAdjustmentText, Accepted: []string{"adjustment text", "adjustment_text"}},
	{Field: FieldNonProdCode, Accepted: []string{"non prod code", "non_prod_code", "non-prod code"}},
}
