package dto

// SubmitNCRRequest 人工提交 NCR
type SubmitNCRRequest struct {
	JobNumber        string  `json:"job_number" binding:"required,max=50"`
	WorkOrder        string  `json:"work_order" binding:"omitempty,max=50"`
	OperationNumber  int     `json:"operation_number" binding:"min=0"`
	PartName         string  `json:"part_name" binding:"omitempty,max=100"`
	PlannedHours     float64 `json:"planned_hours" binding:"min=0"`
	ActualHours      float64 `json:"actual_hours" binding:"min=0"`
	IssueDescription string  `json:"issue_description" binding:"required,max=2000"`
	IssueCategory    string  `json:"issue_category" binding:"omitempty,max=50"`
	RootCause        string  `json:"root_cause" binding:"omitempty,max=2000"`
	CorrectiveAction string  `json:"corrective_action" binding:"omitempty,max=2000"`
	FinancialImpact  float64 `json:"financial_impact"`
	Status           string  `json:"status" binding:"omitempty,oneof=Active Pending Closed"`
}

// UpdateNCRReportRequest 更新 NCR 报告，未提供的字段保持不变
type UpdateNCRReportRequest struct {
	IssueDescription *string  `json:"issue_description,omitempty" binding:"omitempty,max=2000"`
	IssueCategory    *string  `json:"issue_category,omitempty" binding:"omitempty,max=50"`
	RootCause        *string  `json:"root_cause,omitempty" binding:"omitempty,max=2000"`
	CorrectiveAction *string  `json:"corrective_action,omitempty" binding:"omitempty,max=2000"`
	FinancialImpact  *float64 `json:"financial_impact,omitempty"`
	Status           *string  `json:"status,omitempty" binding:"omitempty,oneof=Active Pending Closed"`
}
