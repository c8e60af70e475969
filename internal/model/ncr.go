package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type NCRStatus string

const (
	NCRStatusActive  NCRStatus = "Active"
	NCRStatusPending NCRStatus = "Pending"
	NCRStatusClosed  NCRStatus = "Closed"
)

// NCR 来源
const (
	NCRSourceIngest = "ingest"
	NCRSourceManual = "manual"
)

// ValidNCRStatus 人工提交时允许的状态
func ValidNCRStatus(status NCRStatus) bool {
	switch status {
	case NCRStatusActive, NCRStatusPending, NCRStatusClosed:
		return true
	}
	return false
}

// NCRStatusForHours 导入生成的 NCR：有实际工时即为 Active
func NCRStatusForHours(actualHours float64) NCRStatus {
	if actualHours > 0 {
		return NCRStatusActive
	}
	return NCRStatusPending
}

// NCRTracker 不合格品记录。job/work order/operation 按值保存，不做外键
type NCRTracker struct {
	ID               int64           `gorm:"primaryKey" json:"id"`
	NCRNumber        string          `gorm:"size:50;uniqueIndex;not null" json:"ncr_number"`
	JobNumber        string          `gorm:"size:50;not null;index:idx_ncr_source" json:"job_number"`
	WorkOrder        string          `gorm:"size:50;not null;index:idx_ncr_source" json:"work_order"`
	OperationNumber  int             `gorm:"not null;index:idx_ncr_source" json:"operation_number"`
	PartName         string          `gorm:"size:100" json:"part_name"`
	PlannedHours     float64         `gorm:"not null" json:"planned_hours"`
	ActualHours      float64         `gorm:"not null" json:"actual_hours"`
	IssueDescription string          `gorm:"type:text;not null" json:"issue_description"`
	IssueCategory    string          `gorm:"size:50;not null" json:"issue_category"`
	RootCause        string          `gorm:"type:text;not null" json:"root_cause"`
	CorrectiveAction string          `gorm:"type:text;not null" json:"corrective_action"`
	FinancialImpact  decimal.Decimal `gorm:"type:decimal(12,2)" json:"financial_impact"`
	Status           NCRStatus       `gorm:"size:20;not null;index" json:"status"`
	Source           string          `gorm:"size:20;not null" json:"source"`
	CreatedAt        time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

func (NCRTracker) TableName() string {
	return "ncr_trackers"
}
