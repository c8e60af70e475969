package model

import (
	"time"
)

// WorkLog 员工工时记录，只追加不修改
type WorkLog struct {
	ID                   int64     `gorm:"primaryKey" json:"id"`
	EmployeeID           int64     `gorm:"not null;index" json:"employee_id"`
	EmployeeName         string    `gorm:"size:100;not null" json:"employee_name"`
	JobNumber            string    `gorm:"size:50;not null;index" json:"job_number"`
	WorkOrder            string    `gorm:"size:50;not null" json:"work_order"`
	OperationNumber      int       `gorm:"not null" json:"operation_number"`
	OperationDescription string    `gorm:"size:255" json:"operation_description,omitempty"`
	ActualHours          float64   `gorm:"not null" json:"actual_hours"`
	PostingDate          time.Time `gorm:"type:date;not null;index" json:"posting_date"`
	AdjustmentText       string    `gorm:"size:255" json:"adjustment_text,omitempty"`
	NonProdCode          string    `gorm:"size:50" json:"non_prod_code,omitempty"`
	CreatedAt            time.Time `json:"created_at"`
}

func (WorkLog) TableName() string {
	return "work_logs"
}
