package model

import (
	"time"
)

// Job 客户订单，层级结构的顶层，job_number 为自然键
type Job struct {
	ID           int64       `gorm:"primaryKey" json:"id"`
	JobNumber    string      `gorm:"size:50;uniqueIndex;not null" json:"job_number"`
	CustomerName string      `gorm:"size:100" json:"customer_name"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
	WorkOrders   []WorkOrder `gorm:"foreignKey:JobID;constraint:OnDelete:CASCADE" json:"work_orders,omitempty"`
}

func (Job) TableName() string {
	return "jobs"
}

// WorkOrder 工单。目前的导出数据中与 Job 一一对应，但保持独立实体
type WorkOrder struct {
	ID              int64       `gorm:"primaryKey" json:"id"`
	WorkOrderNumber string      `gorm:"size:50;uniqueIndex;not null" json:"work_order_number"`
	JobID           int64       `gorm:"not null;index" json:"job_id"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
	Operations      []Operation `gorm:"foreignKey:WorkOrderID;constraint:OnDelete:CASCADE" json:"operations,omitempty"`
}

func (WorkOrder) TableName() string {
	return "work_orders"
}
