package model

import (
	"time"
)

type OperationStatus string

const (
	StatusNotStarted OperationStatus = "Not Started"
	StatusInProgress OperationStatus = "In Progress"
	StatusCompleted  OperationStatus = "Completed"
)

// DeriveStatus 根据计划工时与实际工时推导工序状态
func DeriveStatus(plannedHours, actualHours float64) OperationStatus {
	switch {
	case plannedHours > 0 && actualHours >= plannedHours:
		return StatusCompleted
	case actualHours > 0:
		return StatusInProgress
	default:
		return StatusNotStarted
	}
}

// Operation 工单下的一道工序，(work_order_id, operation_number) 唯一
type Operation struct {
	ID              int64           `gorm:"primaryKey" json:"id"`
	WorkOrderID     int64           `gorm:"not null;uniqueIndex:idx_operation_wo_number" json:"work_order_id"`
	OperationNumber int             `gorm:"not null;uniqueIndex:idx_operation_wo_number" json:"operation_number"`
	WorkCenter      string          `gorm:"size:50;not null;index" json:"work_center"`
	Description     string          `gorm:"size:255" json:"description,omitempty"`
	PlannedHours    float64         `gorm:"not null" json:"planned_hours"`
	ActualHours     float64         `gorm:"default:0" json:"actual_hours"`
	Status          OperationStatus `gorm:"size:20;not null;index" json:"status"`
	ScheduledDate   *time.Time      `gorm:"type:date" json:"scheduled_date,omitempty"`
	CompletedAt     *time.Time      `json:"completed_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`

	// 关联
	WorkOrder *WorkOrder `gorm:"foreignKey:WorkOrderID" json:"-"`
}

func (Operation) TableName() string {
	return "operations"
}

// SetHours 设置工时并重新计算状态；进入 Completed 时记录完成时间，离开时清除
func (o *Operation) SetHours(plannedHours, actualHours float64, now time.Time) {
	o.PlannedHours = plannedHours
	o.ActualHours = actualHours

	status := DeriveStatus(plannedHours, actualHours)
	if status == StatusCompleted {
		if o.Status != StatusCompleted || o.CompletedAt == nil {
			o.CompletedAt = &now
		}
	} else {
		o.CompletedAt = nil
	}
	o.Status = status
}

// RemainingHours 剩余工时，不会为负
func (o *Operation) RemainingHours() float64 {
	if o.ActualHours >= o.PlannedHours {
		return 0
	}
	return o.PlannedHours - o.ActualHours
}
