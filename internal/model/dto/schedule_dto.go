package dto

// ScheduleEvent 日历事件
type ScheduleEvent struct {
	ID              int64  `json:"id"`
	Title           string `json:"title"`
	Start           string `json:"start"`
	JobNumber       string `json:"job_number"`
	WorkOrder       string `json:"work_order"`
	OperationNumber int    `json:"operation_number"`
	WorkCenter      string `json:"work_center"`
	Status          string `json:"status"`
}

// SetScheduleRequest 设置排程日期，date 格式 YYYY-MM-DD
type SetScheduleRequest struct {
	OperationID int64  `json:"operation_id" binding:"required"`
	Date        string `json:"date" binding:"required"`
}
