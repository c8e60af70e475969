package dto

// WorkCenterSummary 工作中心负荷汇总
type WorkCenterSummary struct {
	Name           string  `json:"name"`
	PlannedHours   float64 `json:"planned_hours"`
	ActualHours    float64 `json:"actual_hours"`
	RemainingHours float64 `json:"remaining_hours"`
	Urgency        string  `json:"urgency"`
	JobCount       int     `json:"job_count"`
	Efficiency     int     `json:"efficiency"`
	Capacity       float64 `json:"capacity"`
}

// ForecastResponse 工作中心完工预测
type ForecastResponse struct {
	WorkCenter     string  `json:"work_center"`
	PlannedHours   float64 `json:"planned_hours"`
	ActualHours    float64 `json:"actual_hours"`
	RemainingHours float64 `json:"remaining_hours"`
	ProjectedHours float64 `json:"projected_hours"`
}
