package dto

import "github.com/shoplead/shoplead_server/internal/model"

// IngestResult 一次导入的汇总
type IngestResult struct {
	RunID              int64            `json:"run_id"`
	Mode               string           `json:"mode"`
	JobsCreated        int              `json:"jobs_created"`
	WorkCentersTouched int              `json:"work_centers_touched"`
	NCRsCreated        int              `json:"ncrs_created"`
	NCRsUpdated        int              `json:"ncrs_updated"`
	RowsTotal          int              `json:"rows_total"`
	RowsSkipped        int              `json:"rows_skipped"`
	OperationsCreated  int              `json:"operations_created"`
	OperationsUpdated  int              `json:"operations_updated"`
	RowIssues          []model.RowIssue `json:"row_issues"`
}

// EnqueueImportResponse 排队导入的响应
type EnqueueImportResponse struct {
	RunID      int64  `json:"run_id"`
	Status     string `json:"status"`
	ArchiveURL string `json:"archive_url,omitempty"`
}
