package dto

import "github.com/shoplead/shoplead_server/internal/model"

// WorkLogImportResult 工时记录导入结果
type WorkLogImportResult struct {
	RowsTotal   int              `json:"rows_total"`
	RowsSkipped int              `json:"rows_skipped"`
	Imported    int              `json:"imported"`
	RowIssues   []model.RowIssue `json:"row_issues"`
}
