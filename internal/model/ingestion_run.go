package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

const (
	RunStatusQueued     = "queued"
	RunStatusProcessing = "processing"
	RunStatusCompleted  = "completed"
	RunStatusFailed     = "failed"
)

const (
	IngestModeUpsert  = "upsert"
	IngestModeReplace = "replace"
)

// RowIssue 单行导入失败的诊断信息
type RowIssue struct {
	Row     int    `json:"row"`
	Field   string `json:"field,omitempty"`
	Value   string `json:"value,omitempty"`
	Message string `json:"message"`
}

// RowIssues 用于 JSON 数组字段
type RowIssues []RowIssue

func (r RowIssues) Value() (driver.Value, error) {
	if r == nil {
		return "[]", nil
	}
	data, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (r *RowIssues) Scan(value interface{}) error {
	if value == nil {
		*r = RowIssues{}
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("unsupported row issues type %T", value)
	}
	return json.Unmarshal(bytes, r)
}

// IngestionRun 一次表格导入的执行记录
type IngestionRun struct {
	ID                 int64      `gorm:"primaryKey" json:"id"`
	UserID             int64      `gorm:"index" json:"user_id"`
	Filename           string     `gorm:"size:255;not null" json:"filename"`
	UploadPath         string     `gorm:"size:500" json:"-"`
	ArchiveURL         string     `gorm:"size:500" json:"archive_url,omitempty"`
	Mode               string     `gorm:"size:20;not null" json:"mode"`
	Status             string     `gorm:"size:20;not null;index" json:"status"` // queued, processing, completed, failed
	CurrentStep        string     `gorm:"size:200" json:"current_step,omitempty"`
	ErrorMessage       string     `gorm:"type:text" json:"error_message,omitempty"`
	RowsTotal          int        `json:"rows_total"`
	RowsSkipped        int        `json:"rows_skipped"`
	JobsCreated        int        `json:"jobs_created"`
	OperationsCreated  int        `json:"operations_created"`
	OperationsUpdated  int        `json:"operations_updated"`
	WorkCentersTouched int        `json:"work_centers_touched"`
	NCRsCreated        int        `gorm:"column:ncrs_created" json:"ncrs_created"`
	RowIssues          RowIssues  `gorm:"type:text" json:"row_issues,omitempty"`
	CreatedAt          time.Time  `gorm:"index" json:"created_at"`
	StartedAt          *time.Time `json:"started_at,omitempty"`
	CompletedAt        *time.Time `json:"completed_at,omitempty"`
	ElapsedSeconds     int        `json:"elapsed_seconds,omitempty"`
}

func (IngestionRun) TableName() string {
	return "ingestion_runs"
}
