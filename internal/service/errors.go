package service

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrJobNotFound        = errors.New("Job 不存在")
	ErrOperationNotFound  = errors.New("工序不存在")
	ErrWorkCenterNotFound = errors.New("工作中心不存在")
	ErrNCRNotFound        = errors.New("NCR 不存在")
	ErrInvalidDate        = errors.New("日期格式应为 YYYY-MM-DD")
	ErrInvalidNCRStatus   = errors.New("NCR 状态仅支持 Active、Pending、Closed")
	ErrWorkOrderConflict  = errors.New("工单已属于其他 Job")
)

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
