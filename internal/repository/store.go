package repository

import (
	"gorm.io/gorm"
)

// Store 持有同一个数据库句柄的全部仓储。事务内通过 tx 创建新的 Store，
// 所有写操作都经由显式传入的 Store 完成
type Store struct {
	db *gorm.DB

	Jobs       *JobRepository
	WorkOrders *WorkOrderRepository
	Operations *OperationRepository
	NCRs       *NCRRepository
	WorkLogs   *WorkLogRepository
	Runs       *IngestionRunRepository
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:         db,
		Jobs:       NewJobRepository(db),
		WorkOrders: NewWorkOrderRepository(db),
		Operations: NewOperationRepository(db),
		NCRs:       NewNCRRepository(db),
		WorkLogs:   NewWorkLogRepository(db),
		Runs:       NewIngestionRunRepository(db),
	}
}

func (s *Store) DB() *gorm.DB {
	return s.db
}

// Transaction fn 返回错误时整体回滚
func (s *Store) Transaction(fn func(tx *Store) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}
