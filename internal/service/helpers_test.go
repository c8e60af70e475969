package service

import (
	"sync"
	"testing"

	"gorm.io/gorm"

	"github.com/shoplead/shoplead_server/config"
	"github.com/shoplead/shoplead_server/internal/model"
	"github.com/shoplead/shoplead_server/internal/pkg/lock"
	"github.com/shoplead/shoplead_server/internal/pkg/sheet"
	"github.com/shoplead/shoplead_server/internal/repository"
	"github.com/shoplead/shoplead_server/internal/testutil"
)

var sapHeaders = []string{"Order", "Oper./Act.", "Oper.WorkCenter", "Work", "Actual work"}

// sapTable 以导出表的原始列名构造表格
func sapTable(rows ...[]string) *sheet.Table {
	return &sheet.Table{Headers: sapHeaders, Rows: rows}
}

// scenarioTable Job 1001：一道铣削工序和一道 NCR 工序
func scenarioTable() *sheet.Table {
	return sapTable(
		[]string{"1001", "10", "MILL", "40", "10"},
		[]string{"1001", "20", "NCR", "5", "5"},
	)
}

type recordingNotifier struct {
	mu    sync.Mutex
	calls [][]*model.NCRTracker
}

func (n *recordingNotifier) NotifyNCRs(ncrs []*model.NCRTracker) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, ncrs)
	return nil
}

type ingestFixture struct {
	db       *gorm.DB
	store    *repository.Store
	locker   *lock.LocalLocker
	notifier *recordingNotifier
	service  *IngestService
}

func setupIngestService(t *testing.T, cfg *config.IngestConfig) *ingestFixture {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.CleanupTestDB(t, db) })

	if cfg == nil {
		cfg = &config.IngestConfig{Mode: model.IngestModeUpsert, BatchSize: 100, LockKey: "test:ingest"}
	}

	f := &ingestFixture{
		db:       db,
		store:    repository.NewStore(db),
		locker:   lock.NewLocalLocker(),
		notifier: &recordingNotifier{},
	}
	f.service = NewIngestService(f.store, f.locker, f.notifier, cfg)
	return f
}

func (f *ingestFixture) counts(t *testing.T) (jobs, workOrders, operations, ncrs int64) {
	t.Helper()

	var err error
	if jobs, err = f.store.Jobs.Count(); err != nil {
		t.Fatal(err)
	}
	if workOrders, err = f.store.WorkOrders.Count(); err != nil {
		t.Fatal(err)
	}
	if operations, err = f.store.Operations.Count(); err != nil {
		t.Fatal(err)
	}
	if ncrs, err = f.store.NCRs.Count(); err != nil {
		t.Fatal(err)
	}
	return
}
