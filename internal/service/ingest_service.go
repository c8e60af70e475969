package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/shoplead/shoplead_server/config"
	"github.com/shoplead/shoplead_server/internal/model"
	"github.com/shoplead/shoplead_server/internal/model/dto"
	"github.com/shoplead/shoplead_server/internal/pkg/lock"
	"github.com/shoplead/shoplead_server/internal/pkg/pubsub"
	"github.com/shoplead/shoplead_server/internal/pkg/sheet"
	"github.com/shoplead/shoplead_server/internal/repository"
	"github.com/shoplead/shoplead_server/internal/schema"
)

var (
	ErrInvalidMode = errors.New("导入模式仅支持 upsert 或 replace")
	ErrRunNotFound = errors.New("导入记录不存在")
	ErrIngestBusy  = errors.New("已有导入正在进行，请稍后重试")
)

const (
	defaultBatchSize = 100
	defaultLockKey   = "shoplead:ingest:lock"
	defaultLockTTL   = 10 * time.Minute
)

// NCRNotifier 新增 Active NCR 的通知渠道
type NCRNotifier interface {
	NotifyNCRs(ncrs []*model.NCRTracker) error
}

// ProgressEvent 导入阶段变化
type ProgressEvent struct {
	RunID  int64
	UserID int64
	Step   string
	Status string
	Error  string
}

// IngestRequest 一次导入的输入
type IngestRequest struct {
	Filename   string
	Table      *sheet.Table
	Mode       string
	UserID     int64
	ArchiveURL string
	// RunID 已排队的导入记录，为 0 时新建
	RunID int64
	// LockWait 等待导入锁的上限，为 0 时等到 ctx 结束
	LockWait time.Duration
	Progress func(ProgressEvent)
}

type IngestService struct {
	store    *repository.Store
	locker   lock.Locker
	notifier NCRNotifier
	cfg      *config.IngestConfig
}

func NewIngestService(store *repository.Store, locker lock.Locker, notifier NCRNotifier, cfg *config.IngestConfig) *IngestService {
	if cfg == nil {
		cfg = &config.IngestConfig{}
	}
	return &IngestService{
		store:    store,
		locker:   locker,
		notifier: notifier,
		cfg:      cfg,
	}
}

// ResolveMode 空值使用配置的默认模式
func (s *IngestService) ResolveMode(mode string) (string, error) {
	if mode == "" {
		mode = s.cfg.Mode
	}
	switch mode {
	case "", model.IngestModeUpsert:
		return model.IngestModeUpsert, nil
	case model.IngestModeReplace:
		return model.IngestModeReplace, nil
	}
	return "", ErrInvalidMode
}

// Ingest 校验表格结构后在导入锁内重建层级并提取 NCR。
// 结构错误在任何写入之前返回；单行错误跳过并记录在结果中
func (s *IngestService) Ingest(ctx context.Context, req *IngestRequest) (*dto.IngestResult, error) {
	mode, err := s.ResolveMode(req.Mode)
	if err != nil {
		s.Fail(req, err)
		return nil, err
	}

	s.notify(req, ProgressEvent{RunID: req.RunID, Step: pubsub.StepValidating, Status: model.RunStatusProcessing})
	rows, err := schema.Normalize(req.Table, schema.OperationColumns)
	if err != nil {
		log.Printf("ingest %s: rejected: %v", req.Filename, err)
		s.Fail(req, err)
		return nil, err
	}

	release, err := s.acquire(ctx, req.LockWait)
	if err != nil {
		s.Fail(req, err)
		return nil, err
	}
	defer func() {
		if err := release(); err != nil {
			log.Printf("ingest %s: release lock: %v", req.Filename, err)
		}
	}()

	run, err := s.startRun(req, mode)
	if err != nil {
		return nil, err
	}
	started := time.Now()

	records, issues := s.coerce(run.ID, rows)
	run.RowsTotal = len(rows)
	run.RowsSkipped = len(issues)
	run.RowIssues = issues

	s.step(run, req, pubsub.StepBuilding)
	builder := NewHierarchyBuilder()
	if err := s.build(ctx, builder, mode, records); err != nil {
		s.failRun(run, req, err)
		return nil, err
	}

	built := builder.Result()
	if len(built.Skipped) > 0 {
		records = withoutRows(records, built.SkippedRows())
		for _, rowErr := range built.Skipped {
			log.Printf("ingest run %d: skip row %d: %v", run.ID, rowErr.Row, rowErr)
			issues = append(issues, rowIssue(rowErr.Row, rowErr))
		}
		sort.SliceStable(issues, func(i, j int) bool { return issues[i].Row < issues[j].Row })
		run.RowsSkipped = len(issues)
		run.RowIssues = issues
	}

	s.step(run, req, pubsub.StepNCR)
	var persisted *NCRPersistResult
	err = s.store.Transaction(func(tx *repository.Store) error {
		var err error
		persisted, err = PersistNCRs(tx, ExtractNCRs(records))
		return err
	})
	if err != nil {
		s.failRun(run, req, err)
		return nil, err
	}

	now := time.Now()
	run.Status = model.RunStatusCompleted
	run.CurrentStep = pubsub.StepDone
	run.JobsCreated = built.JobsCreated
	run.OperationsCreated = built.OperationsCreated
	run.OperationsUpdated = built.OperationsUpdated
	run.WorkCentersTouched = len(built.WorkCenters())
	run.NCRsCreated = len(persisted.Created)
	run.CompletedAt = &now
	run.ElapsedSeconds = int(now.Sub(started).Seconds())
	if err := s.store.Runs.Update(run); err != nil {
		return nil, fmt.Errorf("save ingest run %d: %w", run.ID, err)
	}

	log.Printf("ingest run %d: %s %s: %d rows, %d skipped, %d jobs created, %d operations created, %d updated, %d ncrs created",
		run.ID, mode, req.Filename, run.RowsTotal, run.RowsSkipped, run.JobsCreated,
		run.OperationsCreated, run.OperationsUpdated, run.NCRsCreated)

	s.alert(run.ID, persisted.Created)
	s.notify(req, ProgressEvent{RunID: run.ID, Step: pubsub.StepDone, Status: model.RunStatusCompleted})

	issuesOut := []model.RowIssue(issues)
	if issuesOut == nil {
		issuesOut = []model.RowIssue{}
	}
	return &dto.IngestResult{
		RunID:              run.ID,
		Mode:               mode,
		JobsCreated:        run.JobsCreated,
		WorkCentersTouched: run.WorkCentersTouched,
		NCRsCreated:        run.NCRsCreated,
		NCRsUpdated:        persisted.Updated,
		RowsTotal:          run.RowsTotal,
		RowsSkipped:        run.RowsSkipped,
		OperationsCreated:  run.OperationsCreated,
		OperationsUpdated:  run.OperationsUpdated,
		RowIssues:          issuesOut,
	}, nil
}

// GetRun 查询导入记录
func (s *IngestService) GetRun(id int64) (*model.IngestionRun, error) {
	run, err := s.store.Runs.GetByID(id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrRunNotFound
		}
		return nil, err
	}
	return run, nil
}

// ListRuns 最近的导入记录
func (s *IngestService) ListRuns(limit int) ([]*model.IngestionRun, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	runs, err := s.store.Runs.ListRecent(limit)
	if err != nil {
		return nil, err
	}
	if runs == nil {
		runs = []*model.IngestionRun{}
	}
	return runs, nil
}

// build replace 模式删除与重建在同一个事务内；upsert 模式按批提交
func (s *IngestService) build(ctx context.Context, builder *HierarchyBuilder, mode string, records []*schema.Record) error {
	if mode == model.IngestModeReplace {
		return s.store.Transaction(func(tx *repository.Store) error {
			if err := tx.Jobs.DeleteAll(); err != nil {
				return fmt.Errorf("clear hierarchy: %w", err)
			}
			builder.Reset()
			return builder.Apply(tx, records)
		})
	}

	size := s.cfg.BatchSize
	if size <= 0 {
		size = defaultBatchSize
	}
	for start := 0; start < len(records); start += size {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := start + size
		if end > len(records) {
			end = len(records)
		}
		batch := records[start:end]
		if err := s.store.Transaction(func(tx *repository.Store) error {
			return builder.Apply(tx, batch)
		}); err != nil {
			return err
		}
	}
	return nil
}

func (s *IngestService) coerce(runID int64, rows []schema.Row) ([]*schema.Record, model.RowIssues) {
	records := make([]*schema.Record, 0, len(rows))
	var issues model.RowIssues
	for _, row := range rows {
		rec, err := schema.ToRecord(row)
		if err != nil {
			log.Printf("ingest run %d: skip row %d: %v", runID, row.Index, err)
			issues = append(issues, rowIssue(row.Index, err))
			continue
		}
		records = append(records, rec)
	}
	return records, issues
}

func withoutRows(records []*schema.Record, skip map[int]struct{}) []*schema.Record {
	kept := make([]*schema.Record, 0, len(records))
	for _, rec := range records {
		if _, ok := skip[rec.Row]; !ok {
			kept = append(kept, rec)
		}
	}
	return kept
}

func rowIssue(index int, err error) model.RowIssue {
	var rowErr *schema.RowError
	if errors.As(err, &rowErr) {
		return model.RowIssue{Row: rowErr.Row, Field: rowErr.Field, Value: rowErr.Value, Message: rowErr.Err.Error()}
	}
	return model.RowIssue{Row: index, Message: err.Error()}
}

func (s *IngestService) startRun(req *IngestRequest, mode string) (*model.IngestionRun, error) {
	now := time.Now()
	if req.RunID != 0 {
		run, err := s.store.Runs.GetByID(req.RunID)
		if err != nil {
			if isNotFound(err) {
				return nil, ErrRunNotFound
			}
			return nil, err
		}
		run.Mode = mode
		run.Status = model.RunStatusProcessing
		run.StartedAt = &now
		if req.ArchiveURL != "" {
			run.ArchiveURL = req.ArchiveURL
		}
		if err := s.store.Runs.Update(run); err != nil {
			return nil, err
		}
		return run, nil
	}

	run := &model.IngestionRun{
		UserID:     req.UserID,
		Filename:   req.Filename,
		ArchiveURL: req.ArchiveURL,
		Mode:       mode,
		Status:     model.RunStatusProcessing,
		StartedAt:  &now,
	}
	if err := s.store.Runs.Create(run); err != nil {
		return nil, fmt.Errorf("create ingest run: %w", err)
	}
	return run, nil
}

// Fail 把排队中的导入标记为失败，RunID 为 0 时忽略
func (s *IngestService) Fail(req *IngestRequest, cause error) {
	if req.RunID == 0 {
		return
	}
	run, err := s.store.Runs.GetByID(req.RunID)
	if err != nil {
		log.Printf("ingest run %d: load for failure: %v", req.RunID, err)
		return
	}
	s.failRun(run, req, cause)
}

func (s *IngestService) failRun(run *model.IngestionRun, req *IngestRequest, cause error) {
	log.Printf("ingest run %d: failed: %v", run.ID, cause)

	now := time.Now()
	run.Status = model.RunStatusFailed
	run.ErrorMessage = cause.Error()
	run.CompletedAt = &now
	if run.StartedAt != nil {
		run.ElapsedSeconds = int(now.Sub(*run.StartedAt).Seconds())
	}
	if err := s.store.Runs.Update(run); err != nil {
		log.Printf("ingest run %d: save failure: %v", run.ID, err)
	}
	s.notify(req, ProgressEvent{RunID: run.ID, Step: run.CurrentStep, Status: model.RunStatusFailed, Error: cause.Error()})
}

func (s *IngestService) step(run *model.IngestionRun, req *IngestRequest, step string) {
	run.CurrentStep = step
	if err := s.store.Runs.UpdateStep(run.ID, step); err != nil {
		log.Printf("ingest run %d: update step: %v", run.ID, err)
	}
	s.notify(req, ProgressEvent{RunID: run.ID, Step: step, Status: model.RunStatusProcessing})
}

func (s *IngestService) notify(req *IngestRequest, event ProgressEvent) {
	if req.Progress == nil {
		return
	}
	event.UserID = req.UserID
	req.Progress(event)
}

// alert 通知失败不影响导入结果
func (s *IngestService) alert(runID int64, created []*model.NCRTracker) {
	if s.notifier == nil {
		return
	}
	var active []*model.NCRTracker
	for _, ncr := range created {
		if ncr.Status == model.NCRStatusActive {
			active = append(active, ncr)
		}
	}
	if len(active) == 0 {
		return
	}
	if err := s.notifier.NotifyNCRs(active); err != nil {
		log.Printf("ingest run %d: notify ncrs: %v", runID, err)
	}
}

// acquire 只有等锁受 wait 限制，拿到锁之后的导入使用调用方的 ctx
func (s *IngestService) acquire(ctx context.Context, wait time.Duration) (func() error, error) {
	lockCtx := ctx
	if wait > 0 {
		var cancel context.CancelFunc
		lockCtx, cancel = context.WithTimeout(ctx, wait)
		defer cancel()
	}

	release, err := s.locker.Acquire(lockCtx, s.lockKey(), s.lockTTL())
	if err != nil {
		if ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrIngestBusy
		}
		return nil, fmt.Errorf("acquire ingest lock: %w", err)
	}
	return release, nil
}

func (s *IngestService) lockKey() string {
	if s.cfg.LockKey != "" {
		return s.cfg.LockKey
	}
	return defaultLockKey
}

func (s *IngestService) lockTTL() time.Duration {
	if s.cfg.LockTTLSeconds > 0 {
		return time.Duration(s.cfg.LockTTLSeconds) * time.Second
	}
	return defaultLockTTL
}
