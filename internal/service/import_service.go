package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shoplead/shoplead_server/config"
	"github.com/shoplead/shoplead_server/internal/model"
	"github.com/shoplead/shoplead_server/internal/model/dto"
	"github.com/shoplead/shoplead_server/internal/pkg/queue"
	"github.com/shoplead/shoplead_server/internal/pkg/sheet"
	"github.com/shoplead/shoplead_server/internal/repository"
)

var (
	ErrFileTooLarge     = errors.New("文件过大")
	ErrInvalidFormat    = errors.New("仅支持 .xlsx 或 .csv 文件")
	ErrQueueUnavailable = errors.New("未配置任务队列，无法排队导入")
)

// Archiver 导出文件归档
type Archiver interface {
	UploadExtract(filename string, r io.Reader) (string, error)
}

// Enqueuer 导入任务队列
type Enqueuer interface {
	Push(ctx context.Context, msg *queue.IngestMessage) error
}

// ImportService 上传文件的保存、归档与排队
type ImportService struct {
	cfg      *config.Config
	runRepo  *repository.IngestionRunRepository
	queue    Enqueuer
	archiver Archiver
}

// NewImportService queue 和 archiver 可以为 nil
func NewImportService(cfg *config.Config, runRepo *repository.IngestionRunRepository, q Enqueuer, archiver Archiver) *ImportService {
	return &ImportService{
		cfg:      cfg,
		runRepo:  runRepo,
		queue:    q,
		archiver: archiver,
	}
}

// QueueEnabled 是否可以排队导入
func (s *ImportService) QueueEnabled() bool {
	return s.queue != nil
}

// CheckFile 校验扩展名与大小
func (s *ImportService) CheckFile(filename string, size int64) error {
	if s.cfg.Upload.MaxSize > 0 && size > s.cfg.Upload.MaxSize {
		return ErrFileTooLarge
	}

	ext := strings.ToLower(filepath.Ext(filename))
	allowed := s.cfg.Upload.AllowedExtensions
	if len(allowed) == 0 {
		allowed = []string{".xlsx", ".csv"}
	}
	for _, a := range allowed {
		if ext == a && sheet.IsSupported(filename) {
			return nil
		}
	}
	return ErrInvalidFormat
}

// Save 保存到 <temp_dir>/<upload_id>/<文件名>
func (s *ImportService) Save(filename string, r io.Reader) (string, error) {
	uploadID, err := generateUploadID()
	if err != nil {
		return "", err
	}

	dir := filepath.Join(s.cfg.Upload.TempDir, uploadID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	path := filepath.Join(dir, filepath.Base(filename))
	f, err := os.Create(path)
	if err != nil {
		os.RemoveAll(dir)
		return "", err
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.RemoveAll(dir)
		return "", err
	}
	return path, nil
}

// ReadTable 读取已保存的上传
func (s *ImportService) ReadTable(path string) (*sheet.Table, error) {
	return sheet.ReadFile(path)
}

// Parse 直接解析上传内容，不落盘
func (s *ImportService) Parse(filename string, r io.Reader) (*sheet.Table, error) {
	return sheet.Read(filename, r)
}

// Archive 归档失败只记录日志
func (s *ImportService) Archive(path string) string {
	if s.archiver == nil {
		return ""
	}

	f, err := os.Open(path)
	if err != nil {
		log.Printf("archive %s: %v", path, err)
		return ""
	}
	defer f.Close()

	url, err := s.archiver.UploadExtract(filepath.Base(path), f)
	if err != nil {
		log.Printf("archive %s: %v", path, err)
		return ""
	}
	return url
}

// Cleanup 删除上传目录
func (s *ImportService) Cleanup(path string) {
	dir := filepath.Dir(path)
	if filepath.Clean(filepath.Dir(dir)) != filepath.Clean(s.cfg.Upload.TempDir) {
		os.Remove(path)
		return
	}
	os.RemoveAll(dir)
}

// Enqueue 创建排队中的导入记录并推入队列
func (s *ImportService) Enqueue(ctx context.Context, userID int64, filename, path, mode string) (*dto.EnqueueImportResponse, error) {
	if s.queue == nil {
		return nil, ErrQueueUnavailable
	}

	run := &model.IngestionRun{
		UserID:     userID,
		Filename:   filename,
		UploadPath: path,
		ArchiveURL: s.Archive(path),
		Mode:       mode,
		Status:     model.RunStatusQueued,
	}
	if err := s.runRepo.Create(run); err != nil {
		return nil, err
	}

	msg := &queue.IngestMessage{
		RunID:      run.ID,
		UserID:     userID,
		Filename:   filename,
		UploadPath: path,
		Mode:       mode,
	}
	if err := s.queue.Push(ctx, msg); err != nil {
		now := time.Now()
		run.Status = model.RunStatusFailed
		run.ErrorMessage = "enqueue failed"
		run.CompletedAt = &now
		if uerr := s.runRepo.Update(run); uerr != nil {
			log.Printf("ingest run %d: save enqueue failure: %v", run.ID, uerr)
		}
		return nil, fmt.Errorf("enqueue ingest run %d: %w", run.ID, err)
	}

	return &dto.EnqueueImportResponse{
		RunID:      run.ID,
		Status:     run.Status,
		ArchiveURL: run.ArchiveURL,
	}, nil
}

func generateUploadID() (string, error) {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
