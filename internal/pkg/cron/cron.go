package cron

import (
	"log"
	"os"
	"path/filepath"
	"time"
)

// RunFailer 把长时间处于处理中的导入标记为失败
type RunFailer interface {
	FailStale(before time.Time, message string) (int64, error)
}

const staleRunMessage = "导入超时，进程可能已退出"

// Summary 一次清理的结果
type Summary struct {
	StaleRuns  int64
	UploadDirs int
}

type Service struct {
	runs          RunFailer
	uploadTempDir string
	expireHours   int
	staleHours    int
	interval      time.Duration
	stopChan      chan struct{}
}

func NewService(runs RunFailer, uploadTempDir string, expireHours, staleHours int) *Service {
	return &Service{
		runs:          runs,
		uploadTempDir: uploadTempDir,
		expireHours:   expireHours,
		staleHours:    staleHours,
		interval:      time.Hour,
		stopChan:      make(chan struct{}),
	}
}

// Start 启动定时任务
func (s *Service) Start() {
	go s.loop()
	log.Println("Cron service started (stale runs + temp cleanup)")
}

// Stop 停止定时任务
func (s *Service) Stop() {
	close(s.stopChan)
	log.Println("Cron service stopped")
}

func (s *Service) loop() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.RunNow()
		}
	}
}

// RunNow 立即执行一次全部清理
func (s *Service) RunNow() Summary {
	summary := Summary{
		StaleRuns:  s.failStaleRuns(),
		UploadDirs: s.cleanupUploadDirs(hours(s.expireHours, 24)),
	}
	if summary.StaleRuns > 0 || summary.UploadDirs > 0 {
		log.Printf("Cleanup summary: stale_runs=%d, uploads=%d", summary.StaleRuns, summary.UploadDirs)
	}
	return summary
}

func (s *Service) failStaleRuns() int64 {
	if s.runs == nil {
		return 0
	}
	before := time.Now().Add(-hours(s.staleHours, 2))
	n, err := s.runs.FailStale(before, staleRunMessage)
	if err != nil {
		log.Printf("Cleanup runs: %v", err)
		return 0
	}
	return n
}

// cleanupUploadDirs 清理过期的上传目录（<temp_dir>/<upload_id>/）
func (s *Service) cleanupUploadDirs(expire time.Duration) int {
	if s.uploadTempDir == "" {
		return 0
	}

	entries, err := os.ReadDir(s.uploadTempDir)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Cleanup uploads: failed to read dir %s: %v", s.uploadTempDir, err)
		}
		return 0
	}

	cleaned := 0
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if time.Since(info.ModTime()) <= expire {
			continue
		}
		dirPath := filepath.Join(s.uploadTempDir, entry.Name())
		if err := os.RemoveAll(dirPath); err != nil {
			log.Printf("Cleanup uploads: failed to remove %s: %v", dirPath, err)
			continue
		}
		cleaned++
	}
	return cleaned
}

func hours(n, fallback int) time.Duration {
	if n <= 0 {
		n = fallback
	}
	return time.Duration(n) * time.Hour
}
