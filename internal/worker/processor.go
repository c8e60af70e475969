package worker

import (
	"context"
	"fmt"
	"log"

	"github.com/shoplead/shoplead_server/internal/model"
	"github.com/shoplead/shoplead_server/internal/pkg/pubsub"
	"github.com/shoplead/shoplead_server/internal/pkg/queue"
	"github.com/shoplead/shoplead_server/internal/service"
)

// ProgressPublisher 进度推送渠道
type ProgressPublisher interface {
	PublishProgress(ctx context.Context, msg *pubsub.ProgressMessage) error
}

// Processor 处理排队中的导入
type Processor struct {
	ingest    *service.IngestService
	imports   *service.ImportService
	publisher ProgressPublisher
}

// NewProcessor publisher 可以为 nil
func NewProcessor(ingest *service.IngestService, imports *service.ImportService, publisher ProgressPublisher) *Processor {
	return &Processor{
		ingest:    ingest,
		imports:   imports,
		publisher: publisher,
	}
}

// Process 读取已保存的上传并执行导入，结束后删除上传文件
func (p *Processor) Process(ctx context.Context, msg *queue.IngestMessage) error {
	defer p.imports.Cleanup(msg.UploadPath)

	req := &service.IngestRequest{
		Filename: msg.Filename,
		Mode:     msg.Mode,
		UserID:   msg.UserID,
		RunID:    msg.RunID,
		Progress: func(e service.ProgressEvent) {
			p.publish(ctx, e)
		},
	}

	p.publish(ctx, service.ProgressEvent{RunID: msg.RunID, UserID: msg.UserID, Step: pubsub.StepReading, Status: model.RunStatusProcessing})
	table, err := p.imports.ReadTable(msg.UploadPath)
	if err != nil {
		err = fmt.Errorf("read %s: %w", msg.Filename, err)
		p.ingest.Fail(req, err)
		return err
	}
	req.Table = table

	result, err := p.ingest.Ingest(ctx, req)
	if err != nil {
		return err
	}
	log.Printf("Run %d: %d rows, %d skipped", result.RunID, result.RowsTotal, result.RowsSkipped)
	return nil
}

func (p *Processor) publish(ctx context.Context, e service.ProgressEvent) {
	if p.publisher == nil {
		return
	}
	err := p.publisher.PublishProgress(ctx, &pubsub.ProgressMessage{
		UserID: e.UserID,
		RunID:  e.RunID,
		Status: e.Status,
		Step:   e.Step,
		Error:  e.Error,
	})
	if err != nil {
		log.Printf("Run %d: publish progress: %v", e.RunID, err)
	}
}
