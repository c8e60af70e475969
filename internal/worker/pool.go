package worker

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/shoplead/shoplead_server/internal/pkg/queue"
)

const popTimeout = 5 * time.Second

// Source 阻塞获取下一条导入，超时返回 nil, nil
type Source interface {
	Pop(ctx context.Context, timeout time.Duration) (*queue.IngestMessage, error)
}

// Run 启动 workers 个循环消费队列，ctx 结束后等待全部退出
func Run(ctx context.Context, source Source, processor *Processor, workers int) {
	if workers <= 0 {
		workers = 1
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			loop(ctx, workerID, source, processor)
		}(i)
	}
	wg.Wait()
}

func loop(ctx context.Context, workerID int, source Source, processor *Processor) {
	for {
		if ctx.Err() != nil {
			log.Printf("Worker %d shutting down", workerID)
			return
		}

		msg, err := source.Pop(ctx, popTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("Worker %d: failed to pop run: %v", workerID, err)
			time.Sleep(time.Second)
			continue
		}
		if msg == nil {
			continue
		}

		log.Printf("Worker %d: processing run %d", workerID, msg.RunID)
		if err := processor.Process(ctx, msg); err != nil {
			log.Printf("Worker %d: run %d failed: %v", workerID, msg.RunID, err)
		}
	}
}
