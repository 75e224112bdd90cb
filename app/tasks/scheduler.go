package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lysyi3m/news-importer/app/database"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

// Scheduler periodically enqueues an import batch and runs queued tasks.
// A single worker keeps import runs sequential.
type Scheduler struct {
	service     ImportService
	articles    database.ArticleRepository
	indexer     SearchIndexer
	interval    time.Duration
	taskTimeout time.Duration
	workerCount int
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	taskQueue   chan TaskInterface
}

// NewScheduler builds a scheduler ticking every interval. indexer may be nil.
func NewScheduler(service ImportService, articles database.ArticleRepository, indexer SearchIndexer, interval time.Duration) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		service:     service,
		articles:    articles,
		indexer:     indexer,
		interval:    interval,
		taskTimeout: interval,
		workerCount: 1,
		ctx:         ctx,
		cancel:      cancel,
		taskQueue:   make(chan TaskInterface, 16),
	}
}

func (s *Scheduler) Start() {
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.enqueueStartupTasks()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.enqueueTasks()
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	select {
	case s.taskQueue <- task:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		return fmt.Errorf("task queue is full")
	}
}

func (s *Scheduler) enqueueStartupTasks() {
	if s.indexer != nil && s.articles != nil {
		if err := s.EnqueueTask(NewReindexSearchTask(s.articles, s.indexer, 0)); err != nil {
			slog.Warn("Failed to enqueue ReindexSearchTask", "error", err)
		}
	}

	s.enqueueTasks()
}

func (s *Scheduler) enqueueTasks() {
	if err := s.EnqueueTask(NewImportFeedsTask(s.service)); err != nil {
		slog.Warn("Failed to enqueue ImportFeedsTask", "error", err)
	}
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task := <-s.taskQueue:
			s.executeTask(id, task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, s.taskTimeout)
	defer cancel()

	err := task.Execute(taskCtx)
	if err == nil {
		return
	}

	slog.Error("Worker task execution failed", "worker_id", workerID, "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", err)

	if !task.CanRetry() {
		if task.GetMaxRetries() > 0 {
			slog.Error("Task failed after maximum retries", "type", string(task.GetType()), "id", task.GetID(), "max_retries", task.GetMaxRetries(), "last_error", err)
		}
		return
	}

	task.IncrementRetryCount()
	retryDelay := time.Duration(1<<uint(task.GetRetryCount()-1)) * time.Second
	if retryDelay > 30*time.Second {
		retryDelay = 30 * time.Second
	}

	slog.Warn("Task retry scheduled", "type", string(task.GetType()), "target", task.GetTarget(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", retryDelay.String())

	go func() {
		select {
		case <-s.ctx.Done():
			slog.Debug("Scheduler stopped, skipping task retry", "type", string(task.GetType()), "id", task.GetID())
		case <-time.After(retryDelay):
			if retryErr := s.EnqueueTask(task); retryErr != nil {
				slog.Error("Failed to re-enqueue task for retry", "type", string(task.GetType()), "id", task.GetID(), "error", retryErr)
			}
		}
	}()
}
