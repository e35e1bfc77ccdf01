// Package notify records user notifications in the background so request
// handlers never wait on the notification store.
package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/upb/petclinic/models"
	"github.com/upb/petclinic/repositories"
	"go.uber.org/zap"
)

// Service queues notifications and stores them with a pool of workers
type Service struct {
	repo         repositories.NotificationRepository
	logger       *zap.Logger
	queue        chan *models.Notification
	workerCount  int
	bufferSize   int
	writeTimeout time.Duration
	wg           sync.WaitGroup
	started      bool
	stopped      bool
	mu           sync.Mutex
}

// Config holds configuration for the Service
type Config struct {
	BufferSize   int
	WorkerCount  int
	WriteTimeout time.Duration
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		BufferSize:   1000,
		WorkerCount:  2,
		WriteTimeout: 5 * time.Second,
	}
}

// NewService creates a new notification Service
func NewService(repo repositories.NotificationRepository, logger *zap.Logger, cfg Config) *Service {
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 1
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 5 * time.Second
	}
	return &Service{
		repo:         repo,
		logger:       logger,
		queue:        make(chan *models.Notification, cfg.BufferSize),
		workerCount:  cfg.WorkerCount,
		bufferSize:   cfg.BufferSize,
		writeTimeout: cfg.WriteTimeout,
	}
}

// Start starts the background workers
func (s *Service) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return fmt.Errorf("notification service already started")
	}

	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.started = true
	s.logger.Info("started notification service",
		zap.Int("worker_count", s.workerCount),
		zap.Int("buffer_size", s.bufferSize))

	return nil
}

// Stop stops accepting notifications and waits for queued ones to be
// stored, up to timeout.
func (s *Service) Stop(timeout time.Duration) error {
	s.mu.Lock()
	if !s.started || s.stopped {
		s.mu.Unlock()
		return fmt.Errorf("notification service not running")
	}
	s.stopped = true
	close(s.queue)
	s.mu.Unlock()

	s.logger.Info("stopping notification service", zap.Int("pending", len(s.queue)))

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("notification service stopped")
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("notification service stop timeout after %v", timeout)
	}
}

// Enqueue queues n without blocking. A full buffer drops the notification.
func (s *Service) Enqueue(n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started || s.stopped {
		return fmt.Errorf("notification service not running")
	}

	select {
	case s.queue <- n:
		return nil
	default:
		s.logger.Warn("notification buffer full, dropping notification",
			zap.String("recipient", n.RecipientEmail),
			zap.String("subject", n.Subject))
		return fmt.Errorf("notification buffer full")
	}
}

// Notify builds a notification and queues it.
func (s *Service) Notify(recipient, subject, body string) error {
	return s.Enqueue(models.NewNotification(recipient, subject, body))
}

func (s *Service) worker(id int) {
	defer s.wg.Done()

	for n := range s.queue {
		if err := s.store(n); err != nil {
			s.logger.Error("failed to store notification",
				zap.Int("worker_id", id),
				zap.String("recipient", n.RecipientEmail),
				zap.Error(err))
		}
	}
}

func (s *Service) store(n *models.Notification) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.writeTimeout)
	defer cancel()

	if err := s.repo.Create(ctx, n); err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}
	return nil
}

// Stats returns queue statistics
func (s *Service) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Stats{
		BufferSize:  s.bufferSize,
		Pending:     len(s.queue),
		WorkerCount: s.workerCount,
		Running:     s.started && !s.stopped,
	}
}

// Stats represents notification queue statistics
type Stats struct {
	BufferSize  int
	Pending     int
	WorkerCount int
	Running     bool
}
