// Package jobs provides background job processing functionality.
package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Task is a named unit of periodic maintenance
type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

// Manager runs tracked background work and periodic maintenance tasks
type Manager struct {
	tasks    []Task
	interval time.Duration
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	running  bool
	stopped  bool
	mu       sync.RWMutex
}

// NewManager creates a new job manager running tasks every interval once started
func NewManager(interval time.Duration, tasks ...Task) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		tasks:    tasks,
		interval: interval,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start begins the periodic maintenance loop
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		slog.Info("Job manager is already running")
		return
	}
	if m.stopped {
		slog.Warn("Job manager cannot be restarted after Stop")
		return
	}

	m.running = true
	slog.Info("Starting job manager", "tasks", len(m.tasks), "interval", m.interval)

	if len(m.tasks) > 0 && m.interval > 0 {
		m.wg.Add(1)
		go m.runPeriodicMaintenance()
	}
}

// Stop cancels all background work and waits for it to finish
func (m *Manager) Stop() {
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return
	}

	slog.Info("Stopping job manager...")
	m.stopped = true
	m.running = false
	m.cancel()
	m.mu.Unlock()

	// Wait for all jobs to finish
	m.wg.Wait()
	slog.Info("Job manager stopped")
}

// IsRunning returns whether the maintenance loop is currently running
func (m *Manager) IsRunning() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.running
}

// Go runs fn in the background. Its context is cancelled when parent is
// cancelled or the manager stops. It reports false once the manager is stopped.
func (m *Manager) Go(parent context.Context, name string, fn func(ctx context.Context)) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.stopped {
		slog.Debug("Rejecting background job, manager stopped", "job", name)
		return false
	}

	ctx, cancel := context.WithCancel(parent)
	stopWatching := context.AfterFunc(m.ctx, cancel)

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer stopWatching()
		defer cancel()

		start := time.Now()
		fn(ctx)
		slog.Debug("Background job finished", "job", name, "duration", time.Since(start))
	}()
	return true
}

// RunTasks runs every maintenance task once
func (m *Manager) RunTasks(ctx context.Context) {
	for _, task := range m.tasks {
		if err := task.Run(ctx); err != nil {
			slog.Warn("Maintenance task failed", "task", task.Name, "error", err)
		}
	}
}

// runPeriodicMaintenance runs the maintenance tasks periodically
func (m *Manager) runPeriodicMaintenance() {
	defer m.wg.Done()

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			slog.Debug("Periodic maintenance stopped")
			return
		case <-ticker.C:
			m.RunTasks(m.ctx)
		}
	}
}
