package executor

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/harrison/lines/internal/models"
)

// HandlerFunc executes one WorkItem. It may submit further items to s.
type HandlerFunc func(s *Scheduler, item models.WorkItem)

// DefaultWorkers returns the default pool size: twice the number of CPUs.
func DefaultWorkers() int {
	return 2 * runtime.NumCPU()
}

// Scheduler runs WorkItems on a fixed number of worker goroutines.
//
// Items are kept in an unbounded queue, so Submit never blocks, and tasks can
// submit children without waiting for them. The outstanding counter is
// incremented before Submit returns, which means it cannot reach zero while
// any running task can still spawn work. Wait is therefore a full barrier
// over every transitively submitted item.
type Scheduler struct {
	workers int
	handle  HandlerFunc
	logger  Logger

	mu     sync.Mutex
	cond   *sync.Cond
	queue  []models.WorkItem
	closed bool

	pending sync.WaitGroup // outstanding items
	running sync.WaitGroup // worker goroutines

	// onPanic is called when a handler panics, after the panic is recovered.
	onPanic func(item models.WorkItem, r any)
}

// NewScheduler creates a Scheduler with the given pool size.
// A workers value <= 0 selects DefaultWorkers.
func NewScheduler(workers int, handle HandlerFunc, logger Logger) *Scheduler {
	if workers <= 0 {
		workers = DefaultWorkers()
	}
	if logger == nil {
		logger = nopLogger{}
	}
	s := &Scheduler{
		workers: workers,
		handle:  handle,
		logger:  logger,
	}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// Workers returns the pool size.
func (s *Scheduler) Workers() int {
	return s.workers
}

// Start launches the worker goroutines.
func (s *Scheduler) Start() {
	s.logger.LogDebug(fmt.Sprintf("Starting worker pool with %d workers", s.workers))
	s.running.Add(s.workers)
	for i := 0; i < s.workers; i++ {
		go s.worker(i)
	}
}

// Submit enqueues item. It never blocks on pool saturation.
// Submitting after Wait has returned panics.
func (s *Scheduler) Submit(item models.WorkItem) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		panic("executor: submit on closed scheduler")
	}
	s.pending.Add(1)
	s.queue = append(s.queue, item)
	s.mu.Unlock()
	s.cond.Signal()
}

// Wait blocks until every submitted item, including items submitted by
// running items, has completed. It then stops and joins all workers.
func (s *Scheduler) Wait() {
	s.pending.Wait()

	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.cond.Broadcast()

	s.running.Wait()
	s.logger.LogDebug("Worker pool stopped")
}

// next pops the most recently queued item, blocking while the queue is empty.
// LIFO order keeps the frontier small on deep trees.
func (s *Scheduler) next() (models.WorkItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for len(s.queue) == 0 && !s.closed {
		s.cond.Wait()
	}
	if len(s.queue) == 0 {
		return models.WorkItem{}, false
	}
	last := len(s.queue) - 1
	item := s.queue[last]
	s.queue[last] = models.WorkItem{}
	s.queue = s.queue[:last]
	return item, true
}

// worker is the processing loop of a single pool goroutine.
func (s *Scheduler) worker(id int) {
	defer s.running.Done()
	s.logger.LogTrace(fmt.Sprintf("Worker %d started", id))

	for {
		item, ok := s.next()
		if !ok {
			s.logger.LogTrace(fmt.Sprintf("Worker %d finished", id))
			return
		}
		s.run(id, item)
	}
}

// run executes one item and always marks it done, even when the handler panics.
func (s *Scheduler) run(id int, item models.WorkItem) {
	defer s.pending.Done()
	defer func() {
		if r := recover(); r != nil {
			s.logger.LogError(fmt.Sprintf("Worker %d: %s panicked: %v", id, item, r))
			if s.onPanic != nil {
				s.onPanic(item, r)
			}
		}
	}()

	s.logger.LogTrace(fmt.Sprintf("Worker %d picked up %s", id, item))
	s.handle(s, item)
}
