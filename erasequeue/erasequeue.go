// Package erasequeue is a background erase scheduler: a FIFO of pending
// (instance, sector) erase hints, drained off the append hot path by a
// low-priority goroutine that calls ringfs.Instance.EraseSector.
//
// Grounded on cannyls-go's journal.JournalRegion.gcQueue: a
// github.com/phf/go-queue FIFO fed by PushBack, drained from the front,
// used to move garbage-collection work off the synchronous write path.
package erasequeue

import (
	"sync"

	"github.com/phf/go-queue/queue"

	"github.com/flashring/ringfs/ringfs"
)

// Hint names a sector on a specific instance that is a candidate for
// reclamation.
type Hint struct {
	Instance *ringfs.Instance
	Sector   int32
}

// Scheduler owns exclusive write access to whichever instances are handed
// to it via Submit; the caller must not also call mutating operations
// directly on an instance the scheduler is servicing.
type Scheduler struct {
	mu    sync.Mutex
	q     *queue.Queue
	wake  chan struct{}
	done  chan struct{}
	once  sync.Once
}

// New creates an idle scheduler. Call Run to start draining it.
func New() *Scheduler {
	return &Scheduler{
		q:    queue.New(),
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

// Submit enqueues a hint. It is safe to call from any goroutine.
func (s *Scheduler) Submit(h Hint) {
	s.mu.Lock()
	s.q.PushBack(h)
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Pending returns how many hints are queued.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.q.Len()
}

// Run drains the queue until Stop is called, calling EraseSector for each
// hint as it is popped. It blocks the calling goroutine; callers typically
// invoke it with `go scheduler.Run()`.
func (s *Scheduler) Run() {
	for {
		s.drain()
		select {
		case <-s.wake:
		case <-s.done:
			return
		}
	}
}

func (s *Scheduler) drain() {
	for {
		s.mu.Lock()
		if s.q.Len() == 0 {
			s.mu.Unlock()
			return
		}
		h := s.q.PopFront().(Hint)
		s.mu.Unlock()

		h.Instance.EraseSector(h.Sector)
	}
}

// Stop halts Run. It is idempotent.
func (s *Scheduler) Stop() {
	s.once.Do(func() { close(s.done) })
}
