package executor

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/harrison/lines/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSchedulerDefaultWorkers(t *testing.T) {
	s := NewScheduler(0, func(*Scheduler, models.WorkItem) {}, nil)
	assert.Equal(t, DefaultWorkers(), s.Workers())

	s = NewScheduler(3, func(*Scheduler, models.WorkItem) {}, nil)
	assert.Equal(t, 3, s.Workers())
}

func TestSchedulerRunsEveryItemOnce(t *testing.T) {
	var seen atomic.Int64
	s := NewScheduler(4, func(_ *Scheduler, item models.WorkItem) {
		seen.Add(1)
	}, nil)

	s.Start()
	for i := 0; i < 1000; i++ {
		s.Submit(models.CountFile(fmt.Sprintf("f%d", i), ""))
	}
	s.Wait()

	assert.Equal(t, int64(1000), seen.Load())
}

func TestSchedulerWaitWithNoWork(t *testing.T) {
	s := NewScheduler(2, func(*Scheduler, models.WorkItem) {}, nil)
	s.Start()

	done := make(chan struct{})
	go func() {
		s.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Wait did not return for an empty scheduler")
	}
}

// A single worker recursively fanning out must not deadlock: children are
// queued, never waited on by their parent.
func TestSchedulerRecursiveSubmitSingleWorker(t *testing.T) {
	const depth = 10000
	var leaves atomic.Int64

	s := NewScheduler(1, func(s *Scheduler, item models.WorkItem) {
		var level int
		fmt.Sscanf(item.Path, "%d", &level)
		if level >= depth {
			leaves.Add(1)
			return
		}
		s.Submit(models.ExpandDirectory(fmt.Sprintf("%d", level+1), ""))
	}, nil)

	done := make(chan struct{})
	go func() {
		s.Start()
		s.Submit(models.ExpandDirectory("0", ""))
		s.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("recursive submission deadlocked")
	}
	assert.Equal(t, int64(1), leaves.Load())
}

// Wide fan-out at every level: the barrier must cover grandchildren.
func TestSchedulerBarrierCoversTransitiveWork(t *testing.T) {
	var leaves atomic.Int64
	const fanout = 4
	const levels = 5

	s := NewScheduler(3, func(s *Scheduler, item models.WorkItem) {
		if len(item.Path) == levels {
			time.Sleep(time.Microsecond)
			leaves.Add(1)
			return
		}
		for i := 0; i < fanout; i++ {
			s.Submit(models.ExpandDirectory(item.Path+"x", ""))
		}
	}, nil)

	s.Start()
	s.Submit(models.ExpandDirectory("", ""))
	s.Wait()

	assert.Equal(t, int64(1024), leaves.Load()) // 4^5
}

func TestSchedulerRecoversPanics(t *testing.T) {
	var ran atomic.Int64
	var panics atomic.Int64

	s := NewScheduler(2, func(_ *Scheduler, item models.WorkItem) {
		if item.Path == "boom" {
			panic("boom")
		}
		ran.Add(1)
	}, nil)
	s.onPanic = func(models.WorkItem, any) { panics.Add(1) }

	s.Start()
	s.Submit(models.CountFile("a", ""))
	s.Submit(models.CountFile("boom", ""))
	s.Submit(models.CountFile("b", ""))
	s.Wait()

	assert.Equal(t, int64(2), ran.Load())
	assert.Equal(t, int64(1), panics.Load())
}

func TestSchedulerSubmitAfterWaitPanics(t *testing.T) {
	s := NewScheduler(1, func(*Scheduler, models.WorkItem) {}, nil)
	s.Start()
	s.Wait()

	require.Panics(t, func() {
		s.Submit(models.CountFile("late", ""))
	})
}
