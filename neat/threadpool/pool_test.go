package threadpool

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_EnqueueRunsEveryTask(t *testing.T) {
	p := New[int](4)
	defer p.Stop()

	const n = 50
	var sum int64
	for i := 0; i < n; i++ {
		i := i
		p.Enqueue(func() int {
			atomic.AddInt64(&sum, int64(i))
			return i
		})
	}
	results := p.WaitAllTasks()
	require.Len(t, results, n)

	want := int64(0)
	for i := 0; i < n; i++ {
		want += int64(i)
	}
	assert.Equal(t, want, atomic.LoadInt64(&sum))
}

func TestPool_WaitAllTasks_returnsAllResultsRegardlessOfOrder(t *testing.T) {
	p := New[int](3)
	defer p.Stop()

	p.Enqueue(func() int { return 1 })
	p.Enqueue(func() int { return 2 })
	p.Enqueue(func() int { return 3 })

	results := p.WaitAllTasks()
	sum := 0
	for _, r := range results {
		sum += r
	}
	assert.Equal(t, 6, sum)
}

func TestPool_DefaultWorkerCount(t *testing.T) {
	p := New[struct{}](0)
	defer p.Stop()
	// A zero worker count must still make progress via the GOMAXPROCS
	// default, not deadlock.
	done := make(chan struct{})
	go func() {
		p.Enqueue(func() struct{} { return struct{}{} })
		p.WaitAllTasks()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("pool with default worker count never completed a task")
	}
}

func TestPool_Stop_unblocksPendingEnqueue(t *testing.T) {
	p := New[struct{}](1)
	// Saturate the single worker with a blocking task so the next Enqueue
	// has nowhere to go until Stop releases it.
	block := make(chan struct{})
	p.Enqueue(func() struct{} {
		<-block
		return struct{}{}
	})

	done := make(chan struct{})
	go func() {
		p.Enqueue(func() struct{} { return struct{}{} })
		close(done)
	}()

	p.Stop()
	close(block)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Enqueue did not unblock after Stop")
	}
}
