package worker

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPanicRecovery(t *testing.T) {
	pool := NewPool(2, 10)

	var completed atomic.Int32
	for i := 0; i < 2; i++ {
		assert.True(t, pool.Submit(func() { panic("boom") }))
	}
	for i := 0; i < 3; i++ {
		assert.True(t, pool.Submit(func() { completed.Add(1) }))
	}
	pool.Stop()

	assert.Equal(t, int32(3), completed.Load())
	stats := pool.GetStats()
	assert.Equal(t, uint64(2), stats.Failed)
	assert.Equal(t, uint64(5), stats.Executed)
}

func TestStopDrainsQueue(t *testing.T) {
	pool := NewPool(1, 10)

	var completed atomic.Int32
	started := make(chan struct{})
	pool.Submit(func() {
		close(started)
		time.Sleep(100 * time.Millisecond)
		completed.Add(1)
	})
	pool.Submit(func() { completed.Add(1) })
	<-started

	pool.Stop()
	assert.Equal(t, int32(2), completed.Load())

	// 停止后拒绝提交，重复停止不会 panic
	assert.False(t, pool.Submit(func() {}))
	pool.Stop()
}

func TestQueueFullDropsTask(t *testing.T) {
	pool := NewPool(1, 2)
	defer pool.Stop()

	blocker := make(chan struct{})
	started := make(chan struct{})
	pool.Submit(func() {
		close(started)
		<-blocker
	})
	<-started

	assert.True(t, pool.Submit(func() {}))
	assert.True(t, pool.Submit(func() {}))
	assert.False(t, pool.Submit(func() {}))
	assert.Equal(t, uint64(1), pool.GetStats().Dropped)

	close(blocker)
}

func TestConcurrentSubmit(t *testing.T) {
	pool := NewPool(4, 2000)

	const goroutines, perGoroutine = 50, 20
	var completed atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				pool.Submit(func() { completed.Add(1) })
			}
		}()
	}
	wg.Wait()
	pool.Stop()

	assert.Equal(t, int32(goroutines*perGoroutine), completed.Load())
	assert.Equal(t, uint64(goroutines*perGoroutine), pool.GetStats().Submitted)
}

func TestNilTaskIsSkipped(t *testing.T) {
	pool := NewPool(1, 10)
	assert.True(t, pool.Submit(nil))
	pool.Stop()

	stats := pool.GetStats()
	assert.Equal(t, uint64(1), stats.Submitted)
	assert.Zero(t, stats.Executed)
}

func TestDefaults(t *testing.T) {
	pool := NewPool(0, 0)
	defer pool.Stop()

	stats := pool.GetStats()
	assert.Positive(t, stats.WorkerCount)
	assert.Equal(t, 1000, stats.QueueCap)
}
