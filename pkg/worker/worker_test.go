package worker

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkerManager_ProcessesAllJobs(t *testing.T) {
	m := NewWorkerManager(100, 4, nil)

	var processed int64
	var wg sync.WaitGroup
	m.SetWorker(func(workerIndex int, job interface{}) {
		defer wg.Done()
		atomic.AddInt64(&processed, 1)
	})

	go func() {
		_ = m.Start()
	}()

	for i := 0; i < 50; i++ {
		wg.Add(1)
		m.Enqueue(i)
	}
	wg.Wait()
	m.Exit()

	assert.Equal(t, int64(50), atomic.LoadInt64(&processed))
}

func TestWorkerManager_FansOutAcrossWorkers(t *testing.T) {
	m := NewWorkerManager(100, 3, nil)

	var mu sync.Mutex
	seen := map[int]bool{}
	var wg sync.WaitGroup
	m.SetWorker(func(workerIndex int, job interface{}) {
		defer wg.Done()
		mu.Lock()
		seen[workerIndex] = true
		mu.Unlock()
		time.Sleep(5 * time.Millisecond)
	})

	go func() {
		_ = m.Start()
	}()

	for i := 0; i < 30; i++ {
		wg.Add(1)
		m.Enqueue(i)
	}
	wg.Wait()
	m.Exit()

	mu.Lock()
	defer mu.Unlock()
	assert.Greater(t, len(seen), 1)
}

func TestWorkerManager_ExitStopsStart(t *testing.T) {
	m := NewWorkerManager(10, 2, nil)
	m.SetWorker(func(workerIndex int, job interface{}) {})

	done := make(chan error, 1)
	go func() {
		done <- m.Start()
	}()

	time.Sleep(20 * time.Millisecond)
	m.Exit()

	select {
	case err := <-done:
		require.Error(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after Exit")
	}
}

func TestWorkerManager_ExternalChannel(t *testing.T) {
	ch := make(chan interface{}, 10)
	m := NewWorkerManager(10, 1, ch)

	assert.Equal(t, ch, m.JobEvents())

	ch <- "job"
	assert.Equal(t, int64(1), m.GetUnreadCount())
}
