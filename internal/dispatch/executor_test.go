package dispatch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type noopJob struct{}

func (noopJob) Run(ctx context.Context) error { return nil }

func newTestExecutor(cfg Config) *Executor {
	return New(cfg, zerolog.Nop())
}

func TestExecutor_SubmitAndStop(t *testing.T) {
	t.Parallel()
	ex := newTestExecutor(Config{})
	defer ex.Stop()

	if err := ex.Submit(context.Background(), 1, noopJob{}); err != nil {
		t.Fatalf("submit error: %v", err)
	}
}

// FIFO ordering for a single key.
func TestExecutor_FIFOOrdering(t *testing.T) {
	ex := newTestExecutor(Config{Shards: 4, QueueSize: 10})
	defer ex.Stop()

	var (
		mu    sync.Mutex
		order []int
		wg    sync.WaitGroup
	)
	wg.Add(5)
	for i := 0; i < 5; i++ {
		v := i
		if err := ex.Submit(context.Background(), 42, JobFunc(func(ctx context.Context) error {
			mu.Lock()
			order = append(order, v)
			mu.Unlock()
			wg.Done()
			return nil
		})); err != nil {
			t.Fatalf("submit failed: %v", err)
		}
	}

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for jobs")
	}

	for i, v := range order {
		if i != v {
			t.Fatalf("expected FIFO order, got %v", order)
		}
	}
}

// otherShardKey finds a key that lands on a different shard than base.
func otherShardKey(t *testing.T, ex *Executor, base int64) int64 {
	t.Helper()
	want := ex.shardFor(base)
	for k := base + 1; k < base+1000; k++ {
		if ex.shardFor(k) != want {
			return k
		}
	}
	t.Fatal("failed to find keys mapping to different shards")
	return 0
}

// Jobs for different keys run in parallel (no head-of-line blocking).
func TestExecutor_ParallelDifferentKeys(t *testing.T) {
	ex := newTestExecutor(Config{Shards: 4, QueueSize: 10})
	defer ex.Stop()

	keyA := int64(100)
	keyB := otherShardKey(t, ex, keyA)

	start := make(chan struct{})
	done := make(chan struct{})

	_ = ex.Submit(context.Background(), keyA, JobFunc(func(context.Context) error {
		<-start
		close(done)
		return nil
	}))
	_ = ex.Submit(context.Background(), keyB, JobFunc(func(context.Context) error {
		close(start)
		<-done
		return nil
	}))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("jobs blocked each other; expected parallelism")
	}
}

// No overlap for the same key (serial execution guarantee).
func TestExecutor_SerialExecutionSameKey(t *testing.T) {
	const N = 200
	ex := newTestExecutor(Config{Shards: 4, QueueSize: N})
	defer ex.Stop()

	var (
		inFlight        int32
		overlapDetected int32
		wg              sync.WaitGroup
	)
	wg.Add(N)

	for i := 0; i < N; i++ {
		_ = ex.Submit(context.Background(), 7, JobFunc(func(context.Context) error {
			if atomic.AddInt32(&inFlight, 1) > 1 {
				atomic.StoreInt32(&overlapDetected, 1)
			}
			time.Sleep(100 * time.Microsecond)
			atomic.AddInt32(&inFlight, -1)
			wg.Done()
			return nil
		}))
	}

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("serial execution test timed out")
	}

	if atomic.LoadInt32(&overlapDetected) == 1 {
		t.Fatal("detected overlapping execution for same key")
	}
}

func TestExecutor_SubmitAfterStop(t *testing.T) {
	ex := newTestExecutor(Config{Shards: 2, QueueSize: 2})
	ex.Stop()

	err := ex.Submit(context.Background(), 9, noopJob{})
	if !errors.Is(err, ErrExecutorClosed) {
		t.Fatalf("expected ErrExecutorClosed, got %v", err)
	}
}

func TestExecutor_QueueFull(t *testing.T) {
	t.Parallel()
	ex := newTestExecutor(Config{Shards: 1, QueueSize: 1, EnqueueTimeout: 10 * time.Millisecond})
	defer ex.Stop()

	// Block the worker until the test is done probing.
	blockCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var started int32
	_ = ex.Submit(context.Background(), 1, JobFunc(func(ctx context.Context) error {
		atomic.StoreInt32(&started, 1)
		<-blockCtx.Done()
		return nil
	}))
	for atomic.LoadInt32(&started) == 0 {
		time.Sleep(time.Millisecond)
	}

	// Fill the buffer, then the next submit must time out.
	_ = ex.Submit(context.Background(), 1, noopJob{})
	err := ex.Submit(context.Background(), 1, noopJob{})
	if !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
}

func TestExecutor_RetriesRecoverableErrors(t *testing.T) {
	ex := newTestExecutor(Config{Shards: 1, QueueSize: 10, MaxAttempts: 3, BaseBackoff: 5 * time.Millisecond})
	defer ex.Stop()

	var attempts int32
	job := JobFunc(func(ctx context.Context) error {
		if atomic.AddInt32(&attempts, 1) < 3 {
			return ClassifyStatus(500, "", errors.New("upstream unavailable"))
		}
		return nil
	})

	if err := ex.Submit(context.Background(), 1, job); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := ex.Barrier(context.Background(), 1); err != nil {
		t.Fatalf("barrier: %v", err)
	}

	if got := atomic.LoadInt32(&attempts); got != 3 {
		t.Fatalf("expected 3 attempts, got %d", got)
	}
}

func TestExecutor_IrrecoverableFailsFast(t *testing.T) {
	var handled int32
	cfg := Config{Shards: 1, QueueSize: 10, MaxAttempts: 5, BaseBackoff: 5 * time.Millisecond}
	cfg.ErrorHandler = func(error) { atomic.AddInt32(&handled, 1) }
	ex := newTestExecutor(cfg)
	defer ex.Stop()

	var attempts int32
	_ = ex.Submit(context.Background(), 1, JobFunc(func(ctx context.Context) error {
		atomic.AddInt32(&attempts, 1)
		return ClassifyStatus(400, "bad request", errors.New("rejected"))
	}))
	if err := ex.Barrier(context.Background(), 1); err != nil {
		t.Fatalf("barrier: %v", err)
	}

	if got := atomic.LoadInt32(&attempts); got != 1 {
		t.Fatalf("expected a single attempt, got %d", got)
	}
	if got := atomic.LoadInt32(&handled); got != 1 {
		t.Fatalf("error handler calls = %d, want 1", got)
	}
}

// Error handler is invoked exactly once when retries run out.
func TestErrorHandler_CalledOnceAfterRetryBudget(t *testing.T) {
	var calls int32
	cfg := Config{Shards: 1, QueueSize: 8, MaxAttempts: 2, BaseBackoff: time.Millisecond}
	cfg.ErrorHandler = func(error) { atomic.AddInt32(&calls, 1) }
	ex := newTestExecutor(cfg)
	defer ex.Stop()

	_ = ex.Submit(context.Background(), 3, JobFunc(func(ctx context.Context) error {
		return errors.New("boom")
	}))
	if err := ex.Barrier(context.Background(), 3); err != nil {
		t.Fatalf("barrier: %v", err)
	}

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("error handler calls = %d, want 1", got)
	}
}

// Panic inside ErrorHandler must not crash the worker; subsequent jobs run.
func TestErrorHandler_PanicRecovered(t *testing.T) {
	cfg := Config{Shards: 1, QueueSize: 8, MaxAttempts: 1}
	cfg.ErrorHandler = func(error) { panic("handler panic") }
	ex := newTestExecutor(cfg)
	defer ex.Stop()

	_ = ex.Submit(context.Background(), 5, JobFunc(func(ctx context.Context) error {
		return errors.New("boom")
	}))

	ran := make(chan struct{})
	_ = ex.Submit(context.Background(), 5, JobFunc(func(ctx context.Context) error {
		close(ran)
		return nil
	}))

	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("worker did not continue after handler panic")
	}
}

// A panic in one shard worker should not stop jobs on other shards.
func TestWorker_PanicDoesNotStopOtherShards(t *testing.T) {
	ex := newTestExecutor(Config{Shards: 2, QueueSize: 4, MaxAttempts: 1})
	defer ex.Stop()

	keyPanic := int64(1)
	keyOther := otherShardKey(t, ex, keyPanic)

	if err := ex.Submit(context.Background(), keyPanic, JobFunc(func(ctx context.Context) error {
		panic("job panic")
	})); err != nil {
		t.Fatalf("submit panic job: %v", err)
	}

	ran := make(chan struct{})
	if err := ex.Submit(context.Background(), keyOther, JobFunc(func(ctx context.Context) error {
		close(ran)
		return nil
	})); err != nil {
		t.Fatalf("submit follow-up: %v", err)
	}

	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("other shard did not continue after worker panic")
	}
}

// Stop racing with many concurrent Submit calls should never panic or deadlock.
func TestExecutor_StopSubmit_RaceFree(t *testing.T) {
	ex := newTestExecutor(Config{Shards: 4, QueueSize: 32})

	var wg sync.WaitGroup
	for i := 0; i < 1000; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = ex.Submit(context.Background(), 11, noopJob{})
		}()
	}

	go ex.Stop()
	wg.Wait()
}

func TestExecutor_BarrierWaitsForPriorJobs(t *testing.T) {
	ex := newTestExecutor(Config{Shards: 2, QueueSize: 8})
	defer ex.Stop()

	var completed int32
	for i := 0; i < 3; i++ {
		_ = ex.Submit(context.Background(), 21, JobFunc(func(ctx context.Context) error {
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt32(&completed, 1)
			return nil
		}))
	}

	if err := ex.Barrier(context.Background(), 21); err != nil {
		t.Fatalf("barrier: %v", err)
	}
	if got := atomic.LoadInt32(&completed); got != 3 {
		t.Fatalf("barrier returned before prior jobs finished: %d/3", got)
	}
}
