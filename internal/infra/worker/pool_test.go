// File: internal/infra/worker/pool_test.go
package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func testLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

func TestPoolRunsTasks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	pool := NewPool(2, testLogger())
	pool.Start(ctx)
	defer pool.Stop()

	var wg sync.WaitGroup
	var mu sync.Mutex
	ran := 0
	for i := 0; i < 5; i++ {
		wg.Add(1)
		err := pool.Submit(func(context.Context) error {
			defer wg.Done()
			mu.Lock()
			ran++
			mu.Unlock()
			return nil
		})
		if err != nil {
			wg.Done()
			t.Fatalf("Submit: %v", err)
		}
	}
	wg.Wait()
	if ran != 5 {
		t.Fatalf("ran = %d, want 5", ran)
	}
}

func TestPoolRejectsNilTask(t *testing.T) {
	pool := NewPool(1, testLogger())
	if err := pool.Submit(nil); err == nil {
		t.Fatal("expected error for nil task")
	}
}

func TestPoolDropsWhenSaturated(t *testing.T) {
	// Pool never started, so the queue only drains into the buffer.
	pool := NewPool(1, testLogger())
	block := func(context.Context) error { time.Sleep(time.Hour); return nil }

	submitted := 0
	for i := 0; i < 10; i++ {
		if err := pool.Submit(block); err != nil {
			break
		}
		submitted++
	}
	if submitted != 4 { // workers*4 buffer
		t.Fatalf("submitted = %d, want 4 before saturation", submitted)
	}
	if err := pool.Submit(block); err == nil {
		t.Fatal("expected saturation error")
	}
}
