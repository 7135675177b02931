package memory

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestPipeline_OrderAndResults(t *testing.T) {
	s := New(Options{})
	defer s.Close()

	pipe := s.Pipeline()
	pipe.Set("k", []byte("v"), 0).
		Get("k").
		RPush("l", "a", "b").
		LRem("l", 1, "a").
		Incr("n").
		Decr("n").
		Delete("k")

	results, err := pipe.Execute()
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if len(results) != 7 {
		t.Fatalf("expected 7 results, got %d", len(results))
	}
	if !results[1].Found || string(results[1].Bytes) != "v" {
		t.Fatalf("get result wrong: %+v", results[1])
	}
	if results[2].Int != 2 {
		t.Fatalf("rpush result wrong: %+v", results[2])
	}
	if results[3].Int != 1 {
		t.Fatalf("lrem result wrong: %+v", results[3])
	}
	if results[4].Int != 1 || results[5].Int != 0 {
		t.Fatalf("counter results wrong: %+v %+v", results[4], results[5])
	}
	if !results[6].Existed {
		t.Fatalf("delete result wrong: %+v", results[6])
	}
}

func TestPipeline_QueueClearedAfterExecute(t *testing.T) {
	s := New(Options{})
	defer s.Close()

	pipe := s.Pipeline()
	pipe.Incr("n")
	if _, err := pipe.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}

	// A second execute must not replay the first batch.
	results, err := pipe.Execute()
	if err != nil {
		t.Fatalf("second execute: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected empty batch, got %d results", len(results))
	}
	if n, _ := s.Incr("n"); n != 2 {
		t.Fatalf("expected counter 2, got %d", n)
	}
}

func TestPipeline_QueueClearedAfterFailure(t *testing.T) {
	s := New(Options{})
	defer s.Close()

	_ = s.Set("bad", []byte("nope"), 0)
	pipe := s.Pipeline()
	pipe.Incr("bad")
	if _, err := pipe.Execute(); err == nil {
		t.Fatalf("expected execute to fail")
	}
	results, err := pipe.Execute()
	if err != nil || len(results) != 0 {
		t.Fatalf("expected cleared queue after failure, got %d results err=%v", len(results), err)
	}
}

func TestPipeline_ConcurrentEnqueue(t *testing.T) {
	s := New(Options{})
	defer s.Close()

	pipe := s.Pipeline()
	const workers = 8
	const perWorker = 50

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		w := w
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				pipe.RPush("l", fmt.Sprintf("%d-%d", w, i))
			}
		}()
	}
	wg.Wait()

	results, err := pipe.Execute()
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if len(results) != workers*perWorker {
		t.Fatalf("expected %d results, got %d", workers*perWorker, len(results))
	}
	vals, _ := s.LRange("l", 0, -1)
	if len(vals) != workers*perWorker {
		t.Fatalf("expected %d list elements, got %d", workers*perWorker, len(vals))
	}

	// Within one worker enqueue order is preserved.
	seen := make(map[int]int, workers)
	for _, v := range vals {
		var w, i int
		if _, err := fmt.Sscanf(v, "%d-%d", &w, &i); err != nil {
			t.Fatalf("bad element %q", v)
		}
		if i != seen[w] {
			t.Fatalf("worker %d out of order: got %d want %d", w, i, seen[w])
		}
		seen[w]++
	}
}

func TestPipeline_SetExAppliesTTL(t *testing.T) {
	s := New(Options{})
	defer s.Close()

	base := time.Now()
	now = func() time.Time { return base }
	t.Cleanup(func() { now = time.Now })

	pipe := s.Pipeline()
	pipe.SetEx("k", time.Second, []byte("v"))
	if _, err := pipe.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if _, ok, _ := s.Get("k"); !ok {
		t.Fatalf("expected hit before expiry")
	}
	base = base.Add(2 * time.Second)
	if _, ok, _ := s.Get("k"); ok {
		t.Fatalf("expected miss after expiry")
	}
}
