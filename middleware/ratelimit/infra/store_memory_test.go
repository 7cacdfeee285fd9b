package infra

import (
	"context"
	"testing"
	"time"

	"quota-gateway/middleware/ratelimit/domain"
)

func TestMemoryCounterStore_FirstConsumeReportsFullQuota(t *testing.T) {
	s := NewMemoryCounterStore()

	q, err := s.Consume(context.Background(), "k", time.Minute, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Total != 10 || q.Remaining != 10 {
		t.Fatalf("expected total=10 remaining=10, got %+v", q)
	}
	if q.Reset <= time.Now().Unix() {
		t.Fatalf("expected reset in the future, got %d", q.Reset)
	}
}

func TestMemoryCounterStore_ExhaustsAfterMaxConsumes(t *testing.T) {
	s := NewMemoryCounterStore()

	var q domain.Quota
	var err error
	for i := 0; i < 3; i++ {
		q, err = s.Consume(context.Background(), "k", time.Minute, 3)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if q.Remaining != 3-i {
			t.Fatalf("consume %d: expected remaining=%d, got %d", i+1, 3-i, q.Remaining)
		}
	}

	q, err = s.Consume(context.Background(), "k", time.Minute, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Remaining != 0 {
		t.Fatalf("expected remaining=0 past max, got %d", q.Remaining)
	}
}

func TestMemoryCounterStore_KeysAreIndependent(t *testing.T) {
	s := NewMemoryCounterStore()

	if _, err := s.Consume(context.Background(), "a", time.Minute, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	q, err := s.Consume(context.Background(), "b", time.Minute, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Remaining != 1 {
		t.Fatalf("expected fresh quota for second key, got %+v", q)
	}
}

func TestMemoryCounterStore_WindowRestartsAfterReset(t *testing.T) {
	s := NewMemoryCounterStore()

	if _, err := s.Consume(context.Background(), "k", 2*time.Millisecond, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	time.Sleep(4 * time.Millisecond)

	q, err := s.Consume(context.Background(), "k", 2*time.Millisecond, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Remaining != 1 {
		t.Fatalf("expected fresh window after reset, got %+v", q)
	}
}

func TestMemoryCounterStore_CleanupRemovesClosedWindows(t *testing.T) {
	s := NewMemoryCounterStore(WithCounterCleanupEvery(0))

	if _, err := s.Consume(context.Background(), "k", 2*time.Millisecond, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	time.Sleep(4 * time.Millisecond)

	s.Cleanup()

	s.mu.Lock()
	n := len(s.entries)
	s.mu.Unlock()
	if n != 0 {
		t.Fatalf("expected no entries after cleanup, got %d", n)
	}
}
