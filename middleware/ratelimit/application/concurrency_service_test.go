package application

import (
	"context"
	"testing"
	"time"

	"quota-gateway/middleware/ratelimit/infra"
)

func TestConcurrencyService_AcquireWithoutPoolAlwaysOk(t *testing.T) {
	svc := ConcurrencyService{}
	release, ok := svc.Acquire(context.Background())
	if !ok {
		t.Fatalf("expected ok without pool")
	}
	release()
}

func TestConcurrencyService_AcquireAndRelease(t *testing.T) {
	svc := ConcurrencyService{Pool: infra.NewChanPool(1)}

	release, ok := svc.Acquire(context.Background())
	if !ok {
		t.Fatalf("expected first acquire to succeed")
	}

	// segunda vaga só depois do release
	svc2 := ConcurrencyService{Pool: svc.Pool, AcquireTimeout: 10 * time.Millisecond}
	if _, ok := svc2.Acquire(context.Background()); ok {
		t.Fatalf("expected second acquire to time out")
	}

	release()
	release2, ok := svc2.Acquire(context.Background())
	if !ok {
		t.Fatalf("expected acquire after release to succeed")
	}
	release2()
}
