package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestRegistryHoldsOneSessionPerUser(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	r.Set("u1", Session{UserID: "u1", MessageID: "m1"})
	r.Set("u1", Session{UserID: "u1", MessageID: "m2"})
	r.Set("u2", Session{UserID: "u2", MessageID: "m3"})

	if r.Len() != 2 {
		t.Fatalf("len = %d, want 2", r.Len())
	}
	got, ok := r.Get("u1")
	if !ok || got.MessageID != "m2" {
		t.Fatalf("get = %+v, %v", got, ok)
	}
	r.Remove("u2")
	if _, ok := r.Get("u2"); ok {
		t.Fatal("expected u2 removed")
	}
}

func TestRegistryRemoveIf(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	r.Set("u1", Session{UserID: "u1", MessageID: "m2"})

	if r.RemoveIf("u1", "m1") {
		t.Fatal("stale message must not remove session")
	}
	if _, ok := r.Get("u1"); !ok {
		t.Fatal("session removed by stale message")
	}
	if !r.RemoveIf("u1", "m2") {
		t.Fatal("expected removal for current message")
	}
	if r.RemoveIf("u1", "m2") {
		t.Fatal("second removal should report false")
	}
}

func TestLockerSerializesSameKey(t *testing.T) {
	t.Parallel()

	l := NewLocker()
	var active, maxActive int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := l.Lock(context.Background(), "u1")
			if err != nil {
				t.Errorf("lock: %v", err)
				return
			}
			defer unlock()
			n := atomic.AddInt32(&active, 1)
			for {
				m := atomic.LoadInt32(&maxActive)
				if n <= m || atomic.CompareAndSwapInt32(&maxActive, m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&active, -1)
		}()
	}
	wg.Wait()

	if maxActive != 1 {
		t.Fatalf("max concurrent holders = %d, want 1", maxActive)
	}
	if l.Len() != 0 {
		t.Fatalf("locker retained %d keys", l.Len())
	}
}

func TestLockerDistinctKeysDoNotBlock(t *testing.T) {
	t.Parallel()

	l := NewLocker()
	unlock, err := l.Lock(context.Background(), "u1")
	if err != nil {
		t.Fatalf("lock u1: %v", err)
	}
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	unlock2, err := l.Lock(ctx, "u2")
	if err != nil {
		t.Fatalf("lock u2 blocked: %v", err)
	}
	unlock2()
}

func TestLockerHonorsContext(t *testing.T) {
	t.Parallel()

	l := NewLocker()
	unlock, err := l.Lock(context.Background(), "u1")
	if err != nil {
		t.Fatalf("lock: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := l.Lock(ctx, "u1"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}

	unlock()
	unlock() // second call is a no-op
	if l.Len() != 0 {
		t.Fatalf("locker retained %d keys", l.Len())
	}
}
