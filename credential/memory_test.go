package credential

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestMemoryStore_PutGet(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(DefaultTTL)

	if err := s.Put(ctx, "U1", "T1", "xoxp-first"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	rec, err := s.Get(ctx, "U1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec.AccessToken != "xoxp-first" {
		t.Errorf("AccessToken = %q, want xoxp-first", rec.AccessToken)
	}

	// a second exchange for the same user replaces the token
	if err := s.Put(ctx, "U1", "T1", "xoxp-second"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	rec, err = s.Get(ctx, "U1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec.AccessToken != "xoxp-second" {
		t.Errorf("AccessToken = %q, want xoxp-second", rec.AccessToken)
	}
}

func TestMemoryStore_EmptyUserID(t *testing.T) {
	s := NewMemoryStore(0)
	if err := s.Put(context.Background(), "", "T1", "xoxp"); !errors.Is(err, ErrMissingUserID) {
		t.Fatalf("Put error = %v, want ErrMissingUserID", err)
	}
	if _, err := s.Get(context.Background(), ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("empty user id was stored: %v", err)
	}
}

func TestMemoryStore_Missing(t *testing.T) {
	_, err := NewMemoryStore(0).Get(context.Background(), "nobody")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get error = %v, want ErrNotFound", err)
	}
}

func TestMemoryStore_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewMemoryStore(DefaultTTL)
	s.now = func() time.Time { return now }

	if err := s.Put(ctx, "U1", "T1", "xoxp"); err != nil {
		t.Fatalf("Put: %v", err)
	}

	now = now.Add(DefaultTTL - time.Second)
	if _, err := s.Get(ctx, "U1"); err != nil {
		t.Fatalf("Get before expiry: %v", err)
	}

	now = now.Add(time.Second)
	if _, err := s.Get(ctx, "U1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get at expiry = %v, want ErrNotFound", err)
	}

	n, err := s.Sweep(ctx)
	if err != nil || n != 1 {
		t.Fatalf("Sweep = %d, %v; want 1, nil", n, err)
	}
}

func TestMemoryStore_Delete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(DefaultTTL)
	_ = s.Put(ctx, "U1", "T1", "xoxp")

	ok, err := s.Delete(ctx, "U1")
	if err != nil || !ok {
		t.Fatalf("Delete existing = %v, %v; want true, nil", ok, err)
	}
	ok, err = s.Delete(ctx, "U1")
	if err != nil || ok {
		t.Fatalf("Delete missing = %v, %v; want false, nil", ok, err)
	}
}

func TestMemoryStore_ConcurrentPut(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(DefaultTTL)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Put(ctx, "U1", "T1", "xoxp")
			_, _ = s.Get(ctx, "U1")
		}()
	}
	wg.Wait()
	if _, err := s.Get(ctx, "U1"); err != nil {
		t.Fatalf("Get after concurrent puts: %v", err)
	}
}
