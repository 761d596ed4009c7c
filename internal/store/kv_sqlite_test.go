package store

import (
	"context"
	"sync"
	"testing"
)

func TestAccessToken_SetGetClear(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := Store{Dir: t.TempDir()}

	tok, err := s.AccessToken(ctx)
	if err != nil {
		t.Fatalf("AccessToken: %v", err)
	}
	if tok != "" {
		t.Fatalf("expected empty token, got %q", tok)
	}

	if err := s.SetAccessToken(ctx, "abc.def.ghi"); err != nil {
		t.Fatalf("SetAccessToken: %v", err)
	}
	// A second Store on the same dir sees the write.
	tok, err = Store{Dir: s.Dir}.AccessToken(ctx)
	if err != nil || tok != "abc.def.ghi" {
		t.Fatalf("AccessToken after set = %q, %v", tok, err)
	}

	if err := s.ClearAccessToken(ctx); err != nil {
		t.Fatalf("ClearAccessToken: %v", err)
	}
	if _, ok, err := s.Get(ctx, KeyAccessToken); err != nil || ok {
		t.Fatalf("expected token key removed, ok=%v err=%v", ok, err)
	}
}

func TestSidebarOpen_DefaultsTrue(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := Store{Dir: t.TempDir()}

	open, err := s.SidebarOpen(ctx)
	if err != nil || !open {
		t.Fatalf("default SidebarOpen = %v, %v", open, err)
	}
	if err := s.SetSidebarOpen(ctx, false); err != nil {
		t.Fatalf("SetSidebarOpen: %v", err)
	}
	open, err = s.SidebarOpen(ctx)
	if err != nil || open {
		t.Fatalf("SidebarOpen after close = %v, %v", open, err)
	}
}

func TestKV_ConcurrentWriters(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := Store{Dir: t.TempDir()}
	// Create the schema before racing.
	if err := s.Set(ctx, "warmup", "1"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.SetAccessToken(ctx, "token-value"); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent SetAccessToken: %v", err)
	}
}

func TestStore_RequiresDir(t *testing.T) {
	t.Parallel()

	if _, err := (Store{}).AccessToken(context.Background()); err == nil {
		t.Fatalf("expected error without a directory")
	}
}
