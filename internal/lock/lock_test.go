package lock_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dshills/docstyle/internal/lock"
)

type mockFlocker struct {
	tryLockResult bool
	tryLockErr    error
	unlockErr     error
	tryLockCalled bool
}

func (m *mockFlocker) TryLock() (bool, error) {
	m.tryLockCalled = true
	return m.tryLockResult, m.tryLockErr
}

func (m *mockFlocker) Unlock() error { return m.unlockErr }

func TestLock_TryLock(t *testing.T) {
	errPermDenied := errors.New("permission denied")

	tests := []struct {
		name          string
		tryLockResult bool
		tryLockErr    error
		wantErr       error
	}{
		{name: "available", tryLockResult: true},
		{name: "held elsewhere", wantErr: lock.ErrAlreadyLocked},
		{name: "flock error", tryLockErr: errPermDenied, wantErr: errPermDenied},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &mockFlocker{tryLockResult: tt.tryLockResult, tryLockErr: tt.tryLockErr}
			err := lock.New(m).TryLock(context.Background())
			if !m.tryLockCalled {
				t.Error("expected TryLock to be called on flocker")
			}
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("error = %v, want %v", err, tt.wantErr)
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestLock_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m := &mockFlocker{tryLockResult: true}
	if err := lock.New(m).TryLock(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
	if m.tryLockCalled {
		t.Error("flocker should not be touched after cancellation")
	}
}

func TestDo(t *testing.T) {
	doc := filepath.Join(t.TempDir(), "Plan.docx")

	ran := false
	err := lock.Do(context.Background(), doc, func() error {
		ran = true
		if _, err := os.Stat(doc + ".lock"); err != nil {
			t.Errorf("sidecar missing while locked: %v", err)
		}
		// a second holder must fail fast
		if err := lock.ForDocument(doc).TryLock(context.Background()); !errors.Is(err, lock.ErrAlreadyLocked) {
			t.Errorf("nested TryLock = %v, want ErrAlreadyLocked", err)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if !ran {
		t.Error("fn did not run")
	}
	if _, err := os.Stat(doc + ".lock"); !os.IsNotExist(err) {
		t.Errorf("sidecar left behind: %v", err)
	}
}

func TestDoPropagatesError(t *testing.T) {
	doc := filepath.Join(t.TempDir(), "Plan.docx")
	boom := errors.New("boom")
	if err := lock.Do(context.Background(), doc, func() error { return boom }); !errors.Is(err, boom) {
		t.Errorf("Do = %v, want boom", err)
	}
}
