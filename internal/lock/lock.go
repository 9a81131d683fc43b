// Package lock guards local documents against concurrent in-place fixes.
package lock

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/gofrs/flock"
)

// ErrAlreadyLocked is returned when another process is fixing the same
// document.
var ErrAlreadyLocked = errors.New("document is locked by another docstyle process")

// Flocker is the subset of flock.Flock the lock needs.
type Flocker interface {
	TryLock() (bool, error)
	Unlock() error
}

type Lock struct {
	flocker Flocker
	path    string
}

// New wraps f.
func New(f Flocker) *Lock {
	return &Lock{flocker: f}
}

// ForDocument returns a lock on the sidecar file "<doc>.lock". The sidecar
// is removed on Unlock.
func ForDocument(doc string) *Lock {
	p := doc + ".lock"
	return &Lock{flocker: flock.New(p), path: p}
}

// TryLock fails fast with ErrAlreadyLocked instead of waiting.
func (l *Lock) TryLock(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ok, err := l.flocker.TryLock()
	if err != nil {
		return fmt.Errorf("lock.TryLock: %w", err)
	}
	if !ok {
		return ErrAlreadyLocked
	}
	return nil
}

// Unlock releases the lock and removes the sidecar file, if any.
func (l *Lock) Unlock() error {
	if err := l.flocker.Unlock(); err != nil {
		return fmt.Errorf("lock.Unlock: %w", err)
	}
	if l.path != "" {
		if err := os.Remove(l.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("lock.Unlock: %w", err)
		}
	}
	return nil
}

// Do runs fn while holding the lock for doc.
func Do(ctx context.Context, doc string, fn func() error) (err error) {
	l := ForDocument(doc)
	if err := l.TryLock(ctx); err != nil {
		return err
	}
	defer func() {
		if uerr := l.Unlock(); uerr != nil && err == nil {
			err = uerr
		}
	}()
	return fn()
}
