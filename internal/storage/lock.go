package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrLocked is returned when another process holds the writer lock
var ErrLocked = errors.New("run store is locked by another process")

// WriterLock serializes run writers across processes that share one database
// file. The lock lives next to the database as <db_path>.lock. In-memory
// databases are private to the process and need no lock.
type WriterLock struct {
	lock *flock.Flock
}

// NewWriterLock returns the writer lock for dbPath
func NewWriterLock(dbPath string) *WriterLock {
	if dbPath == "" || dbPath == ":memory:" {
		return &WriterLock{}
	}
	return &WriterLock{lock: flock.New(dbPath + ".lock")}
}

// TryLock acquires the lock without blocking. It returns ErrLocked if another
// process holds it.
func (l *WriterLock) TryLock() error {
	if l.lock == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(l.lock.Path()), 0o755); err != nil {
		return fmt.Errorf("create lock directory: %w", err)
	}
	ok, err := l.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock %s: %w", l.lock.Path(), err)
	}
	if !ok {
		return fmt.Errorf("%w (%s)", ErrLocked, l.lock.Path())
	}
	return nil
}

// Unlock releases the lock
func (l *WriterLock) Unlock() error {
	if l.lock == nil {
		return nil
	}
	return l.lock.Unlock()
}

// Path returns the lock file path, or "" for in-memory databases
func (l *WriterLock) Path() string {
	if l.lock == nil {
		return ""
	}
	return l.lock.Path()
}
