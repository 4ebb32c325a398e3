// Package lock provides an advisory cross-process lock over a single
// file path. The lock is a marker file created with exclusive-create
// semantics; it only restricts cooperating cpm processes, which is
// sufficient because the protected files are private, tool-owned
// config.
package lock

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/klauern/cpm/internal/logging"
)

// ErrLockTimeout is returned when the bounded retry budget is
// exhausted without acquiring the lock.
var ErrLockTimeout = errors.New("timed out acquiring lock")

const (
	// DefaultStaleAfter is the age past which a marker left by a
	// crashed process is treated as abandoned.
	DefaultStaleAfter = 10 * time.Second
	// DefaultRetryInterval is the wait between acquisition attempts.
	DefaultRetryInterval = 100 * time.Millisecond
	// DefaultMaxRetries bounds acquisition at roughly five seconds.
	DefaultMaxRetries = 50
)

// FileLock guards a target file with an adjacent <target>.lock marker.
type FileLock struct {
	target        string
	markerPath    string
	staleAfter    time.Duration
	retryInterval time.Duration
	maxRetries    int
}

// Option adjusts lock timing, mainly for tests.
type Option func(*FileLock)

// WithStaleAfter overrides the staleness threshold.
func WithStaleAfter(d time.Duration) Option {
	return func(l *FileLock) { l.staleAfter = d }
}

// WithRetry overrides the retry interval and attempt budget.
func WithRetry(interval time.Duration, attempts int) Option {
	return func(l *FileLock) {
		l.retryInterval = interval
		l.maxRetries = attempts
	}
}

// New creates a lock for the given target file.
func New(target string, opts ...Option) *FileLock {
	l := &FileLock{
		target:        target,
		markerPath:    target + ".lock",
		staleAfter:    DefaultStaleAfter,
		retryInterval: DefaultRetryInterval,
		maxRetries:    DefaultMaxRetries,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// MarkerPath returns the path of the lock marker file.
func (l *FileLock) MarkerPath() string {
	return l.markerPath
}

// Acquire takes the lock, retrying up to the configured budget. A
// marker older than the staleness threshold is treated as abandoned,
// removed, and acquisition is retried immediately.
func (l *FileLock) Acquire() error {
	for attempt := 0; attempt < l.maxRetries; attempt++ {
		created, err := l.tryCreate()
		if err != nil {
			return err
		}
		if created {
			return nil
		}

		if l.removeIfStale() {
			// Marker was abandoned; retry without waiting.
			continue
		}

		time.Sleep(l.retryInterval)
	}
	return fmt.Errorf("%w for %s after %d attempts", ErrLockTimeout, l.target, l.maxRetries)
}

// Release removes the marker. Best-effort: a failed removal is logged
// and not escalated.
func (l *FileLock) Release() {
	if err := os.Remove(l.markerPath); err != nil && !os.IsNotExist(err) {
		logging.Warn("failed to remove lock marker", logging.Path(l.markerPath), logging.Err(err))
	}
}

// tryCreate attempts an exclusive create of the marker containing the
// current time as a millisecond epoch string.
func (l *FileLock) tryCreate() (bool, error) {
	f, err := os.OpenFile(l.markerPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if os.IsExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to create lock marker %s: %w", l.markerPath, err)
	}

	timestamp := strconv.FormatInt(time.Now().UnixMilli(), 10)
	if _, err := f.WriteString(timestamp); err != nil {
		_ = f.Close()
		_ = os.Remove(l.markerPath)
		return false, fmt.Errorf("failed to write lock marker %s: %w", l.markerPath, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(l.markerPath)
		return false, fmt.Errorf("failed to close lock marker %s: %w", l.markerPath, err)
	}
	return true, nil
}

// removeIfStale removes the marker when its recorded timestamp is
// older than the staleness threshold. An unreadable or garbled marker
// falls back to file mtime.
func (l *FileLock) removeIfStale() bool {
	var lockedAt time.Time

	data, err := os.ReadFile(l.markerPath)
	if err == nil {
		if millis, perr := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64); perr == nil {
			lockedAt = time.UnixMilli(millis)
		}
	}
	if lockedAt.IsZero() {
		info, serr := os.Stat(l.markerPath)
		if serr != nil {
			// Marker vanished between attempts; treat as released.
			return os.IsNotExist(serr)
		}
		lockedAt = info.ModTime()
	}

	if time.Since(lockedAt) < l.staleAfter {
		return false
	}

	logging.Warn("removing stale lock marker", logging.Path(l.markerPath))
	if err := os.Remove(l.markerPath); err != nil && !os.IsNotExist(err) {
		return false
	}
	return true
}

// WithLock runs fn while holding the lock on target. The marker is
// removed on every exit path, including a panic inside fn.
func WithLock(target string, fn func() error, opts ...Option) error {
	l := New(target, opts...)
	if err := l.Acquire(); err != nil {
		return err
	}
	defer l.Release()
	return fn()
}
