package lock

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestAcquireRelease(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.json")
	l := New(target)

	if err := l.Acquire(); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}

	data, err := os.ReadFile(l.MarkerPath())
	if err != nil {
		t.Fatalf("lock marker not created: %v", err)
	}
	millis, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		t.Fatalf("marker content %q is not a millisecond timestamp: %v", data, err)
	}
	if age := time.Since(time.UnixMilli(millis)); age < 0 || age > time.Minute {
		t.Errorf("marker timestamp implausible: age %v", age)
	}

	l.Release()
	if _, err := os.Stat(l.MarkerPath()); !os.IsNotExist(err) {
		t.Error("marker should be removed after Release()")
	}
}

func TestAcquireTimesOutWhileHeld(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.json")

	holder := New(target)
	if err := holder.Acquire(); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	defer holder.Release()

	contender := New(target,
		WithRetry(5*time.Millisecond, 3),
		WithStaleAfter(time.Hour),
	)
	err := contender.Acquire()
	if !errors.Is(err, ErrLockTimeout) {
		t.Errorf("Acquire() error = %v, want ErrLockTimeout", err)
	}
}

func TestStaleMarkerIsReclaimed(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.json")
	marker := target + ".lock"

	// Simulate a crashed holder: marker written well in the past.
	stale := strconv.FormatInt(time.Now().Add(-time.Minute).UnixMilli(), 10)
	if err := os.WriteFile(marker, []byte(stale), 0o644); err != nil {
		t.Fatal(err)
	}

	l := New(target, WithRetry(5*time.Millisecond, 3), WithStaleAfter(10*time.Second))
	if err := l.Acquire(); err != nil {
		t.Fatalf("Acquire() should reclaim stale marker, got error: %v", err)
	}
	l.Release()
}

func TestFreshMarkerIsNotReclaimed(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.json")
	marker := target + ".lock"

	fresh := strconv.FormatInt(time.Now().UnixMilli(), 10)
	if err := os.WriteFile(marker, []byte(fresh), 0o644); err != nil {
		t.Fatal(err)
	}

	l := New(target, WithRetry(5*time.Millisecond, 2), WithStaleAfter(time.Hour))
	if err := l.Acquire(); !errors.Is(err, ErrLockTimeout) {
		t.Errorf("Acquire() error = %v, want ErrLockTimeout for fresh marker", err)
	}
}

func TestWithLockReleasesOnError(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.json")

	wantErr := errors.New("boom")
	err := WithLock(target, func() error { return wantErr })
	if !errors.Is(err, wantErr) {
		t.Fatalf("WithLock() error = %v, want %v", err, wantErr)
	}

	if _, err := os.Stat(target + ".lock"); !os.IsNotExist(err) {
		t.Error("marker should be removed after critical section error")
	}
}

func TestWithLockReleasesOnPanic(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.json")

	func() {
		defer func() { _ = recover() }()
		_ = WithLock(target, func() error { panic("boom") })
	}()

	if _, err := os.Stat(target + ".lock"); !os.IsNotExist(err) {
		t.Error("marker should be removed after panic in critical section")
	}
}

// Two goroutines appending distinct entries to the same JSON file,
// serialized only by the lock, must not lose either update.
func TestConcurrentMutationsSerialize(t *testing.T) {
	target := filepath.Join(t.TempDir(), "shared.txt")
	if err := os.WriteFile(target, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	appendLine := func(line string) error {
		return WithLock(target, func() error {
			data, err := os.ReadFile(target)
			if err != nil {
				return err
			}
			// Window for a lost update without the lock.
			time.Sleep(10 * time.Millisecond)
			return os.WriteFile(target, append(data, []byte(line+"\n")...), 0o644)
		})
	}

	var wg sync.WaitGroup
	for _, line := range []string{"alpha", "beta"} {
		wg.Add(1)
		go func(line string) {
			defer wg.Done()
			if err := appendLine(line); err != nil {
				t.Errorf("appendLine(%q) error = %v", line, err)
			}
		}(line)
	}
	wg.Wait()

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	content := string(data)
	if !strings.Contains(content, "alpha") || !strings.Contains(content, "beta") {
		t.Errorf("lost update: final content %q should contain both entries", content)
	}
}
