package health

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestNewChecker(t *testing.T) {
	checker := NewChecker("test-checker", func(ctx context.Context) CheckResult {
		return CheckResult{
			Status:  StatusHealthy,
			Message: "test passed",
		}
	})

	if checker.Name() != "test-checker" {
		t.Errorf("Name() = %v, want test-checker", checker.Name())
	}

	result := checker.Check(context.Background())
	if result.Status != StatusHealthy {
		t.Errorf("Status = %v, want healthy", result.Status)
	}
	if result.Message != "test passed" {
		t.Errorf("Message = %v, want 'test passed'", result.Message)
	}
}

func TestRegistry_OverallStatus(t *testing.T) {
	tests := []struct {
		name     string
		statuses []Status
		want     Status
	}{
		{"empty", nil, StatusHealthy},
		{"all healthy", []Status{StatusHealthy, StatusHealthy}, StatusHealthy},
		{"one degraded", []Status{StatusHealthy, StatusDegraded}, StatusDegraded},
		{"unknown counts as degraded", []Status{StatusUnknown}, StatusDegraded},
		{"unhealthy wins", []Status{StatusDegraded, StatusUnhealthy, StatusHealthy}, StatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry := NewRegistry("hivemind", "1.0.0")
			for i, s := range tt.statuses {
				s := s
				registry.Register(NewChecker(string(rune('a'+i)), func(ctx context.Context) CheckResult {
					return CheckResult{Status: s}
				}))
			}

			report := registry.Check(context.Background())
			if report.Status != tt.want {
				t.Errorf("Status = %v, want %v", report.Status, tt.want)
			}
			if len(report.Checks) != len(tt.statuses) {
				t.Errorf("len(Checks) = %d, want %d", len(report.Checks), len(tt.statuses))
			}
		})
	}
}

func TestRegistry_SortedAndNamed(t *testing.T) {
	registry := NewRegistry("hivemind", "1.0.0")
	for _, name := range []string{"worker", "history", "scripts"} {
		registry.Register(NewChecker(name, func(ctx context.Context) CheckResult {
			return CheckResult{Status: StatusHealthy}
		}))
	}

	report := registry.Check(context.Background())
	var names []string
	for _, c := range report.Checks {
		names = append(names, c.Name)
		if c.Timestamp.IsZero() {
			t.Errorf("check %s has no timestamp", c.Name)
		}
	}
	if got := strings.Join(names, ","); got != "history,scripts,worker" {
		t.Errorf("check order = %s", got)
	}
	if report.Service != "hivemind" || report.Version != "1.0.0" {
		t.Errorf("report = %s", report)
	}
}

func TestRegistry_RunsConcurrently(t *testing.T) {
	registry := NewRegistry("hivemind", "1.0.0")
	var running int32
	var peak int32
	for _, name := range []string{"a", "b", "c"} {
		registry.Register(NewChecker(name, func(ctx context.Context) CheckResult {
			n := atomic.AddInt32(&running, 1)
			for {
				p := atomic.LoadInt32(&peak)
				if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
					break
				}
			}
			time.Sleep(30 * time.Millisecond)
			atomic.AddInt32(&running, -1)
			return CheckResult{Status: StatusHealthy}
		}))
	}

	registry.CheckWithTimeout(time.Second)
	if atomic.LoadInt32(&peak) < 2 {
		t.Errorf("peak concurrency = %d, want at least 2", peak)
	}
}

func TestExecutableCheck(t *testing.T) {
	exe, err := os.Executable()
	if err != nil {
		t.Skip("no test executable path")
	}

	if r := ExecutableCheck("worker", exe).Check(context.Background()); r.Status != StatusHealthy {
		t.Errorf("existing executable: %v %s", r.Status, r.Message)
	}

	missing := filepath.Join(t.TempDir(), "no-such-worker")
	if r := ExecutableCheck("worker", missing).Check(context.Background()); r.Status != StatusUnhealthy {
		t.Errorf("missing executable: %v", r.Status)
	}
}

func TestDirAndFileChecks(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "spit-error.tm")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if r := DirCheck("scripts", dir, StatusDegraded).Check(ctx); r.Status != StatusHealthy {
		t.Errorf("DirCheck(existing) = %v", r.Status)
	}
	if r := DirCheck("scripts", filepath.Join(dir, "nope"), StatusDegraded).Check(ctx); r.Status != StatusDegraded {
		t.Errorf("DirCheck(missing) = %v", r.Status)
	}
	if r := FileCheck("formatter", file, StatusDegraded).Check(ctx); r.Status != StatusHealthy {
		t.Errorf("FileCheck(existing) = %v", r.Status)
	}
	if r := FileCheck("formatter", dir, StatusUnhealthy).Check(ctx); r.Status != StatusUnhealthy {
		t.Errorf("FileCheck(directory) = %v", r.Status)
	}
}

func TestWritableDirCheck(t *testing.T) {
	dir := t.TempDir()
	if r := WritableDirCheck("temp", dir).Check(context.Background()); r.Status != StatusHealthy {
		t.Fatalf("WritableDirCheck = %v %s", r.Status, r.Message)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("probe file left behind: %v", entries)
	}

	if runtime.GOOS == "windows" || os.Getuid() == 0 {
		return
	}
	if err := os.Chmod(dir, 0o500); err != nil {
		t.Fatal(err)
	}
	defer os.Chmod(dir, 0o700)
	if r := WritableDirCheck("temp", dir).Check(context.Background()); r.Status != StatusUnhealthy {
		t.Errorf("read-only dir: %v", r.Status)
	}
}

func TestFuncCheck(t *testing.T) {
	ok := FuncCheck("history", StatusDegraded, func(ctx context.Context) error { return nil })
	if r := ok.Check(context.Background()); r.Status != StatusHealthy {
		t.Errorf("ok probe = %v", r.Status)
	}

	bad := FuncCheck("history", StatusDegraded, func(ctx context.Context) error { return errors.New("locked") })
	r := bad.Check(context.Background())
	if r.Status != StatusDegraded || r.Message != "locked" {
		t.Errorf("failing probe = %v %q", r.Status, r.Message)
	}
}
