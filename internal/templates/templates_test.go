package templates

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestBuiltInTemplates(t *testing.T) {
	p, err := New("", quietLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	out := p.Render("Sam")
	if len(out) == 0 {
		t.Fatal("no built-in templates rendered")
	}
	for _, s := range out {
		if !strings.Contains(s, "Sam") {
			t.Errorf("rendered %q does not mention name", s)
		}
	}
}

func TestRender_EmptyNameFallsBack(t *testing.T) {
	p, _ := New("", quietLogger())
	for _, s := range p.Render("  ") {
		if !strings.Contains(s, fallbackName) {
			t.Errorf("rendered %q, want fallback name", s)
		}
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "templates.yaml")
	writeFile(t, path, "templates:\n  - \"Yo {{.Name}}\"\n  - \"Call me, {{.Name}}\"\n")

	p, err := New(path, quietLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got := p.Render("Kim")
	if len(got) != 2 || got[0] != "Yo Kim" || got[1] != "Call me, Kim" {
		t.Errorf("Render = %q", got)
	}
}

func TestMissingFileUsesBuiltIn(t *testing.T) {
	p, err := New(filepath.Join(t.TempDir(), "absent.yaml"), quietLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if p.Count() == 0 {
		t.Error("expected built-in templates")
	}
}

func TestInvalidFileRejected(t *testing.T) {
	dir := t.TempDir()
	for name, content := range map[string]string{
		"empty.yaml":  "templates: []\n",
		"broken.yaml": "templates:\n  - \"Hi {{.Name\"\n",
	} {
		path := filepath.Join(dir, name)
		writeFile(t, path, content)
		if _, err := New(path, quietLogger()); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestReloadKeepsPreviousOnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "templates.yaml")
	writeFile(t, path, "templates:\n  - \"One {{.Name}}\"\n")
	p, err := New(path, quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	writeFile(t, path, "templates: [")
	if err := p.Reload(); err == nil {
		t.Fatal("expected reload error")
	}
	if got := p.Render("A"); len(got) != 1 || got[0] != "One A" {
		t.Errorf("Render after failed reload = %q", got)
	}
}

func TestWatch_ReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "templates.yaml")
	writeFile(t, path, "templates:\n  - \"Old {{.Name}}\"\n")
	p, err := New(path, quietLogger())
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var reloads atomic.Int32
	go p.Watch(ctx, func() { reloads.Add(1) })
	time.Sleep(100 * time.Millisecond)

	writeFile(t, path, "templates:\n  - \"New {{.Name}}\"\n")

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		got := p.Render("B")
		return len(got) == 1 && got[0] == "New B"
	}, "template file change not picked up by watcher")

	eventually(t, time.Second, 20*time.Millisecond, func() bool {
		return reloads.Load() > 0
	}, "onReload callback not called")
}

func TestWatch_NoPathBlocksUntilCancel(t *testing.T) {
	p, _ := New("", quietLogger())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = p.Watch(ctx, nil)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}
