package files

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatchRefreshesOnCreate(t *testing.T) {
	dataDir := t.TempDir()
	f, err := New(Config{
		Platform: "pysat",
		Name:     "testing",
		DataDir:  dataDir,
		HomeDir:  t.TempDir(),
		ListFiles: func(tag, instID, dataPath, formatStr string) (*List, error) {
			return FromOS(dataPath, "inst_{year:04d}{month:02d}{day:02d}.txt", -1, "")
		},
	}, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	// The resolved instrument directory must exist before watching.
	if err := os.MkdirAll(f.DataPath, 0o755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	if err := f.Refresh(); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if f.Len() != 0 {
		t.Fatalf("expected an empty index, got %d files", f.Len())
	}

	ctx, cancel := context.WithCancel(context.Background())
	done, err := f.Watch(ctx, 50*time.Millisecond)
	if err != nil {
		t.Fatalf("Watch failed: %v", err)
	}

	name := filepath.Join(f.DataPath, "inst_20090101.txt")
	if err := os.WriteFile(name, []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	// Give the debounced refresh ample time, then stop the watcher and
	// inspect the index once the goroutine has exited.
	time.Sleep(2 * time.Second)
	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not shut down after cancel")
	}
	if f.Len() != 1 {
		t.Fatalf("watcher did not refresh the index, len = %d", f.Len())
	}
}

func TestWatchMissingDirectory(t *testing.T) {
	fl := &fakeLister{}
	fl.list3Days()
	f := newTestFiles(t, fl)

	// The instrument subdirectory was never created.
	if _, err := f.Watch(context.Background(), time.Second); err == nil {
		t.Fatal("watching a missing directory should error")
	}
}
