package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDisabledLoggingIsNoop(t *testing.T) {
	if err := Initialize(Options{}); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	defer CloseAll()

	l := Get(CategoryStore)
	// Must not panic or write anywhere.
	l.Info("ignored %d", 1)
	l.Error("ignored")
}

func TestCategoryFileWritten(t *testing.T) {
	dir := t.TempDir()
	if err := Initialize(Options{DebugMode: true, Dir: dir, Level: "debug"}); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	defer func() {
		CloseAll()
		_ = Initialize(Options{})
	}()

	Get(CategoryRetrieval).Info("fused %d candidates", 7)
	CloseAll()

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	var found bool
	for _, e := range entries {
		if strings.Contains(e.Name(), "retrieval") {
			found = true
			data, err := os.ReadFile(filepath.Join(dir, e.Name()))
			if err != nil {
				t.Fatal(err)
			}
			if !strings.Contains(string(data), "fused 7 candidates") {
				t.Errorf("log entry missing, got: %s", data)
			}
		}
	}
	if !found {
		t.Error("no retrieval log file created")
	}
}

func TestLevelFiltering(t *testing.T) {
	dir := t.TempDir()
	if err := Initialize(Options{DebugMode: true, Dir: dir, Level: "warn"}); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	defer func() {
		CloseAll()
		_ = Initialize(Options{})
	}()

	Get(CategoryStore).Info("should be filtered")
	Get(CategoryStore).Warn("should appear")
	CloseAll()

	entries, _ := os.ReadDir(dir)
	var storeLog string
	for _, e := range entries {
		data, _ := os.ReadFile(filepath.Join(dir, e.Name()))
		if strings.Contains(string(data), "should be filtered") {
			t.Error("info line leaked past warn level")
		}
		if strings.Contains(e.Name(), string(CategoryStore)) {
			storeLog = string(data)
		}
	}
	if !strings.Contains(storeLog, "should appear") {
		t.Error("warn line missing")
	}
}
