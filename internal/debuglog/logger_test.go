package debuglog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNew_EmptyPathIsNop(t *testing.T) {
	l, err := New("")
	if err != nil {
		t.Fatalf("New(\"\") error = %v", err)
	}
	if l.Enabled() {
		t.Error("logger without path should be disabled")
	}
	l.Log("ignored %d", 1)
	if err := l.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestNew_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "debug.log")

	l, err := New(path)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	l.Log("moved %s to %s", "task1", "task2")
	if err := l.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "debug log started") {
		t.Error("missing header line")
	}
	if !strings.Contains(content, "moved task1 to task2") {
		t.Errorf("missing message, got:\n%s", content)
	}
}

func TestLog_AfterCloseIsNop(t *testing.T) {
	l, err := New(filepath.Join(t.TempDir(), "debug.log"))
	if err != nil {
		t.Fatal(err)
	}
	if err := l.Close(); err != nil {
		t.Fatal(err)
	}
	l.Log("after close")
	if err := l.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

func TestNilLogger(t *testing.T) {
	var l *Logger
	l.Log("nothing")
	if l.Enabled() {
		t.Error("nil logger should be disabled")
	}
	if err := l.Close(); err != nil {
		t.Errorf("Close() on nil logger error = %v", err)
	}
}

func TestFunc(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debug.log")
	l, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	fn := l.Func()
	fn("[graph.AddNode] %s", "a.start")
	l.Close()

	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "[graph.AddNode] a.start") {
		t.Errorf("Func() did not write through, got:\n%s", data)
	}
}
