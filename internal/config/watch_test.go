package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatch_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("tasks:\n  root_name: Garage\n"), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	reloaded := make(chan *Config, 16)
	w, err := Watch(configPath, func(cfg *Config, err error) {
		if err == nil {
			select {
			case reloaded <- cfg:
			default:
			}
		}
	})
	if err != nil {
		t.Fatalf("Watch failed: %v", err)
	}
	defer w.Close()

	// Unrelated files in the same directory are ignored.
	if err := os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x: 1\n"), 0644); err != nil {
		t.Fatalf("failed to write other file: %v", err)
	}
	if err := os.WriteFile(configPath, []byte("tasks:\n  root_name: Shed\n"), 0644); err != nil {
		t.Fatalf("failed to rewrite config file: %v", err)
	}

	timeout := time.After(5 * time.Second)
	for {
		select {
		case cfg := <-reloaded:
			if cfg.Tasks.RootName == "Shed" {
				if cfg.Tracker.TickInterval != time.Minute {
					t.Errorf("expected default tick interval, got %v", cfg.Tracker.TickInterval)
				}
				return
			}
		case <-timeout:
			t.Fatal("config change not observed")
		}
	}
}

func TestWatch_ReportsInvalidConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("tasks:\n  root_name: Garage\n"), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	errs := make(chan error, 16)
	w, err := Watch(configPath, func(_ *Config, err error) {
		if err != nil {
			select {
			case errs <- err:
			default:
			}
		}
	})
	if err != nil {
		t.Fatalf("Watch failed: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(configPath, []byte("tracker:\n  tick_interval: 0s\n"), 0644); err != nil {
		t.Fatalf("failed to rewrite config file: %v", err)
	}

	select {
	case <-errs:
	case <-time.After(5 * time.Second):
		t.Fatal("invalid config not reported")
	}
}

func TestWatch_MissingDirectory(t *testing.T) {
	_, err := Watch(filepath.Join(t.TempDir(), "missing", "config.yaml"), func(*Config, error) {})
	if err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestWatcher_CloseTwice(t *testing.T) {
	w, err := Watch(filepath.Join(t.TempDir(), "config.yaml"), func(*Config, error) {})
	if err != nil {
		t.Fatalf("Watch failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
}
