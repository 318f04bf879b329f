package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCleanupOldLogs(t *testing.T) {
	dir := t.TempDir()
	names := []string{
		"server-2024-01-01T00-00-00.000.log",
		"server-2024-01-02T00-00-00.000.log",
		"server-2024-01-03T00-00-00.000.log",
		"wikictl-2024-01-01T00-00-00.000.log",
	}
	for _, n := range names {
		if err := os.WriteFile(filepath.Join(dir, n), nil, 0644); err != nil {
			t.Fatal(err)
		}
	}

	if err := cleanupOldLogs(dir, "server", 2); err != nil {
		t.Fatalf("cleanupOldLogs: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, names[0])); !os.IsNotExist(err) {
		t.Error("oldest server log not removed")
	}
	for _, n := range names[1:] {
		if _, err := os.Stat(filepath.Join(dir, n)); err != nil {
			t.Errorf("%s removed unexpectedly", n)
		}
	}
}

func TestSetupLogFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	f, err := SetupLogFile(dir, "server", 3)
	if err != nil {
		t.Fatalf("SetupLogFile: %v", err)
	}
	defer f.Close()

	matches, _ := filepath.Glob(filepath.Join(dir, "server-*.log"))
	if len(matches) != 1 {
		t.Errorf("got %d log files, want 1", len(matches))
	}
}
