package nativelog

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWriter_DailyFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	w, err := NewWriter(dir)
	if err != nil {
		t.Fatalf("NewWriter() error = %v", err)
	}
	day := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)
	w.now = func() time.Time { return day }

	if _, err := w.Write([]byte("one\n")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	_, _ = w.Write([]byte("two\n"))

	got, err := os.ReadFile(filepath.Join(dir, "stdout_2026-03-04.log"))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if string(got) != "one\ntwo\n" {
		t.Errorf("log content = %q", got)
	}

	day = day.Add(24 * time.Hour)
	_, _ = w.Write([]byte("three\n"))
	if _, err := os.Stat(filepath.Join(dir, "stdout_2026-03-05.log")); err != nil {
		t.Errorf("expected a new file after midnight: %v", err)
	}
}
