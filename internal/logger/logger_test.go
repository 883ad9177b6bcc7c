package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestResolveLogFilePathDefaultDir(t *testing.T) {
	tmpDir := t.TempDir()
	oldWD, err := os.Getwd()
	if err != nil {
		t.Fatalf("get wd failed: %v", err)
	}
	t.Cleanup(func() {
		_ = os.Chdir(oldWD)
	})
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("chdir failed: %v", err)
	}

	got, err := resolveLogFilePath(Options{})
	if err != nil {
		t.Fatalf("resolve default log path failed: %v", err)
	}
	if filepath.Base(got) != defaultLogFilename {
		t.Fatalf("unexpected log filename: %s", filepath.Base(got))
	}
	if filepath.Base(filepath.Dir(got)) != defaultLogDirName {
		t.Fatalf("unexpected log dir: %s", filepath.Dir(got))
	}
	if _, err := os.Stat(got); err != nil {
		t.Fatalf("expected log file to be created: %v", err)
	}
}

func TestNewReleaseWritesOrderEventsToFile(t *testing.T) {
	tmpDir := t.TempDir()
	log := New("release", Options{Dir: tmpDir, Filename: "release.log"})
	log.Sugar().Infow("order_request_created", "order_id", 42)
	_ = log.Sync()

	content, err := os.ReadFile(filepath.Join(tmpDir, "release.log"))
	if err != nil {
		t.Fatalf("read release log failed: %v", err)
	}
	if !strings.Contains(string(content), "order_request_created") || !strings.Contains(string(content), `"order_id":42`) {
		t.Fatalf("expected structured entry, got=%s", string(content))
	}
}

func TestNewReleaseRespectsLevel(t *testing.T) {
	tmpDir := t.TempDir()
	log := New("release", Options{Dir: tmpDir, Filename: "warn.log", Level: "warn"})
	log.Info("should_be_dropped")
	log.Warn("should_be_kept")
	_ = log.Sync()

	content, err := os.ReadFile(filepath.Join(tmpDir, "warn.log"))
	if err != nil {
		t.Fatalf("read log failed: %v", err)
	}
	if strings.Contains(string(content), "should_be_dropped") {
		t.Fatalf("info entry should be filtered at warn level")
	}
	if !strings.Contains(string(content), "should_be_kept") {
		t.Fatalf("warn entry missing, got=%s", string(content))
	}
}

func TestNewDebugDoesNotWriteFile(t *testing.T) {
	tmpDir := t.TempDir()
	log := New("debug", Options{Dir: tmpDir, Filename: "debug.log"})
	log.Info("debug-log-test")
	_ = log.Sync()

	if _, err := os.Stat(filepath.Join(tmpDir, "debug.log")); !os.IsNotExist(err) {
		t.Fatalf("debug mode should not create log file")
	}
}

func TestResolveLevel(t *testing.T) {
	cases := []struct {
		raw   string
		debug bool
		want  zapcore.Level
	}{
		{raw: "", debug: false, want: zapcore.InfoLevel},
		{raw: "ERROR", debug: false, want: zapcore.ErrorLevel},
		{raw: "bogus", debug: false, want: zapcore.InfoLevel},
		{raw: "error", debug: true, want: zapcore.DebugLevel},
	}
	for _, tc := range cases {
		if got := resolveLevel(tc.raw, tc.debug).Level(); got != tc.want {
			t.Fatalf("resolveLevel(%q,%v)=%v want %v", tc.raw, tc.debug, got, tc.want)
		}
	}
}
