package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		logFunc func(*log.Logger)
		wantLog bool
	}{
		{
			name:    "info at info level",
			level:   log.InfoLevel,
			logFunc: func(l *log.Logger) { l.Info("test") },
			wantLog: true,
		},
		{
			name:    "debug at info level",
			level:   log.InfoLevel,
			logFunc: func(l *log.Logger) { l.Debug("test") },
			wantLog: false,
		},
		{
			name:    "debug at debug level",
			level:   log.DebugLevel,
			logFunc: func(l *log.Logger) { l.Debug("test") },
			wantLog: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := newLogger(&buf, tt.level)
			tt.logFunc(logger)

			gotLog := buf.Len() > 0
			if gotLog != tt.wantLog {
				t.Errorf("got log output = %v, want %v", gotLog, tt.wantLog)
			}
		})
	}
}

func TestProgress(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, log.InfoLevel)

	prog := newProgress(logger)
	time.Sleep(10 * time.Millisecond)
	prog.done("built DAG")

	if !bytes.Contains(buf.Bytes(), []byte("built DAG")) {
		t.Error("progress.done() output should contain the message")
	}
}

func TestLoggerContext(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, log.InfoLevel)

	ctx := withLogger(context.Background(), logger)
	if got := loggerFromContext(ctx); got != logger {
		t.Error("loggerFromContext should return the attached logger")
	}
	if got := loggerFromContext(context.Background()); got == nil {
		t.Error("loggerFromContext should fall back to a default logger")
	}
}

func TestLoadDAG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trees.nwk")
	if err := os.WriteFile(path, []byte("((A,B),(C,D));\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	d, err := loadDAG(quietContext(), path)
	if err != nil {
		t.Fatalf("loadDAG: %v", err)
	}
	if got := d.TaxonCount(); got != 4 {
		t.Errorf("TaxonCount() = %d, want 4", got)
	}
	if got := d.EdgeCount(); got != 7 {
		t.Errorf("EdgeCount() = %d, want 7", got)
	}
}

func TestLoadDAGErrors(t *testing.T) {
	if _, err := loadDAG(quietContext(), filepath.Join(t.TempDir(), "missing.nwk")); err == nil {
		t.Error("loadDAG should fail for a missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.nwk")
	if err := os.WriteFile(path, []byte("(A,B,C);\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := loadDAG(quietContext(), path); err == nil || !strings.Contains(err.Error(), "parse") {
		t.Errorf("loadDAG err = %v, want parse error", err)
	}
}

func quietContext() context.Context {
	var sink bytes.Buffer
	return withLogger(context.Background(), newLogger(&sink, log.FatalLevel))
}
