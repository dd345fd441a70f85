package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLevelsAndCallerPrefix(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stdout)

	Infof("loaded %d documents", 3)
	Warn("no usable records")
	Error("boom: %v", "cause")

	out := buf.String()
	for _, want := range []string{"INFO: ", "loaded 3 documents", "WARN: ", "ERROR: ", "boom: cause", "logger_test.go:"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestDebugfRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stdout)

	level = INFO
	Debugf("hidden")
	if buf.Len() != 0 {
		t.Errorf("debug line written at INFO level: %q", buf.String())
	}

	level = DEBUG
	defer func() { level = INFO }()
	Debugf("shown %d", 1)
	if !strings.Contains(buf.String(), "DEBUG: ") || !strings.Contains(buf.String(), "shown 1") {
		t.Errorf("debug line missing: %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	if ParseLevel("DEBUG") != DEBUG || ParseLevel(" debug ") != DEBUG {
		t.Error("debug not recognized")
	}
	if ParseLevel("info") != INFO || ParseLevel("") != INFO || ParseLevel("verbose") != INFO {
		t.Error("non-debug values should map to INFO")
	}
}

func TestInitLoggerWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feedsync.log")
	if err := InitLogger(path, INFO); err != nil {
		t.Fatalf("InitLogger: %v", err)
	}
	Info("to file")
	Close()
	SetOutput(os.Stdout)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "to file") {
		t.Errorf("log file content = %q", data)
	}
}
