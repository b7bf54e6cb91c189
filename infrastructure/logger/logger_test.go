package logger

import (
	"bytes"
	"strings"
	"testing"
)

type bufferWriteCloser struct {
	bytes.Buffer
	closed bool
}

func (b *bufferWriteCloser) Close() error {
	b.closed = true
	return nil
}

func TestBackendWritesByLevel(t *testing.T) {
	backend := NewBackendWithFlags(0)
	all := &bufferWriteCloser{}
	warnings := &bufferWriteCloser{}
	if err := backend.AddLogWriter(all, LevelTrace); err != nil {
		t.Fatalf("AddLogWriter: %s", err)
	}
	if err := backend.AddLogWriter(warnings, LevelWarn); err != nil {
		t.Fatalf("AddLogWriter: %s", err)
	}
	if err := backend.Run(); err != nil {
		t.Fatalf("Run: %s", err)
	}
	if err := backend.AddLogWriter(&bufferWriteCloser{}, LevelInfo); err == nil {
		t.Fatalf("AddLogWriter: expected an error when the backend is running")
	}

	log := backend.Logger("TEST")
	log.SetLevel(LevelInfo)
	log.Debugf("filtered %d", 1)
	log.Infof("settled %d", 2)
	log.Warnf("pruned %d", 3)
	backend.Close()

	if !all.closed || !warnings.closed {
		t.Fatalf("Close: expected all writers to be closed")
	}
	allOutput := all.String()
	if strings.Contains(allOutput, "filtered") {
		t.Errorf("debug entry was written although the logger level is info: %q", allOutput)
	}
	if !strings.Contains(allOutput, "[INF] TEST: settled 2") || !strings.Contains(allOutput, "[WRN] TEST: pruned 3") {
		t.Errorf("unexpected output: %q", allOutput)
	}
	if strings.Contains(warnings.String(), "settled") || !strings.Contains(warnings.String(), "pruned 3") {
		t.Errorf("unexpected warnings output: %q", warnings.String())
	}
}

func TestLoggerDropsEntriesWhenBackendIsNotRunning(t *testing.T) {
	backend := NewBackendWithFlags(0)
	log := backend.Logger("IDLE")
	log.SetLevel(LevelTrace)

	// Would block forever on the unbuffered channel if entries weren't dropped.
	log.Infof("nobody is listening")
}

func TestParseAndSetLogLevels(t *testing.T) {
	first := RegisterSubSystem("TST1")
	second := RegisterSubSystem("TST2")
	if RegisterSubSystem("TST1") != first {
		t.Fatalf("RegisterSubSystem: expected the same logger for the same subsystem")
	}

	if err := ParseAndSetLogLevels("debug"); err != nil {
		t.Fatalf("ParseAndSetLogLevels: %s", err)
	}
	if first.Level() != LevelDebug || second.Level() != LevelDebug {
		t.Fatalf("ParseAndSetLogLevels: expected debug for all subsystems, got %s and %s",
			first.Level(), second.Level())
	}

	if err := ParseAndSetLogLevels("TST1=trace,TST2=warn"); err != nil {
		t.Fatalf("ParseAndSetLogLevels: %s", err)
	}
	if first.Level() != LevelTrace || second.Level() != LevelWarn {
		t.Fatalf("ParseAndSetLogLevels: got %s and %s", first.Level(), second.Level())
	}

	tests := []string{"loud", "NOPE=info", "TST1=info,TST2"}
	for _, test := range tests {
		if err := ParseAndSetLogLevels(test); err == nil {
			t.Errorf("ParseAndSetLogLevels(%q): expected an error", test)
		}
	}
}
