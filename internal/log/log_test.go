package log

import (
	"bytes"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogPlainText(t *testing.T) {
	f := &bytes.Buffer{}
	SetLogJSON(false)
	SetOutput(f)
	Infof("hello %v", "everyone")
	if !strings.HasSuffix(f.String(), "hello everyone\n") {
		t.Fatal("fail")
	}
}

func TestRetainedSuppressed(t *testing.T) {
	f := &bytes.Buffer{}
	SetLogJSON(false)
	SetOutput(f)
	SetLevel(1)

	Retained("id=G0 lat=35.94 lon=-83.92 v=22.0")
	if !strings.Contains(f.String(), "BSM [RETAINED]: id=G0") {
		t.Fatalf("missing retained line: %s", f.String())
	}

	f.Reset()
	Suppressed("SPEED", "id=B1 lat=35.95 lon=-83.93 v=99.0")
	if !strings.Contains(f.String(), "BSM [SUPPRESSED-SPEED]: id=B1") {
		t.Fatalf("missing suppressed line: %s", f.String())
	}
}

func TestLogJSON(t *testing.T) {
	SetLogJSON(true)
	defer SetLogJSON(false)

	observedZapCore, observedLogs := observer.New(zap.DebugLevel)
	Set(zap.New(observedZapCore).Sugar())
	SetLevel(1)

	Info("info json logger")
	if observedLogs.Len() < 1 {
		t.Fatal("fail")
	}
	entry := observedLogs.All()[0]
	if entry.Message != "info json logger" {
		t.Fatalf("got %q", entry.Message)
	}
	if entry.Level != zapcore.InfoLevel {
		t.Fatalf("got %v", entry.Level)
	}
}

func TestRetainedSuppressedJSONFields(t *testing.T) {
	SetLogJSON(true)
	defer SetLogJSON(false)

	observedZapCore, observedLogs := observer.New(zap.DebugLevel)
	Set(zap.New(observedZapCore).Sugar())
	SetLevel(1)

	Retained("id=G0 lat=35.94 lon=-83.92 v=22.0")
	Suppressed("SPEED", "id=B1 lat=35.95 lon=-83.93 v=99.0")

	if observedLogs.Len() != 2 {
		t.Fatalf("got %d entries", observedLogs.Len())
	}
	retained := observedLogs.All()[0]
	if retained.Level != zapcore.InfoLevel {
		t.Fatalf("retained level = %v", retained.Level)
	}
	if retained.ContextMap()["bsm_result"] != "retained" {
		t.Fatalf("retained fields = %v", retained.ContextMap())
	}

	suppressed := observedLogs.All()[1]
	if suppressed.Level != zapcore.WarnLevel {
		t.Fatalf("suppressed level = %v", suppressed.Level)
	}
	fields := suppressed.ContextMap()
	if fields["bsm_result"] != "suppressed" || fields["bsm_reason"] != "SPEED" {
		t.Fatalf("suppressed fields = %v", fields)
	}
}
