package logging

import (
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observe(t *testing.T, level zapcore.Level) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(level)
	SetLogger(zap.New(core))
	t.Cleanup(func() { SetLogger(nil) })
	return logs
}

func TestInitialize_Levels(t *testing.T) {
	t.Cleanup(func() { SetLogger(nil) })

	tests := []struct {
		level   string
		wantErr bool
	}{
		{"debug", false},
		{"info", false},
		{"warn", false},
		{"error", false},
		{"verbose", true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			err := Initialize(tt.level)
			if (err != nil) != tt.wantErr {
				t.Errorf("Initialize(%q) error = %v, wantErr %v", tt.level, err, tt.wantErr)
			}
		})
	}
}

func TestInitialize_SilentByDefault(t *testing.T) {
	t.Setenv(LogLevelEnvVar, "")
	t.Cleanup(func() { SetLogger(nil) })

	if err := InitializeFromEnv(); err != nil {
		t.Fatalf("InitializeFromEnv() error = %v", err)
	}
	if GetLogger().Core().Enabled(zapcore.ErrorLevel) {
		t.Error("logger should be silent when no level is configured")
	}
}

func TestInitialize_FromEnv(t *testing.T) {
	t.Setenv(LogLevelEnvVar, "warn")
	t.Cleanup(func() { SetLogger(nil) })

	if err := InitializeFromEnv(); err != nil {
		t.Fatalf("InitializeFromEnv() error = %v", err)
	}
	core := GetLogger().Core()
	if !core.Enabled(zapcore.WarnLevel) || core.Enabled(zapcore.InfoLevel) {
		t.Error("logger level does not match INFOCLIENT_LOG_LEVEL=warn")
	}
}

func TestLogPacket_InfoOmitsDump(t *testing.T) {
	logs := observe(t, zapcore.InfoLevel)

	data := make([]byte, 512)
	data[0], data[1] = 12, 22
	LogPacket("received", "192.168.1.1:9999", data)

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("got %d log entries, want 1", len(entries))
	}
	ctx := entries[0].ContextMap()
	if ctx["addr"] != "192.168.1.1:9999" {
		t.Errorf("addr = %v, want 192.168.1.1:9999", ctx["addr"])
	}
	if ctx["length"] != int64(512) {
		t.Errorf("length = %v, want 512", ctx["length"])
	}
	if ctx["cmd_rsp"] != uint8(22) {
		t.Errorf("cmd_rsp = %v, want 22", ctx["cmd_rsp"])
	}
	if _, ok := ctx["hex"]; ok {
		t.Error("hex dump included at info level")
	}
}

func TestLogPacket_DebugIncludesDump(t *testing.T) {
	logs := observe(t, zapcore.DebugLevel)

	LogPacket("sent", "255.255.255.255:9999", []byte("AB\x00"))

	ctx := logs.All()[0].ContextMap()
	if ctx["hex"] != "414200" {
		t.Errorf("hex = %v, want 414200", ctx["hex"])
	}
	if ctx["ascii"] != "AB." {
		t.Errorf("ascii = %v, want AB.", ctx["ascii"])
	}
}

func TestHexDump_Truncates(t *testing.T) {
	data := make([]byte, 300)
	got := hexDump(data)

	if !strings.HasSuffix(got, "...") {
		t.Error("hexDump() of 300 bytes should be truncated")
	}
	if len(got) != 256*2+3 {
		t.Errorf("len(hexDump()) = %d, want %d", len(got), 256*2+3)
	}
	if hexDump(nil) != "" {
		t.Error("hexDump(nil) should be empty")
	}
}

func TestAsciiDump(t *testing.T) {
	if got := asciiDump([]byte{'h', 'i', 0x00, 0x7f, '~'}); got != "hi..~" {
		t.Errorf("asciiDump() = %q, want %q", got, "hi..~")
	}
}
