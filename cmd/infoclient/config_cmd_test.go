package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/muurk/infoclient/internal/config"
	"github.com/muurk/infoclient/internal/protocol"
)

func TestResponderRows(t *testing.T) {
	reg := config.NewRegistry()
	older := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := older.Add(time.Hour)

	reg.RecordReply("10.0.0.2", "10.0.0.2:9999", protocol.Header{Operation: protocol.OperationGetInfo, ID: 3}, older)
	reg.RecordReply("10.0.0.1", "10.0.0.1:9999", protocol.Header{Operation: protocol.OperationGetInfo, ID: 8}, newer)
	reg.SetNickname("10.0.0.1", "Attic")

	rows := responderRows(reg)
	if len(rows) != 2 {
		t.Fatalf("responderRows() = %d rows, want 2", len(rows))
	}
	if rows[0][0] != "10.0.0.1" || rows[1][0] != "10.0.0.2" {
		t.Errorf("rows not ordered most recent first: %v", rows)
	}
	want := []string{"10.0.0.1", "Attic", "1", "get-info", "8"}
	for i, w := range want {
		if rows[0][i] != w {
			t.Errorf("rows[0][%d] = %q, want %q", i, rows[0][i], w)
		}
	}
}

func TestConfigSubcommands(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
		configPath = ""
	})

	run := func(args ...string) (string, error) {
		out.Reset()
		rootCmd.SetArgs(append([]string{"--config", path}, args...))
		err := rootCmd.Execute()
		return out.String(), err
	}

	got, err := run("config", "path")
	if err != nil || strings.TrimSpace(got) != path {
		t.Errorf("config path = %q, %v; want %q", got, err, path)
	}

	if _, err := run("config", "init"); err != nil {
		t.Fatalf("config init error = %v", err)
	}
	if _, err := run("config", "init"); exitCode(err) != exitUsage {
		t.Errorf("second config init: exit %d, want %d", exitCode(err), exitUsage)
	}

	got, err = run("config", "show")
	if err != nil {
		t.Fatalf("config show error = %v", err)
	}
	if !strings.Contains(got, "port: 9999") || !strings.Contains(got, "replies: 2") {
		t.Errorf("config show output:\n%s", got)
	}

	got, err = run("responders")
	if err != nil || !strings.Contains(got, "No responders recorded") {
		t.Errorf("responders = %q, %v", got, err)
	}

	if _, err := run("responders", "name", "10.9.9.9", "Nobody"); exitCode(err) != exitUsage {
		t.Errorf("naming unknown responder: exit %d, want %d", exitCode(err), exitUsage)
	}
}
