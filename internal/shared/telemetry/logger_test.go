package telemetry

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"strings"
	"testing"
)

func captureStdout(t *testing.T, fn func()) []map[string]any {
	t.Helper()
	orig := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stdout = w
	fn()
	_ = w.Close()
	os.Stdout = orig

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		t.Fatalf("read: %v", err)
	}
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("decode %q: %v", line, err)
		}
		out = append(out, entry)
	}
	return out
}

func TestLevelsAndFields(t *testing.T) {
	entries := captureStdout(t, func() {
		Info("store.saved", map[string]any{"user_hash": "abc", "bytes": 12})
		Warn("snapshot.schema_mismatch", nil)
		Error("export.failed", map[string]any{"error": errors.New("boom")})
	})
	if len(entries) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(entries))
	}
	if entries[0]["level"] != "info" || entries[0]["msg"] != "store.saved" || entries[0]["user_hash"] != "abc" {
		t.Fatalf("unexpected info entry: %v", entries[0])
	}
	if _, ok := entries[0]["ts"]; !ok {
		t.Fatalf("missing ts")
	}
	if entries[1]["level"] != "warn" {
		t.Fatalf("unexpected warn entry: %v", entries[1])
	}
	if entries[2]["level"] != "error" || entries[2]["error"] != "boom" {
		t.Fatalf("unexpected error entry: %v", entries[2])
	}
}
