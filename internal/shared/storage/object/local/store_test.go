package local

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"resume-builder/internal/shared/storage/object"
)

func TestSaveWithKeyOpenDelete(t *testing.T) {
	ctx := context.Background()
	store := New(t.TempDir())

	n, err := store.SaveWithKey(ctx, "user/resume-storage.json", "application/json", strings.NewReader(`{"a":1}`))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if n != 7 {
		t.Fatalf("expected 7 bytes, got %d", n)
	}
	if _, err := store.SaveWithKey(ctx, "user/resume-storage.json", "application/json", strings.NewReader(`{"a":2}`)); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	rc, err := store.Open(ctx, "user/resume-storage.json")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	data, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(data) != `{"a":2}` {
		t.Fatalf("unexpected content %q", data)
	}

	if err := store.Delete(ctx, "user/resume-storage.json"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.Delete(ctx, "user/resume-storage.json"); err != nil {
		t.Fatalf("second delete should be a no-op: %v", err)
	}
	if _, err := store.Open(ctx, "user/resume-storage.json"); !errors.Is(err, object.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRejectsTraversal(t *testing.T) {
	store := New(t.TempDir())
	if _, err := store.Open(context.Background(), "../etc/passwd"); err == nil {
		t.Fatalf("expected traversal to be rejected")
	}
	if _, err := store.SaveWithKey(context.Background(), "/abs", "text/plain", strings.NewReader("x")); err == nil {
		t.Fatalf("expected absolute key to be rejected")
	}
}

func TestSaveNamespacesAndSniffs(t *testing.T) {
	store := New(t.TempDir())
	key, size, mimeType, err := store.Save(context.Background(), "guest:abc", "my resume.txt", strings.NewReader("plain text resume"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !strings.HasSuffix(key, "_my resume.txt") {
		t.Fatalf("unexpected key %q", key)
	}
	if size != int64(len("plain text resume")) {
		t.Fatalf("unexpected size %d", size)
	}
	if !strings.HasPrefix(mimeType, "text/plain") {
		t.Fatalf("unexpected mime type %q", mimeType)
	}
	if _, _, _, err := store.Save(context.Background(), "guest:abc", "../x", strings.NewReader("x")); err == nil {
		t.Fatalf("expected sanitize error")
	}
}
