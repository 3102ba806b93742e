package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"resume-builder/internal/shared/storage/object/local"
)

func buildDOCX(t *testing.T, body string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create zip entry: %v", err)
	}
	doc := `<?xml version="1.0" encoding="UTF-8"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		body + `</w:body></w:document>`
	if _, err := w.Write([]byte(doc)); err != nil {
		t.Fatalf("write zip entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func TestExtractTextFromBytes_DOCXParagraphs(t *testing.T) {
	data := buildDOCX(t, `<w:p><w:r><w:t>Jane Doe</w:t></w:r></w:p><w:p><w:r><w:t>Go</w:t><w:tab/><w:t>SQL</w:t></w:r></w:p>`)

	text, err := ExtractTextFromBytes(context.Background(), data, MimeDOCX, "cv.docx")
	if err != nil {
		t.Fatalf("extract docx: %v", err)
	}
	if text != "Jane Doe\nGo\tSQL" {
		t.Fatalf("unexpected text %q", text)
	}
}

func TestExtractTextFromBytes_ZipDocxNormalizes(t *testing.T) {
	data := buildDOCX(t, `<w:p><w:r><w:t>Hello</w:t></w:r></w:p>`)

	text, err := ExtractTextFromBytes(context.Background(), data, "application/zip", "test.docx")
	if err != nil {
		t.Fatalf("expected docx to extract from zip mime, got error: %v", err)
	}
	if text != "Hello" {
		t.Fatalf("unexpected text %q", text)
	}
}

func TestExtractTextFromBytes_RealZipRejected(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("notes.txt")
	if err != nil {
		t.Fatalf("create zip entry: %v", err)
	}
	if _, err := w.Write([]byte("hello")); err != nil {
		t.Fatalf("write zip entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}

	_, err = ExtractTextFromBytes(context.Background(), buf.Bytes(), "application/zip", "notes.zip")
	if !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("expected ErrUnsupportedType, got %v", err)
	}
	if !strings.Contains(err.Error(), "application/zip") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestExtractTextFromBytes_TXTAndDOC(t *testing.T) {
	text, err := ExtractTextFromBytes(context.Background(), []byte("Jane\nEngineer"), "text/plain; charset=utf-8", "cv.txt")
	if err != nil {
		t.Fatalf("extract txt: %v", err)
	}
	if text != "Jane\nEngineer" {
		t.Fatalf("unexpected text %q", text)
	}

	text, err = ExtractTextFromBytes(context.Background(), []byte{0xD0, 0xCF, 0x11, 0xE0}, MimeDOC, "old.doc")
	if err != nil {
		t.Fatalf("extract doc: %v", err)
	}
	want := "[File: old.doc] - Please extract text content from this file type: application/msword"
	if text != want {
		t.Fatalf("expected placeholder %q, got %q", want, text)
	}
}

func TestExtractTextFromBytes_BadPDF(t *testing.T) {
	if _, err := ExtractTextFromBytes(context.Background(), []byte("not a pdf"), MimePDF, "cv.pdf"); err == nil {
		t.Fatalf("expected error for malformed pdf")
	}
}

func TestExtractTextFromBytes_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := ExtractTextFromBytes(ctx, []byte("x"), MimeTXT, "a.txt"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestDetectType(t *testing.T) {
	tests := []struct {
		name     string
		declared string
		fileName string
		head     []byte
		want     string
	}{
		{name: "declared pdf", declared: "application/pdf", fileName: "x", want: MimePDF},
		{name: "declared with params", declared: "text/plain; charset=utf-8", fileName: "x", want: MimeTXT},
		{name: "extension fallback", declared: "", fileName: "CV.DOCX", want: MimeDOCX},
		{name: "sniffed pdf", declared: "application/octet-stream", fileName: "upload", head: []byte("%PDF-1.4\n%âãÏÓ\n"), want: MimePDF},
		{name: "sniffed text", declared: "", fileName: "upload", head: []byte("Jane Doe\nEngineer\n"), want: MimeTXT},
		{name: "image rejected", declared: "image/png", fileName: "photo.png", head: []byte("\x89PNG\r\n\x1a\n"), want: ""},
		{name: "declared html rejected", declared: "text/html", fileName: "resume.html", head: []byte("<html><body>Jane</body></html>"), want: ""},
		{name: "declared json rejected", declared: "application/json", fileName: "resume.json", head: []byte(`{"name":"Jane"}`), want: ""},
		{name: "declared csv rejected", declared: "text/csv", fileName: "resume.csv", head: []byte("name,role\nJane,Engineer\n"), want: ""},
		{name: "sniffed html rejected", declared: "", fileName: "upload", head: []byte("<!DOCTYPE html><html><body>Jane</body></html>"), want: ""},
		{name: "txt name wins", declared: "text/html", fileName: "notes.txt", head: []byte("<p>Jane</p>"), want: MimeTXT},
		{name: "octet-stream by extension", declared: "application/octet-stream", fileName: "cv.doc", want: MimeDOC},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectType(tt.declared, tt.fileName, tt.head); got != tt.want {
				t.Fatalf("DetectType = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractTextStoresDerivedCopy(t *testing.T) {
	store := local.New(t.TempDir())
	ctx := context.Background()

	key, _, _, err := store.Save(ctx, "user-1", "cv.txt", strings.NewReader("Jane Doe"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	text, err := ExtractText(ctx, store, key, MimeTXT, "cv.txt")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if text != "Jane Doe" {
		t.Fatalf("unexpected text %q", text)
	}

	rc, err := store.Open(ctx, key+".extracted.txt")
	if err != nil {
		t.Fatalf("open derived copy: %v", err)
	}
	defer rc.Close()
	derived, _ := io.ReadAll(rc)
	if string(derived) != "Jane Doe" {
		t.Fatalf("unexpected derived copy %q", derived)
	}
}
