package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"

	"resume-builder/internal/shared/storage/object"
)

// Accepted upload types.
const (
	MimePDF  = "application/pdf"
	MimeDOC  = "application/msword"
	MimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MimeTXT  = "text/plain"
)

// ErrUnsupportedType is returned for payloads that are not PDF, DOC, DOCX or TXT.
var ErrUnsupportedType = errors.New("unsupported file type")

var extensions = map[string]string{
	".pdf":  MimePDF,
	".doc":  MimeDOC,
	".docx": MimeDOCX,
	".txt":  MimeTXT,
}

// Supported reports whether mimeType is one of the accepted upload types.
func Supported(mimeType string) bool {
	switch cleanMime(mimeType) {
	case MimePDF, MimeDOC, MimeDOCX, MimeTXT:
		return true
	}
	return false
}

// DetectType resolves the upload type. A declared accepted type wins and a
// .txt name is always read as text. Otherwise only a generic declaration
// (empty, octet-stream or zip) is resolved further, from the leading bytes
// and then the extension. It returns "" when the upload is not accepted.
func DetectType(declared, fileName string, head []byte) string {
	clean := cleanMime(declared)
	ext := strings.ToLower(filepath.Ext(fileName))
	switch {
	case Supported(clean):
		return clean
	case ext == ".txt":
		return MimeTXT
	case !inconclusive(clean):
		return ""
	}
	if len(head) > 0 {
		if isDOCX(head) {
			return MimeDOCX
		}
		sniffed := cleanMime(mimetype.Detect(head).String())
		if Supported(sniffed) {
			return sniffed
		}
		if !inconclusive(sniffed) {
			return ""
		}
	}
	return extensions[ext]
}

// inconclusive reports container types that say nothing about the document
// inside: OLE covers legacy .doc, zip covers .docx.
func inconclusive(mimeType string) bool {
	switch mimeType {
	case "", "application/octet-stream", "application/zip", "application/x-ole-storage":
		return true
	}
	return false
}

// ExtractText pulls text from a stored object and persists a derived .extracted.txt copy.
func ExtractText(ctx context.Context, store object.ObjectStore, fileKey string, mimeType string, fileName string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	body, err := store.Open(ctx, fileKey)
	if err != nil {
		return "", fmt.Errorf("extract text key=%s mime=%s: %w", fileKey, mimeType, err)
	}
	defer body.Close()

	raw, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("extract text key=%s mime=%s: read: %w", fileKey, mimeType, err)
	}

	text, err := ExtractTextFromBytes(ctx, raw, mimeType, fileName)
	if err != nil {
		return "", fmt.Errorf("extract text key=%s mime=%s: %w", fileKey, mimeType, err)
	}

	extractedKey := fileKey + ".extracted.txt"
	if _, err := store.SaveWithKey(ctx, extractedKey, "text/plain; charset=utf-8", strings.NewReader(text)); err != nil {
		return "", fmt.Errorf("extract text key=%s mime=%s: %w", fileKey, mimeType, err)
	}

	return text, nil
}

// ExtractTextFromBytes extracts text from an in-memory payload. Legacy .doc
// files are not decoded; a placeholder naming the file is returned instead.
func ExtractTextFromBytes(ctx context.Context, data []byte, mimeType string, fileName string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	normalized := normalizeMimeType(mimeType, fileName, data)
	switch normalized {
	case MimePDF:
		return extractPDF(data)
	case MimeDOCX:
		return extractDOCX(data)
	case MimeTXT:
		return strings.ToValidUTF8(string(data), "�"), nil
	case MimeDOC:
		return Placeholder(fileName, normalized), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, normalized)
	}
}

// Placeholder is the text sent for files whose content is not extracted locally.
func Placeholder(fileName, mimeType string) string {
	return fmt.Sprintf("[File: %s] - Please extract text content from this file type: %s", fileName, mimeType)
}

func extractPDF(data []byte) (string, error) {
	reader := bytes.NewReader(data)
	pdfReader, err := pdf.NewReader(reader, int64(len(data)))
	if err != nil {
		return "", err
	}
	plain, err := pdfReader.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}

func extractDOCX(data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("empty docx data")
	}
	readerAt := bytes.NewReader(data)
	zr, err := zip.NewReader(readerAt, int64(len(data)))
	if err != nil {
		return "", err
	}

	var docFile *zip.File
	for _, f := range zr.File {
		name := strings.ReplaceAll(f.Name, "\\", "/")
		if name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return "", errors.New("document.xml file not found")
	}

	rc, err := docFile.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return "", err
	}

	return stripDocxXML(string(raw)), nil
}

func stripDocxXML(raw string) string {
	decoder := xml.NewDecoder(strings.NewReader(raw))
	var buf strings.Builder
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return raw
		}
		switch t := tok.(type) {
		case xml.CharData:
			buf.WriteString(string(t))
		case xml.StartElement:
			if t.Name.Local == "tab" {
				buf.WriteString("\t")
			}
		case xml.EndElement:
			if t.Name.Local == "p" || t.Name.Local == "br" {
				if last := buf.Len(); last > 0 {
					buf.WriteString("\n")
				}
			}
		}
	}
	return strings.TrimSpace(buf.String())
}

func cleanMime(mimeType string) string {
	return strings.ToLower(strings.TrimSpace(strings.Split(mimeType, ";")[0]))
}

// normalizeMimeType maps generic zip uploads to DOCX when the archive is a
// Word document.
func normalizeMimeType(mimeType string, fileName string, data []byte) string {
	clean := cleanMime(mimeType)
	if clean != "application/zip" && clean != "application/octet-stream" {
		return clean
	}
	if isDOCX(data) {
		return MimeDOCX
	}
	if byExt, ok := extensions[strings.ToLower(filepath.Ext(fileName))]; ok && clean == "application/octet-stream" {
		return byExt
	}
	return clean
}

func isDOCX(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return false
	}
	for _, f := range zr.File {
		if strings.ReplaceAll(f.Name, "\\", "/") == "word/document.xml" {
			return true
		}
	}
	return false
}
