package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"golang.org/x/text/encoding/charmap"
)

// ErrNoContent reports that the file was readable but yielded no text.
var ErrNoContent = errors.New("no content could be extracted")

// Extract pulls plain text from an uploaded payload, dispatching on the
// declared file extension (lowercase, with leading dot). Failures come back
// as errors, never panics; callers treat any error as an extraction failure
// for that one document and move on.
func Extract(data []byte, ext string) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			text = ""
			err = fmt.Errorf("extract %s: parser panic: %v", ext, rec)
		}
	}()

	switch strings.ToLower(strings.TrimSpace(ext)) {
	case ".pdf":
		return extractPDF(data)
	case ".docx", ".doc":
		return extractDOCX(data)
	default:
		return extractPlainText(data)
	}
}

// extractPDF concatenates per-page text with blank-line separators. Pages
// whose extraction fails are skipped, not fatal.
func extractPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("extract pdf: %w", err)
	}

	var pages []string
	total := reader.NumPage()
	for i := 1; i <= total; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := pageText(page)
		if err != nil {
			continue
		}
		if trimmed := strings.TrimSpace(content); trimmed != "" {
			pages = append(pages, trimmed)
		}
	}

	if len(pages) == 0 {
		return "", ErrNoContent
	}
	return strings.Join(pages, "\n\n"), nil
}

func pageText(page pdf.Page) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			text = ""
			err = fmt.Errorf("page text panic: %v", rec)
		}
	}()
	return page.GetPlainText(nil)
}

// extractDOCX walks word/document.xml collecting paragraph text first, then
// table-cell text, each group separated by blank lines.
func extractDOCX(data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrNoContent
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("extract docx: %w", err)
	}

	var docFile *zip.File
	for _, f := range zr.File {
		if strings.ReplaceAll(f.Name, "\\", "/") == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return "", fmt.Errorf("extract docx: document.xml not found")
	}

	rc, err := docFile.Open()
	if err != nil {
		return "", fmt.Errorf("extract docx: %w", err)
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("extract docx: %w", err)
	}

	paragraphs, cells, err := walkDocumentXML(raw)
	if err != nil {
		return "", fmt.Errorf("extract docx: %w", err)
	}

	parts := append(paragraphs, cells...)
	if len(parts) == 0 {
		return "", ErrNoContent
	}
	return strings.Join(parts, "\n\n"), nil
}

func walkDocumentXML(raw []byte) (paragraphs, cells []string, err error) {
	decoder := xml.NewDecoder(bytes.NewReader(raw))
	var current strings.Builder
	tableDepth := 0
	inText := false
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "tbl":
				tableDepth++
			case "t":
				inText = true
			}
		case xml.CharData:
			if inText {
				current.Write(t)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "tbl":
				if tableDepth > 0 {
					tableDepth--
				}
			case "t":
				inText = false
			case "p":
				text := strings.TrimSpace(current.String())
				current.Reset()
				if text == "" {
					continue
				}
				if tableDepth > 0 {
					cells = append(cells, text)
				} else {
					paragraphs = append(paragraphs, text)
				}
			}
		}
	}
	return paragraphs, cells, nil
}

// extractPlainText decodes raw bytes as UTF-8, then Latin-1, then a lossy
// best effort, stopping at the first success.
func extractPlainText(data []byte) (string, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return "", ErrNoContent
	}

	if utf8.Valid(data) {
		return string(data), nil
	}

	if decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data); err == nil {
		return string(decoded), nil
	}

	return strings.ToValidUTF8(string(data), "�"), nil
}
