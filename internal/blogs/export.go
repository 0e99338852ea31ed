package blogs

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
)

// DocxFileName derives the export file name from the blog title.
func DocxFileName(blog Blog) string {
	title := strings.TrimSpace(blog.BlogTitle)
	if title == "" {
		title = "blog"
	}
	title = strings.ReplaceAll(title, "/", "_")
	title = strings.ReplaceAll(title, "\\", "_")
	title = strings.ReplaceAll(title, `"`, "'")
	return title + ".docx"
}

const contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
  <Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
  <Default Extension="xml" ContentType="application/xml"/>
  <Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`

const relsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

// BuildDocx renders the blog as a minimal OOXML word-processing package.
// Section order is fixed: title, keywords, outline, draft.
func BuildDocx(blog Blog) ([]byte, error) {
	var doc strings.Builder
	doc.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	doc.WriteString("\n")
	doc.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)

	writeHeading(&doc, blog.BlogTitle, 32)

	writeHeading(&doc, "Keywords", 26)
	keywords := append(append([]string(nil), blog.TargetKeywords...), blog.AdditionalKeywords...)
	writeBody(&doc, strings.Join(keywords, ", "))

	writeHeading(&doc, "Outline", 26)
	writeBody(&doc, blog.BlogOutline)

	writeHeading(&doc, "Draft", 26)
	writeBody(&doc, blog.BlogDraft)

	doc.WriteString(`</w:body></w:document>`)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	entries := []struct {
		name    string
		content string
	}{
		{"[Content_Types].xml", contentTypesXML},
		{"_rels/.rels", relsXML},
		{"word/document.xml", doc.String()},
	}
	for _, entry := range entries {
		w, err := zw.Create(entry.name)
		if err != nil {
			return nil, fmt.Errorf("docx entry %s: %w", entry.name, err)
		}
		if _, err := w.Write([]byte(entry.content)); err != nil {
			return nil, fmt.Errorf("docx entry %s: %w", entry.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close docx: %w", err)
	}
	return buf.Bytes(), nil
}

// writeHeading emits a bold paragraph at the given half-point size.
func writeHeading(doc *strings.Builder, text string, halfPoints int) {
	doc.WriteString(`<w:p><w:r><w:rPr><w:b/>`)
	fmt.Fprintf(doc, `<w:sz w:val="%d"/>`, halfPoints)
	doc.WriteString(`</w:rPr><w:t xml:space="preserve">`)
	doc.WriteString(escapeXML(text))
	doc.WriteString(`</w:t></w:r></w:p>`)
}

// writeBody emits one paragraph per line of text.
func writeBody(doc *strings.Builder, text string) {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	for _, line := range lines {
		doc.WriteString(`<w:p><w:r><w:t xml:space="preserve">`)
		doc.WriteString(escapeXML(line))
		doc.WriteString(`</w:t></w:r></w:p>`)
	}
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
