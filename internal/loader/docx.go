package loader

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"elements/internal/domain"
)

// normalizeDocx extracts paragraph text from a .docx archive. The
// format is a zip containing word/document.xml; text lives in w:t
// runs, with w:p elements marking paragraph boundaries.
func normalizeDocx(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: docx: %v", domain.ErrCorruptDocument, err)
	}
	var doc *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			doc = f
			break
		}
	}
	if doc == nil {
		return "", fmt.Errorf("%w: docx: missing word/document.xml", domain.ErrCorruptDocument)
	}
	rc, err := doc.Open()
	if err != nil {
		return "", fmt.Errorf("%w: docx: %v", domain.ErrCorruptDocument, err)
	}
	defer rc.Close()

	var b strings.Builder
	dec := xml.NewDecoder(rc)
	inText := false
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("%w: docx: %v", domain.ErrCorruptDocument, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				b.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				b.Write(t)
			}
		}
	}
	return normalizeText([]byte(b.String())), nil
}
