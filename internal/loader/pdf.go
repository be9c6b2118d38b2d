package loader

import (
	"bytes"
	"fmt"

	"github.com/ledongthuc/pdf"

	"elements/internal/domain"
)

// normalizePDF extracts plain text from a PDF byte stream. The parser
// panics on some malformed files, so the recover folds those into the
// corrupt-document error as well.
func normalizePDF(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("%w: pdf: %v", domain.ErrCorruptDocument, r)
		}
	}()
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: pdf: %v", domain.ErrCorruptDocument, err)
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("%w: pdf: %v", domain.ErrCorruptDocument, err)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", fmt.Errorf("%w: pdf: %v", domain.ErrCorruptDocument, err)
	}
	return normalizeText(buf.Bytes()), nil
}
