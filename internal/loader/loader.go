// Package loader converts uploaded document bytes into normalized
// UTF-8 plain text. It is a pure transform: no temporary files, no
// side effects.
package loader

import (
	"encoding/csv"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"elements/internal/domain"
)

const (
	fileSeparator    = "\n\n--- FILE SEPARATOR ---\n\n"
	additionalHeader = "\n\n--- ADDITIONAL DATA ---\n\n"
)

// Normalize converts a raw file into plain text according to its
// declared type, falling back to the file extension when no type is
// declared. Unknown types fail with domain.ErrUnsupportedFormat,
// unparseable byte streams with domain.ErrCorruptDocument.
func Normalize(raw domain.RawFile) (string, error) {
	switch fileType(raw) {
	case "txt", "text", "md":
		return normalizeText(raw.Data), nil
	case "csv":
		return normalizeCSV(raw.Data)
	case "pdf":
		return normalizePDF(raw.Data)
	case "docx":
		return normalizeDocx(raw.Data)
	default:
		return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, fileType(raw))
	}
}

// Combine normalizes every file and joins them with file banners, the
// way results are presented to both pipelines. Supplementary text, if
// any, is appended under its own banner.
func Combine(files []domain.RawFile, supplementary string) (string, error) {
	parts := make([]string, 0, len(files))
	for _, f := range files {
		text, err := Normalize(f)
		if err != nil {
			return "", fmt.Errorf("file %s: %w", f.Name, err)
		}
		parts = append(parts, "FILE: "+f.Name+"\n"+text)
	}
	combined := strings.Join(parts, fileSeparator)
	if strings.TrimSpace(supplementary) != "" {
		combined += additionalHeader + supplementary
	}
	return combined, nil
}

func fileType(raw domain.RawFile) string {
	t := strings.ToLower(strings.TrimSpace(raw.Type))
	if t == "" {
		t = strings.TrimPrefix(strings.ToLower(filepath.Ext(raw.Name)), ".")
	}
	return t
}

// normalizeText repairs the encoding and line endings of plain text.
// Invalid UTF-8 is reinterpreted as Latin-1, matching how uploads were
// historically accepted rather than rejected.
func normalizeText(data []byte) string {
	var text string
	if utf8.Valid(data) {
		text = string(data)
	} else {
		runes := make([]rune, len(data))
		for i, b := range data {
			runes[i] = rune(b)
		}
		text = string(runes)
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}

// normalizeCSV renders each record as one comma-joined line.
func normalizeCSV(data []byte) (string, error) {
	r := csv.NewReader(strings.NewReader(normalizeText(data)))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return "", fmt.Errorf("%w: csv: %v", domain.ErrCorruptDocument, err)
	}
	lines := make([]string, len(records))
	for i, rec := range records {
		lines[i] = strings.Join(rec, ", ")
	}
	return strings.Join(lines, "\n"), nil
}
