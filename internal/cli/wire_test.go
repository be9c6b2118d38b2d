package cli

import (
	"errors"
	"strings"
	"testing"

	"elements/internal/domain"
	"elements/internal/summarizer"
)

func TestBuildDigestCombinesAndSummarizes(t *testing.T) {
	files := []domain.RawFile{
		{Name: "a.txt", Type: "txt", Data: []byte("Complaints rose. Complaints about billing rose most.")},
	}
	digest, err := buildDigest(summarizer.NewFrequency(), files, "", 1)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(digest, "omplaints") {
		t.Errorf("digest = %q", digest)
	}
}

func TestBuildDigestSurfacesFormatErrors(t *testing.T) {
	files := []domain.RawFile{{Name: "tool.exe", Data: []byte{0x4d, 0x5a}}}
	_, err := buildDigest(summarizer.NewFrequency(), files, "", 1)
	if !errors.Is(err, domain.ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}
