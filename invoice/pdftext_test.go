package invoice

import (
	"os"
	"path/filepath"
	"testing"
)

func TestExtractLinesRejectsMalformedPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.pdf")
	if err := os.WriteFile(path, []byte("this is not a pdf"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ExtractLines(path); err == nil {
		t.Error("a malformed file must report an error, not abort the run")
	}
}

func TestExtractLinesMissingFile(t *testing.T) {
	if _, err := ExtractLines(filepath.Join(t.TempDir(), "missing.pdf")); err == nil {
		t.Error("a missing file must report an error")
	}
}
