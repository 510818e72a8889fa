package ai

import (
	"bytes"
	"fmt"
	"io"

	"github.com/ledongthuc/pdf"

	"github.com/quickai/quickai/internal/models"
)

// ExtractPDFText is a variable so tests can substitute a stub extractor.
var ExtractPDFText = extractPDFTextImpl

// extractPDFTextImpl pulls the plain text out of an in-memory PDF.
// ledongthuc/pdf panics on some malformed files, so the whole parse runs
// under a recover.
func extractPDFTextImpl(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = models.NewError(models.KindUnreadableDocument, "Resume text is too short or unreadable.")
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", models.WrapError(models.KindUnreadableDocument, "Resume text is too short or unreadable.", err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", models.WrapError(models.KindUnreadableDocument, "Resume text is too short or unreadable.", err)
	}

	content, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("failed to read extracted text: %w", err)
	}
	return string(content), nil
}
