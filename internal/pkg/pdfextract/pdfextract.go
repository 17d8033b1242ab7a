package pdfextract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/ledongthuc/pdf"
)

// ExtractText reads the entire content of r and extracts plain text from the PDF.
// Returns empty string and nil error if the PDF has no extractable text.
func ExtractText(r io.Reader) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	if len(b) == 0 {
		return "", nil
	}
	readerAt := bytes.NewReader(b)
	pdfReader, err := pdf.NewReader(readerAt, int64(len(b)))
	if err != nil {
		return "", err
	}
	plainReader, err := pdfReader.GetPlainText()
	if err != nil {
		return "", err
	}
	out, err := io.ReadAll(plainReader)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// ExtractTextWithTimeout bounds parsing with a fixed deadline. The pdf
// library does not take a context, so the parse runs in its own goroutine;
// on timeout that goroutine is abandoned and its result dropped.
func ExtractTextWithTimeout(ctx context.Context, r io.Reader, timeout time.Duration) (string, error) {
	if timeout <= 0 {
		return ExtractText(r)
	}

	parseCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type parseResult struct {
		text string
		err  error
	}
	done := make(chan parseResult, 1)
	go func() {
		text, err := ExtractText(r)
		done <- parseResult{text: text, err: err}
	}()

	select {
	case <-parseCtx.Done():
		return "", fmt.Errorf("pdf parse timed out: %w", parseCtx.Err())
	case res := <-done:
		return res.text, res.err
	}
}
