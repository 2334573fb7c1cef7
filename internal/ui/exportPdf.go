package ui

import (
	"fmt"
	"io"
	"log"

	"InkPDF/internal/export"
	"InkPDF/internal/ink"
)

// ExportPDF writes a PDF with every page's ink burned in.
func ExportPDF(out io.WriteCloser, e *ink.Engine, pages []export.PageSize) error {
	defer func() {
		if err := out.Close(); err != nil {
			log.Printf("Error closing writer: %v", err)
		}
	}()
	pdf, err := e.Flatten(pages)
	if err != nil {
		return fmt.Errorf("failed to flatten annotations: %w", err)
	}
	if _, err := out.Write(pdf); err != nil {
		return fmt.Errorf("failed to write pdf: %w", err)
	}
	log.Printf("[EXPORT] Wrote %d bytes for %d pages", len(pdf), len(pages))
	return nil
}
