package convert

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/go-pdf/fpdf"
)

// Letter page with one inch margins and a 10pt Helvetica body, the usual
// defaults for a plain document.
const (
	pageSize   = "Letter"
	margin     = 72.0
	fontFamily = "Helvetica"
	fontSize   = 10.0
	leading    = 12.0
)

// TextConverter lays a plain text file out as a single paragraph in a
// paginated PDF.
type TextConverter struct {
	creator string
}

var _ Converter = (*TextConverter)(nil)

// TextOption configures a TextConverter
type TextOption func(*TextConverter)

// WithCreator sets the creator recorded in the PDF metadata.
func WithCreator(creator string) TextOption {
	return func(t *TextConverter) {
		t.creator = creator
	}
}

// NewTextConverter returns a converter for plain text files
func NewTextConverter(opts ...TextOption) *TextConverter {
	t := &TextConverter{}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Convert implements Converter.
func (t *TextConverter) Convert(ctx context.Context, inPath string, outPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := os.ReadFile(inPath)
	if err != nil {
		return fmt.Errorf("reading text file: %w", err)
	}

	pdf := fpdf.New("P", "pt", pageSize, "")
	if t.creator != "" {
		pdf.SetCreator(t.creator, true)
	}
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(true, margin)
	pdf.AddPage()
	pdf.SetFont(fontFamily, "", fontSize)

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.MultiCell(0, leading, tr(paragraph(string(data))), "", "L", false)

	if err := pdf.OutputFileAndClose(outPath); err != nil {
		return fmt.Errorf("writing pdf: %w", err)
	}
	return nil
}

// paragraph collapses all whitespace runs, line breaks included, into single
// spaces so the text flows as one paragraph.
func paragraph(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
