package convert

import (
	"context"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

func init() {
	// the Lambda filesystem is read only outside of /tmp, so pdfcpu must not
	// try to install its config dir in $HOME
	api.DisableConfigDir()
}

// Validated wraps a Converter and checks its output is a readable PDF before
// reporting success.
type Validated struct {
	Converter
	conf *model.Configuration
}

var _ Converter = Validated{}

// WithValidation wraps c so every produced PDF is validated.
func WithValidation(c Converter) Validated {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return Validated{Converter: c, conf: conf}
}

// Convert implements Converter.
func (v Validated) Convert(ctx context.Context, inPath string, outPath string) error {
	if err := v.Converter.Convert(ctx, inPath, outPath); err != nil {
		return err
	}
	if err := api.ValidateFile(outPath, v.conf); err != nil {
		return fmt.Errorf("validating pdf: %w", err)
	}
	return nil
}

// PageCount returns the number of pages in the PDF at path.
func PageCount(path string) (int, error) {
	n, err := api.PageCountFile(path)
	if err != nil {
		return 0, fmt.Errorf("counting pages: %w", err)
	}
	return n, nil
}
