package convert

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

// ErrUnsupportedExtension means no conversion strategy is registered for the extension
var ErrUnsupportedExtension = errors.New("unsupported file extension")

// ErrNotYetSupported means the format is recognized but has no working conversion
var ErrNotYetSupported = errors.New("conversion not yet supported")

// Converter turns the file at inPath into a PDF written to outPath.
type Converter interface {
	Convert(ctx context.Context, inPath string, outPath string) error
}

// NotSupported is the strategy for formats that are recognized but cannot be
// converted yet. Convert always fails with ErrNotYetSupported.
type NotSupported struct {
	Format string
}

var _ Converter = NotSupported{}

// Convert implements Converter.
func (n NotSupported) Convert(ctx context.Context, inPath string, outPath string) error {
	return NotYetSupportedError{Format: n.Format}
}

// NotYetSupportedError is returned by NotSupported strategies. It matches
// ErrNotYetSupported with errors.Is.
type NotYetSupportedError struct {
	Format string
}

func (e NotYetSupportedError) Error() string {
	return fmt.Sprintf("%s: %s", ErrNotYetSupported.Error(), e.Format)
}

func (e NotYetSupportedError) Is(target error) bool {
	return target == ErrNotYetSupported
}

// Registry maps file extensions (including the leading dot) to conversion
// strategies. Matching is case-sensitive.
type Registry struct {
	converters map[string]Converter
}

// NewRegistry returns an empty registry
func NewRegistry() *Registry {
	return &Registry{converters: map[string]Converter{}}
}

// Register associates each extension with c, replacing any previous strategy.
func (r *Registry) Register(c Converter, extensions ...string) *Registry {
	for _, ext := range extensions {
		r.converters[ext] = c
	}
	return r
}

// Lookup returns the strategy for ext or ErrUnsupportedExtension.
func (r *Registry) Lookup(ext string) (Converter, error) {
	c, ok := r.converters[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedExtension, ext)
	}
	return c, nil
}

// Extensions lists the registered extensions in sorted order.
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.converters))
	for ext := range r.converters {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// DefaultRegistry returns the registry of every format a resume may arrive in.
// Only plain text converts today; the rest are placeholders so callers can
// tell "not yet" apart from "never".
func DefaultRegistry(opts ...TextOption) *Registry {
	return NewRegistry().
		Register(WithValidation(NewTextConverter(opts...)), ".txt").
		Register(NotSupported{Format: "office document"}, ".docx", ".doc", ".odt", ".rtf").
		Register(NotSupported{Format: "image"}, ".png", ".jpg", ".jpeg").
		Register(NotSupported{Format: "Pages document"}, ".pages")
}
