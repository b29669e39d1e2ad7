package service

import (
	"errors"
	"time"

	"github.com/storacha/resume-converter/pkg/convert"
	"github.com/storacha/resume-converter/pkg/types"
)

// Option is an option configuring a conversion service.
type Option func(o *options) error

type options struct {
	registry          *convert.Registry
	sourcePrefix      string
	destinationPrefix string
	scratchDir        string
	journal           types.ConversionJournal
	notifier          types.ConversionNotifier
	now               func() time.Time
}

// WithRegistry replaces the default converter registry.
func WithRegistry(registry *convert.Registry) Option {
	return func(o *options) error {
		if registry == nil {
			return errors.New("nil converter registry")
		}
		o.registry = registry
		return nil
	}
}

// WithSourcePrefix sets the key prefix resumes are read from.
func WithSourcePrefix(prefix string) Option {
	return func(o *options) error {
		o.sourcePrefix = prefix
		return nil
	}
}

// WithDestinationPrefix sets the key prefix converted PDFs are written to.
func WithDestinationPrefix(prefix string) Option {
	return func(o *options) error {
		o.destinationPrefix = prefix
		return nil
	}
}

// WithScratchDir sets the local directory each invocation creates its
// working directory in.
func WithScratchDir(dir string) Option {
	return func(o *options) error {
		if dir == "" {
			return errors.New("empty scratch dir")
		}
		o.scratchDir = dir
		return nil
	}
}

// WithJournal records every finished conversion in journal.
func WithJournal(journal types.ConversionJournal) Option {
	return func(o *options) error {
		o.journal = journal
		return nil
	}
}

// WithNotifier announces every successful conversion through notifier.
func WithNotifier(notifier types.ConversionNotifier) Option {
	return func(o *options) error {
		o.notifier = notifier
		return nil
	}
}

// WithClock overrides the time source used for journal timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) error {
		o.now = now
		return nil
	}
}
