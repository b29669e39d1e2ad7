package telemetry

import (
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
	logging "github.com/ipfs/go-log/v2"
	"github.com/storacha/resume-converter/pkg/build"
)

// Logger is the printf-style logging used across the converter.
type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// CaptureFunc reports an error logged by a subsystem.
type CaptureFunc func(system string, err error)

// SentryLogger logs through a go-log subsystem logger and also reports
// errors to Sentry, tagged with the subsystem, when error logs are enabled for
// it.
type SentryLogger struct {
	system  string
	log     Logger
	capture CaptureFunc
}

var _ Logger = (*SentryLogger)(nil)

func (s *SentryLogger) Infof(format string, args ...any) {
	s.log.Infof(format, args...)
}

func (s *SentryLogger) Warnf(format string, args ...any) {
	s.log.Warnf(format, args...)
}

func (s *SentryLogger) Errorf(format string, args ...any) {
	if getLevel(s.system) <= logging.LevelError {
		s.capture(s.system, fmt.Errorf(format, args...))
	}
	s.log.Errorf(format, args...)
}

// NewSentryLogger returns the logger for a subsystem. Errors go to Sentry
// once SetupSentry has run; before that they are only logged.
func NewSentryLogger(system string) *SentryLogger {
	return &SentryLogger{
		system:  system,
		log:     logging.Logger(system),
		capture: captureException,
	}
}

func captureException(system string, err error) {
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("subsystem", system)
		sentry.CaptureException(err)
	})
}

// SetupSentry initializes the global Sentry client. An empty DSN leaves
// Sentry disabled, in which case captured exceptions are dropped. The
// returned function flushes buffered events and should run before exit.
func SetupSentry(dsn, environment string) (func(), error) {
	err := sentry.Init(sentry.ClientOptions{
		Dsn:         dsn,
		Environment: environment,
		Release:     build.Version,
	})
	if err != nil {
		return nil, fmt.Errorf("initializing sentry: %w", err)
	}
	return func() {
		sentry.Flush(2 * time.Second)
	}, nil
}

// getLevel gets the configured log level for the passed subsystem.
func getLevel(system string) logging.LogLevel {
	cfg := logging.GetConfig()
	lvl, ok := cfg.SubsystemLevels[system]
	if !ok {
		return cfg.Level
	}
	return lvl
}
