package telemetry

import (
	"errors"
	"fmt"
	"testing"

	logging "github.com/ipfs/go-log/v2"
	"github.com/storacha/resume-converter/internal/extmocks"
	"github.com/stretchr/testify/require"
)

type capturedError struct {
	system string
	err    error
}

func TestSentryLogger(t *testing.T) {
	testCases := []struct {
		name    string
		system  string
		level   logging.LogLevel
		log     func(l Logger)
		method  string
		args    []any
		capture string
	}{
		{
			name:   "info is only logged",
			system: "service",
			level:  logging.LevelInfo,
			log:    func(l Logger) { l.Infof("Downloading resume %q", "resume.txt") },
			method: "Infof",
			args:   []any{"Downloading resume %q", "resume.txt"},
		},
		{
			name:   "warnings are only logged",
			system: "service",
			level:  logging.LevelInfo,
			log:    func(l Logger) { l.Warnf("no converter for %q", "resume.exe") },
			method: "Warnf",
			args:   []any{"no converter for %q", "resume.exe"},
		},
		{
			name:    "errors are captured",
			system:  "service",
			level:   logging.LevelInfo,
			log:     func(l Logger) { l.Errorf("uploading %q: %s", "converted/resume.pdf", "access denied") },
			method:  "Errorf",
			args:    []any{"uploading %q: %s", "converted/resume.pdf", "access denied"},
			capture: `uploading "converted/resume.pdf": access denied`,
		},
		{
			name:    "errors are captured at error level",
			system:  "aws",
			level:   logging.LevelError,
			log:     func(l Logger) { l.Errorf("publishing conversion message %s: %s", "id-1", "throttled") },
			method:  "Errorf",
			args:    []any{"publishing conversion message %s: %s", "id-1", "throttled"},
			capture: "publishing conversion message id-1: throttled",
		},
		{
			name:   "errors are not captured when error logs are off",
			system: "queuepoller",
			level:  logging.LevelPanic,
			log:    func(l Logger) { l.Errorf("reading jobs from queue: %v", errors.New("timeout")) },
			method: "Errorf",
			args:   []any{"reading jobs from queue: %v", errors.New("timeout")},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			system := fmt.Sprintf("%s-%s", tc.system, t.Name())
			cfg := logging.GetConfig()
			cfg.SubsystemLevels[system] = tc.level
			logging.SetupLogging(cfg)

			mockLog := extmocks.NewMockLogger(t)
			mockLog.On(tc.method, tc.args...).Return()

			var captured []capturedError
			log := &SentryLogger{
				system: system,
				log:    mockLog,
				capture: func(system string, err error) {
					captured = append(captured, capturedError{system, err})
				},
			}

			tc.log(log)

			if tc.capture == "" {
				require.Empty(t, captured)
				return
			}
			require.Len(t, captured, 1)
			require.Equal(t, system, captured[0].system)
			require.EqualError(t, captured[0].err, tc.capture)
		})
	}
}

func TestNewSentryLogger(t *testing.T) {
	log := NewSentryLogger("service")
	require.Equal(t, "service", log.system)
	// without SetupSentry, captured errors are dropped rather than failing
	require.NotPanics(t, func() { log.Errorf("converting %q: %s", "resume.txt", "boom") })
}

func TestSetupSentry__Disabled(t *testing.T) {
	flush, err := SetupSentry("", "test")
	require.NoError(t, err)
	flush()
}
