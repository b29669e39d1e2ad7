package extmocks

import (
	"testing"

	"github.com/stretchr/testify/mock"
)

// MockLogger is a testify mock of a printf-style Infof/Warnf/Errorf logger.
// Calls are recorded with the format first, then the args.
type MockLogger struct {
	mock.Mock
}

// NewMockLogger creates a MockLogger whose expectations are asserted when the
// test finishes.
func NewMockLogger(t *testing.T) *MockLogger {
	m := &MockLogger{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockLogger) Infof(format string, args ...any) {
	m.Called(append([]any{format}, args...)...)
}

func (m *MockLogger) Warnf(format string, args ...any) {
	m.Called(append([]any{format}, args...)...)
}

func (m *MockLogger) Errorf(format string, args ...any) {
	m.Called(append([]any{format}, args...)...)
}
