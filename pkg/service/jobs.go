package service

import (
	"context"
	"fmt"
	"net/http"

	"github.com/storacha/resume-converter/pkg/types"
)

// JobHandler runs queued conversion jobs through a conversion service.
type JobHandler struct {
	service types.Service
}

// NewJobHandler returns a JobHandler converting with service
func NewJobHandler(service types.Service) JobHandler {
	return JobHandler{service: service}
}

// Handle converts the job's event. Only failures worth retrying are returned:
// service errors and failed uploads. A file that cannot be converted will not
// convert on a retry either, so that outcome is logged and the job is done.
func (h JobHandler) Handle(ctx context.Context, job types.ConversionJob) error {
	result, err := h.service.Convert(ctx, job.Event)
	if err != nil {
		return fmt.Errorf("converting %q: %w", job.Event.FileToConvert, err)
	}
	if result.StatusCode == http.StatusOK {
		return nil
	}
	if Retryable(result) {
		return fmt.Errorf("converting %q: status %d: %s", job.Event.FileToConvert, result.StatusCode, result.Body)
	}
	log.Warnf("not retrying %q: status %d: %s", job.Event.FileToConvert, result.StatusCode, result.Body)
	return nil
}

// Retryable reports whether a failed conversion may succeed when delivered
// again. Rejected input (4xx) and unsupported formats (501) never will.
func Retryable(result types.Result) bool {
	return result.StatusCode >= http.StatusInternalServerError && result.StatusCode != http.StatusNotImplemented
}

// ID returns the queue delivery ID of the job
func (JobHandler) ID(job types.ConversionJob) string {
	return job.ID
}
