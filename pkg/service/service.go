package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/storacha/resume-converter/pkg/convert"
	"github.com/storacha/resume-converter/pkg/telemetry"
	"github.com/storacha/resume-converter/pkg/types"
)

var log = telemetry.NewSentryLogger("service")

// ErrMissingFilename means the event did not name a file to convert
var ErrMissingFilename = errors.New("missing fileToConvert")

const (
	msgUnsupported  = "No supported files found to convert."
	msgUploadFailed = "Could not upload to AWS S3 bucket!"
	msgConverted    = "Resume successfully converted and uploaded to AWS S3 bucket at URL: %s"
	msgNotYet       = "Conversion of %s files is not yet supported."
)

// ConversionService downloads a resume, converts it to PDF and uploads the
// result next to the other converted resumes.
type ConversionService struct {
	store             types.ObjectStore
	urls              types.ObjectURLGenerator
	registry          *convert.Registry
	sourcePrefix      string
	destinationPrefix string
	scratchDir        string
	journal           types.ConversionJournal
	notifier          types.ConversionNotifier
	now               func() time.Time
}

var _ types.Service = (*ConversionService)(nil)

// New creates a conversion service reading from store and building links with
// urls.
func New(store types.ObjectStore, urls types.ObjectURLGenerator, opts ...Option) (*ConversionService, error) {
	o := &options{
		registry:   convert.DefaultRegistry(),
		scratchDir: os.TempDir(),
		now:        time.Now,
	}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return &ConversionService{
		store:             store,
		urls:              urls,
		registry:          o.registry,
		sourcePrefix:      o.sourcePrefix,
		destinationPrefix: o.destinationPrefix,
		scratchDir:        o.scratchDir,
		journal:           o.journal,
		notifier:          o.notifier,
		now:               o.now,
	}, nil
}

// Convert implements types.Service. Errors are returned only for failures
// that should fail the whole invocation; everything the caller can act on is
// reported in the Result.
func (s *ConversionService) Convert(ctx context.Context, event types.ConversionEvent) (types.Result, error) {
	if event.FileToConvert == "" {
		return types.Result{}, ErrMissingFilename
	}

	id := uuid.New()
	scratch := filepath.Join(s.scratchDir, id.String())
	if err := os.MkdirAll(scratch, 0o700); err != nil {
		return types.Result{}, fmt.Errorf("creating scratch dir: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(scratch); err != nil {
			log.Warnf("removing scratch dir %s: %s", scratch, err.Error())
		}
	}()

	paths := DerivePaths(scratch, s.sourcePrefix, s.destinationPrefix, event.FileToConvert)
	record := types.ConversionRecord{
		ID:             id.String(),
		FileToConvert:  event.FileToConvert,
		SourceKey:      paths.SourceKey,
		DestinationKey: paths.DestinationKey,
	}

	log.Infof("Downloading resume %q from key %q", event.FileToConvert, paths.SourceKey)
	if err := s.store.Download(ctx, paths.SourceKey, paths.OriginalPath); err != nil {
		return types.Result{}, fmt.Errorf("downloading %q: %w", paths.SourceKey, err)
	}

	converter, err := s.registry.Lookup(paths.Extension)
	if err != nil {
		log.Warnf("no converter for %q: %s", event.FileToConvert, err.Error())
		return s.finish(ctx, record, types.StatusUnsupported, http.StatusBadRequest, msgUnsupported), nil
	}

	log.Infof("Converting %q to %q", paths.OriginalPath, paths.ConvertedPath)
	err = converter.Convert(ctx, paths.OriginalPath, paths.ConvertedPath)
	if err != nil {
		var notYet convert.NotYetSupportedError
		if errors.As(err, &notYet) {
			log.Warnf("not converting %q: %s", event.FileToConvert, err.Error())
			return s.finish(ctx, record, types.StatusNotImplemented, http.StatusNotImplemented, fmt.Sprintf(msgNotYet, notYet.Format)), nil
		}
		return types.Result{}, fmt.Errorf("converting %q: %w", event.FileToConvert, err)
	}

	log.Infof("Uploading converted resume to key %q", paths.DestinationKey)
	if err := s.store.Upload(ctx, paths.ConvertedPath, paths.DestinationKey); err != nil {
		log.Errorf("uploading %q: %s", paths.DestinationKey, err.Error())
		return s.finish(ctx, record, types.StatusUploadFailed, http.StatusBadGateway, msgUploadFailed), nil
	}

	url, err := s.urls.URL(ctx, paths.DestinationKey)
	if err != nil {
		log.Errorf("generating url for %q: %s", paths.DestinationKey, err.Error())
		return s.finish(ctx, record, types.StatusUploadFailed, http.StatusBadGateway, msgUploadFailed), nil
	}
	log.Infof("Converted PDF URL: %s", url)

	record.URL = url
	result := s.finish(ctx, record, types.StatusConverted, http.StatusOK, fmt.Sprintf(msgConverted, url))
	if s.notifier != nil {
		s.notifier.NotifyConverted(ctx, types.ConversionMessage{
			ID:             record.ID,
			SourceKey:      record.SourceKey,
			DestinationKey: record.DestinationKey,
			URL:            url,
		})
	}
	return result, nil
}

// finish journals the outcome and builds the result returned to the caller.
func (s *ConversionService) finish(ctx context.Context, record types.ConversionRecord, status types.ConversionStatus, code int, message string) types.Result {
	log.Infof("Conversion %s of %q finished: %s (%d)", record.ID, record.FileToConvert, status, code)
	if s.journal != nil {
		record.Status = status
		record.StatusCode = code
		record.ConvertedAt = s.now().UTC()
		if err := s.journal.Put(ctx, record); err != nil {
			log.Errorf("journaling conversion %s: %s", record.ID, err.Error())
		}
	}
	return NewResult(code, message)
}

// NewResult builds a result whose body is the JSON encoding of message. URLs
// in the message are kept readable, so HTML escaping is off.
func NewResult(code int, message string) types.Result {
	var body strings.Builder
	enc := json.NewEncoder(&body)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(message); err != nil {
		// a string always encodes
		panic(err)
	}
	return types.Result{StatusCode: code, Body: strings.TrimSuffix(body.String(), "\n")}
}
