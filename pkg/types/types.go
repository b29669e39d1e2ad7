package types

import (
	"context"
	"errors"
	"time"
)

// ErrKeyNotFound means the key did not exist in the object store
var ErrKeyNotFound = errors.New("key not found")

// ConversionEvent is the invocation payload for a single conversion
type ConversionEvent struct {
	// FileToConvert is the name of the file under the source prefix
	FileToConvert string `json:"fileToConvert"`
}

// Result is the response descriptor returned to the caller
type Result struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
}

// ObjectStore moves objects between the bucket and local scratch space
type ObjectStore interface {
	// Download writes the object at key to localPath. If the object does not
	// exist, it should return an error wrapping [ErrKeyNotFound].
	Download(ctx context.Context, key string, localPath string) error
	// Upload writes the file at localPath to key.
	Upload(ctx context.Context, localPath string, key string) error
}

// ObjectURLGenerator produces a retrievable URL for an object in the bucket
type ObjectURLGenerator interface {
	URL(ctx context.Context, key string) (string, error)
}

// ConversionStatus describes how a conversion ended
type ConversionStatus string

const (
	StatusConverted      ConversionStatus = "converted"
	StatusUploadFailed   ConversionStatus = "upload_failed"
	StatusUnsupported    ConversionStatus = "unsupported"
	StatusNotImplemented ConversionStatus = "not_implemented"
)

// ConversionRecord is a journal entry for a finished conversion
type ConversionRecord struct {
	ID             string           `json:"id"`
	FileToConvert  string           `json:"fileToConvert"`
	SourceKey      string           `json:"sourceKey"`
	DestinationKey string           `json:"destinationKey"`
	Status         ConversionStatus `json:"status"`
	StatusCode     int              `json:"statusCode"`
	URL            string           `json:"url,omitempty"`
	ConvertedAt    time.Time        `json:"convertedAt"`
}

// ConversionJournal records finished conversions
type ConversionJournal interface {
	Put(ctx context.Context, record ConversionRecord) error
}

// ConversionMessage announces a converted object
type ConversionMessage struct {
	ID             string `json:"ID,omitempty"`
	SourceKey      string `json:"SourceKey,omitempty"`
	DestinationKey string `json:"DestinationKey,omitempty"`
	URL            string `json:"URL,omitempty"`
}

// ConversionNotifier announces converted objects to interested parties.
// Delivery failures are the notifier's to log.
type ConversionNotifier interface {
	NotifyConverted(ctx context.Context, msg ConversionMessage)
}

// Service handles one conversion event end to end
type Service interface {
	Convert(ctx context.Context, event ConversionEvent) (Result, error)
}

// ConversionJob is a conversion event read from a queue. ID identifies the
// delivery, so the job can be released or deleted once handled.
type ConversionJob struct {
	ID    string
	Event ConversionEvent
}
