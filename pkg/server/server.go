package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	logging "github.com/ipfs/go-log/v2"
	"github.com/storacha/resume-converter/pkg/build"
	"github.com/storacha/resume-converter/pkg/service"
	"github.com/storacha/resume-converter/pkg/telemetry"
	"github.com/storacha/resume-converter/pkg/types"
)

var log = logging.Logger("server")

// maxEventSize bounds the request body of a conversion event
const maxEventSize = 64 * 1024

type config struct {
	telemetry bool
}

type Option func(*config)

// WithTelemetry wraps every route in OpenTelemetry server spans.
func WithTelemetry() Option {
	return func(c *config) {
		c.telemetry = true
	}
}

// ListenAndServe creates a new conversion HTTP server, and starts it up.
func ListenAndServe(addr string, converter types.Service, opts ...Option) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: NewServer(converter, opts...),
	}
	log.Infof("Listening on %s", addr)
	err := srv.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// NewServer creates a new conversion HTTP server.
func NewServer(converter types.Service, opts ...Option) http.Handler {
	c := &config{}
	for _, opt := range opts {
		opt(c)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", GetRootHandler())
	mux.HandleFunc("POST /convert", PostConvertHandler(converter))
	if c.telemetry {
		return telemetry.GetInstrumentedHTTPHandler(mux, "resume-converter")
	}
	return mux
}

// GetRootHandler displays version info when a GET request is sent to "/".
func GetRootHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(fmt.Sprintf("📄 resume-converter %s\n", build.Version)))
		w.Write([]byte("- POST /convert {\"fileToConvert\": \"resume.txt\"}\n"))
	}
}

// PostConvertHandler runs a conversion when a JSON conversion event is POSTed
// to "/convert". The response is the conversion result, sent with its status
// code.
func PostConvertHandler(converter types.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxEventSize))
		if err != nil {
			http.Error(w, fmt.Sprintf("reading body: %s", err), http.StatusBadRequest)
			return
		}
		var event types.ConversionEvent
		if err := json.Unmarshal(body, &event); err != nil {
			http.Error(w, fmt.Sprintf("invalid conversion event: %s", err), http.StatusBadRequest)
			return
		}
		if event.FileToConvert == "" {
			http.Error(w, "missing fileToConvert", http.StatusBadRequest)
			return
		}

		result, err := converter.Convert(r.Context(), event)
		if err != nil {
			if errors.Is(err, types.ErrKeyNotFound) {
				http.Error(w, fmt.Sprintf("not found: %s", event.FileToConvert), http.StatusNotFound)
				return
			}
			if errors.Is(err, service.ErrMissingFilename) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			log.Errorf("converting %q: %s", event.FileToConvert, err.Error())
			http.Error(w, "failed to convert", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(result.StatusCode)
		if err := json.NewEncoder(w).Encode(result); err != nil {
			log.Warnf("sending conversion result: %s", err.Error())
		}
	}
}
