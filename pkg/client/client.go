package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"time"

	"github.com/storacha/resume-converter/pkg/types"
)

const convertPath = "/convert"

type ErrFailedResponse struct {
	StatusCode int
	Body       string
}

func errFromResponse(res *http.Response) ErrFailedResponse {
	err := ErrFailedResponse{StatusCode: res.StatusCode}

	message, merr := io.ReadAll(res.Body)
	if merr != nil {
		err.Body = merr.Error()
	} else {
		err.Body = string(message)
	}
	return err
}

func (e ErrFailedResponse) Error() string {
	return fmt.Sprintf("http request failed, status: %d %s, message: %s", e.StatusCode, http.StatusText(e.StatusCode), e.Body)
}

// Client talks to a resume converter HTTP server.
type Client struct {
	serviceURL url.URL
	httpClient *http.Client
}

var _ types.Service = (*Client)(nil)

// Convert asks the server to convert a file. Conversion outcomes, including
// unsupported formats and failed uploads, come back as a Result. Requests the
// server rejects outright come back as an ErrFailedResponse.
func (c *Client) Convert(ctx context.Context, event types.ConversionEvent) (types.Result, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return types.Result{}, fmt.Errorf("serializing event: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.serviceURL.JoinPath(convertPath).String(), bytes.NewReader(body))
	if err != nil {
		return types.Result{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return types.Result{}, fmt.Errorf("sending event to server: %w", err)
	}
	defer res.Body.Close()

	if mediaType, _, _ := mime.ParseMediaType(res.Header.Get("Content-Type")); mediaType != "application/json" {
		return types.Result{}, errFromResponse(res)
	}
	var result types.Result
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		return types.Result{}, fmt.Errorf("decoding result: %w", err)
	}
	return result, nil
}

type Option func(*Client)

// WithHTTPClient configures the HTTP client to use for conversion requests.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// New creates a client for the converter at serviceURL. Conversions run
// synchronously on the server, so the default timeout is generous.
func New(serviceURL url.URL, options ...Option) *Client {
	c := Client{
		serviceURL: serviceURL,
		httpClient: &http.Client{Timeout: 2 * time.Minute},
	}
	for _, opt := range options {
		opt(&c)
	}
	return &c
}
