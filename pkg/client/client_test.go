package client_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/storacha/resume-converter/internal/testutil"
	"github.com/storacha/resume-converter/pkg/client"
	"github.com/storacha/resume-converter/pkg/server"
	"github.com/storacha/resume-converter/pkg/service"
	"github.com/storacha/resume-converter/pkg/types"
	"github.com/stretchr/testify/require"
)

type stubService struct {
	result types.Result
	err    error
}

func (s stubService) Convert(ctx context.Context, event types.ConversionEvent) (types.Result, error) {
	return s.result, s.err
}

func TestClient(t *testing.T) {
	testCases := []struct {
		name           string
		service        stubService
		expectedResult types.Result
		expectedStatus int
	}{
		{
			name:           "converted",
			service:        stubService{result: service.NewResult(http.StatusOK, "at URL: https://bucket/converted/resume.pdf?a=1&b=2")},
			expectedResult: types.Result{StatusCode: http.StatusOK, Body: `"at URL: https://bucket/converted/resume.pdf?a=1&b=2"`},
		},
		{
			name:           "unsupported is a result",
			service:        stubService{result: service.NewResult(http.StatusBadRequest, "No supported files found to convert.")},
			expectedResult: types.Result{StatusCode: http.StatusBadRequest, Body: `"No supported files found to convert."`},
		},
		{
			name:           "upload failure is a result",
			service:        stubService{result: service.NewResult(http.StatusBadGateway, "Could not upload to AWS S3 bucket!")},
			expectedResult: types.Result{StatusCode: http.StatusBadGateway, Body: `"Could not upload to AWS S3 bucket!"`},
		},
		{
			name:           "missing source object",
			service:        stubService{err: types.ErrKeyNotFound},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "server failure",
			service:        stubService{err: errors.New("disk full")},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			svr := httptest.NewServer(server.NewServer(tc.service))
			t.Cleanup(svr.Close)

			c := client.New(*testutil.Must(url.Parse(svr.URL))(t))
			result, err := c.Convert(t.Context(), types.ConversionEvent{FileToConvert: "resume.txt"})
			if tc.expectedStatus != 0 {
				var failed client.ErrFailedResponse
				require.ErrorAs(t, err, &failed)
				require.Equal(t, tc.expectedStatus, failed.StatusCode)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.expectedResult, result)
		})
	}
}

func TestClient__Unreachable(t *testing.T) {
	svr := httptest.NewServer(http.NotFoundHandler())
	serviceURL := *testutil.Must(url.Parse(svr.URL))(t)
	svr.Close()

	c := client.New(serviceURL, client.WithHTTPClient(&http.Client{}))
	_, err := c.Convert(t.Context(), types.ConversionEvent{FileToConvert: "resume.txt"})
	require.Error(t, err)
}
