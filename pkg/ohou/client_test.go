package ohou

import (
	"bytes"
	"context"
	"crypto/tls"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"ohoucrawl/pkg/config"
	"ohoucrawl/pkg/errors"
	"ohoucrawl/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockRoundTripper allows us to intercept HTTP requests
type mockRoundTripper struct {
	handler func(req *http.Request) (*http.Response, error)
}

func (m *mockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	return m.handler(req)
}

func newResponse(req *http.Request, statusCode int, body string) *http.Response {
	return &http.Response{
		StatusCode: statusCode,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Header:     make(http.Header),
		Request:    req,
	}
}

func testHTTPConfig(baseURL string) *config.HTTPConfig {
	return &config.HTTPConfig{
		BaseURL: baseURL,
		Timeout: 5 * time.Second,
	}
}

func TestNewClient(t *testing.T) {
	log := logger.NewTestLogger()

	t.Run("defaults", func(t *testing.T) {
		client := NewClient(&config.HTTPConfig{}, log)

		require.NotNil(t, client)
		assert.Equal(t, BaseURL, client.BaseURL())
		assert.Equal(t, DefaultUserAgent, client.headers["User-Agent"])
		transport := client.httpClient.Transport.(*http.Transport)
		assert.True(t, transport.TLSClientConfig == nil || !transport.TLSClientConfig.InsecureSkipVerify)
		assert.False(t, log.HasMessage("TLS certificate verification is disabled"))
	})

	t.Run("insecure transport is explicit and logged", func(t *testing.T) {
		log.Clear()
		client := NewClient(&config.HTTPConfig{InsecureSkipVerify: true, UserAgent: "custom"}, log)

		transport := client.httpClient.Transport.(*http.Transport)
		require.NotNil(t, transport.TLSClientConfig)
		assert.True(t, transport.TLSClientConfig.InsecureSkipVerify)
		assert.Equal(t, defaultTLSConfig(t).NextProtos, transport.TLSClientConfig.NextProtos)
		assert.Equal(t, "custom", client.headers["User-Agent"])
		assert.True(t, log.HasMessage("TLS certificate verification is disabled"))
	})
}

func defaultTLSConfig(t *testing.T) *tls.Config {
	t.Helper()
	cfg := http.DefaultTransport.(*http.Transport).Clone().TLSClientConfig
	if cfg == nil {
		return &tls.Config{}
	}
	return cfg
}

func TestSetHeaders(t *testing.T) {
	client := NewClient(&config.HTTPConfig{}, logger.NewNopLogger())

	t.Run("SetHeader", func(t *testing.T) {
		client.SetHeader("X-Custom-Header", "test-value")
		assert.Equal(t, "test-value", client.headers["X-Custom-Header"])
	})

	t.Run("SetHeaders", func(t *testing.T) {
		client.SetHeaders(map[string]string{
			"X-Header-1": "value1",
			"X-Header-2": "value2",
		})
		assert.Equal(t, "value1", client.headers["X-Header-1"])
		assert.Equal(t, "value2", client.headers["X-Header-2"])
	})
}

func TestFetch(t *testing.T) {
	var gotQuery url.Values
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		gotUA = r.Header.Get("User-Agent")
		switch r.URL.Path {
		case "/advices.json":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"total_count":3}`))
		case "/missing":
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer server.Close()

	client := NewClient(testHTTPConfig(server.URL), logger.NewNopLogger())

	t.Run("successful request with params", func(t *testing.T) {
		body, err := client.Fetch(context.Background(), server.URL+"/advices.json", ListingParams("sofa", 2, 50))
		require.NoError(t, err)
		assert.JSONEq(t, `{"total_count":3}`, string(body))
		assert.Equal(t, "sofa", gotQuery.Get("query"))
		assert.Equal(t, "2", gotQuery.Get("page"))
		assert.Equal(t, "50", gotQuery.Get("per"))
		assert.Equal(t, "advices", gotQuery.Get("input_source"))
		assert.Equal(t, "5", gotQuery.Get("v"))
		assert.Contains(t, gotUA, "Mozilla")
	})

	t.Run("non-success status", func(t *testing.T) {
		body, err := client.Fetch(context.Background(), server.URL+"/missing", nil)
		assert.Nil(t, body)
		require.Error(t, err)

		fetchErr, ok := errors.As(err)
		require.True(t, ok)
		assert.Equal(t, errors.ErrorTypeFetch, fetchErr.Type)
		assert.Equal(t, http.StatusNotFound, fetchErr.Code)
	})

	t.Run("server error", func(t *testing.T) {
		_, err := client.Fetch(context.Background(), server.URL+"/boom", nil)
		assert.True(t, errors.IsFetch(err))
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := client.Fetch(ctx, server.URL+"/advices.json", nil)
		require.Error(t, err)
		assert.True(t, errors.IsFetch(err))
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestFetchNetworkError(t *testing.T) {
	client := NewClient(testHTTPConfig(BaseURL), logger.NewNopLogger())
	client.httpClient = &http.Client{
		Transport: &mockRoundTripper{handler: func(req *http.Request) (*http.Response, error) {
			return nil, io.ErrUnexpectedEOF
		}},
	}

	_, err := client.Fetch(context.Background(), BaseURL+"/advices/1", nil)
	require.Error(t, err)

	fetchErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrorTypeFetch, fetchErr.Type)
	assert.Equal(t, 0, fetchErr.Code)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestCheckResponseStatus(t *testing.T) {
	client := NewClient(&config.HTTPConfig{}, logger.NewNopLogger())

	tests := []struct {
		name       string
		statusCode int
		wantErr    bool
	}{
		{name: "200 OK", statusCode: http.StatusOK},
		{name: "204 No Content", statusCode: http.StatusNoContent},
		{name: "301 redirect not followed", statusCode: http.StatusMovedPermanently, wantErr: true},
		{name: "403 Forbidden", statusCode: http.StatusForbidden, wantErr: true},
		{name: "429 Too Many Requests", statusCode: http.StatusTooManyRequests, wantErr: true},
		{name: "503 Service Unavailable", statusCode: http.StatusServiceUnavailable, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest("GET", "http://example.com/advices/1", nil)
			err := client.checkResponseStatus(newResponse(req, tt.statusCode, ""))
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			fetchErr, ok := errors.As(err)
			require.True(t, ok)
			assert.Equal(t, tt.statusCode, fetchErr.Code)
			assert.Equal(t, "http://example.com/advices/1", fetchErr.URL)
		})
	}
}

func TestBuildURL(t *testing.T) {
	got, err := buildURL("https://ohou.se/advices.json?x=1", url.Values{"page": {"3"}})
	require.NoError(t, err)

	parsed, err := url.Parse(got)
	require.NoError(t, err)
	assert.Equal(t, "1", parsed.Query().Get("x"))
	assert.Equal(t, "3", parsed.Query().Get("page"))

	plain, err := buildURL("https://ohou.se/advices/42", nil)
	require.NoError(t, err)
	assert.Equal(t, "https://ohou.se/advices/42", plain)
}
