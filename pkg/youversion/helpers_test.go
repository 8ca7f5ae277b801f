package youversion

import (
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/PandaWhoCodes/youversion/internal/fakeapi"
)

const testKey = "test-key"

const (
	biblicaID = "05a9aa40-5a4d-4e4b-a5c2-1a8b3f1c5e21"
	ebibleID  = "7c2f1f3e-92b4-4d1e-9d3a-6e2a0b7c4f10"
)

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

// startFake runs the fake API for the duration of the test.
func startFake(t *testing.T, opts ...fakeapi.Option) (*fakeapi.Server, string) {
	t.Helper()
	fake, err := fakeapi.New(append([]fakeapi.Option{fakeapi.WithAppKey(testKey)}, opts...)...)
	require.NoError(t, err)
	srv := httptest.NewServer(fake.Handler())
	t.Cleanup(srv.Close)
	return fake, srv.URL
}

func testOptions(baseURL string, opts ...Option) []Option {
	return append([]Option{WithBaseURL(baseURL), WithLogger(discard())}, opts...)
}

func newTestClient(t *testing.T, opts ...Option) (*Client, *fakeapi.Server) {
	t.Helper()
	fake, url := startFake(t)
	c, err := New(testKey, testOptions(url, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, fake
}

func newTestAsync(t *testing.T, baseURL string, opts ...Option) *AsyncClient {
	t.Helper()
	a, err := NewAsync(testKey, testOptions(baseURL, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}
