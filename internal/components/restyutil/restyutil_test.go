package restyutil

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"comunio-manager/internal/components/telemetry"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

func TestDumpResty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("x-page", r.URL.Path)
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
		}
		_, _ = w.Write([]byte("<html>" + r.URL.Path + "</html>"))
	}))
	defer server.Close()

	dir := filepath.Join(t.TempDir(), "dump")
	output, err := NewDirOutput(dir)
	require.NoError(t, err)

	client := resty.New().SetBaseURL(server.URL)
	TraceResty(client, noop.NewTracerProvider().Tracer("test"))
	DumpResty(client, output, telemetry.SlogAPI{})

	_, err = client.R().SetFormData(map[string]string{"login": "hansi"}).Post("/login.phtml")
	require.NoError(t, err)
	res, err := client.R().Get("/missing")
	require.NoError(t, err)
	require.True(t, res.IsError())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	first, err := os.ReadFile(filepath.Join(dir, "001.txt"))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(first), "---- REQUEST ----"))
	require.Contains(t, string(first), "POST "+server.URL+"/login.phtml")
	require.Contains(t, string(first), "login=hansi")
	require.Contains(t, string(first), "X-Page: /login.phtml")
	require.Contains(t, string(first), "<html>/login.phtml</html>")

	second, err := os.ReadFile(filepath.Join(dir, "002.txt"))
	require.NoError(t, err)
	require.Contains(t, string(second), "404 "+server.URL+"/missing")
}

func TestFormatHeaders(t *testing.T) {
	require.Equal(t, "", formatHeaders(http.Header{}))
	require.Equal(t, "A: 1\nB: 2\nB: 3", formatHeaders(http.Header{
		"B": {"2", "3"},
		"A": {"1"},
	}))
}

func TestDumpRestyBodilessGet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>team news</html>"))
	}))
	defer server.Close()

	dir := t.TempDir()
	output, err := NewDirOutput(dir)
	require.NoError(t, err)

	client := resty.New()
	DumpResty(client, output, telemetry.SlogAPI{})

	res, err := client.R().Get(server.URL + "/team_news.phtml")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, res.StatusCode())

	dumped, err := os.ReadFile(filepath.Join(dir, "001.txt"))
	require.NoError(t, err)
	require.Contains(t, string(dumped), "GET "+server.URL+"/team_news.phtml")
	require.Contains(t, string(dumped), "<html>team news</html>")
}

func TestFormatRequestBody(t *testing.T) {
	req, err := http.NewRequest(http.MethodGet, "http://localhost/", nil)
	require.NoError(t, err)
	require.Equal(t, "", formatRequestBody(req))

	req.GetBody = func() (io.ReadCloser, error) {
		return nil, nil
	}
	require.Equal(t, "", formatRequestBody(req))

	req, err = http.NewRequest(http.MethodPost, "http://localhost/", strings.NewReader("login=hansi"))
	require.NoError(t, err)
	require.Equal(t, "login=hansi", formatRequestBody(req))
}
